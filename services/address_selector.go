package services

import (
	"errors"
	"sync"

	"pcb-shop/models"
)

var ErrAddressNotFound = errors.New("shipping address not found")

// AddressSelector tracks which saved address the checkout ships to.
type AddressSelector struct {
	mu           sync.Mutex
	addresses    []models.ShippingAddress
	selectedID   string
	autoSelected bool
	loadErr      error
	onSelect     func(models.ShippingAddress)
}

func NewAddressSelector(onSelect func(models.ShippingAddress)) *AddressSelector {
	return &AddressSelector{addresses: []models.ShippingAddress{}, onSelect: onSelect}
}

// Load installs the address list. The first load that finds a default while nothing is
// chosen selects it; later loads never auto-select again.
func (a *AddressSelector) Load(addresses []models.ShippingAddress) {
	a.mu.Lock()
	a.addresses = append([]models.ShippingAddress{}, addresses...)
	a.loadErr = nil

	if a.selectedID != "" && a.indexOf(a.selectedID) < 0 {
		a.selectedID = ""
	}

	var picked *models.ShippingAddress
	if a.selectedID == "" && !a.autoSelected {
		for i := range a.addresses {
			if a.addresses[i].IsDefault {
				a.selectedID = a.addresses[i].ID
				a.autoSelected = true
				chosen := a.addresses[i]
				picked = &chosen
				break
			}
		}
	}
	a.mu.Unlock()

	if picked != nil && a.onSelect != nil {
		a.onSelect(*picked)
	}
}

// Fail records that the address list could not be loaded.
func (a *AddressSelector) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadErr = err
}

func (a *AddressSelector) Select(addressID string) (models.ShippingAddress, error) {
	a.mu.Lock()
	idx := a.indexOf(addressID)
	if idx < 0 {
		a.mu.Unlock()
		return models.ShippingAddress{}, ErrAddressNotFound
	}
	a.selectedID = addressID
	chosen := a.addresses[idx]
	a.mu.Unlock()

	if a.onSelect != nil {
		a.onSelect(chosen)
	}
	return chosen, nil
}

func (a *AddressSelector) Selected() (models.ShippingAddress, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := a.indexOf(a.selectedID)
	if idx < 0 {
		return models.ShippingAddress{}, false
	}
	return a.addresses[idx], true
}

// MarkDefault makes addressID the only default in the local list.
func (a *AddressSelector) MarkDefault(addressID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.indexOf(addressID) < 0 {
		return ErrAddressNotFound
	}
	for i := range a.addresses {
		a.addresses[i].IsDefault = a.addresses[i].ID == addressID
	}
	return nil
}

func (a *AddressSelector) Contains(addressID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.indexOf(addressID) >= 0
}

func (a *AddressSelector) State() models.AddressState {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := models.AddressState{
		Addresses:  append([]models.ShippingAddress{}, a.addresses...),
		SelectedID: a.selectedID,
	}
	switch {
	case a.loadErr != nil:
		state.Status = models.AddressStatusUnavailable
		state.Reason = "saved addresses are unavailable right now"
	case len(a.addresses) == 0:
		state.Status = models.AddressStatusNoAddress
	default:
		state.Status = models.AddressStatusReady
	}
	return state
}

func (a *AddressSelector) indexOf(addressID string) int {
	if addressID == "" {
		return -1
	}
	for i := range a.addresses {
		if a.addresses[i].ID == addressID {
			return i
		}
	}
	return -1
}
