package services

import (
	"errors"
	"strings"
	"sync"

	"pcb-shop/models"
)

var ErrPaymentMethodNotFound = errors.New("payment method not found")

// PaymentSelector tracks the chosen payment method, defaulting once to cash on delivery.
type PaymentSelector struct {
	mu           sync.Mutex
	methods      []models.PaymentMethod
	loaded       bool
	loadErr      error
	selected     string
	autoSelected bool
	onSelect     func(models.PaymentMethod)
}

func NewPaymentSelector(onSelect func(models.PaymentMethod)) *PaymentSelector {
	return &PaymentSelector{methods: []models.PaymentMethod{}, onSelect: onSelect}
}

// Load installs the method list. The first non-empty load with nothing chosen picks
// cash on delivery, or the first method when there is none.
func (p *PaymentSelector) Load(methods []models.PaymentMethod) {
	p.mu.Lock()
	p.methods = append([]models.PaymentMethod{}, methods...)
	p.loaded = true
	p.loadErr = nil

	var picked *models.PaymentMethod
	if p.selected == "" && !p.autoSelected && len(p.methods) > 0 {
		chosen := p.methods[0]
		for _, m := range p.methods {
			if strings.EqualFold(m.Code, models.PaymentCodeCOD) {
				chosen = m
				break
			}
		}
		p.selected = chosen.Code
		p.autoSelected = true
		picked = &chosen
	}
	p.mu.Unlock()

	if picked != nil && p.onSelect != nil {
		p.onSelect(*picked)
	}
}

func (p *PaymentSelector) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	p.loadErr = err
}

func (p *PaymentSelector) Select(code string) (models.PaymentMethod, error) {
	p.mu.Lock()
	idx := p.indexOf(code)
	if idx < 0 {
		p.mu.Unlock()
		return models.PaymentMethod{}, ErrPaymentMethodNotFound
	}
	chosen := p.methods[idx]
	p.selected = chosen.Code
	p.mu.Unlock()

	if p.onSelect != nil {
		p.onSelect(chosen)
	}
	return chosen, nil
}

func (p *PaymentSelector) Selected() (models.PaymentMethod, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.indexOf(p.selected)
	if idx < 0 {
		return models.PaymentMethod{}, false
	}
	return p.methods[idx], true
}

func (p *PaymentSelector) State() models.PaymentState {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := models.PaymentState{
		Methods:  append([]models.PaymentMethod{}, p.methods...),
		Selected: p.selected,
	}
	switch {
	case !p.loaded:
		state.Status = models.PaymentStatusLoading
	case p.loadErr != nil:
		state.Status = models.PaymentStatusUnavailable
		state.Reason = "payment methods are unavailable right now"
	case len(p.methods) == 0:
		state.Status = models.PaymentStatusEmpty
	default:
		state.Status = models.PaymentStatusReady
	}
	return state
}

func (p *PaymentSelector) indexOf(code string) int {
	if code == "" {
		return -1
	}
	for i := range p.methods {
		if strings.EqualFold(p.methods[i].Code, code) {
			return i
		}
	}
	return -1
}
