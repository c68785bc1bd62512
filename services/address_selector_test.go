package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-shop/models"
)

func testAddresses() []models.ShippingAddress {
	return []models.ShippingAddress{
		{ID: "a-1", Name: "Office", ProvinceName: "Hà Nội", DistrictName: "Cầu Giấy", WardName: "Dịch Vọng", Address: "1 Trần Thái Tông"},
		{ID: "a-2", Name: "Home", ProvinceName: "Hồ Chí Minh", DistrictName: "Quận 1", WardName: "Bến Nghé", Address: "2 Lê Lợi", IsDefault: true},
	}
}

func TestAddressSelector_AutoSelectsDefaultOnce(t *testing.T) {
	var picked []string
	sel := NewAddressSelector(func(a models.ShippingAddress) { picked = append(picked, a.ID) })

	sel.Load(testAddresses())
	sel.Load(testAddresses())

	assert.Equal(t, []string{"a-2"}, picked)
	chosen, ok := sel.Selected()
	require.True(t, ok)
	assert.Equal(t, "a-2", chosen.ID)
	assert.Equal(t, models.AddressStatusReady, sel.State().Status)
}

func TestAddressSelector_NoDefaultLeavesSelectionEmpty(t *testing.T) {
	sel := NewAddressSelector(nil)
	list := testAddresses()
	list[1].IsDefault = false

	sel.Load(list)

	_, ok := sel.Selected()
	assert.False(t, ok)
}

func TestAddressSelector_KeepsManualChoiceOverDefault(t *testing.T) {
	sel := NewAddressSelector(nil)
	sel.Load(testAddresses())

	_, err := sel.Select("a-1")
	require.NoError(t, err)
	sel.Load(testAddresses())

	chosen, _ := sel.Selected()
	assert.Equal(t, "a-1", chosen.ID)
}

func TestAddressSelector_SelectUnknown(t *testing.T) {
	sel := NewAddressSelector(nil)
	sel.Load(testAddresses())

	_, err := sel.Select("nope")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressSelector_SelectedAddressRemoved(t *testing.T) {
	sel := NewAddressSelector(nil)
	sel.Load(testAddresses())

	sel.Load(testAddresses()[:1])

	_, ok := sel.Selected()
	assert.False(t, ok, "removed address must not stay selected")
	assert.Empty(t, sel.State().SelectedID)
}

func TestAddressSelector_States(t *testing.T) {
	sel := NewAddressSelector(nil)
	sel.Load(nil)
	assert.Equal(t, models.AddressStatusNoAddress, sel.State().Status)

	sel.Fail(errors.New("timeout"))
	state := sel.State()
	assert.Equal(t, models.AddressStatusUnavailable, state.Status)
	assert.NotEmpty(t, state.Reason)
}

func TestAddressSelector_MarkDefault(t *testing.T) {
	sel := NewAddressSelector(nil)
	sel.Load(testAddresses())

	require.NoError(t, sel.MarkDefault("a-1"))

	defaults := 0
	for _, a := range sel.State().Addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, "a-1", a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.ErrorIs(t, sel.MarkDefault("ghost"), ErrAddressNotFound)
}
