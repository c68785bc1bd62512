package models

type ShippingAddress struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ProvinceID   string `json:"province_id,omitempty"`
	ProvinceName string `json:"province_name"`
	DistrictID   string `json:"district_id,omitempty"`
	DistrictName string `json:"district_name"`
	WardCode     string `json:"ward_code,omitempty"`
	WardName     string `json:"ward_name"`
	IsDefault    bool   `json:"is_default"`
}

const (
	AddressStatusNoAddress   = "no_address"
	AddressStatusReady       = "ready"
	AddressStatusUnavailable = "unavailable"
)

type AddressState struct {
	Status     string            `json:"status"`
	Addresses  []ShippingAddress `json:"addresses"`
	SelectedID string            `json:"selected_id,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}
