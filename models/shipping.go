package models

const (
	DeliverOptionStandard = "none"
	DeliverOptionFast     = "xteam"
	TransportRoad         = "road"
)

// Origin is the shop's pick-up location sent as the pick_* fields of a fee request.
type Origin struct {
	Province string `json:"province"`
	District string `json:"district"`
	Ward     string `json:"ward"`
	Address  string `json:"address"`
}

type ShippingFeeRequest struct {
	PickProvince  string `json:"pick_province"`
	PickDistrict  string `json:"pick_district"`
	PickWard      string `json:"pick_ward"`
	PickAddress   string `json:"pick_address"`
	Province      string `json:"province"`
	District      string `json:"district"`
	Ward          string `json:"ward"`
	Address       string `json:"address"`
	Weight        int    `json:"weight"`
	Value         int64  `json:"value"`
	DeliverOption string `json:"deliver_option"`
	Transport     string `json:"transport"`
}

// Complete reports whether the request carries every field the carrier needs for a quote.
func (r ShippingFeeRequest) Complete() bool {
	return r.Province != "" && r.District != "" && r.Ward != "" &&
		r.PickProvince != "" && r.PickDistrict != "" && r.PickWard != "" &&
		r.Weight > 0
}

type CarrierFee struct {
	Fee          *float64 `json:"fee"`
	InsuranceFee float64  `json:"insurance_fee,omitempty"`
	Delivery     bool     `json:"delivery,omitempty"`
}

type CarrierFeeEnvelope struct {
	Success *bool       `json:"success"`
	Message string      `json:"message,omitempty"`
	Fee     *CarrierFee `json:"fee"`
}

// ShippingFeeResponse is the body returned by POST /ghtk/calculate-fee.
type ShippingFeeResponse struct {
	Success bool                `json:"success"`
	Fee     *CarrierFeeEnvelope `json:"fee"`
	Message string              `json:"message,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

const (
	FeeStatusIdle        = "idle"
	FeeStatusCalculating = "calculating"
	FeeStatusReady       = "ready"
	FeeStatusUnavailable = "unavailable"
	FeeStatusIneligible  = "ineligible"
)

type ShippingQuote struct {
	Tier     string `json:"tier"`
	MethodID int    `json:"method_id"`
	Status   string `json:"status"`
	Fee      *int64 `json:"fee"`
	Reason   string `json:"reason,omitempty"`
}
