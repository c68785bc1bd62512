package models

const PaymentCodeCOD = "cod"

type PaymentMethod struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code"`
	Name string `json:"name"`
}

const (
	PaymentStatusLoading     = "loading"
	PaymentStatusReady       = "ready"
	PaymentStatusEmpty       = "empty"
	PaymentStatusUnavailable = "unavailable"
)

type PaymentState struct {
	Status   string          `json:"status"`
	Methods  []PaymentMethod `json:"methods"`
	Selected string          `json:"selected,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}
