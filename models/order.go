package models

import "time"

type OrderItem struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// OrderRequest is the body sent to POST /orders when the customer places an order.
type OrderRequest struct {
	Items            []OrderItem     `json:"items"`
	ShippingAddress  ShippingAddress `json:"shipping_address"`
	ShippingMethodID int             `json:"shipping_method_id"`
	DeliverOption    string          `json:"deliver_option"`
	ShippingFee      int64           `json:"shipping_fee"`
	PaymentMethod    string          `json:"payment_method"`
	Subtotal         int64           `json:"subtotal"`
	Total            int64           `json:"total"`
	Note             string          `json:"note,omitempty"`
}

type OrderResult struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       int64  `json:"total"`
	PaymentURL  string `json:"payment_url,omitempty"`
}

// OrderRecord is the local journal row written for every submitted order.
type OrderRecord struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	RemoteOrderID  string    `json:"remote_order_id"`
	OrderNumber    string    `json:"order_number"`
	ItemCount      int       `json:"item_count"`
	Subtotal       int64     `json:"subtotal"`
	ShippingFee    int64     `json:"shipping_fee"`
	Total          int64     `json:"total"`
	ShippingMethod int       `json:"shipping_method_id"`
	PaymentMethod  string    `json:"payment_method"`
	CreatedAt      time.Time `json:"created_at"`
}

type OrderSubmittedEvent struct {
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Total         int64     `json:"total"`
	ShippingFee   int64     `json:"shipping_fee"`
	PaymentMethod string    `json:"payment_method"`
	OccurredAt    time.Time `json:"occurred_at"`
}
