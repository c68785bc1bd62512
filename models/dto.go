package models

type AddCartItemRequest struct {
	ProductID  string           `json:"product_id" binding:"required"`
	VariantID  string           `json:"variant_id"`
	Quantity   int              `json:"quantity"`
	PriceAtAdd int64            `json:"price_at_add"`
	Product    ProductSnapshot  `json:"product"`
	Variant    *VariantSnapshot `json:"variant"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type SelectItemsRequest struct {
	Checked bool     `json:"checked"`
	IDs     []string `json:"ids"`
}

type SelectAddressRequest struct {
	AddressID string `json:"address_id" binding:"required"`
}

type ShippingMethodRequest struct {
	Tier string `json:"tier" binding:"required,oneof=standard fast"`
}

type PaymentMethodRequest struct {
	Code string `json:"code" binding:"required"`
}

type SubmitOrderRequest struct {
	Note string `json:"note"`
}

// CheckoutSummary is everything the checkout page renders in one response.
type CheckoutSummary struct {
	Cart        CartView      `json:"cart"`
	Addresses   AddressState  `json:"addresses"`
	Shipping    ShippingQuote `json:"shipping"`
	Payment     PaymentState  `json:"payment"`
	Subtotal    int64         `json:"subtotal"`
	ShippingFee *int64        `json:"shipping_fee"`
	Total       int64         `json:"total"`
	CanSubmit   bool          `json:"can_submit"`
	Blockers    []string      `json:"blockers,omitempty"`
}

type SubmitOrderResponse struct {
	Order OrderResult  `json:"order"`
	Sent  OrderRequest `json:"request"`
}
