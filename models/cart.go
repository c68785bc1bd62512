package models

import "time"

type CartItem struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	VariantID  string           `json:"variant_id,omitempty"`
	Quantity   int              `json:"quantity"`
	PriceAtAdd int64            `json:"price_at_add"`
	FinalPrice *int64           `json:"final_price,omitempty"`
	Product    ProductSnapshot  `json:"product"`
	Variant    *VariantSnapshot `json:"variant,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// UnitPrice is the promotion-adjusted price, or the price at add when there is none.
func (i CartItem) UnitPrice() int64 {
	if i.FinalPrice != nil {
		return *i.FinalPrice
	}
	return i.PriceAtAdd
}

func (i CartItem) LineTotal() int64 {
	return i.UnitPrice() * int64(i.Quantity)
}

// WeightGrams returns the per-unit weight, variant first, or fallback when neither is known.
func (i CartItem) WeightGrams(fallback int) int {
	if i.Variant != nil && i.Variant.WeightGrams > 0 {
		return i.Variant.WeightGrams
	}
	if i.Product.WeightGrams > 0 {
		return i.Product.WeightGrams
	}
	return fallback
}

// CartSnapshot is the reduced form of the cart that is persisted between sessions.
type CartSnapshot struct {
	Items       []CartItem `json:"items"`
	SelectedIDs []string   `json:"selected_ids"`
}

type CartView struct {
	Items         []CartItem `json:"items"`
	SelectedIDs   []string   `json:"selected_ids"`
	ItemCount     int        `json:"item_count"`
	TotalPrice    int64      `json:"total_price"`
	SelectedTotal int64      `json:"selected_total"`
}
