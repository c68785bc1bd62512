package models

const (
	DiscountPercent = "PERCENT"
	DiscountFixed   = "FIXED"
)

type Promotion struct {
	DiscountType  string  `json:"discountType"`
	DiscountValue float64 `json:"discountValue"`
}

// ProductSnapshot is the copy of a catalog product taken when it enters the cart.
type ProductSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Price       int64      `json:"price"`
	WeightGrams int        `json:"weight_grams,omitempty"`
	Promotion   *Promotion `json:"promotion,omitempty"`
}

type VariantSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	WeightGrams int    `json:"weight_grams,omitempty"`
}
