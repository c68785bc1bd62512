package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"pcb-shop/models"
)

var hundred = decimal.NewFromInt(100)

// CalculateFinalPrice applies a promotion to basePrice and rounds to a whole currency unit.
func CalculateFinalPrice(basePrice int64, promotion *models.Promotion) int64 {
	if promotion == nil {
		return basePrice
	}

	base := decimal.NewFromInt(basePrice)
	value := decimal.NewFromFloat(promotion.DiscountValue)
	if value.IsNegative() {
		value = decimal.Zero
	}

	switch strings.ToUpper(promotion.DiscountType) {
	case models.DiscountPercent:
		if value.GreaterThan(hundred) {
			value = hundred
		}
		factor := decimal.NewFromInt(1).Sub(value.Div(hundred))
		return base.Mul(factor).Round(0).IntPart()
	case models.DiscountFixed:
		discounted := base.Sub(value)
		if discounted.IsNegative() {
			return 0
		}
		return discounted.Round(0).IntPart()
	}
	return basePrice
}
