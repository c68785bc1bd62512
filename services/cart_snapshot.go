package services

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"pcb-shop/models"
)

const unknownProductName = "Unknown product"

// SanitizeSnapshot turns whatever was persisted into a valid cart. It never fails:
// unreadable fields take their defaults and only items without any product id are dropped.
//
//	document not JSON          -> empty cart
//	item not an object         -> dropped
//	product_id                 -> product.id, else dropped
//	id (missing or duplicate)  -> new uuid
//	quantity < 1 or fractional -> 1
//	price_at_add < 0 or NaN    -> product.price, else 0
//	final_price invalid        -> absent
//	product missing            -> {id: product_id, name: "Unknown product"}
//	variant not an object      -> absent
//	timestamps unparsable      -> now
//	selected_ids               -> strings referencing a kept item, deduplicated
func SanitizeSnapshot(data []byte, now time.Time) models.CartSnapshot {
	snap := models.CartSnapshot{Items: []models.CartItem{}, SelectedIDs: []string{}}

	var doc fields
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return snap
	}

	var rawItems []json.RawMessage
	_ = json.Unmarshal(doc["items"], &rawItems)

	kept := make(map[string]bool, len(rawItems))
	for _, raw := range rawItems {
		item, ok := sanitizeItem(raw, now)
		if !ok {
			continue
		}
		if kept[item.ID] {
			item.ID = uuid.NewString()
		}
		kept[item.ID] = true
		snap.Items = append(snap.Items, item)
	}

	var rawSelected []json.RawMessage
	_ = json.Unmarshal(doc["selected_ids"], &rawSelected)

	picked := make(map[string]bool, len(rawSelected))
	for _, raw := range rawSelected {
		var id string
		if json.Unmarshal(raw, &id) != nil || !kept[id] || picked[id] {
			continue
		}
		picked[id] = true
		snap.SelectedIDs = append(snap.SelectedIDs, id)
	}
	return snap
}

func sanitizeItem(raw json.RawMessage, now time.Time) (models.CartItem, bool) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return models.CartItem{}, false
	}

	product, _ := f.object("product")
	productID, _ := f.str("product_id")
	if productID == "" {
		productID, _ = product.str("id")
	}
	if productID == "" {
		return models.CartItem{}, false
	}

	item := models.CartItem{ProductID: productID}

	if id, ok := f.str("id"); ok && id != "" {
		item.ID = id
	} else {
		item.ID = uuid.NewString()
	}

	item.VariantID, _ = f.str("variant_id")

	if qty, ok := f.integer("quantity"); ok && qty >= 1 {
		item.Quantity = int(qty)
	} else {
		item.Quantity = 1
	}

	item.Product = sanitizeProduct(product, productID)

	if price, ok := f.integer("price_at_add"); ok && price >= 0 {
		item.PriceAtAdd = price
	} else {
		item.PriceAtAdd = item.Product.Price
	}
	if item.Product.Price == 0 {
		item.Product.Price = item.PriceAtAdd
	}

	if final, ok := f.integer("final_price"); ok && final >= 0 {
		item.FinalPrice = &final
	}

	if variant, ok := f.object("variant"); ok {
		v := sanitizeVariant(variant, item.VariantID)
		if item.VariantID == "" {
			item.VariantID = v.ID
		}
		item.Variant = &v
	}

	item.CreatedAt = f.timestamp("created_at", now)
	item.UpdatedAt = f.timestamp("updated_at", item.CreatedAt)
	return item, true
}

func sanitizeProduct(f fields, productID string) models.ProductSnapshot {
	p := models.ProductSnapshot{ID: productID, Name: unknownProductName}
	if name, ok := f.str("name"); ok && strings.TrimSpace(name) != "" {
		p.Name = name
	}
	p.Slug, _ = f.str("slug")
	p.ImageURL, _ = f.str("image_url")
	if price, ok := f.integer("price"); ok && price >= 0 {
		p.Price = price
	}
	if weight, ok := f.integer("weight_grams"); ok && weight > 0 {
		p.WeightGrams = int(weight)
	}
	if promo, ok := f.object("promotion"); ok {
		p.Promotion = sanitizePromotion(promo)
	}
	return p
}

func sanitizeVariant(f fields, variantID string) models.VariantSnapshot {
	v := models.VariantSnapshot{ID: variantID}
	if id, ok := f.str("id"); ok && id != "" {
		v.ID = id
	}
	v.Name, _ = f.str("name")
	if price, ok := f.integer("price"); ok && price >= 0 {
		v.Price = price
	}
	if weight, ok := f.integer("weight_grams"); ok && weight > 0 {
		v.WeightGrams = int(weight)
	}
	return v
}

func sanitizePromotion(f fields) *models.Promotion {
	kind, _ := f.str("discountType")
	kind = strings.ToUpper(kind)
	if kind != models.DiscountPercent && kind != models.DiscountFixed {
		return nil
	}
	value, ok := f.number("discountValue")
	if !ok || value < 0 {
		return nil
	}
	return &models.Promotion{DiscountType: kind, DiscountValue: value}
}

// fields decodes one JSON object lazily so that a bad value only costs its own field.
type fields map[string]json.RawMessage

func (f fields) str(key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String(), true
	}
	return "", false
}

func (f fields) number(key string) (float64, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}
	var v float64
	if json.Unmarshal(raw, &v) != nil {
		return 0, false
	}
	return v, true
}

func (f fields) integer(key string) (int64, bool) {
	v, ok := f.number(key)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(v), true
}

func (f fields) object(key string) (fields, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	var obj fields
	if json.Unmarshal(raw, &obj) != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func (f fields) timestamp(key string, fallback time.Time) time.Time {
	raw, ok := f[key]
	if !ok {
		return fallback
	}
	var t time.Time
	if json.Unmarshal(raw, &t) != nil || t.IsZero() {
		return fallback
	}
	return t
}
