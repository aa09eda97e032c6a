package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// CartShape selects how much of each cart line is written to storage.
type CartShape int

const (
	// CartShapeFull persists every field.
	CartShapeFull CartShape = iota
	// CartShapeReduced keeps only the fields needed to render and check out the cart.
	CartShapeReduced
	// CartShapeIDOnly keeps the id and quantity; other fields are restored from the catalog on demand.
	CartShapeIDOnly
)

// String returns the shape label used in logs and metrics.
func (s CartShape) String() string {
	switch s {
	case CartShapeFull:
		return "full"
	case CartShapeReduced:
		return "reduced"
	case CartShapeIDOnly:
		return "id_only"
	default:
		return "unknown"
	}
}

// CartShapes lists the persistence shapes from richest to smallest.
func CartShapes() []CartShape {
	return []CartShape{CartShapeFull, CartShapeReduced, CartShapeIDOnly}
}

type cartItemRecord struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Price         *lenient   `json:"price,omitempty"`
	Image         string     `json:"image,omitempty"`
	Quantity      *lenient   `json:"quantity,omitempty"`
	Sizes         []string   `json:"sizes,omitempty"`
	SelectedSizes []string   `json:"selectedSizes,omitempty"`
	Category      string     `json:"category,omitempty"`
	SKU           string     `json:"sku,omitempty"`
	RegularPrice  *lenient   `json:"regularPrice,omitempty"`
	IsOutOfStock  bool       `json:"isOutOfStock,omitempty"`
	AddedAt       *time.Time `json:"addedAt,omitempty"`
}

// lenient accepts JSON numbers as well as numeric strings written by older clients.
type lenient float64

func (l *lenient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			*l = 0
			return nil
		}
		*l = lenient(parsed)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = lenient(f)
	return nil
}

func newLenient(v float64) *lenient {
	l := lenient(v)
	return &l
}

// ParseCart decodes a stored cart. Malformed payloads yield an empty cart. Lines are normalized so
// the selected-size invariant holds.
func ParseCart(raw []byte) Cart {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Cart{}
	}
	var records []cartItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return Cart{}
	}
	cart := Cart{Items: make([]CartItem, 0, len(records))}
	for _, r := range records {
		item := CartItem{
			ID:            r.ID,
			Name:          r.Name,
			Image:         r.Image,
			Sizes:         r.Sizes,
			SelectedSizes: r.SelectedSizes,
			Category:      r.Category,
			SKU:           r.SKU,
			IsOutOfStock:  r.IsOutOfStock,
		}
		if r.Price != nil {
			item.Price = float64(*r.Price)
		}
		if r.Quantity != nil {
			item.Quantity = quantityFromStored(float64(*r.Quantity))
		}
		if r.RegularPrice != nil {
			rp := float64(*r.RegularPrice)
			item.RegularPrice = &rp
		}
		if r.AddedAt != nil {
			item.AddedAt = r.AddedAt.UTC()
		}
		cart.Items = append(cart.Items, item)
	}
	cart.Normalize()
	return cart
}

// quantityFromStored maps a stored quantity into [1, MaxLineQuantity] before converting to int.
func quantityFromStored(v float64) int {
	switch {
	case math.IsNaN(v) || v < 1:
		return 1
	case v > MaxLineQuantity:
		return MaxLineQuantity
	default:
		return int(v)
	}
}

// EncodeCart serializes items in the requested shape.
func EncodeCart(items []CartItem, shape CartShape) ([]byte, error) {
	records := make([]cartItemRecord, 0, len(items))
	for _, item := range items {
		r := cartItemRecord{ID: item.ID, Quantity: newLenient(float64(item.Quantity))}
		if shape != CartShapeIDOnly {
			r.Name = item.Name
			r.Price = newLenient(item.Price)
			r.Image = item.Image
			r.Sizes = nonNil(item.Sizes)
			r.SelectedSizes = nonNil(item.SelectedSizes)
		}
		if shape == CartShapeFull {
			r.Category = item.Category
			r.SKU = item.SKU
			r.IsOutOfStock = item.IsOutOfStock
			if item.RegularPrice != nil {
				r.RegularPrice = newLenient(*item.RegularPrice)
			}
			if !item.AddedAt.IsZero() {
				at := item.AddedAt.UTC()
				r.AddedAt = &at
			}
		}
		records = append(records, r)
	}
	return json.Marshal(records)
}

// SanitizeItems fills every field of an order line so no value is missing when persisted.
func SanitizeItems(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range CloneCartItems(items) {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		item.Quantity = clampQuantity(item.Quantity)
		if item.Price < 0 {
			item.Price = 0
		}
		item.Sizes = nonNil(item.Sizes)
		item.SelectedSizes = ResizeSelectedSizes(item.SelectedSizes, item.Sizes, item.Quantity)
		out = append(out, item)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
