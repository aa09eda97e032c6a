package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	// ErrCartItemNotFound is returned when a mutation targets an id missing from the cart.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrSizeSlotOutOfRange is returned when a selected-size index does not address an existing unit.
	ErrSizeSlotOutOfRange = errors.New("size slot out of range")
	// ErrSizeNotOffered is returned when a selected size is not one of the item's sizes.
	ErrSizeNotOffered = errors.New("size not offered for item")
	// ErrQuantityTooLarge is returned when a line would exceed MaxLineQuantity units.
	ErrQuantityTooLarge = errors.New("quantity exceeds the per-item limit")
)

// MaxLineQuantity caps the units of a single cart line. Stored carts are clamped to it on load.
const MaxLineQuantity = 99

func clampQuantity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxLineQuantity:
		return MaxLineQuantity
	default:
		return n
	}
}

// NewCartItem builds a single-unit cart line for the product, preselecting its first size.
func NewCartItem(p Product, now time.Time) CartItem {
	sizes := p.Sizes()
	item := CartItem{
		ID:           strings.TrimSpace(p.ID),
		Name:         p.Name,
		Price:        p.Price,
		Image:        p.ImageURL,
		Quantity:     1,
		Sizes:        sizes,
		Category:     p.Category,
		SKU:          p.SKU,
		IsOutOfStock: p.IsOutOfStock,
		AddedAt:      now.UTC(),
	}
	if p.RegularPrice != nil {
		rp := *p.RegularPrice
		item.RegularPrice = &rp
	}
	item.SelectedSizes = ResizeSelectedSizes(nil, sizes, 1)
	return item
}

// ResizeSelectedSizes grows or shrinks selected to n entries. New slots take the first offered size.
// Items without sizes never carry selections.
func ResizeSelectedSizes(selected, sizes []string, n int) []string {
	if len(sizes) == 0 {
		return []string{}
	}
	if n < 0 {
		n = 0
	}
	if n > MaxLineQuantity {
		n = MaxLineQuantity
	}
	out := make([]string, 0, n)
	for i := 0; i < n && i < len(selected); i++ {
		out = append(out, selected[i])
	}
	for len(out) < n {
		out = append(out, sizes[0])
	}
	return out
}

// Index returns the position of the item with id.
func (c *Cart) Index(id string) int {
	id = strings.TrimSpace(id)
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Item returns a copy of the item with id.
func (c *Cart) Item(id string) (CartItem, bool) {
	idx := c.Index(id)
	if idx < 0 {
		return CartItem{}, false
	}
	return c.Items[idx], true
}

// Add increments the quantity of an existing line by one or appends item as a new line.
// A line already at MaxLineQuantity is left unchanged and ErrQuantityTooLarge is returned.
func (c *Cart) Add(item CartItem) (CartItem, error) {
	if idx := c.Index(item.ID); idx >= 0 {
		existing := &c.Items[idx]
		if existing.Quantity >= MaxLineQuantity {
			return *existing, ErrQuantityTooLarge
		}
		existing.Quantity++
		existing.SelectedSizes = ResizeSelectedSizes(existing.SelectedSizes, existing.Sizes, existing.Quantity)
		return *existing, nil
	}
	item.ID = strings.TrimSpace(item.ID)
	item.Quantity = 1
	item.Sizes = append([]string(nil), item.Sizes...)
	item.SelectedSizes = ResizeSelectedSizes(item.SelectedSizes, item.Sizes, 1)
	c.Items = append(c.Items, item)
	return item, nil
}

// SetQuantity resizes the line to n units. Values below one leave the cart unchanged and report false;
// values above MaxLineQuantity are rejected.
func (c *Cart) SetQuantity(id string, n int) (bool, error) {
	if n < 1 {
		return false, nil
	}
	if n > MaxLineQuantity {
		return false, ErrQuantityTooLarge
	}
	idx := c.Index(id)
	if idx < 0 {
		return false, ErrCartItemNotFound
	}
	item := &c.Items[idx]
	item.Quantity = n
	item.SelectedSizes = ResizeSelectedSizes(item.SelectedSizes, item.Sizes, n)
	return true, nil
}

// SetSelectedSize changes the size chosen for one unit of a line.
func (c *Cart) SetSelectedSize(id string, index int, size string) error {
	idx := c.Index(id)
	if idx < 0 {
		return ErrCartItemNotFound
	}
	item := &c.Items[idx]
	if index < 0 || index >= len(item.SelectedSizes) {
		return ErrSizeSlotOutOfRange
	}
	size = strings.TrimSpace(size)
	if !contains(item.Sizes, size) {
		return ErrSizeNotOffered
	}
	item.SelectedSizes[index] = size
	return nil
}

// Remove drops the line with id and reports whether it existed.
func (c *Cart) Remove(id string) bool {
	idx := c.Index(id)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Units sums quantities across all lines.
func (c Cart) Units() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// CheckoutItems returns the lines eligible for checkout. A positive limit keeps only the first limit lines.
func (c Cart) CheckoutItems(limit int) []CartItem {
	items := c.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return CloneCartItems(items)
}

// HasExcess reports whether the cart holds more lines than a positive checkout limit allows.
func (c Cart) HasExcess(limit int) bool {
	return limit > 0 && len(c.Items) > limit
}

// Total sums price*quantity over the lines eligible for checkout.
func (c Cart) Total(limit int) float64 {
	return SumItems(c.CheckoutItems(limit))
}

// SumItems sums price*quantity rounded to cents.
func SumItems(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return math.Round(total*100) / 100
}

// Normalize repairs lines loaded from storage: blank ids are dropped, later duplicates merge into the
// first occurrence, quantities are at least one and selections match quantities.
func (c *Cart) Normalize() {
	if len(c.Items) == 0 {
		c.Items = nil
		return
	}
	out := make([]CartItem, 0, len(c.Items))
	seen := make(map[string]int, len(c.Items))
	for _, item := range c.Items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			continue
		}
		item.Quantity = clampQuantity(item.Quantity)
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			item.Price = 0
		}
		if item.Sizes == nil {
			item.Sizes = []string{}
		}
		if pos, ok := seen[item.ID]; ok {
			merged := &out[pos]
			merged.Quantity = clampQuantity(merged.Quantity + item.Quantity)
			merged.SelectedSizes = append(merged.SelectedSizes, item.SelectedSizes...)
			merged.SelectedSizes = ResizeSelectedSizes(merged.SelectedSizes, merged.Sizes, merged.Quantity)
			continue
		}
		item.SelectedSizes = ResizeSelectedSizes(item.SelectedSizes, item.Sizes, item.Quantity)
		seen[item.ID] = len(out)
		out = append(out, item)
	}
	c.Items = out
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	return Cart{Items: CloneCartItems(c.Items)}
}

// CloneCartItems deep copies items so callers can mutate the result freely.
func CloneCartItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, item := range items {
		item.Sizes = append([]string(nil), item.Sizes...)
		item.SelectedSizes = append([]string(nil), item.SelectedSizes...)
		if item.RegularPrice != nil {
			rp := *item.RegularPrice
			item.RegularPrice = &rp
		}
		out[i] = item
	}
	return out
}
