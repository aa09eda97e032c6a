package domain

import (
	"time"
)

// SizeKind identifies which size catalog a product draws its labels from.
type SizeKind string

const (
	// SizeKindRegular covers garments sized XS..XXXL.
	SizeKindRegular SizeKind = "regular"
	// SizeKindShoe covers footwear sized 39..45.
	SizeKindShoe SizeKind = "shoe"
	// SizeKindPants covers trousers sized by waist 29..38.
	SizeKindPants SizeKind = "pants"
)

// Product is a catalog entry stored in one of the per-category collections.
type Product struct {
	ID           string
	Category     string
	Name         string
	Price        float64
	Description  string
	ImageURL     string
	RegularSizes []string
	ShoeSizes    []string
	PantsSizes   []string
	IsShoe       bool
	IsPants      bool
	IsOutOfStock bool
	RegularPrice *float64
	SKU          string
	CreatedAt    time.Time
}

// Kind reports the size catalog that applies to the product.
func (p Product) Kind() SizeKind {
	switch {
	case p.IsShoe:
		return SizeKindShoe
	case p.IsPants:
		return SizeKindPants
	default:
		return SizeKindRegular
	}
}

// Sizes returns the size labels a shopper may choose from when adding the product to the cart.
func (p Product) Sizes() []string {
	var sizes []string
	switch p.Kind() {
	case SizeKindShoe:
		sizes = p.ShoeSizes
	case SizeKindPants:
		sizes = p.PantsSizes
	default:
		sizes = p.RegularSizes
	}
	return append([]string(nil), sizes...)
}

// ProductPatch lists the fields an admin edit may change. Nil fields are left untouched.
type ProductPatch struct {
	Name         *string
	Price        *float64
	Description  *string
	ImageURL     *string
	RegularSizes *[]string
	ShoeSizes    *[]string
	PantsSizes   *[]string
	IsShoe       *bool
	IsPants      *bool
	IsOutOfStock *bool
	RegularPrice *float64
	SKU          *string
}

// Empty reports whether the patch carries no changes.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.ImageURL == nil &&
		p.RegularSizes == nil && p.ShoeSizes == nil && p.PantsSizes == nil &&
		p.IsShoe == nil && p.IsPants == nil && p.IsOutOfStock == nil &&
		p.RegularPrice == nil && p.SKU == nil
}

// Apply returns a copy of product with the patch applied.
func (p ProductPatch) Apply(product Product) Product {
	out := product
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}
	if p.RegularSizes != nil {
		out.RegularSizes = append([]string(nil), (*p.RegularSizes)...)
	}
	if p.ShoeSizes != nil {
		out.ShoeSizes = append([]string(nil), (*p.ShoeSizes)...)
	}
	if p.PantsSizes != nil {
		out.PantsSizes = append([]string(nil), (*p.PantsSizes)...)
	}
	if p.IsShoe != nil {
		out.IsShoe = *p.IsShoe
	}
	if p.IsPants != nil {
		out.IsPants = *p.IsPants
	}
	if p.IsOutOfStock != nil {
		out.IsOutOfStock = *p.IsOutOfStock
	}
	if p.RegularPrice != nil {
		value := *p.RegularPrice
		out.RegularPrice = &value
	}
	if p.SKU != nil {
		out.SKU = *p.SKU
	}
	return out
}

// CartItem is a single product line in a shopper's cart.
//
// For items that offer sizes, len(SelectedSizes) always equals Quantity.
type CartItem struct {
	ID            string
	Name          string
	Price         float64
	Image         string
	Quantity      int
	Sizes         []string
	SelectedSizes []string

	Category     string
	SKU          string
	RegularPrice *float64
	IsOutOfStock bool
	AddedAt      time.Time
}

// Cart is an ordered list of items keyed by product id.
type Cart struct {
	Items []CartItem
}

// PaymentMethod is the offline payment option chosen at checkout.
type PaymentMethod string

const (
	// PaymentMethodCash pays on delivery.
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodBank pays by bank transfer.
	PaymentMethodBank PaymentMethod = "bank"
)

// Valid reports whether the method is one of the supported options.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodBank
}

// OrderStatus tracks back-office progress on an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Valid reports whether the status is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted:
		return true
	}
	return false
}

// CustomerInfo is the delivery and contact form submitted at checkout.
type CustomerInfo struct {
	Name          string
	PhoneNumber   string
	Location      string
	Town          string
	Email         string
	Notes         string
	PaymentMethod PaymentMethod
}

// Order is a submitted checkout.
type Order struct {
	ID           string
	CustomerInfo CustomerInfo
	Items        []CartItem
	TotalAmount  float64
	OrderDate    time.Time
	Status       OrderStatus
}

// ContactStatus tracks handling of a contact form submission.
type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in-progress"
	ContactStatusResolved   ContactStatus = "resolved"
)

// Valid reports whether the status is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusResolved:
		return true
	}
	return false
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Comment   string
	Timestamp time.Time
	Status    ContactStatus
}

// AdminCredential is the single back-office login record.
type AdminCredential struct {
	Username string
	Password string
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
