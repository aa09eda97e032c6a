package services

import (
	"context"
	"time"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product            = domain.Product
	ProductPatch       = domain.ProductPatch
	Category           = domain.Category
	Cart               = domain.Cart
	CartItem           = domain.CartItem
	Order              = domain.Order
	OrderStatus        = domain.OrderStatus
	CustomerInfo       = domain.CustomerInfo
	ContactMessage     = domain.ContactMessage
	ContactStatus      = domain.ContactStatus
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService exposes the storefront catalog.
type CatalogService interface {
	Categories(ctx context.Context) []Category
	ListProducts(ctx context.Context, category string) ([]Product, error)
	GetProduct(ctx context.Context, category, productID string) (Product, error)
	// FindProduct searches every category for the product id.
	FindProduct(ctx context.Context, productID string) (Product, error)
}

// CartService manages the shopper's cart stored under a namespace, usually the session id.
type CartService interface {
	View(ctx context.Context, namespace string) (CartView, error)
	AddItem(ctx context.Context, cmd AddCartItemCommand) (CartView, error)
	SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (CartView, error)
	SetSelectedSize(ctx context.Context, cmd SetCartSizeCommand) (CartView, error)
	RemoveItem(ctx context.Context, namespace, itemID string) (CartView, error)
	Clear(ctx context.Context, namespace string) error
	// Handoff writes the checkout subset to the handoff key. With a checkout limit the active cart is
	// trimmed to the same subset.
	Handoff(ctx context.Context, namespace string) (CartView, error)
	// CheckoutItems returns the handoff items when present, otherwise the checkout subset of the cart.
	CheckoutItems(ctx context.Context, namespace string) ([]CartItem, error)
	// CompleteCheckout removes the active cart and the handoff.
	CompleteCheckout(ctx context.Context, namespace string) error
	// SaveLastOrder stores a snapshot of a placed order using the storage fallback chain.
	SaveLastOrder(ctx context.Context, namespace string, order Order) error
	LastOrder(ctx context.Context, namespace string) (LastOrderSnapshot, error)
}

// CheckoutService turns the cart into an order.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error)
	LastOrder(ctx context.Context, namespace string) (LastOrderSnapshot, error)
}

// AdminProductService backs the back-office product screens.
type AdminProductService interface {
	ListProducts(ctx context.Context, category string) ([]Product, error)
	GetProduct(ctx context.Context, category, productID string) (Product, error)
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error
	UploadImage(ctx context.Context, cmd UploadImageCommand) (string, error)
}

// OrderService backs order management.
type OrderService interface {
	ListOrders(ctx context.Context) ([]Order, error)
	// WatchOrders blocks, calling fn with the full ordered list on every change, until ctx ends.
	WatchOrders(ctx context.Context, fn func([]Order) error) error
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus) (OrderStatus, error)
	DeleteOrder(ctx context.Context, orderID string, confirm bool) error
}

// ContactService handles the public contact form and its admin inbox.
type ContactService interface {
	Submit(ctx context.Context, cmd SubmitContactCommand) (ContactMessage, error)
	ListMessages(ctx context.Context, status string) ([]ContactMessage, error)
	UpdateStatus(ctx context.Context, messageID string, status ContactStatus) (ContactStatus, error)
	DeleteMessage(ctx context.Context, messageID string, confirm bool) error
}

// AdminAuthService verifies back-office credentials.
type AdminAuthService interface {
	Authenticate(ctx context.Context, username, password string) (AdminIdentity, error)
}

// SystemService exposes health information.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// OrderEventPublisher announces placed orders to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) (string, error)
}

// OrderNotifier tells the shop owner about new orders.
type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order Order) error
}

// ImageStore turns uploaded image bytes or data URIs into the URL stored on a product.
type ImageStore interface {
	Store(ctx context.Context, category, imageID string, data []byte) (string, error)
	Normalize(ctx context.Context, category, imageID, value string) (string, error)
}

// Command and DTO definitions ------------------------------------------------

// CartView is the cart as presented to the shopper.
type CartView struct {
	Items []CartItem
	// Total covers the checkout subset.
	Total float64
	Units int
	// CheckoutLimit is zero when the whole cart is checked out.
	CheckoutLimit  int
	HasExcessItems bool
	// SizesNotSaved is set when the last write only fit the id-only shape, so chosen sizes were lost.
	SizesNotSaved bool
}

// LastOrderSnapshot is the confirmation data kept after checkout.
type LastOrderSnapshot struct {
	OrderID     string
	Items       []CartItem
	TotalAmount float64
	OrderDate   time.Time
	Status      OrderStatus
}

type AddCartItemCommand struct {
	Namespace string
	Category  string
	ProductID string
}

type SetCartQuantityCommand struct {
	Namespace string
	ItemID    string
	Quantity  int
}

type SetCartSizeCommand struct {
	Namespace string
	ItemID    string
	Index     int
	Size      string
}

type PlaceOrderCommand struct {
	Namespace    string
	CustomerInfo CustomerInfo
}

type CreateProductCommand struct {
	Category     string
	Name         string
	Price        float64
	Description  string
	Image        string
	RegularSizes []string
	ShoeSizes    []string
	PantsSizes   []string
	IsShoe       bool
	IsPants      bool
	IsOutOfStock bool
	RegularPrice *float64
	SKU          string
}

type UpdateProductCommand struct {
	Category  string
	ProductID string
	Patch     ProductPatch
}

type DeleteProductCommand struct {
	Category  string
	ProductID string
	Confirm   bool
}

type UploadImageCommand struct {
	Category string
	// Data holds raw image bytes. DataURI is used when Data is empty.
	Data    []byte
	DataURI string
}

type SubmitContactCommand struct {
	Name    string
	Email   string
	Phone   string
	Comment string
}

// AdminIdentity is the authenticated back-office user.
type AdminIdentity struct {
	Username string
}

// OrderPlacedEvent is published after a successful checkout.
type OrderPlacedEvent struct {
	OrderID       string    `json:"orderId"`
	TotalAmount   float64   `json:"totalAmount"`
	Items         int       `json:"items"`
	Units         int       `json:"units"`
	PaymentMethod string    `json:"paymentMethod"`
	Town          string    `json:"town"`
	PlacedAt      time.Time `json:"placedAt"`
}
