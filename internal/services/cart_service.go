package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

// Storage keys shared with the storefront. Their spelling is part of the stored data contract.
const (
	CartKey      = "yourcart"
	HandoffKey   = "Yourinvitation"
	LastOrderKey = "lastOrder"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartCatalogRequired    = errors.New("cart service: catalog is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the cart line or snapshot does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartProductUnavailable indicates the product cannot be added, because it is missing or out of stock.
var ErrCartProductUnavailable = errors.New("cart service: product unavailable")

// ErrCartStorageQuota indicates the cart could not be stored in any shape within the storage quota.
var ErrCartStorageQuota = errors.New("cart service: storage quota exceeded")

// ErrCartUnavailable indicates the cart storage backend cannot be reached.
var ErrCartUnavailable = errors.New("cart service: unavailable")

type productLocator interface {
	GetProduct(ctx context.Context, category, productID string) (Product, error)
	FindProduct(ctx context.Context, productID string) (Product, error)
}

// CartServiceDeps wires the storage and catalog dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Catalog    productLocator
	// CheckoutLimit caps how many lines are checked out. Zero checks out the whole cart.
	CheckoutLimit int
	Clock         func() time.Time
	Logger        func(context.Context, string, map[string]any)
	Meter         metric.Meter
}

type cartService struct {
	repo      repositories.CartRepository
	catalog   productLocator
	limit     int
	now       func() time.Time
	logger    func(context.Context, string, map[string]any)
	fallbacks metric.Int64Counter
}

var _ CartService = (*cartService)(nil)

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Catalog == nil {
		return nil, errCartCatalogRequired
	}
	if deps.CheckoutLimit < 0 {
		return nil, errors.New("cart service: checkout limit must not be negative")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter("github.com/ramitaha13/KamelStore/internal/services")
	}
	fallbacks, err := meter.Int64Counter(
		"kamel.cart.storage.fallbacks",
		metric.WithDescription("Cart writes that fell back to a smaller stored shape"),
	)
	if err != nil {
		return nil, fmt.Errorf("cart service: create fallback counter: %w", err)
	}

	return &cartService{
		repo:      deps.Repository,
		catalog:   deps.Catalog,
		limit:     deps.CheckoutLimit,
		now:       func() time.Time { return clock().UTC() },
		logger:    logger,
		fallbacks: fallbacks,
	}, nil
}

func (s *cartService) View(ctx context.Context, namespace string) (CartView, error) {
	cart, err := s.load(ctx, namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	return s.view(cart), nil
}

func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (CartView, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" || strings.TrimSpace(cmd.Category) == "" {
		return CartView{}, fmt.Errorf("%w: category and product id are required", ErrCartInvalidInput)
	}
	product, err := s.catalog.GetProduct(ctx, cmd.Category, productID)
	if err != nil {
		return CartView{}, translateCatalogErrorForCart(err)
	}
	if product.IsOutOfStock {
		return CartView{}, fmt.Errorf("%w: %s is out of stock", ErrCartProductUnavailable, productID)
	}

	cart, err := s.load(ctx, cmd.Namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	item, err := cart.Add(domain.NewCartItem(product, s.now()))
	if err != nil {
		return CartView{}, translateCartMutationError(err)
	}
	shape, err := s.saveCart(ctx, cmd.Namespace, cart.Items)
	if err != nil {
		return CartView{}, err
	}
	s.logger(ctx, "cart.item.added", map[string]any{"productId": item.ID, "quantity": item.Quantity})
	return s.viewStored(cart, shape), nil
}

func (s *cartService) SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (CartView, error) {
	cart, err := s.load(ctx, cmd.Namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	changed, err := cart.SetQuantity(cmd.ItemID, cmd.Quantity)
	if err != nil {
		return CartView{}, translateCartMutationError(err)
	}
	if !changed {
		return s.view(cart), nil
	}
	shape, err := s.saveCart(ctx, cmd.Namespace, cart.Items)
	if err != nil {
		return CartView{}, err
	}
	return s.viewStored(cart, shape), nil
}

func (s *cartService) SetSelectedSize(ctx context.Context, cmd SetCartSizeCommand) (CartView, error) {
	cart, err := s.load(ctx, cmd.Namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	if err := cart.SetSelectedSize(cmd.ItemID, cmd.Index, cmd.Size); err != nil {
		return CartView{}, translateCartMutationError(err)
	}
	shape, err := s.saveCart(ctx, cmd.Namespace, cart.Items)
	if err != nil {
		return CartView{}, err
	}
	return s.viewStored(cart, shape), nil
}

func (s *cartService) RemoveItem(ctx context.Context, namespace, itemID string) (CartView, error) {
	cart, err := s.load(ctx, namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	if !cart.Remove(itemID) {
		return CartView{}, fmt.Errorf("%w: item %s", ErrCartNotFound, strings.TrimSpace(itemID))
	}
	shape, err := s.saveCart(ctx, namespace, cart.Items)
	if err != nil {
		return CartView{}, err
	}
	return s.viewStored(cart, shape), nil
}

// Clear drops the cart together with any checkout handoff taken from it.
func (s *cartService) Clear(ctx context.Context, namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return fmt.Errorf("%w: namespace is required", ErrCartInvalidInput)
	}
	if err := s.repo.Remove(ctx, namespace, CartKey, HandoffKey); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) Handoff(ctx context.Context, namespace string) (CartView, error) {
	cart, err := s.load(ctx, namespace, CartKey)
	if err != nil {
		return CartView{}, err
	}
	if cart.Empty() {
		return CartView{}, fmt.Errorf("%w: cart is empty", ErrCartInvalidInput)
	}
	items := cart.CheckoutItems(s.limit)
	shape, err := s.persist(ctx, namespace, HandoffKey, items)
	if err != nil {
		return CartView{}, err
	}
	if cart.HasExcess(s.limit) {
		// Written directly: saveCart would discard the handoff just stored.
		cartShape, err := s.persist(ctx, namespace, CartKey, items)
		if err != nil {
			return CartView{}, err
		}
		shape = max(shape, cartShape)
		s.logger(ctx, "cart.handoff.trimmed", map[string]any{"kept": len(items), "dropped": len(cart.Items) - len(items)})
		cart = domain.Cart{Items: items}
	}
	return s.viewStored(cart, shape), nil
}

func (s *cartService) CheckoutItems(ctx context.Context, namespace string) ([]CartItem, error) {
	handoff, err := s.load(ctx, namespace, HandoffKey)
	if err != nil {
		return nil, err
	}
	if !handoff.Empty() {
		return handoff.CheckoutItems(0), nil
	}
	cart, err := s.load(ctx, namespace, CartKey)
	if err != nil {
		return nil, err
	}
	return cart.CheckoutItems(s.limit), nil
}

func (s *cartService) CompleteCheckout(ctx context.Context, namespace string) error {
	if err := s.repo.Remove(ctx, namespace, CartKey, HandoffKey); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

type lastOrderRecord struct {
	OrderID     string          `json:"orderId"`
	TotalAmount float64         `json:"totalAmount"`
	OrderDate   time.Time       `json:"orderDate"`
	Status      string          `json:"status"`
	Items       json.RawMessage `json:"items"`
}

func (s *cartService) SaveLastOrder(ctx context.Context, namespace string, order Order) error {
	_, err := s.writeWithFallback(ctx, namespace, LastOrderKey, func(shape domain.CartShape) ([]byte, error) {
		items, err := domain.EncodeCart(order.Items, shape)
		if err != nil {
			return nil, err
		}
		return json.Marshal(lastOrderRecord{
			OrderID:     order.ID,
			TotalAmount: order.TotalAmount,
			OrderDate:   order.OrderDate.UTC(),
			Status:      string(order.Status),
			Items:       items,
		})
	})
	return err
}

func (s *cartService) LastOrder(ctx context.Context, namespace string) (LastOrderSnapshot, error) {
	raw, err := s.repo.Load(ctx, namespace, LastOrderKey)
	if err != nil {
		return LastOrderSnapshot{}, s.translateRepoError(err)
	}
	var record lastOrderRecord
	if len(raw) == 0 || json.Unmarshal(raw, &record) != nil || record.OrderID == "" {
		return LastOrderSnapshot{}, fmt.Errorf("%w: no recent order", ErrCartNotFound)
	}
	items := domain.ParseCart(record.Items)
	s.hydrate(ctx, &items)
	return LastOrderSnapshot{
		OrderID:     record.OrderID,
		Items:       items.Items,
		TotalAmount: record.TotalAmount,
		OrderDate:   record.OrderDate,
		Status:      domain.OrderStatus(record.Status),
	}, nil
}

func (s *cartService) viewStored(cart domain.Cart, shape domain.CartShape) CartView {
	v := s.view(cart)
	v.SizesNotSaved = shape == domain.CartShapeIDOnly && hasSelections(cart.Items)
	return v
}

func hasSelections(items []CartItem) bool {
	for _, item := range items {
		if len(item.SelectedSizes) > 0 {
			return true
		}
	}
	return false
}

func (s *cartService) view(cart domain.Cart) CartView {
	items := cart.Items
	if items == nil {
		items = []CartItem{}
	}
	return CartView{
		Items:          items,
		Total:          cart.Total(s.limit),
		Units:          cart.Units(),
		CheckoutLimit:  s.limit,
		HasExcessItems: cart.HasExcess(s.limit),
	}
}

// load reads a stored cart. Unparsable payloads load as an empty cart.
func (s *cartService) load(ctx context.Context, namespace, key string) (domain.Cart, error) {
	if strings.TrimSpace(namespace) == "" {
		return domain.Cart{}, fmt.Errorf("%w: namespace is required", ErrCartInvalidInput)
	}
	raw, err := s.repo.Load(ctx, namespace, key)
	if err != nil {
		return domain.Cart{}, s.translateRepoError(err)
	}
	cart := domain.ParseCart(raw)
	s.hydrate(ctx, &cart)
	return cart, nil
}

// hydrate restores display fields for lines stored in the id-only shape.
func (s *cartService) hydrate(ctx context.Context, cart *domain.Cart) {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Name != "" {
			continue
		}
		product, err := s.catalog.FindProduct(ctx, item.ID)
		if err != nil {
			s.logger(ctx, "cart.hydrate.failed", map[string]any{"productId": item.ID, "error": err.Error()})
			continue
		}
		restored := domain.NewCartItem(product, item.AddedAt)
		restored.Quantity = item.Quantity
		restored.SelectedSizes = domain.ResizeSelectedSizes(item.SelectedSizes, restored.Sizes, item.Quantity)
		*item = restored
	}
}

// saveCart stores the active cart and invalidates the checkout handoff, which no longer matches it.
func (s *cartService) saveCart(ctx context.Context, namespace string, items []CartItem) (domain.CartShape, error) {
	shape, err := s.persist(ctx, namespace, CartKey, items)
	if err != nil {
		return shape, err
	}
	if err := s.repo.Remove(ctx, namespace, HandoffKey); err != nil {
		return shape, s.translateRepoError(err)
	}
	return shape, nil
}

// persist writes items under key, shrinking the stored shape whenever the backend rejects the
// payload for exceeding its quota. It reports the shape that was stored.
func (s *cartService) persist(ctx context.Context, namespace, key string, items []CartItem) (domain.CartShape, error) {
	return s.writeWithFallback(ctx, namespace, key, func(shape domain.CartShape) ([]byte, error) {
		return domain.EncodeCart(items, shape)
	})
}

func (s *cartService) writeWithFallback(ctx context.Context, namespace, key string, encode func(domain.CartShape) ([]byte, error)) (domain.CartShape, error) {
	var lastErr error
	for _, shape := range domain.CartShapes() {
		payload, err := encode(shape)
		if err != nil {
			return shape, fmt.Errorf("%w: encode %s cart: %v", ErrCartUnavailable, shape, err)
		}
		err = s.repo.Save(ctx, namespace, key, payload)
		if err == nil {
			return shape, nil
		}
		if !errors.Is(err, repositories.ErrCartQuotaExceeded) {
			return shape, s.translateRepoError(err)
		}
		lastErr = err
		s.fallbacks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("key", key),
			attribute.String("shape", shape.String()),
		))
		s.logger(ctx, "cart.storage.fallback", map[string]any{
			"key":   key,
			"shape": shape.String(),
			"bytes": len(payload),
			"error": err.Error(),
		})
	}
	return domain.CartShapeIDOnly, fmt.Errorf("%w: %v", ErrCartStorageQuota, lastErr)
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var storageErr *repositories.CartStorageError
	if errors.As(err, &storageErr) && storageErr.Code == repositories.CartStorageInvalid {
		return fmt.Errorf("%w: %v", ErrCartInvalidInput, err)
	}
	return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
}

func translateCartMutationError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCartItemNotFound):
		return fmt.Errorf("%w: %v", ErrCartNotFound, err)
	case errors.Is(err, domain.ErrSizeSlotOutOfRange), errors.Is(err, domain.ErrSizeNotOffered),
		errors.Is(err, domain.ErrQuantityTooLarge):
		return fmt.Errorf("%w: %v", ErrCartInvalidInput, err)
	default:
		return err
	}
}

func translateCatalogErrorForCart(err error) error {
	switch {
	case errors.Is(err, ErrCatalogNotFound):
		return fmt.Errorf("%w: %v", ErrCartProductUnavailable, err)
	case errors.Is(err, ErrCatalogInvalidInput):
		return fmt.Errorf("%w: %v", ErrCartInvalidInput, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
}
