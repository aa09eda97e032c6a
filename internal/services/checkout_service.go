package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/platform/textutil"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

var (
	// ErrCheckoutInvalidInput indicates the customer form failed validation. The wrapped error is a
	// *ValidationError listing the offending fields.
	ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")
	// ErrCheckoutEmptyCart indicates there is nothing to order.
	ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")
	// ErrCheckoutUnavailable indicates the order could not be stored. The cart is left intact and the
	// request may be retried.
	ErrCheckoutUnavailable = errors.New("checkout service: unavailable")
)

var (
	phonePattern = regexp.MustCompile(`^\d{10,12}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	maxCustomerFieldLength = 200
	maxNotesLength         = 2000
)

// ValidationError maps field names to message keys from the i18n catalog.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) add(field, key string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = key
	}
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
}

// CheckoutServiceDeps wires the collaborators for order placement.
type CheckoutServiceDeps struct {
	Cart     CartService
	Orders   repositories.OrderRepository
	Events   OrderEventPublisher
	Notifier OrderNotifier
	Clock    func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

type checkoutService struct {
	cart     CartService
	orders   repositories.OrderRepository
	events   OrderEventPublisher
	notifier OrderNotifier
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

var _ CheckoutService = (*checkoutService)(nil)

// NewCheckoutService constructs the checkout service. Events and Notifier are optional.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errors.New("checkout service: cart service is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &checkoutService{
		cart:     deps.Cart,
		orders:   deps.Orders,
		events:   deps.Events,
		notifier: deps.Notifier,
		now:      func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (Order, error) {
	info, verr := NormalizeCustomerInfo(cmd.CustomerInfo)
	if !verr.empty() {
		return Order{}, fmt.Errorf("%w: %w", ErrCheckoutInvalidInput, verr)
	}

	items, err := s.cart.CheckoutItems(ctx, cmd.Namespace)
	if err != nil {
		if errors.Is(err, ErrCartInvalidInput) {
			return Order{}, fmt.Errorf("%w: %v", ErrCheckoutInvalidInput, err)
		}
		return Order{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	items = domain.SanitizeItems(items)
	if len(items) == 0 {
		return Order{}, ErrCheckoutEmptyCart
	}

	order, err := s.orders.Insert(ctx, Order{
		CustomerInfo: info,
		Items:        items,
		TotalAmount:  domain.SumItems(items),
		Status:       domain.OrderStatusPending,
	})
	if err != nil {
		s.logger(ctx, "checkout.order.failed", map[string]any{"error": err.Error()})
		return Order{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = s.now()
	}

	if err := s.cart.CompleteCheckout(ctx, cmd.Namespace); err != nil {
		s.logger(ctx, "checkout.cart.clear_failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	}
	if err := s.cart.SaveLastOrder(ctx, cmd.Namespace, order); err != nil {
		s.logger(ctx, "checkout.last_order.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	}
	s.announce(ctx, order)

	s.logger(ctx, "checkout.order.placed", map[string]any{
		"orderId":     order.ID,
		"items":       len(order.Items),
		"totalAmount": order.TotalAmount,
	})
	return order, nil
}

func (s *checkoutService) LastOrder(ctx context.Context, namespace string) (LastOrderSnapshot, error) {
	return s.cart.LastOrder(ctx, namespace)
}

// announce publishes the order event and notifies the shop owner. Failures are logged only.
func (s *checkoutService) announce(ctx context.Context, order Order) {
	if s.events != nil {
		units := 0
		for _, item := range order.Items {
			units += item.Quantity
		}
		event := OrderPlacedEvent{
			OrderID:       order.ID,
			TotalAmount:   order.TotalAmount,
			Items:         len(order.Items),
			Units:         units,
			PaymentMethod: string(order.CustomerInfo.PaymentMethod),
			Town:          order.CustomerInfo.Town,
			PlacedAt:      order.OrderDate,
		}
		if _, err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger(ctx, "checkout.event.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
			s.logger(ctx, "checkout.notify.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
		}
	}
}

// NormalizeCustomerInfo trims and validates the checkout form. The returned error is nil when the
// form is valid.
func NormalizeCustomerInfo(in CustomerInfo) (CustomerInfo, *ValidationError) {
	out := CustomerInfo{
		Name:          textutil.SingleLine(in.Name, maxCustomerFieldLength),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		Location:      textutil.SingleLine(in.Location, maxCustomerFieldLength),
		Town:          textutil.SingleLine(in.Town, maxCustomerFieldLength),
		Email:         strings.TrimSpace(in.Email),
		Notes:         textutil.PlainText(in.Notes, maxNotesLength),
		PaymentMethod: domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod)))),
	}

	verr := &ValidationError{}
	if out.Name == "" {
		verr.add("name", i18n.MsgNameRequired)
	}
	switch {
	case out.PhoneNumber == "":
		verr.add("phoneNumber", i18n.MsgPhoneRequired)
	case !phonePattern.MatchString(out.PhoneNumber):
		verr.add("phoneNumber", i18n.MsgPhoneInvalid)
	}
	if out.Location == "" {
		verr.add("location", i18n.MsgLocationRequired)
	}
	if out.Town == "" {
		verr.add("town", i18n.MsgTownRequired)
	}
	if out.Email != "" && !emailPattern.MatchString(out.Email) {
		verr.add("email", i18n.MsgEmailInvalid)
	}
	if out.PaymentMethod == "" {
		out.PaymentMethod = domain.PaymentMethodCash
	}
	if !out.PaymentMethod.Valid() {
		verr.add("paymentMethod", i18n.MsgPaymentInvalid)
	}
	if verr.empty() {
		return out, nil
	}
	return out, verr
}
