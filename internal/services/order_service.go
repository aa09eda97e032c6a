package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates a blank id or unknown status.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("order service: not found")
	// ErrOrderConfirmationRequired indicates a delete was requested without confirmation.
	ErrOrderConfirmationRequired = errors.New("order service: confirmation required")
	// ErrOrderUnavailable indicates the order store cannot be reached.
	ErrOrderUnavailable = errors.New("order service: unavailable")
)

var orderErrors = repoErrorMapping{
	notFound:    ErrOrderNotFound,
	invalid:     ErrOrderInvalidInput,
	unavailable: ErrOrderUnavailable,
}

// OrderServiceDeps wires the order store.
type OrderServiceDeps struct {
	Orders repositories.OrderRepository
	Logger func(context.Context, string, map[string]any)
}

type orderService struct {
	orders repositories.OrderRepository
	logger func(context.Context, string, map[string]any)
}

var _ OrderService = (*orderService)(nil)

// NewOrderService constructs the order management service.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &orderService{orders: deps.Orders, logger: logger}, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, orderErrors.translate(err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// WatchOrders returns nil when ctx ends. Errors returned by fn are passed back unchanged.
func (s *orderService) WatchOrders(ctx context.Context, fn func([]Order) error) error {
	if fn == nil {
		return fmt.Errorf("%w: watch callback is required", ErrOrderInvalidInput)
	}
	var callbackErr error
	err := s.orders.Watch(ctx, func(orders []Order) error {
		if orders == nil {
			orders = []Order{}
		}
		if err := fn(orders); err != nil {
			callbackErr = err
			return err
		}
		return nil
	})
	switch {
	case err == nil, ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil
	case callbackErr != nil && errors.Is(err, callbackErr):
		return callbackErr
	}
	return orderErrors.translate(err)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status OrderStatus) (OrderStatus, error) {
	orderID = strings.TrimSpace(orderID)
	status = domain.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if orderID == "" {
		return "", fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, status)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return "", orderErrors.translate(err)
	}
	s.logger(ctx, "order.status.updated", map[string]any{"orderId": orderID, "status": string(status)})
	return status, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID string, confirm bool) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !confirm {
		return ErrOrderConfirmationRequired
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return orderErrors.translate(err)
	}
	s.logger(ctx, "order.deleted", map[string]any{"orderId": orderID})
	return nil
}
