package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
)

func TestOrderServiceListOrders(t *testing.T) {
	repo := &stubOrderRepo{
		listFn: func(context.Context) ([]domain.Order, error) {
			return []domain.Order{{ID: "o2"}, {ID: "o1"}}, nil
		},
	}
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	require.NoError(t, err)

	orders, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Equal(t, "o2", orders[0].ID)

	repo.listFn = func(context.Context) ([]domain.Order, error) {
		return nil, stubRepoError{unavailable: true}
	}
	_, err = svc.ListOrders(context.Background())
	require.ErrorIs(t, err, ErrOrderUnavailable)
}

func TestOrderServiceUpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus domain.OrderStatus
	repo := &stubOrderRepo{
		statusFn: func(_ context.Context, id string, status domain.OrderStatus) error {
			gotID, gotStatus = id, status
			return nil
		},
	}
	logs := &logRecorder{}
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo, Logger: logs.log})
	require.NoError(t, err)
	ctx := context.Background()

	status, err := svc.UpdateStatus(ctx, " o1 ", "Processing")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusProcessing, status)
	require.Equal(t, "o1", gotID)
	require.Equal(t, domain.OrderStatusProcessing, gotStatus)
	require.Equal(t, 1, logs.count("order.status.updated"))

	_, err = svc.UpdateStatus(ctx, "o1", "shipped")
	require.ErrorIs(t, err, ErrOrderInvalidInput)
	_, err = svc.UpdateStatus(ctx, "", domain.OrderStatusCompleted)
	require.ErrorIs(t, err, ErrOrderInvalidInput)

	repo.statusFn = func(context.Context, string, domain.OrderStatus) error {
		return stubRepoError{notFound: true}
	}
	_, err = svc.UpdateStatus(ctx, "o9", domain.OrderStatusCompleted)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderServiceDeleteRequiresConfirmation(t *testing.T) {
	deleted := 0
	repo := &stubOrderRepo{
		deleteFn: func(context.Context, string) error {
			deleted++
			return nil
		},
	}
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteOrder(ctx, "o1", false), ErrOrderConfirmationRequired)
	require.Zero(t, deleted)
	require.NoError(t, svc.DeleteOrder(ctx, "o1", true))
	require.Equal(t, 1, deleted)
	require.ErrorIs(t, svc.DeleteOrder(ctx, " ", true), ErrOrderInvalidInput)
}

func TestOrderServiceWatchOrdersStopsWithContext(t *testing.T) {
	repo := &stubOrderRepo{
		watchFn: func(ctx context.Context, fn func([]domain.Order) error) error {
			if err := fn([]domain.Order{{ID: "o1"}}); err != nil {
				return err
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var snapshots [][]Order
	err = svc.WatchOrders(ctx, func(orders []Order) error {
		snapshots = append(snapshots, orders)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
}

func TestOrderServiceWatchOrdersSurfacesFailures(t *testing.T) {
	stop := errors.New("client gone")
	repo := &stubOrderRepo{
		watchFn: func(_ context.Context, fn func([]domain.Order) error) error {
			return fn(nil)
		},
	}
	svc, err := NewOrderService(OrderServiceDeps{Orders: repo})
	require.NoError(t, err)

	err = svc.WatchOrders(context.Background(), func([]Order) error { return stop })
	require.Equal(t, stop, err)

	repo.watchFn = func(context.Context, func([]domain.Order) error) error {
		return stubRepoError{unavailable: true}
	}
	err = svc.WatchOrders(context.Background(), func([]Order) error { return nil })
	require.ErrorIs(t, err, ErrOrderUnavailable)

	require.ErrorIs(t, svc.WatchOrders(context.Background(), nil), ErrOrderInvalidInput)
}
