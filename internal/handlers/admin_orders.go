package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/requestctx"
	"github.com/ramitaha13/KamelStore/internal/services"
)

const maxStatusBodySize = 1024

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeServiceUnavailable(ctx, w, "order")
		return
	}
	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": buildOrderList(h.labels(r), orders)})
}

// streamOrders pushes the full ordered list as a server-sent "orders" event on every change until the
// client disconnects.
func (h *AdminHandlers) streamOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeServiceUnavailable(ctx, w, "order")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("streaming_unsupported", "streaming is not supported", http.StatusInternalServerError))
		return
	}

	// The server write timeout would otherwise cut the stream.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var mu sync.Mutex
	send := func(frame string) error {
		mu.Lock()
		defer mu.Unlock()
		if _, err := fmt.Fprint(w, frame); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	labels := h.labels(r)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(watchCtx)

	g.Go(func() error {
		defer cancel()
		return h.orders.WatchOrders(gctx, func(orders []services.Order) error {
			frame, err := sseFrame("orders", map[string]any{"items": buildOrderList(labels, orders)})
			if err != nil {
				return err
			}
			return send(frame)
		})
	})
	g.Go(func() error {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := send(": ping\n\n"); err != nil {
					return err
				}
			}
		}
	})

	err := g.Wait()
	if err == nil || ctx.Err() != nil {
		return
	}
	requestctx.Logger(ctx).Warn("order stream stopped", zap.Error(err))
	if frame, ferr := sseFrame("error", map[string]any{"error": "orders_unavailable", "retryable": true}); ferr == nil {
		_ = send(frame)
	}
}

func (h *AdminHandlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeServiceUnavailable(ctx, w, "order")
		return
	}
	var req statusRequest
	if !decodeJSONBody(w, r, maxStatusBodySize, &req) {
		return
	}
	status, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "orderId"), domain.OrderStatus(req.Status))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	l := h.labels(r)
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"id":          chi.URLParam(r, "orderId"),
		"status":      string(status),
		"statusLabel": l.text(orderStatusLabels[status]),
	})
}

func (h *AdminHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeServiceUnavailable(ctx, w, "order")
		return
	}
	if err := h.orders.DeleteOrder(ctx, chi.URLParam(r, "orderId"), confirmed(r)); err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sseFrame(event string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data), nil
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConfirmationRequired):
		writeConfirmationRequired(ctx, w, "order")
	case errors.Is(err, services.ErrOrderUnavailable):
		writeServiceUnavailable(ctx, w, "order")
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order", http.StatusInternalServerError))
	}
}
