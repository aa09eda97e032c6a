package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

// CheckoutHandlers submits orders from the session cart.
type CheckoutHandlers struct {
	checkout  services.CheckoutService
	localizer *i18n.Localizer
}

const maxCheckoutBodySize = 8 * 1024

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout services.CheckoutService, localizer *i18n.Localizer) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout, localizer: localizer}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Get("/last-order", h.lastOrder)
}

type placeOrderRequest struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phoneNumber"`
	Location      string `json:"location"`
	Town          string `json:"town"`
	Email         string `json:"email"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeServiceUnavailable(ctx, w, "checkout")
		return
	}
	namespace, ok := cartNamespace(ctx)
	if !ok {
		writeSessionRequired(ctx, w)
		return
	}
	var req placeOrderRequest
	if !decodeJSONBody(w, r, maxCheckoutBodySize, &req) {
		return
	}

	l := labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
	order, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		Namespace: namespace,
		CustomerInfo: services.CustomerInfo{
			Name:          req.Name,
			PhoneNumber:   req.PhoneNumber,
			Location:      req.Location,
			Town:          req.Town,
			Email:         req.Email,
			Notes:         req.Notes,
			PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		},
	})
	if err != nil {
		writeCheckoutError(ctx, w, l, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"order":   buildOrderPayload(l, order),
		"message": l.text(i18n.MsgOrderPlaced),
	})
}

func (h *CheckoutHandlers) lastOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		writeServiceUnavailable(ctx, w, "checkout")
		return
	}
	namespace, ok := cartNamespace(ctx)
	if !ok {
		writeSessionRequired(ctx, w)
		return
	}
	snapshot, err := h.checkout.LastOrder(ctx, namespace)
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("last_order_not_found", "no recent order for this session", http.StatusNotFound))
			return
		}
		writeCartError(ctx, w, err)
		return
	}
	l := labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
	writeJSONResponse(w, http.StatusOK, map[string]any{"lastOrder": buildLastOrderPayload(l, snapshot)})
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, l labeler, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "checkout form is invalid", http.StatusBadRequest).
			WithDetails(map[string]any{"fields": localizeFields(l, verr.Fields)}))
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart is empty", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "order could not be placed; please retry", http.StatusServiceUnavailable).
			WithDetails(map[string]any{"retryable": true}))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to place order", http.StatusInternalServerError))
	}
}

func localizeFields(l labeler, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for field, key := range fields {
		out[field] = l.text(key)
	}
	return out
}
