package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

// CartHandlers exposes the session-scoped storefront cart.
type CartHandlers struct {
	carts     services.CartService
	localizer *i18n.Localizer
}

const maxCartBodySize = 4 * 1024

// NewCartHandlers constructs cart handlers. Requests must carry a session attached by session.Middleware.
func NewCartHandlers(carts services.CartService, localizer *i18n.Localizer) *CartHandlers {
	return &CartHandlers{carts: carts, localizer: localizer}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{itemId}", h.setQuantity)
	r.Put("/items/{itemId}/sizes/{index}", h.setSize)
	r.Delete("/items/{itemId}", h.removeItem)
	r.Post("/handoff", h.handoff)
}

type addCartItemRequest struct {
	Category  string `json:"category"`
	ProductID string `json:"productId"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type setSizeRequest struct {
	Size string `json:"size"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	view, err := h.carts.View(r.Context(), namespace)
	h.respond(w, r, view, err)
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !decodeJSONBody(w, r, maxCartBodySize, &req) {
		return
	}
	view, err := h.carts.AddItem(r.Context(), services.AddCartItemCommand{
		Namespace: namespace,
		Category:  req.Category,
		ProductID: req.ProductID,
	})
	h.respond(w, r, view, err)
}

func (h *CartHandlers) setQuantity(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	var req setQuantityRequest
	if !decodeJSONBody(w, r, maxCartBodySize, &req) {
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError(httpx.CodeInvalidRequest, "quantity is required", http.StatusBadRequest))
		return
	}
	view, err := h.carts.SetQuantity(r.Context(), services.SetCartQuantityCommand{
		Namespace: namespace,
		ItemID:    chi.URLParam(r, "itemId"),
		Quantity:  *req.Quantity,
	})
	h.respond(w, r, view, err)
}

func (h *CartHandlers) setSize(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError(httpx.CodeInvalidRequest, "size index must be an integer", http.StatusBadRequest))
		return
	}
	var req setSizeRequest
	if !decodeJSONBody(w, r, maxCartBodySize, &req) {
		return
	}
	view, err := h.carts.SetSelectedSize(r.Context(), services.SetCartSizeCommand{
		Namespace: namespace,
		ItemID:    chi.URLParam(r, "itemId"),
		Index:     index,
		Size:      req.Size,
	})
	h.respond(w, r, view, err)
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	view, err := h.carts.RemoveItem(r.Context(), namespace, chi.URLParam(r, "itemId"))
	h.respond(w, r, view, err)
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), namespace); err != nil {
		writeCartError(r.Context(), w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) handoff(w http.ResponseWriter, r *http.Request) {
	namespace, ok := h.begin(w, r)
	if !ok {
		return
	}
	view, err := h.carts.Handoff(r.Context(), namespace)
	h.respond(w, r, view, err)
}

func (h *CartHandlers) begin(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	if h.carts == nil {
		writeServiceUnavailable(ctx, w, "cart")
		return "", false
	}
	namespace, ok := cartNamespace(ctx)
	if !ok {
		writeSessionRequired(ctx, w)
		return "", false
	}
	return namespace, true
}

func (h *CartHandlers) respond(w http.ResponseWriter, r *http.Request, view services.CartView, err error) {
	if err != nil {
		writeCartError(r.Context(), w, err)
		return
	}
	l := labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(l, view)})
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "cart item not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", "product is not available", http.StatusConflict))
	case errors.Is(err, services.ErrCartStorageQuota):
		httpx.WriteError(ctx, w, httpx.NewError("cart_storage_full", "cart could not be saved", http.StatusInsufficientStorage))
	case errors.Is(err, services.ErrCartUnavailable):
		writeServiceUnavailable(ctx, w, "cart")
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to update cart", http.StatusInternalServerError))
	}
}
