package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

// CatalogHandlers serves the public product listings.
type CatalogHandlers struct {
	catalog   services.CatalogService
	localizer *i18n.Localizer
}

// NewCatalogHandlers constructs catalog handlers.
func NewCatalogHandlers(catalog services.CatalogService, localizer *i18n.Localizer) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, localizer: localizer}
}

// Routes wires the /catalog endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/categories", h.listCategories)
	r.Get("/{category}", h.listProducts)
	r.Get("/{category}/{productId}", h.getProduct)
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeServiceUnavailable(ctx, w, "catalog")
		return
	}
	l := labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
	categories := h.catalog.Categories(ctx)
	items := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		items = append(items, buildCategoryPayload(l, c))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": items})
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeServiceUnavailable(ctx, w, "catalog")
		return
	}
	products, err := h.catalog.ListProducts(ctx, chi.URLParam(r, "category"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": buildProductList(products)})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeServiceUnavailable(ctx, w, "catalog")
		return
	}
	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "category"), chi.URLParam(r, "productId"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogUnavailable):
		writeServiceUnavailable(ctx, w, "catalog")
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load catalog", http.StatusInternalServerError))
	}
}
