package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/services"
)

const maxProductBodySize = 8 << 20

type productRequest struct {
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	RegularSizes []string `json:"regularSizes"`
	ShoeSizes    []string `json:"shoeSizes"`
	PantsSizes   []string `json:"pantsSizes"`
	IsShoe       bool     `json:"isShoe"`
	IsPants      bool     `json:"isPants"`
	IsOutOfStock bool     `json:"isOutOfStock"`
	RegularPrice *float64 `json:"regularPrice"`
	SKU          string   `json:"sku"`
}

type uploadImageRequest struct {
	Category string `json:"category"`
	DataURI  string `json:"dataUri"`
}

var errNoEditableFields = errors.New("no editable fields provided")

func (h *AdminHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}
	products, err := h.products.ListProducts(ctx, chi.URLParam(r, "category"))
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": buildProductList(products)})
}

func (h *AdminHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}
	product, err := h.products.GetProduct(ctx, chi.URLParam(r, "category"), chi.URLParam(r, "productId"))
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}
	var req productRequest
	if !decodeJSONBody(w, r, maxProductBodySize, &req) {
		return
	}
	product, err := h.products.CreateProduct(ctx, services.CreateProductCommand{
		Category:     chi.URLParam(r, "category"),
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		Image:        req.Image,
		RegularSizes: req.RegularSizes,
		ShoeSizes:    req.ShoeSizes,
		PantsSizes:   req.PantsSizes,
		IsShoe:       req.IsShoe,
		IsPants:      req.IsPants,
		IsOutOfStock: req.IsOutOfStock,
		RegularPrice: req.RegularPrice,
		SKU:          req.SKU,
	})
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}
	body, err := readLimitedBody(r, maxProductBodySize)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.WriteError(ctx, w, httpx.NewError(httpx.CodePayloadTooLarge, "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
		return
	}
	patch, err := parseProductPatch(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
		return
	}
	product, err := h.products.UpdateProduct(ctx, services.UpdateProductCommand{
		Category:  chi.URLParam(r, "category"),
		ProductID: chi.URLParam(r, "productId"),
		Patch:     patch,
	})
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}
	err := h.products.DeleteProduct(ctx, services.DeleteProductCommand{
		Category:  chi.URLParam(r, "category"),
		ProductID: chi.URLParam(r, "productId"),
		Confirm:   confirmed(r),
	})
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadImage accepts either a raw image body (category from ?category=) or JSON {category, dataUri}.
func (h *AdminHandlers) uploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.products == nil {
		writeServiceUnavailable(ctx, w, "product")
		return
	}

	cmd := services.UploadImageCommand{Category: r.URL.Query().Get("category")}
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "image/") {
		data, err := io.ReadAll(io.LimitReader(r.Body, h.maxUpload+1))
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
			return
		}
		if int64(len(data)) > h.maxUpload {
			httpx.WriteError(ctx, w, httpx.NewError(httpx.CodePayloadTooLarge, "image exceeds allowed size", http.StatusRequestEntityTooLarge))
			return
		}
		cmd.Data = data
	} else {
		var req uploadImageRequest
		if !decodeJSONBody(w, r, h.maxUpload*2+defaultBodyLimit, &req) {
			return
		}
		if strings.TrimSpace(req.Category) != "" {
			cmd.Category = req.Category
		}
		cmd.DataURI = req.DataURI
	}

	url, err := h.products.UploadImage(ctx, cmd)
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"url": url})
}

func parseProductPatch(data []byte) (services.ProductPatch, error) {
	var patch services.ProductPatch
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return patch, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if len(raw) == 0 {
		return patch, errNoEditableFields
	}

	for key, value := range raw {
		if isJSONNull(value) {
			return patch, fmt.Errorf("%s must not be null", key)
		}
		var err error
		switch key {
		case "name":
			patch.Name, err = decodeField[string](key, value)
		case "price":
			patch.Price, err = decodeField[float64](key, value)
		case "regularPrice":
			patch.RegularPrice, err = decodeField[float64](key, value)
		case "description":
			patch.Description, err = decodeField[string](key, value)
		case "image":
			patch.ImageURL, err = decodeField[string](key, value)
		case "regularSizes":
			patch.RegularSizes, err = decodeField[[]string](key, value)
		case "shoeSizes":
			patch.ShoeSizes, err = decodeField[[]string](key, value)
		case "pantsSizes":
			patch.PantsSizes, err = decodeField[[]string](key, value)
		case "isShoe":
			patch.IsShoe, err = decodeField[bool](key, value)
		case "isPants":
			patch.IsPants, err = decodeField[bool](key, value)
		case "isOutOfStock":
			patch.IsOutOfStock, err = decodeField[bool](key, value)
		case "sku":
			patch.SKU, err = decodeField[string](key, value)
		default:
			return patch, fmt.Errorf("field %s cannot be updated", key)
		}
		if err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func decodeField[T any](key string, value json.RawMessage) (*T, error) {
	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		return nil, fmt.Errorf("%s has an invalid value", key)
	}
	return &out, nil
}

func isJSONNull(value json.RawMessage) bool {
	return strings.TrimSpace(string(value)) == "null"
}

func writeProductError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductConfirmationRequired):
		writeConfirmationRequired(ctx, w, "product")
	case errors.Is(err, services.ErrProductUnavailable):
		writeServiceUnavailable(ctx, w, "product")
	default:
		httpx.WriteError(ctx, w, httpx.NewError("product_error", "failed to process product", http.StatusInternalServerError))
	}
}
