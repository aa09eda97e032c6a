package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oklog/ulid/v2"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/storage"
	"github.com/ramitaha13/KamelStore/internal/platform/textutil"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

var (
	// ErrProductInvalidInput indicates the product form failed validation.
	ErrProductInvalidInput = errors.New("product service: invalid input")
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("product service: not found")
	// ErrProductConfirmationRequired indicates a destructive action was requested without confirmation.
	ErrProductConfirmationRequired = errors.New("product service: confirmation required")
	// ErrProductUnavailable indicates the product store cannot be reached.
	ErrProductUnavailable = errors.New("product service: unavailable")
)

var productErrors = repoErrorMapping{
	notFound:    ErrProductNotFound,
	invalid:     ErrProductInvalidInput,
	unavailable: ErrProductUnavailable,
}

const (
	maxProductNameLength        = 200
	maxProductDescriptionLength = 4000
	maxProductSKULength         = 64
)

// AdminProductServiceDeps wires the product store and image handling.
type AdminProductServiceDeps struct {
	Products    repositories.ProductRepository
	Images      ImageStore
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type adminProductService struct {
	products repositories.ProductRepository
	images   ImageStore
	newID    func() string
	logger   func(context.Context, string, map[string]any)
}

var _ AdminProductService = (*adminProductService)(nil)

// NewAdminProductService constructs the back-office product service.
func NewAdminProductService(deps AdminProductServiceDeps) (AdminProductService, error) {
	if deps.Products == nil {
		return nil, errors.New("product service: product repository is required")
	}
	if deps.Images == nil {
		return nil, errors.New("product service: image store is required")
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &adminProductService{
		products: deps.Products,
		images:   deps.Images,
		newID:    idGen,
		logger:   logger,
	}, nil
}

func (s *adminProductService) ListProducts(ctx context.Context, category string) ([]Product, error) {
	cat, err := lookupCategory(category, ErrProductInvalidInput)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, cat)
	if err != nil {
		return nil, productErrors.translate(err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *adminProductService) GetProduct(ctx context.Context, category, productID string) (Product, error) {
	cat, err := lookupCategory(category, ErrProductInvalidInput)
	if err != nil {
		return Product{}, err
	}
	return s.fresh(ctx, cat, productID)
}

func (s *adminProductService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error) {
	cat, err := lookupCategory(cmd.Category, ErrProductInvalidInput)
	if err != nil {
		return Product{}, err
	}
	product := Product{
		Name:         textutil.SingleLine(cmd.Name, maxProductNameLength),
		Price:        cmd.Price,
		Description:  textutil.PlainText(cmd.Description, maxProductDescriptionLength),
		RegularSizes: cmd.RegularSizes,
		ShoeSizes:    cmd.ShoeSizes,
		PantsSizes:   cmd.PantsSizes,
		IsShoe:       cmd.IsShoe,
		IsPants:      cmd.IsPants,
		IsOutOfStock: cmd.IsOutOfStock,
		RegularPrice: cmd.RegularPrice,
		SKU:          textutil.SingleLine(cmd.SKU, maxProductSKULength),
	}
	product, err = validateProduct(cat, product)
	if err != nil {
		return Product{}, err
	}
	product.ImageURL, err = s.normalizeImage(ctx, cat, cmd.Image)
	if err != nil {
		return Product{}, err
	}

	created, err := s.products.Create(ctx, cat, product)
	if err != nil {
		return Product{}, productErrors.translate(err)
	}
	s.logger(ctx, "product.created", map[string]any{"category": cat.Slug, "productId": created.ID})
	return created, nil
}

// UpdateProduct re-reads the product, validates the merged result and writes only the patched fields.
func (s *adminProductService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (Product, error) {
	cat, err := lookupCategory(cmd.Category, ErrProductInvalidInput)
	if err != nil {
		return Product{}, err
	}
	patch := cmd.Patch
	if patch.Empty() {
		return Product{}, fmt.Errorf("%w: no fields to update", ErrProductInvalidInput)
	}
	current, err := s.fresh(ctx, cat, cmd.ProductID)
	if err != nil {
		return Product{}, err
	}

	if patch.Name != nil {
		name := textutil.SingleLine(*patch.Name, maxProductNameLength)
		patch.Name = &name
	}
	if patch.Description != nil {
		desc := textutil.PlainText(*patch.Description, maxProductDescriptionLength)
		patch.Description = &desc
	}
	if patch.SKU != nil {
		sku := textutil.SingleLine(*patch.SKU, maxProductSKULength)
		patch.SKU = &sku
	}
	if patch.ImageURL != nil {
		url, err := s.normalizeImage(ctx, cat, *patch.ImageURL)
		if err != nil {
			return Product{}, err
		}
		patch.ImageURL = &url
	}

	merged, err := validateProduct(cat, patch.Apply(current))
	if err != nil {
		return Product{}, err
	}
	// Validation may canonicalise size labels and flags; write the canonical values back.
	if patch.RegularSizes != nil {
		patch.RegularSizes = &merged.RegularSizes
	}
	if patch.ShoeSizes != nil {
		patch.ShoeSizes = &merged.ShoeSizes
	}
	if patch.PantsSizes != nil {
		patch.PantsSizes = &merged.PantsSizes
	}
	if patch.IsShoe != nil {
		patch.IsShoe = &merged.IsShoe
	}
	if patch.IsPants != nil {
		patch.IsPants = &merged.IsPants
	}

	if err := s.products.Update(ctx, cat, current.ID, patch); err != nil {
		return Product{}, productErrors.translate(err)
	}
	s.logger(ctx, "product.updated", map[string]any{"category": cat.Slug, "productId": current.ID})
	return merged, nil
}

func (s *adminProductService) DeleteProduct(ctx context.Context, cmd DeleteProductCommand) error {
	cat, err := lookupCategory(cmd.Category, ErrProductInvalidInput)
	if err != nil {
		return err
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	if !cmd.Confirm {
		return ErrProductConfirmationRequired
	}
	if err := s.products.Delete(ctx, cat, productID); err != nil {
		return productErrors.translate(err)
	}
	s.logger(ctx, "product.deleted", map[string]any{"category": cat.Slug, "productId": productID})
	return nil
}

func (s *adminProductService) UploadImage(ctx context.Context, cmd UploadImageCommand) (string, error) {
	cat, err := lookupCategory(cmd.Category, ErrProductInvalidInput)
	if err != nil {
		return "", err
	}
	if len(cmd.Data) == 0 {
		if strings.TrimSpace(cmd.DataURI) == "" {
			return "", fmt.Errorf("%w: image is required", ErrProductInvalidInput)
		}
		return s.normalizeImage(ctx, cat, cmd.DataURI)
	}
	url, err := s.images.Store(ctx, cat.Slug, s.newID(), cmd.Data)
	if err != nil {
		return "", translateImageError(err)
	}
	return url, nil
}

func (s *adminProductService) fresh(ctx context.Context, cat domain.Category, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	product, err := s.products.Get(ctx, cat, productID)
	if err != nil {
		return Product{}, productErrors.translate(err)
	}
	return product, nil
}

func (s *adminProductService) normalizeImage(ctx context.Context, cat domain.Category, value string) (string, error) {
	url, err := s.images.Normalize(ctx, cat.Slug, s.newID(), value)
	if err != nil {
		return "", translateImageError(err)
	}
	return url, nil
}

func translateImageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrImageTooLarge), errors.Is(err, storage.ErrImageType), errors.Is(err, storage.ErrInvalidDataURI):
		return fmt.Errorf("%w: %v", ErrProductInvalidInput, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}
}

// validateProduct enforces the category's size kind, the flag exclusivity and the size catalogs.
func validateProduct(cat domain.Category, p Product) (Product, error) {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		problems = append(problems, "price must be a non-negative number")
	}
	if p.RegularPrice != nil && (*p.RegularPrice < 0 || math.IsNaN(*p.RegularPrice) || math.IsInf(*p.RegularPrice, 0)) {
		problems = append(problems, "regular price must be a non-negative number")
	}

	if !cat.FlexibleKind {
		wantShoe := cat.Kind == domain.SizeKindShoe
		wantPants := cat.Kind == domain.SizeKindPants
		if (p.IsShoe && !wantShoe) || (p.IsPants && !wantPants) {
			problems = append(problems, fmt.Sprintf("category %s does not allow changing the size kind", cat.Slug))
		}
		p.IsShoe, p.IsPants = wantShoe, wantPants
	}
	if p.IsShoe && p.IsPants {
		problems = append(problems, "a product cannot be both shoes and pants")
	}

	var unknown []string
	p.RegularSizes, unknown = domain.NormalizeSizes(domain.SizeKindRegular, p.RegularSizes)
	problems = appendUnknownSizes(problems, "regular", unknown)
	p.ShoeSizes, unknown = domain.NormalizeSizes(domain.SizeKindShoe, p.ShoeSizes)
	problems = appendUnknownSizes(problems, "shoe", unknown)
	p.PantsSizes, unknown = domain.NormalizeSizes(domain.SizeKindPants, p.PantsSizes)
	problems = appendUnknownSizes(problems, "pants", unknown)

	if len(problems) > 0 {
		return Product{}, fmt.Errorf("%w: %s", ErrProductInvalidInput, strings.Join(problems, "; "))
	}
	return p, nil
}

func appendUnknownSizes(problems []string, kind string, unknown []string) []string {
	if len(unknown) == 0 {
		return problems
	}
	return append(problems, fmt.Sprintf("unknown %s sizes: %s", kind, strings.Join(unknown, ", ")))
}

