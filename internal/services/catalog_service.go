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
	// ErrCatalogInvalidInput indicates an unknown category or blank product id.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogNotFound indicates the product does not exist.
	ErrCatalogNotFound = errors.New("catalog service: not found")
	// ErrCatalogUnavailable indicates the product store cannot be reached.
	ErrCatalogUnavailable = errors.New("catalog service: unavailable")
)

var catalogErrors = repoErrorMapping{
	notFound:    ErrCatalogNotFound,
	invalid:     ErrCatalogInvalidInput,
	unavailable: ErrCatalogUnavailable,
}

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
}

type catalogService struct {
	products repositories.ProductRepository
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService constructs the storefront catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	return &catalogService{products: deps.Products}, nil
}

func (s *catalogService) Categories(context.Context) []Category {
	return domain.Categories()
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]Product, error) {
	cat, err := lookupCategory(category, ErrCatalogInvalidInput)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, cat)
	if err != nil {
		return nil, catalogErrors.translate(err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, category, productID string) (Product, error) {
	cat, err := lookupCategory(category, ErrCatalogInvalidInput)
	if err != nil {
		return Product{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.Get(ctx, cat, productID)
	if err != nil {
		return Product{}, catalogErrors.translate(err)
	}
	return product, nil
}

// FindProduct probes each category in display order with point reads.
func (s *catalogService) FindProduct(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	for _, cat := range domain.Categories() {
		product, err := s.products.Get(ctx, cat, productID)
		if err == nil {
			return product, nil
		}
		translated := catalogErrors.translate(err)
		if !errors.Is(translated, ErrCatalogNotFound) {
			return Product{}, translated
		}
	}
	return Product{}, fmt.Errorf("%w: product %s", ErrCatalogNotFound, productID)
}

func lookupCategory(value string, invalid error) (domain.Category, error) {
	cat, ok := domain.LookupCategory(value)
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: unknown category %q", invalid, strings.TrimSpace(value))
	}
	return cat, nil
}
