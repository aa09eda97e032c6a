package firestore

import (
	"context"
	"crypto/rand"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	pfirestore "github.com/ramitaha13/KamelStore/internal/platform/firestore"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

// ProductRepository stores products in one collection per category.
type ProductRepository struct {
	provider *pfirestore.Provider
	newID    func() string

	mu    sync.Mutex
	bases map[string]*pfirestore.BaseRepository[map[string]any]
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository: firestore provider is required")
	}
	return &ProductRepository{
		provider: provider,
		newID:    func() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() },
		bases:    make(map[string]*pfirestore.BaseRepository[map[string]any]),
	}, nil
}

func (r *ProductRepository) base(category domain.Category) *pfirestore.BaseRepository[map[string]any] {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, ok := r.bases[category.Collection]
	if !ok {
		base = pfirestore.NewBaseRepository[map[string]any](r.provider, category.Collection, nil, pfirestore.MapDecoder())
		r.bases[category.Collection] = base
	}
	return base
}

// List returns every product in the category, newest first. Documents without createdAt sort last.
func (r *ProductRepository) List(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	docs, err := r.base(category).Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, decodeProduct(category, doc.ID, fields(doc.Data), doc.CreateTime))
	}
	sortProductsNewestFirst(products)
	return products, nil
}

// Get performs a point read of the product.
func (r *ProductRepository) Get(ctx context.Context, category domain.Category, productID string) (domain.Product, error) {
	doc, err := r.base(category).Get(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, err
	}
	return decodeProduct(category, doc.ID, fields(doc.Data), doc.CreateTime), nil
}

// Create stores product under a fresh id with a server-side creation timestamp.
func (r *ProductRepository) Create(ctx context.Context, category domain.Category, product domain.Product) (domain.Product, error) {
	id := r.newID()
	result, err := r.base(category).Create(ctx, id, encodeProduct(product))
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = id
	product.Category = category.Slug
	product.CreatedAt = result.UpdateTime.UTC()
	return product, nil
}

// Update writes only the fields present in patch.
func (r *ProductRepository) Update(ctx context.Context, category domain.Category, productID string, patch domain.ProductPatch) error {
	_, err := r.base(category).Update(ctx, strings.TrimSpace(productID), productUpdates(patch))
	return err
}

// Delete removes the product. Missing products yield a not-found error.
func (r *ProductRepository) Delete(ctx context.Context, category domain.Category, productID string) error {
	return r.base(category).Delete(ctx, strings.TrimSpace(productID), firestore.Exists)
}

func encodeProduct(p domain.Product) map[string]any {
	doc := map[string]any{
		"name":         p.Name,
		"price":        p.Price,
		"description":  p.Description,
		"imageUrl":     p.ImageURL,
		"regularSizes": nonNilStrings(p.RegularSizes),
		"createdAt":    firestore.ServerTimestamp,
	}
	if p.IsShoe {
		doc["isShoe"] = true
		doc["shoeSizes"] = nonNilStrings(p.ShoeSizes)
	}
	if p.IsPants {
		doc["isPants"] = true
		doc["pantsSizes"] = nonNilStrings(p.PantsSizes)
	}
	if p.IsOutOfStock {
		doc["isOutOfStock"] = true
	}
	if p.RegularPrice != nil {
		doc["regularPrice"] = *p.RegularPrice
	}
	if sku := strings.TrimSpace(p.SKU); sku != "" {
		doc["sku"] = sku
	}
	return doc
}

func productUpdates(p domain.ProductPatch) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, value any) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.ImageURL != nil {
		add("imageUrl", *p.ImageURL)
	}
	if p.RegularSizes != nil {
		add("regularSizes", nonNilStrings(*p.RegularSizes))
	}
	if p.ShoeSizes != nil {
		add("shoeSizes", nonNilStrings(*p.ShoeSizes))
	}
	if p.PantsSizes != nil {
		add("pantsSizes", nonNilStrings(*p.PantsSizes))
	}
	if p.IsShoe != nil {
		add("isShoe", *p.IsShoe)
	}
	if p.IsPants != nil {
		add("isPants", *p.IsPants)
	}
	if p.IsOutOfStock != nil {
		add("isOutOfStock", *p.IsOutOfStock)
	}
	if p.RegularPrice != nil {
		add("regularPrice", *p.RegularPrice)
	}
	if p.SKU != nil {
		add("sku", strings.TrimSpace(*p.SKU))
	}
	return updates
}

func decodeProduct(category domain.Category, id string, f fields, created time.Time) domain.Product {
	p := domain.Product{
		ID:           id,
		Category:     category.Slug,
		Name:         f.str("name"),
		Price:        f.float("price"),
		Description:  f.str("description"),
		ImageURL:     f.str("imageUrl"),
		RegularSizes: f.strings("regularSizes"),
		ShoeSizes:    f.strings("shoeSizes"),
		PantsSizes:   f.strings("pantsSizes"),
		IsShoe:       f.boolean("isShoe"),
		IsPants:      f.boolean("isPants"),
		IsOutOfStock: f.boolean("isOutOfStock"),
		RegularPrice: f.floatPtr("regularPrice"),
		SKU:          f.str("sku"),
		CreatedAt:    f.time("createdAt"),
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = created.UTC()
	}
	switch category.Kind {
	case domain.SizeKindShoe:
		p.IsShoe = true
	case domain.SizeKindPants:
		p.IsPants = true
	}
	return p
}

func sortProductsNewestFirst(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
