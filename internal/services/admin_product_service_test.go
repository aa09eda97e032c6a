package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/storage"
)

type stubImageStore struct {
	storeFn     func(context.Context, string, string, []byte) (string, error)
	normalizeFn func(context.Context, string, string, string) (string, error)
}

func (s *stubImageStore) Store(ctx context.Context, category, id string, data []byte) (string, error) {
	if s.storeFn != nil {
		return s.storeFn(ctx, category, id, data)
	}
	return fmt.Sprintf("https://cdn.example.com/%s/%s", category, id), nil
}

func (s *stubImageStore) Normalize(ctx context.Context, category, id, value string) (string, error) {
	if s.normalizeFn != nil {
		return s.normalizeFn(ctx, category, id, value)
	}
	return value, nil
}

func newTestAdminProductService(t *testing.T, repo *stubProductRepo, images *stubImageStore) AdminProductService {
	t.Helper()
	if images == nil {
		images = &stubImageStore{}
	}
	svc, err := NewAdminProductService(AdminProductServiceDeps{
		Products:    repo,
		Images:      images,
		IDGenerator: func() string { return "img-1" },
	})
	require.NoError(t, err)
	return svc
}

func TestAdminProductCreateForcesCategoryKind(t *testing.T) {
	var stored domain.Product
	repo := &stubProductRepo{
		createFn: func(_ context.Context, _ domain.Category, p domain.Product) (domain.Product, error) {
			stored = p
			p.ID = "new-1"
			return p, nil
		},
	}
	svc := newTestAdminProductService(t, repo, nil)

	created, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Category:  "shoes",
		Name:      " Runner ",
		Price:     250,
		ShoeSizes: []string{"44", "40", "40"},
		Image:     "https://cdn.example.com/runner.png",
	})
	require.NoError(t, err)
	require.Equal(t, "new-1", created.ID)
	require.True(t, stored.IsShoe)
	require.False(t, stored.IsPants)
	require.Equal(t, "Runner", stored.Name)
	require.Equal(t, []string{"40", "44"}, stored.ShoeSizes)
	require.Equal(t, "https://cdn.example.com/runner.png", stored.ImageURL)
}

func TestAdminProductCreateValidation(t *testing.T) {
	svc := newTestAdminProductService(t, &stubProductRepo{}, nil)
	ctx := context.Background()

	tests := []CreateProductCommand{
		{Category: "shoes", Name: "Runner", Price: 10, IsPants: true},
		{Category: "new-collection", Name: "Hybrid", Price: 10, IsPants: true, IsShoe: true},
		{Category: "shirts", Name: "", Price: 10},
		{Category: "shirts", Name: "Tee", Price: -1},
		{Category: "shirts", Name: "Tee", Price: 10, RegularSizes: []string{"S", "HUGE"}},
		{Category: "socks", Name: "Sock", Price: 10},
	}
	for i, cmd := range tests {
		_, err := svc.CreateProduct(ctx, cmd)
		require.ErrorIs(t, err, ErrProductInvalidInput, "case %d", i)
	}
}

func TestAdminProductCreateAllowsFlexibleKind(t *testing.T) {
	var stored domain.Product
	repo := &stubProductRepo{
		createFn: func(_ context.Context, _ domain.Category, p domain.Product) (domain.Product, error) {
			stored = p
			return p, nil
		},
	}
	svc := newTestAdminProductService(t, repo, nil)

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Category: "new-collection", Name: "Slim jeans", Price: 180, IsPants: true, PantsSizes: []string{"32", "30"},
	})
	require.NoError(t, err)
	require.True(t, stored.IsPants)
	require.Equal(t, []string{"30", "32"}, stored.PantsSizes)
}

func TestAdminProductCreateRejectsOversizedImage(t *testing.T) {
	images := &stubImageStore{
		normalizeFn: func(context.Context, string, string, string) (string, error) {
			return "", storage.ErrImageTooLarge
		},
	}
	svc := newTestAdminProductService(t, &stubProductRepo{}, images)

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Category: "hats", Name: "Cap", Price: 20, Image: "data:image/png;base64,AAAA",
	})
	require.ErrorIs(t, err, ErrProductInvalidInput)
}

func TestAdminProductUpdateWritesCanonicalPatch(t *testing.T) {
	var patched domain.ProductPatch
	repo := &stubProductRepo{
		getFn: func(_ context.Context, _ domain.Category, id string) (domain.Product, error) {
			return domain.Product{ID: id, Category: "pants", Name: "Chino", Price: 120, IsPants: true, PantsSizes: []string{"30"}}, nil
		},
		updateFn: func(_ context.Context, _ domain.Category, _ string, patch domain.ProductPatch) error {
			patched = patch
			return nil
		},
	}
	svc := newTestAdminProductService(t, repo, nil)

	sizes := []string{"34", " 31 "}
	price := 99.5
	updated, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{
		Category:  "pants",
		ProductID: "c1",
		Patch:     domain.ProductPatch{PantsSizes: &sizes, Price: &price},
	})
	require.NoError(t, err)
	require.Equal(t, 99.5, updated.Price)
	require.Equal(t, "Chino", updated.Name)
	require.NotNil(t, patched.PantsSizes)
	require.Equal(t, []string{"31", "34"}, *patched.PantsSizes)
	require.Nil(t, patched.Name)
}

func TestAdminProductUpdateErrors(t *testing.T) {
	repo := &stubProductRepo{}
	svc := newTestAdminProductService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, UpdateProductCommand{Category: "hats", ProductID: "h1"})
	require.ErrorIs(t, err, ErrProductInvalidInput)

	name := "Beanie"
	_, err = svc.UpdateProduct(ctx, UpdateProductCommand{Category: "hats", ProductID: "h1", Patch: domain.ProductPatch{Name: &name}})
	require.ErrorIs(t, err, ErrProductNotFound)

	repo.getFn = func(_ context.Context, _ domain.Category, id string) (domain.Product, error) {
		return domain.Product{ID: id, Name: "Cap", Price: 20}, nil
	}
	shoe := true
	_, err = svc.UpdateProduct(ctx, UpdateProductCommand{Category: "hats", ProductID: "h1", Patch: domain.ProductPatch{IsShoe: &shoe}})
	require.ErrorIs(t, err, ErrProductInvalidInput)
}

func TestAdminProductDeleteRequiresConfirmation(t *testing.T) {
	deleted := 0
	repo := &stubProductRepo{
		deleteFn: func(context.Context, domain.Category, string) error {
			deleted++
			return nil
		},
	}
	svc := newTestAdminProductService(t, repo, nil)
	ctx := context.Background()

	err := svc.DeleteProduct(ctx, DeleteProductCommand{Category: "hats", ProductID: "h1"})
	require.ErrorIs(t, err, ErrProductConfirmationRequired)
	require.Zero(t, deleted)

	require.NoError(t, svc.DeleteProduct(ctx, DeleteProductCommand{Category: "hats", ProductID: "h1", Confirm: true}))
	require.Equal(t, 1, deleted)

	repo.deleteFn = func(context.Context, domain.Category, string) error {
		return stubRepoError{notFound: true}
	}
	err = svc.DeleteProduct(ctx, DeleteProductCommand{Category: "hats", ProductID: "h1", Confirm: true})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdminProductUploadImage(t *testing.T) {
	var gotCategory, gotID string
	images := &stubImageStore{
		storeFn: func(_ context.Context, category, id string, _ []byte) (string, error) {
			gotCategory, gotID = category, id
			return "https://cdn.example.com/products/shoes/img-1.png", nil
		},
		normalizeFn: func(context.Context, string, string, string) (string, error) {
			return "", storage.ErrInvalidDataURI
		},
	}
	svc := newTestAdminProductService(t, &stubProductRepo{}, images)
	ctx := context.Background()

	url, err := svc.UploadImage(ctx, UploadImageCommand{Category: "Shoes", Data: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/products/shoes/img-1.png", url)
	require.Equal(t, "shoes", gotCategory)
	require.Equal(t, "img-1", gotID)

	_, err = svc.UploadImage(ctx, UploadImageCommand{Category: "shoes"})
	require.ErrorIs(t, err, ErrProductInvalidInput)

	_, err = svc.UploadImage(ctx, UploadImageCommand{Category: "shoes", DataURI: "data:broken"})
	require.ErrorIs(t, err, ErrProductInvalidInput)
}
