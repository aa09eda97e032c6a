package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/repositories"
	"github.com/ramitaha13/KamelStore/internal/repositories/memory"
)

var cartTestNow = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	products map[string]Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, category, productID string) (Product, error) {
	p, ok := f.products[productID]
	if !ok || p.Category != category {
		return Product{}, ErrCatalogNotFound
	}
	return p, nil
}

func (f *fakeCatalog) FindProduct(_ context.Context, productID string) (Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return Product{}, ErrCatalogNotFound
	}
	return p, nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]Product{
		"P1":   {ID: "P1", Category: "shirts", Name: "Linen shirt", Price: 100, RegularSizes: []string{"S", "M"}},
		"P2":   {ID: "P2", Category: "shirts", Name: "Polo", Price: 40, RegularSizes: []string{"L"}},
		"P3":   {ID: "P3", Category: "hats", Name: "Cap", Price: 25},
		"gone": {ID: "gone", Category: "hats", Name: "Old cap", Price: 10, IsOutOfStock: true},
	}}
}

// quotaCartRepo rejects payloads matched by reject with a quota error.
type quotaCartRepo struct {
	*memory.CartRepository
	reject func(key string, payload []byte) bool
}

func (r *quotaCartRepo) Save(ctx context.Context, namespace, key string, payload []byte) error {
	if r.reject != nil && r.reject(key, payload) {
		return repositories.NewCartQuotaError("cart.save", key, len(payload), 16)
	}
	return r.CartRepository.Save(ctx, namespace, key, payload)
}

func newTestCartService(t *testing.T, repo repositories.CartRepository, limit int, logs *logRecorder) CartService {
	t.Helper()
	deps := CartServiceDeps{
		Repository:    repo,
		Catalog:       newFakeCatalog(),
		CheckoutLimit: limit,
		Clock:         func() time.Time { return cartTestNow },
	}
	if logs != nil {
		deps.Logger = logs.log
	}
	svc, err := NewCartService(deps)
	require.NoError(t, err)
	return svc
}

func TestNewCartServiceValidatesDeps(t *testing.T) {
	_, err := NewCartService(CartServiceDeps{Catalog: newFakeCatalog()})
	require.Error(t, err)
	_, err = NewCartService(CartServiceDeps{Repository: memory.NewCartRepository()})
	require.Error(t, err)
	_, err = NewCartService(CartServiceDeps{Repository: memory.NewCartRepository(), Catalog: newFakeCatalog(), CheckoutLimit: -1})
	require.Error(t, err)
}

func TestCartServiceAddItemTwiceIncrementsQuantity(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.Equal(t, 2, view.Items[0].Quantity)
	require.Equal(t, []string{"S", "S"}, view.Items[0].SelectedSizes)
	require.Equal(t, 200.0, view.Total)
	require.Equal(t, 2, view.Units)

	reloaded, err := svc.View(ctx, "sess")
	require.NoError(t, err)
	require.Equal(t, view.Items[0].SelectedSizes, reloaded.Items[0].SelectedSizes)
	require.Equal(t, cartTestNow, reloaded.Items[0].AddedAt)
}

func TestCartServiceAddItemRejectsUnavailableProducts(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "hats", ProductID: "gone"})
	require.ErrorIs(t, err, ErrCartProductUnavailable)

	_, err = svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "hats", ProductID: "missing"})
	require.ErrorIs(t, err, ErrCartProductUnavailable)

	_, err = svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "", ProductID: "P1"})
	require.ErrorIs(t, err, ErrCartInvalidInput)

	_, err = svc.View(ctx, " ")
	require.ErrorIs(t, err, ErrCartInvalidInput)
}

func TestCartServiceMutations(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "P1", Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, []string{"S", "S", "S"}, view.Items[0].SelectedSizes)

	view, err = svc.SetSelectedSize(ctx, SetCartSizeCommand{Namespace: "sess", ItemID: "P1", Index: 1, Size: "M"})
	require.NoError(t, err)
	require.Equal(t, []string{"S", "M", "S"}, view.Items[0].SelectedSizes)

	view, err = svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "P1", Quantity: 0})
	require.NoError(t, err)
	require.Equal(t, 3, view.Items[0].Quantity)

	_, err = svc.SetSelectedSize(ctx, SetCartSizeCommand{Namespace: "sess", ItemID: "P1", Index: 5, Size: "M"})
	require.ErrorIs(t, err, ErrCartInvalidInput)
	_, err = svc.SetSelectedSize(ctx, SetCartSizeCommand{Namespace: "sess", ItemID: "P1", Index: 0, Size: "XXL"})
	require.ErrorIs(t, err, ErrCartInvalidInput)
	_, err = svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "nope", Quantity: 2})
	require.ErrorIs(t, err, ErrCartNotFound)

	view, err = svc.RemoveItem(ctx, "sess", "P1")
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.NotNil(t, view.Items)

	_, err = svc.RemoveItem(ctx, "sess", "P1")
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartServiceNamespacesAreIsolated(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "a", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)

	view, err := svc.View(ctx, "b")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCartServiceFallsBackToReducedShape(t *testing.T) {
	repo := &quotaCartRepo{
		CartRepository: memory.NewCartRepository(),
		reject: func(_ string, payload []byte) bool {
			return strings.Contains(string(payload), `"category"`)
		},
	}
	logs := &logRecorder{}
	svc := newTestCartService(t, repo, 0, logs)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)

	raw, err := repo.Load(ctx, "sess", CartKey)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"name":"Linen shirt"`)
	require.NotContains(t, string(raw), `"category"`)
	require.Equal(t, 1, logs.count("cart.storage.fallback"))
}

func TestCartServiceFallsBackToIDOnlyAndRehydrates(t *testing.T) {
	repo := &quotaCartRepo{
		CartRepository: memory.NewCartRepository(),
		reject: func(_ string, payload []byte) bool {
			return strings.Contains(string(payload), `"name"`)
		},
	}
	logs := &logRecorder{}
	svc := newTestCartService(t, repo, 0, logs)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)

	raw, err := repo.Load(ctx, "sess", CartKey)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"P1","quantity":1}]`, string(raw))
	require.Equal(t, 2, logs.count("cart.storage.fallback"))

	view, err := svc.SetSelectedSize(ctx, SetCartSizeCommand{Namespace: "sess", ItemID: "P1", Index: 0, Size: "M"})
	require.NoError(t, err)
	require.True(t, view.SizesNotSaved)

	view, err = svc.View(ctx, "sess")
	require.NoError(t, err)
	require.False(t, view.SizesNotSaved)
	require.Len(t, view.Items, 1)
	require.Equal(t, "Linen shirt", view.Items[0].Name)
	require.Equal(t, 100.0, view.Items[0].Price)
	require.Equal(t, []string{"S"}, view.Items[0].SelectedSizes)
}

func TestCartServiceReportsQuotaWhenEveryShapeFails(t *testing.T) {
	repo := &quotaCartRepo{
		CartRepository: memory.NewCartRepository(),
		reject:         func(string, []byte) bool { return true },
	}
	svc := newTestCartService(t, repo, 0, nil)

	_, err := svc.AddItem(context.Background(), AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.ErrorIs(t, err, ErrCartStorageQuota)
}

type failingCartRepo struct {
	*memory.CartRepository
	err error
}

func (r *failingCartRepo) Load(context.Context, string, string) ([]byte, error) {
	return nil, r.err
}

func TestCartServiceTranslatesBackendFailures(t *testing.T) {
	repo := &failingCartRepo{
		CartRepository: memory.NewCartRepository(),
		err:            repositories.NewCartStorageError("cart.load", CartKey, repositories.CartStorageUnavailable, errors.New("dial tcp")),
	}
	svc := newTestCartService(t, repo, 0, nil)

	_, err := svc.View(context.Background(), "sess")
	require.ErrorIs(t, err, ErrCartUnavailable)
}

func TestCartServiceHandoffTrimsToCheckoutLimit(t *testing.T) {
	repo := memory.NewCartRepository()
	svc := newTestCartService(t, repo, 2, nil)
	ctx := context.Background()
	for _, add := range []AddCartItemCommand{
		{Namespace: "sess", Category: "shirts", ProductID: "P1"},
		{Namespace: "sess", Category: "shirts", ProductID: "P2"},
		{Namespace: "sess", Category: "hats", ProductID: "P3"},
	} {
		_, err := svc.AddItem(ctx, add)
		require.NoError(t, err)
	}

	view, err := svc.View(ctx, "sess")
	require.NoError(t, err)
	require.True(t, view.HasExcessItems)
	require.Equal(t, 140.0, view.Total)

	view, err = svc.Handoff(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.False(t, view.HasExcessItems)

	items, err := svc.CheckoutItems(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "P1", items[0].ID)
	require.Equal(t, "P2", items[1].ID)

	require.NoError(t, svc.CompleteCheckout(ctx, "sess"))
	for _, key := range []string{CartKey, HandoffKey} {
		raw, err := repo.Load(ctx, "sess", key)
		require.NoError(t, err)
		require.Nil(t, raw)
	}
}

func TestCartServiceHandoffRejectsEmptyCart(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	_, err := svc.Handoff(context.Background(), "sess")
	require.ErrorIs(t, err, ErrCartInvalidInput)
}

func TestCartServiceLastOrderRoundTrip(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()

	_, err := svc.LastOrder(ctx, "sess")
	require.ErrorIs(t, err, ErrCartNotFound)

	order := Order{
		ID:          "order-9",
		TotalAmount: 80,
		OrderDate:   cartTestNow,
		Status:      domain.OrderStatusPending,
		Items: []CartItem{{
			ID: "P2", Name: "Polo", Price: 40, Quantity: 2,
			Sizes: []string{"L"}, SelectedSizes: []string{"L", "L"},
		}},
	}
	require.NoError(t, svc.SaveLastOrder(ctx, "sess", order))

	snapshot, err := svc.LastOrder(ctx, "sess")
	require.NoError(t, err)
	require.Equal(t, "order-9", snapshot.OrderID)
	require.Equal(t, 80.0, snapshot.TotalAmount)
	require.Equal(t, cartTestNow, snapshot.OrderDate)
	require.Equal(t, domain.OrderStatusPending, snapshot.Status)
	require.Len(t, snapshot.Items, 1)
	require.Equal(t, []string{"L", "L"}, snapshot.Items[0].SelectedSizes)
}

func TestCartServiceIDOnlyFallbackWithoutSizesIsNotFlagged(t *testing.T) {
	repo := &quotaCartRepo{
		CartRepository: memory.NewCartRepository(),
		reject: func(_ string, payload []byte) bool {
			return strings.Contains(string(payload), `"name"`)
		},
	}
	svc := newTestCartService(t, repo, 0, nil)

	view, err := svc.AddItem(context.Background(), AddCartItemCommand{Namespace: "sess", Category: "hats", ProductID: "P3"})
	require.NoError(t, err)
	require.False(t, view.SizesNotSaved)
}

func TestCartServiceRejectsQuantityAboveLineLimit(t *testing.T) {
	repo := memory.NewCartRepository()
	svc := newTestCartService(t, repo, 0, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)
	before, err := repo.Load(ctx, "sess", CartKey)
	require.NoError(t, err)

	for _, n := range []int{domain.MaxLineQuantity + 1, 20_000_000, 1 << 62} {
		_, err = svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "P1", Quantity: n})
		require.ErrorIs(t, err, ErrCartInvalidInput, n)
	}
	after, err := repo.Load(ctx, "sess", CartKey)
	require.NoError(t, err)
	require.Equal(t, before, after)

	view, err := svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "P1", Quantity: domain.MaxLineQuantity})
	require.NoError(t, err)
	require.Len(t, view.Items[0].SelectedSizes, domain.MaxLineQuantity)

	_, err = svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.ErrorIs(t, err, ErrCartInvalidInput)
}

func TestCartServiceMutationsDiscardStaleHandoff(t *testing.T) {
	ctx := context.Background()
	mutations := map[string]func(CartService) error{
		"add": func(svc CartService) error {
			_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P2"})
			return err
		},
		"quantity": func(svc CartService) error {
			_, err := svc.SetQuantity(ctx, SetCartQuantityCommand{Namespace: "sess", ItemID: "P1", Quantity: 3})
			return err
		},
		"size": func(svc CartService) error {
			_, err := svc.SetSelectedSize(ctx, SetCartSizeCommand{Namespace: "sess", ItemID: "P1", Index: 0, Size: "M"})
			return err
		},
		"remove": func(svc CartService) error {
			_, err := svc.RemoveItem(ctx, "sess", "P1")
			return err
		},
		"clear": func(svc CartService) error {
			return svc.Clear(ctx, "sess")
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			repo := memory.NewCartRepository()
			svc := newTestCartService(t, repo, 0, nil)
			_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
			require.NoError(t, err)
			_, err = svc.Handoff(ctx, "sess")
			require.NoError(t, err)

			require.NoError(t, mutate(svc))

			raw, err := repo.Load(ctx, "sess", HandoffKey)
			require.NoError(t, err)
			require.Nil(t, raw)

			view, err := svc.View(ctx, "sess")
			require.NoError(t, err)
			items, err := svc.CheckoutItems(ctx, "sess")
			require.NoError(t, err)
			require.Len(t, items, len(view.Items))
			require.Equal(t, view.Total, domain.SumItems(items))
		})
	}
}

func TestCartServiceHandoffThenEmptiedCartHasNothingToCheckOut(t *testing.T) {
	svc := newTestCartService(t, memory.NewCartRepository(), 0, nil)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, AddCartItemCommand{Namespace: "sess", Category: "shirts", ProductID: "P1"})
	require.NoError(t, err)
	_, err = svc.Handoff(ctx, "sess")
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, "sess", "P1")
	require.NoError(t, err)

	items, err := svc.CheckoutItems(ctx, "sess")
	require.NoError(t, err)
	require.Empty(t, items)
}
