package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/platform/session"
	"github.com/ramitaha13/KamelStore/internal/services"
)

var handlerTestNow = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestLocalizer(t *testing.T) *i18n.Localizer {
	t.Helper()
	localizer, err := i18n.NewLocalizer("he")
	require.NoError(t, err)
	return localizer
}

func newTestSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	manager, err := session.NewManager(session.Config{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		Now:     func() time.Time { return handlerTestNow },
	})
	require.NoError(t, err)
	return manager
}

// newSessionRequest attaches a fresh session (optionally signed in as admin) to the request context.
func newSessionRequest(t *testing.T, method, target, body string, admin string) (*http.Request, *session.Session) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	sess := newTestSessionManager(t).New()
	if admin != "" {
		sess.SignIn(admin, handlerTestNow)
	}
	return req.WithContext(session.WithSession(req.Context(), sess)), sess
}

func serve(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type stubCatalogService struct {
	listFn func(ctx context.Context, category string) ([]services.Product, error)
	getFn  func(ctx context.Context, category, productID string) (services.Product, error)
}

func (s *stubCatalogService) Categories(context.Context) []services.Category {
	return []services.Category{{Slug: "shirts", Collection: "חולצות", Kind: "regular"}, {Slug: "shoes", Collection: "נעליים", Kind: "shoe"}}
}

func (s *stubCatalogService) ListProducts(ctx context.Context, category string) ([]services.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, category)
	}
	return []services.Product{}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, category, productID string) (services.Product, error) {
	if s.getFn != nil {
		return s.getFn(ctx, category, productID)
	}
	return services.Product{}, services.ErrCatalogNotFound
}

func (s *stubCatalogService) FindProduct(ctx context.Context, productID string) (services.Product, error) {
	return s.GetProduct(ctx, "", productID)
}

type stubCartService struct {
	viewFn        func(ctx context.Context, namespace string) (services.CartView, error)
	addFn         func(ctx context.Context, cmd services.AddCartItemCommand) (services.CartView, error)
	setQuantityFn func(ctx context.Context, cmd services.SetCartQuantityCommand) (services.CartView, error)
	setSizeFn     func(ctx context.Context, cmd services.SetCartSizeCommand) (services.CartView, error)
	removeFn      func(ctx context.Context, namespace, itemID string) (services.CartView, error)
	clearFn       func(ctx context.Context, namespace string) error
	handoffFn     func(ctx context.Context, namespace string) (services.CartView, error)
}

func (s *stubCartService) View(ctx context.Context, namespace string) (services.CartView, error) {
	if s.viewFn != nil {
		return s.viewFn(ctx, namespace)
	}
	return services.CartView{Items: []services.CartItem{}}, nil
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddCartItemCommand) (services.CartView, error) {
	return s.addFn(ctx, cmd)
}

func (s *stubCartService) SetQuantity(ctx context.Context, cmd services.SetCartQuantityCommand) (services.CartView, error) {
	return s.setQuantityFn(ctx, cmd)
}

func (s *stubCartService) SetSelectedSize(ctx context.Context, cmd services.SetCartSizeCommand) (services.CartView, error) {
	return s.setSizeFn(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, namespace, itemID string) (services.CartView, error) {
	return s.removeFn(ctx, namespace, itemID)
}

func (s *stubCartService) Clear(ctx context.Context, namespace string) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, namespace)
	}
	return nil
}

func (s *stubCartService) Handoff(ctx context.Context, namespace string) (services.CartView, error) {
	return s.handoffFn(ctx, namespace)
}

func (s *stubCartService) CheckoutItems(context.Context, string) ([]services.CartItem, error) {
	return nil, nil
}

func (s *stubCartService) CompleteCheckout(context.Context, string) error { return nil }

func (s *stubCartService) SaveLastOrder(context.Context, string, services.Order) error { return nil }

func (s *stubCartService) LastOrder(context.Context, string) (services.LastOrderSnapshot, error) {
	return services.LastOrderSnapshot{}, services.ErrCartNotFound
}

type stubCheckoutService struct {
	placeFn     func(ctx context.Context, cmd services.PlaceOrderCommand) (services.Order, error)
	lastOrderFn func(ctx context.Context, namespace string) (services.LastOrderSnapshot, error)
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (services.Order, error) {
	return s.placeFn(ctx, cmd)
}

func (s *stubCheckoutService) LastOrder(ctx context.Context, namespace string) (services.LastOrderSnapshot, error) {
	return s.lastOrderFn(ctx, namespace)
}

type stubContactService struct {
	submitFn func(ctx context.Context, cmd services.SubmitContactCommand) (services.ContactMessage, error)
	listFn   func(ctx context.Context, status string) ([]services.ContactMessage, error)
	updateFn func(ctx context.Context, id string, status services.ContactStatus) (services.ContactStatus, error)
	deleteFn func(ctx context.Context, id string, confirm bool) error
}

func (s *stubContactService) Submit(ctx context.Context, cmd services.SubmitContactCommand) (services.ContactMessage, error) {
	return s.submitFn(ctx, cmd)
}

func (s *stubContactService) ListMessages(ctx context.Context, status string) ([]services.ContactMessage, error) {
	return s.listFn(ctx, status)
}

func (s *stubContactService) UpdateStatus(ctx context.Context, id string, status services.ContactStatus) (services.ContactStatus, error) {
	return s.updateFn(ctx, id, status)
}

func (s *stubContactService) DeleteMessage(ctx context.Context, id string, confirm bool) error {
	return s.deleteFn(ctx, id, confirm)
}

type stubAuthService struct {
	authenticateFn func(ctx context.Context, username, password string) (services.AdminIdentity, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (services.AdminIdentity, error) {
	return s.authenticateFn(ctx, username, password)
}

type stubProductService struct {
	listFn   func(ctx context.Context, category string) ([]services.Product, error)
	getFn    func(ctx context.Context, category, id string) (services.Product, error)
	createFn func(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error)
	updateFn func(ctx context.Context, cmd services.UpdateProductCommand) (services.Product, error)
	deleteFn func(ctx context.Context, cmd services.DeleteProductCommand) error
	uploadFn func(ctx context.Context, cmd services.UploadImageCommand) (string, error)
}

func (s *stubProductService) ListProducts(ctx context.Context, category string) ([]services.Product, error) {
	return s.listFn(ctx, category)
}

func (s *stubProductService) GetProduct(ctx context.Context, category, id string) (services.Product, error) {
	return s.getFn(ctx, category, id)
}

func (s *stubProductService) CreateProduct(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubProductService) UpdateProduct(ctx context.Context, cmd services.UpdateProductCommand) (services.Product, error) {
	return s.updateFn(ctx, cmd)
}

func (s *stubProductService) DeleteProduct(ctx context.Context, cmd services.DeleteProductCommand) error {
	return s.deleteFn(ctx, cmd)
}

func (s *stubProductService) UploadImage(ctx context.Context, cmd services.UploadImageCommand) (string, error) {
	return s.uploadFn(ctx, cmd)
}

type stubOrderService struct {
	listFn   func(ctx context.Context) ([]services.Order, error)
	watchFn  func(ctx context.Context, fn func([]services.Order) error) error
	updateFn func(ctx context.Context, id string, status services.OrderStatus) (services.OrderStatus, error)
	deleteFn func(ctx context.Context, id string, confirm bool) error
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]services.Order, error) {
	return s.listFn(ctx)
}

func (s *stubOrderService) WatchOrders(ctx context.Context, fn func([]services.Order) error) error {
	return s.watchFn(ctx, fn)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id string, status services.OrderStatus) (services.OrderStatus, error) {
	return s.updateFn(ctx, id, status)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, id string, confirm bool) error {
	return s.deleteFn(ctx, id, confirm)
}

var (
	_ services.CatalogService      = (*stubCatalogService)(nil)
	_ services.CartService         = (*stubCartService)(nil)
	_ services.CheckoutService     = (*stubCheckoutService)(nil)
	_ services.ContactService      = (*stubContactService)(nil)
	_ services.AdminAuthService    = (*stubAuthService)(nil)
	_ services.AdminProductService = (*stubProductService)(nil)
	_ services.OrderService        = (*stubOrderService)(nil)
)
