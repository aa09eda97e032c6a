package services

import (
	"context"
	"sync"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

type stubRepoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
	invalid     bool
}

func (e stubRepoError) Error() string       { return "stub repository error" }
func (e stubRepoError) IsNotFound() bool    { return e.notFound }
func (e stubRepoError) IsConflict() bool    { return e.conflict }
func (e stubRepoError) IsUnavailable() bool { return e.unavailable }
func (e stubRepoError) IsInvalid() bool     { return e.invalid }

var _ repositories.RepositoryError = stubRepoError{}

type stubProductRepo struct {
	listFn   func(context.Context, domain.Category) ([]domain.Product, error)
	getFn    func(context.Context, domain.Category, string) (domain.Product, error)
	createFn func(context.Context, domain.Category, domain.Product) (domain.Product, error)
	updateFn func(context.Context, domain.Category, string, domain.ProductPatch) error
	deleteFn func(context.Context, domain.Category, string) error
}

func (s *stubProductRepo) List(ctx context.Context, cat domain.Category) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, cat)
	}
	return nil, nil
}

func (s *stubProductRepo) Get(ctx context.Context, cat domain.Category, id string) (domain.Product, error) {
	if s.getFn != nil {
		return s.getFn(ctx, cat, id)
	}
	return domain.Product{}, stubRepoError{notFound: true}
}

func (s *stubProductRepo) Create(ctx context.Context, cat domain.Category, p domain.Product) (domain.Product, error) {
	if s.createFn != nil {
		return s.createFn(ctx, cat, p)
	}
	p.ID = "generated"
	return p, nil
}

func (s *stubProductRepo) Update(ctx context.Context, cat domain.Category, id string, patch domain.ProductPatch) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, cat, id, patch)
	}
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, cat domain.Category, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, cat, id)
	}
	return nil
}

type stubOrderRepo struct {
	insertFn func(context.Context, domain.Order) (domain.Order, error)
	listFn   func(context.Context) ([]domain.Order, error)
	watchFn  func(context.Context, func([]domain.Order) error) error
	statusFn func(context.Context, string, domain.OrderStatus) error
	deleteFn func(context.Context, string) error
	inserts  int
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	s.inserts++
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	order.ID = "order-1"
	return order, nil
}

func (s *stubOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubOrderRepo) Watch(ctx context.Context, fn func([]domain.Order) error) error {
	if s.watchFn != nil {
		return s.watchFn(ctx, fn)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if s.statusFn != nil {
		return s.statusFn(ctx, id, status)
	}
	return nil
}

func (s *stubOrderRepo) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type logRecorder struct {
	mu     sync.Mutex
	events []string
	fields []map[string]any
}

func (l *logRecorder) log(_ context.Context, event string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	l.fields = append(l.fields, fields)
}

func (l *logRecorder) count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}
