package firestore

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	pfirestore "github.com/ramitaha13/KamelStore/internal/platform/firestore"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

const ordersCollection = "OrdersStore"

type orderDocument struct {
	CustomerInfo customerInfoDocument `firestore:"customerInfo"`
	Items        []orderItemDocument  `firestore:"items"`
	TotalAmount  float64              `firestore:"totalAmount"`
	OrderDate    time.Time            `firestore:"orderDate,serverTimestamp"`
	Status       string               `firestore:"status"`
}

type customerInfoDocument struct {
	Name          string `firestore:"name"`
	PhoneNumber   string `firestore:"phoneNumber"`
	Location      string `firestore:"location"`
	Town          string `firestore:"town"`
	Email         string `firestore:"email"`
	Notes         string `firestore:"notes"`
	PaymentMethod string `firestore:"paymentMethod"`
}

type orderItemDocument struct {
	ID            string   `firestore:"id"`
	Name          string   `firestore:"name"`
	Price         float64  `firestore:"price"`
	Image         string   `firestore:"image"`
	Quantity      int      `firestore:"quantity"`
	Sizes         []string `firestore:"sizes"`
	SelectedSizes []string `firestore:"selectedSizes"`
	Category      string   `firestore:"category,omitempty"`
	SKU           string   `firestore:"sku,omitempty"`
}

// OrderRepository persists orders in the OrdersStore collection.
type OrderRepository struct {
	base  *pfirestore.BaseRepository[domain.Order]
	newID func() string
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository: firestore provider is required")
	}
	encoder := func(_ context.Context, order domain.Order) (any, error) {
		return encodeOrderDocument(order), nil
	}
	decoder := func(_ context.Context, snap *firestore.DocumentSnapshot) (domain.Order, error) {
		return decodeOrder(snap.Ref.ID, fields(snap.Data()), snap.CreateTime), nil
	}
	return &OrderRepository{
		base:  pfirestore.NewBaseRepository[domain.Order](provider, ordersCollection, encoder, decoder),
		newID: func() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() },
	}, nil
}

// Insert stores the order. The order date is assigned by the server.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	order.ID = strings.TrimSpace(order.ID)
	if order.ID == "" {
		order.ID = r.newID()
	}
	order.OrderDate = time.Time{}
	result, err := r.base.Create(ctx, order.ID, order)
	if err != nil {
		return domain.Order{}, err
	}
	order.OrderDate = result.UpdateTime.UTC()
	return order, nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, newestOrdersFirst)
	if err != nil {
		return nil, err
	}
	return orderData(docs), nil
}

// Watch streams the ordered list on every change until ctx ends or fn fails.
func (r *OrderRepository) Watch(ctx context.Context, fn func([]domain.Order) error) error {
	if fn == nil {
		return errors.New("order repository: watch callback is required")
	}
	return r.base.Listen(ctx, newestOrdersFirst, func(docs []pfirestore.Document[domain.Order]) error {
		return fn(orderData(docs))
	})
}

// UpdateStatus changes the order status. Missing orders yield a not-found error.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	_, err := r.base.Update(ctx, strings.TrimSpace(orderID), []firestore.Update{{Path: "status", Value: string(status)}})
	return err
}

// Delete removes the order.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	return r.base.Delete(ctx, strings.TrimSpace(orderID), firestore.Exists)
}

func newestOrdersFirst(q firestore.Query) firestore.Query {
	return q.OrderBy("orderDate", firestore.Desc)
}

func orderData(docs []pfirestore.Document[domain.Order]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data)
	}
	return orders
}

func encodeOrderDocument(order domain.Order) orderDocument {
	info := order.CustomerInfo
	doc := orderDocument{
		CustomerInfo: customerInfoDocument{
			Name:          info.Name,
			PhoneNumber:   info.PhoneNumber,
			Location:      info.Location,
			Town:          info.Town,
			Email:         info.Email,
			Notes:         info.Notes,
			PaymentMethod: string(info.PaymentMethod),
		},
		Items:       make([]orderItemDocument, 0, len(order.Items)),
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, orderItemDocument{
			ID:            item.ID,
			Name:          item.Name,
			Price:         item.Price,
			Image:         item.Image,
			Quantity:      item.Quantity,
			Sizes:         nonNilStrings(item.Sizes),
			SelectedSizes: nonNilStrings(item.SelectedSizes),
			Category:      item.Category,
			SKU:           item.SKU,
		})
	}
	return doc
}

func decodeOrder(id string, f fields, created time.Time) domain.Order {
	info := f.nested("customerInfo")
	order := domain.Order{
		ID: id,
		CustomerInfo: domain.CustomerInfo{
			Name:          info.str("name"),
			PhoneNumber:   info.str("phoneNumber"),
			Location:      info.str("location"),
			Town:          info.str("town"),
			Email:         info.str("email"),
			Notes:         info.str("notes"),
			PaymentMethod: domain.PaymentMethod(info.str("paymentMethod")),
		},
		TotalAmount: f.float("totalAmount"),
		OrderDate:   f.time("orderDate"),
		Status:      domain.OrderStatus(f.str("status")),
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = created.UTC()
	}
	if !order.CustomerInfo.PaymentMethod.Valid() {
		order.CustomerInfo.PaymentMethod = domain.PaymentMethodCash
	}
	if !order.Status.Valid() {
		order.Status = domain.OrderStatusPending
	}
	for _, item := range f.list("items") {
		order.Items = append(order.Items, domain.CartItem{
			ID:            item.str("id"),
			Name:          item.str("name"),
			Price:         item.float("price"),
			Image:         item.str("image"),
			Quantity:      item.integer("quantity"),
			Sizes:         item.strings("sizes"),
			SelectedSizes: item.strings("selectedSizes"),
			Category:      item.str("category"),
			SKU:           item.str("sku"),
		})
	}
	return order
}
