package handlers

import (
	"time"

	"golang.org/x/text/language"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

var categoryLabels = map[string]string{
	"shirts":         i18n.MsgCategoryShirts,
	"pants":          i18n.MsgCategoryPants,
	"jackets":        i18n.MsgCategoryJackets,
	"shoes":          i18n.MsgCategoryShoes,
	"hats":           i18n.MsgCategoryHats,
	"tracksuits":     i18n.MsgCategoryTracksuits,
	"new-collection": i18n.MsgCategoryNew,
}

var orderStatusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:    i18n.MsgStatusPending,
	domain.OrderStatusProcessing: i18n.MsgStatusProcessing,
	domain.OrderStatusCompleted:  i18n.MsgStatusCompleted,
}

var contactStatusLabels = map[domain.ContactStatus]string{
	domain.ContactStatusNew:        i18n.MsgContactNew,
	domain.ContactStatusInProgress: i18n.MsgContactInProgress,
	domain.ContactStatusResolved:   i18n.MsgContactResolved,
}

// labeler renders message keys in the request language.
type labeler struct {
	localizer *i18n.Localizer
	tag       language.Tag
}

func (l labeler) text(key string, args ...any) string {
	if l.localizer == nil || key == "" {
		return key
	}
	return l.localizer.Sprintf(l.tag, key, args...)
}

type categoryPayload struct {
	Slug       string `json:"slug"`
	Collection string `json:"collection"`
	Label      string `json:"label"`
	SizeKind   string `json:"sizeKind"`
	Flexible   bool   `json:"flexibleKind,omitempty"`
}

func buildCategoryPayload(l labeler, c services.Category) categoryPayload {
	return categoryPayload{
		Slug:       c.Slug,
		Collection: c.Collection,
		Label:      l.text(categoryLabels[c.Slug]),
		SizeKind:   string(c.Kind),
		Flexible:   c.FlexibleKind,
	}
}

type productPayload struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	RegularPrice *float64 `json:"regularPrice,omitempty"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Sizes        []string `json:"sizes"`
	RegularSizes []string `json:"regularSizes"`
	ShoeSizes    []string `json:"shoeSizes"`
	PantsSizes   []string `json:"pantsSizes"`
	IsShoe       bool     `json:"isShoe"`
	IsPants      bool     `json:"isPants"`
	IsOutOfStock bool     `json:"isOutOfStock"`
	SKU          string   `json:"sku,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}

func buildProductPayload(p services.Product) productPayload {
	return productPayload{
		ID:           p.ID,
		Category:     p.Category,
		Name:         p.Name,
		Price:        p.Price,
		RegularPrice: p.RegularPrice,
		Description:  p.Description,
		Image:        p.ImageURL,
		Sizes:        nonNilStrings(p.Sizes()),
		RegularSizes: nonNilStrings(p.RegularSizes),
		ShoeSizes:    nonNilStrings(p.ShoeSizes),
		PantsSizes:   nonNilStrings(p.PantsSizes),
		IsShoe:       p.IsShoe,
		IsPants:      p.IsPants,
		IsOutOfStock: p.IsOutOfStock,
		SKU:          p.SKU,
		CreatedAt:    formatTime(p.CreatedAt),
	}
}

func buildProductList(products []services.Product) []productPayload {
	out := make([]productPayload, 0, len(products))
	for _, p := range products {
		out = append(out, buildProductPayload(p))
	}
	return out
}

type cartItemPayload struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	RegularPrice  *float64 `json:"regularPrice,omitempty"`
	Image         string   `json:"image"`
	Quantity      int      `json:"quantity"`
	Sizes         []string `json:"sizes"`
	SelectedSizes []string `json:"selectedSizes"`
	Category      string   `json:"category,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	IsOutOfStock  bool     `json:"isOutOfStock,omitempty"`
}

func buildCartItems(items []services.CartItem) []cartItemPayload {
	out := make([]cartItemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, cartItemPayload{
			ID:            item.ID,
			Name:          item.Name,
			Price:         item.Price,
			RegularPrice:  item.RegularPrice,
			Image:         item.Image,
			Quantity:      item.Quantity,
			Sizes:         nonNilStrings(item.Sizes),
			SelectedSizes: nonNilStrings(item.SelectedSizes),
			Category:      item.Category,
			SKU:           item.SKU,
			IsOutOfStock:  item.IsOutOfStock,
		})
	}
	return out
}

type cartPayload struct {
	Items          []cartItemPayload `json:"items"`
	Total          float64           `json:"total"`
	Units          int               `json:"units"`
	CheckoutLimit  int               `json:"checkoutLimit,omitempty"`
	HasExcessItems bool              `json:"hasExcessItems"`
	SizesNotSaved  bool              `json:"sizesNotSaved,omitempty"`
	Warning        string            `json:"warning,omitempty"`
	SizesNotice    string            `json:"sizesNotice,omitempty"`
	ExcludedNotice string            `json:"excludedNotice,omitempty"`
	ShippingNotice string            `json:"shippingNotice"`
}

func buildCartPayload(l labeler, view services.CartView) cartPayload {
	payload := cartPayload{
		Items:          buildCartItems(view.Items),
		Total:          view.Total,
		Units:          view.Units,
		CheckoutLimit:  view.CheckoutLimit,
		HasExcessItems: view.HasExcessItems,
		ShippingNotice: l.text(i18n.MsgShippingNotIncluded),
	}
	if view.HasExcessItems {
		payload.Warning = l.text(i18n.MsgCartExcessItems, view.CheckoutLimit, view.CheckoutLimit)
		payload.ExcludedNotice = l.text(i18n.MsgCartExcessExcluded)
	}
	if view.SizesNotSaved {
		payload.SizesNotSaved = true
		payload.SizesNotice = l.text(i18n.MsgCartSizesNotSaved)
	}
	return payload
}

type customerInfoPayload struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phoneNumber"`
	Location      string `json:"location"`
	Town          string `json:"town"`
	Email         string `json:"email,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	PaymentLabel  string `json:"paymentLabel"`
}

type orderPayload struct {
	ID           string              `json:"id"`
	CustomerInfo customerInfoPayload `json:"customerInfo"`
	Items        []cartItemPayload   `json:"items"`
	TotalAmount  float64             `json:"totalAmount"`
	OrderDate    string              `json:"orderDate,omitempty"`
	Status       string              `json:"status"`
	StatusLabel  string              `json:"statusLabel"`
}

func buildOrderPayload(l labeler, o services.Order) orderPayload {
	payment := i18n.MsgPaymentCash
	if o.CustomerInfo.PaymentMethod == domain.PaymentMethodBank {
		payment = i18n.MsgPaymentBank
	}
	return orderPayload{
		ID: o.ID,
		CustomerInfo: customerInfoPayload{
			Name:          o.CustomerInfo.Name,
			PhoneNumber:   o.CustomerInfo.PhoneNumber,
			Location:      o.CustomerInfo.Location,
			Town:          o.CustomerInfo.Town,
			Email:         o.CustomerInfo.Email,
			Notes:         o.CustomerInfo.Notes,
			PaymentMethod: string(o.CustomerInfo.PaymentMethod),
			PaymentLabel:  l.text(payment),
		},
		Items:       buildCartItems(o.Items),
		TotalAmount: o.TotalAmount,
		OrderDate:   formatTime(o.OrderDate),
		Status:      string(o.Status),
		StatusLabel: l.text(orderStatusLabels[o.Status]),
	}
}

func buildOrderList(l labeler, orders []services.Order) []orderPayload {
	out := make([]orderPayload, 0, len(orders))
	for _, o := range orders {
		out = append(out, buildOrderPayload(l, o))
	}
	return out
}

type lastOrderPayload struct {
	OrderID     string            `json:"orderId"`
	Items       []cartItemPayload `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
	OrderDate   string            `json:"orderDate,omitempty"`
	Status      string            `json:"status"`
	StatusLabel string            `json:"statusLabel"`
}

func buildLastOrderPayload(l labeler, snap services.LastOrderSnapshot) lastOrderPayload {
	return lastOrderPayload{
		OrderID:     snap.OrderID,
		Items:       buildCartItems(snap.Items),
		TotalAmount: snap.TotalAmount,
		OrderDate:   formatTime(snap.OrderDate),
		Status:      string(snap.Status),
		StatusLabel: l.text(orderStatusLabels[snap.Status]),
	}
}

type contactPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Comment     string `json:"comment"`
	Timestamp   string `json:"timestamp,omitempty"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
}

func buildContactPayload(l labeler, m services.ContactMessage) contactPayload {
	return contactPayload{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Comment:     m.Comment,
		Timestamp:   formatTime(m.Timestamp),
		Status:      string(m.Status),
		StatusLabel: l.text(contactStatusLabels[m.Status]),
	}
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
