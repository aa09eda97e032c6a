package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

// AdminHandlersDeps bundles the services behind the back office.
type AdminHandlersDeps struct {
	Auth      services.AdminAuthService
	Products  services.AdminProductService
	Orders    services.OrderService
	Contacts  services.ContactService
	Localizer *i18n.Localizer
	Clock     func() time.Time
	// MaxUploadBytes bounds image upload bodies. Zero selects the default.
	MaxUploadBytes int64
	// RequestTimeout bounds every admin route except the order stream.
	RequestTimeout time.Duration
	// StreamHeartbeat is the keep-alive interval for the order stream.
	StreamHeartbeat time.Duration
}

// AdminHandlers serves /admin.
type AdminHandlers struct {
	auth      services.AdminAuthService
	products  services.AdminProductService
	orders    services.OrderService
	contacts  services.ContactService
	localizer *i18n.Localizer
	clock     func() time.Time

	maxUpload int64
	timeout   time.Duration
	heartbeat time.Duration
}

const (
	defaultMaxUploadBytes  = 6 << 20
	defaultStreamHeartbeat = 25 * time.Second
)

// NewAdminHandlers constructs the admin handlers. Missing services answer 503.
func NewAdminHandlers(deps AdminHandlersDeps) *AdminHandlers {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	heartbeat := deps.StreamHeartbeat
	if heartbeat <= 0 {
		heartbeat = defaultStreamHeartbeat
	}
	return &AdminHandlers{
		auth:      deps.Auth,
		products:  deps.Products,
		orders:    deps.Orders,
		contacts:  deps.Contacts,
		localizer: deps.Localizer,
		clock:     clock,
		maxUpload: maxUpload,
		timeout:   timeout,
		heartbeat: heartbeat,
	}
}

// Routes wires the /admin endpoints. Everything except login requires a signed-in admin.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.With(middleware.Timeout(h.timeout)).Post("/login", h.login)

	r.Group(func(authed chi.Router) {
		authed.Use(RequireAdmin)

		authed.Get("/orders/stream", h.streamOrders)

		authed.Group(func(g chi.Router) {
			g.Use(middleware.Timeout(h.timeout))

			g.Post("/logout", h.logout)
			g.Get("/me", h.me)

			g.Get("/products/{category}", h.listProducts)
			g.Post("/products/{category}", h.createProduct)
			g.Get("/products/{category}/{productId}", h.getProduct)
			g.Patch("/products/{category}/{productId}", h.updateProduct)
			g.Delete("/products/{category}/{productId}", h.deleteProduct)
			g.Post("/uploads/images", h.uploadImage)

			g.Get("/orders", h.listOrders)
			g.Patch("/orders/{orderId}", h.updateOrderStatus)
			g.Delete("/orders/{orderId}", h.deleteOrder)

			g.Get("/contacts", h.listContacts)
			g.Patch("/contacts/{messageId}", h.updateContactStatus)
			g.Delete("/contacts/{messageId}", h.deleteContact)
		})
	})
}

func (h *AdminHandlers) labels(r *http.Request) labeler {
	return labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
}
