package api

import (
	"net/http"
	"strings"

	"travelapp/internal/auth"
	"travelapp/internal/entities"
	"travelapp/internal/service"

	"github.com/gorilla/mux"
)

// RouterConfig lists what NewRouter wires.
type RouterConfig struct {
	Listings  service.Resource[entities.ListingRequest, entities.ListingResponse]
	Bookings  service.Resource[entities.BookingRequest, entities.BookingResponse]
	Payments  *service.PaymentService
	AdminAuth service.AdminAuthService
	Health    http.Handler

	WebhookSecret         string
	JWTSecret             string
	AuthRequiredForWrites bool
	// RateLimiter is optional; nil disables throttling.
	RateLimiter *RateLimiter
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	if cfg.Health != nil {
		handle(r, "/healthz", cfg.Health, http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware)
	}

	listingGuard := func(h http.Handler) http.Handler { return h }
	if cfg.AuthRequiredForWrites {
		listingGuard = auth.RequireAdminForWrites(cfg.JWTSecret)
	}
	registerResource(api, "/listings", NewResourceHandler(cfg.Listings), listingGuard)
	registerResource(api, "/bookings", NewResourceHandler(cfg.Bookings), nil)

	if cfg.Payments != nil {
		payments := NewStripeWebhookHandler(cfg.WebhookSecret, cfg.Payments)
		handle(api, "/bookings/{id}/payment", http.HandlerFunc(payments.InitiatePayment), http.MethodPost)
		handle(api, "/payments/verify", http.HandlerFunc(payments.VerifyPayment), http.MethodGet)
		handle(api, "/webhooks/stripe", http.HandlerFunc(payments.HandleWebhook), http.MethodPost)
	}

	if cfg.AdminAuth != nil {
		admins := NewAdminAuthHandler(cfg.AdminAuth)
		handle(api, "/auth/login", http.HandlerFunc(admins.Login), http.MethodPost)
		handle(api, "/auth/admins", auth.RequireAdmin(cfg.JWTSecret)(http.HandlerFunc(admins.CreateUserAdmin)), http.MethodPost)
	}
	return r
}

func registerResource[Req, Resp any](r *mux.Router, prefix string, h *ResourceHandler[Req, Resp], guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(h http.Handler) http.Handler { return h }
	}
	item := prefix + "/{id}"

	handle(r, prefix, guard(http.HandlerFunc(h.List)), http.MethodGet, http.MethodHead)
	handle(r, prefix, guard(http.HandlerFunc(h.Create)), http.MethodPost)
	handle(r, item, guard(http.HandlerFunc(h.Retrieve)), http.MethodGet, http.MethodHead)
	handle(r, item, guard(http.HandlerFunc(h.Update)), http.MethodPut)
	handle(r, item, guard(http.HandlerFunc(h.PartialUpdate)), http.MethodPatch)
	handle(r, item, guard(http.HandlerFunc(h.Destroy)), http.MethodDelete)
}

// handle registers path with and without a trailing slash.
func handle(r *mux.Router, path string, h http.Handler, methods ...string) {
	path = strings.TrimSuffix(path, "/")
	r.Handle(path, h).Methods(methods...)
	r.Handle(path+"/", h).Methods(methods...)
}
