package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travelapp/internal/repository"
	"travelapp/internal/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "router-test-secret"

type stubGateway struct {
	sessions int
	paid     map[string]bool
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutSession, error) {
	g.sessions++
	id := fmt.Sprintf("cs_test_%d", g.sessions)
	return &service.CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

func (g *stubGateway) SessionPaymentStatus(ctx context.Context, sessionID string) (string, error) {
	if g.paid[sessionID] {
		return "paid", nil
	}
	return "unpaid", nil
}

type testServer struct {
	router  *mux.Router
	store   *repository.MemoryStore
	gateway *stubGateway
	auth    service.AdminAuthService
}

type serverOption func(*RouterConfig)

func withWriteAuth(cfg *RouterConfig) { cfg.AuthRequiredForWrites = true }

func withRateLimit(rps float64, burst int) serverOption {
	return func(cfg *RouterConfig) { cfg.RateLimiter = NewRateLimiter(rps, burst) }
}

func withHealth(p Pinger) serverOption {
	return func(cfg *RouterConfig) { cfg.Health = NewHealthHandler("postgres", p) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	gw := &stubGateway{paid: map[string]bool{}}

	bookings := service.NewBookingService(store.Bookings, store.Listings, nil)
	adminAuth := service.NewAdminAuthService(store.Admins, jwtSecret)
	cfg := RouterConfig{
		Listings:      service.NewListingService(store.Listings),
		Bookings:      bookings,
		Payments:      service.NewPaymentService(gw, store.Payments, store.Bookings, store.Listings, nil, "usd"),
		AdminAuth:     adminAuth,
		Health:        NewHealthHandler("memory", nil),
		WebhookSecret: webhookSecret,
		JWTSecret:     jwtSecret,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &testServer{router: NewRouter(cfg), store: store, gateway: gw, auth: adminAuth}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func listingPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":           "Alfama Loft",
		"description":     "Two rooms over the river",
		"location":        "Lisbon",
		"price_per_night": 80,
		"max_guests":      3,
	}
}

func (s *testServer) createListing(t *testing.T) map[string]interface{} {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/listings/", listingPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]interface{}](t, rec)
}

func (s *testServer) createBooking(t *testing.T, listingID string) map[string]interface{} {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/bookings/", map[string]interface{}{
		"listing_id":  listingID,
		"guest_name":  "Ana Silva",
		"guest_email": "ana@example.com",
		"check_in":    "2024-06-01",
		"check_out":   "2024-06-04",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]interface{}](t, rec)
}

func TestListingEndpoints(t *testing.T) {
	s := newTestServer(t)

	created := s.createListing(t)
	id := created["id"].(string)
	assert.Equal(t, "Alfama Loft", created["title"])
	assert.Equal(t, "80.00", created["price_per_night"])

	rec := s.do(t, http.MethodGet, "/api/listings/"+id+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[map[string]interface{}](t, rec))

	// trailing slash is optional
	rec = s.do(t, http.MethodGet, "/api/listings/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.createListing(t)
	rec = s.do(t, http.MethodGet, "/api/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 2)

	rec = s.do(t, http.MethodPatch, "/api/listings/"+id+"/", `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Renamed", patched["title"])
	assert.Equal(t, created["location"], patched["location"])

	rec = s.do(t, http.MethodPut, "/api/listings/"+id+"/", map[string]interface{}{"title": "Only title"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"This field is required."}, errs["description"])
	assert.Equal(t, []string{"This field is required."}, errs["price_per_night"])

	rec = s.do(t, http.MethodDelete, "/api/listings/"+id+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/listings/"+id+"/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String())
}

func TestListingPagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 5; i++ {
		s.createListing(t)
	}

	rec := s.do(t, http.MethodGet, "/api/listings/?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Total   int                      `json:"total"`
		Limit   int                      `json:"limit"`
		Offset  int                      `json:"offset"`
		Results []map[string]interface{} `json:"results"`
	}](t, rec)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	assert.Len(t, page.Results, 2)
}

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		query         string
		paginate      bool
		limit, offset int
	}{
		{"", false, 0, 0},
		{"location=lisbon", false, 0, 0},
		{"limit=10", true, 10, 0},
		{"offset=4", true, 50, 4},
		{"limit=abc&offset=-1", true, 50, 0},
		{"limit=1000", true, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/listings/?"+tt.query, nil)
			q := parseListQuery(req.URL.Query())
			assert.Equal(t, tt.paginate, q.Paginate)
			assert.Equal(t, tt.limit, q.Limit)
			assert.Equal(t, tt.offset, q.Offset)
		})
	}
}

func TestMalformedRequests(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/listings/", `{"title": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "JSON parse error")

	rec = s.do(t, http.MethodPost, "/api/listings/", `{"title":"x","description":"y","location":"z","price_per_night":"free"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"A valid number is required."}, decode[map[string][]string](t, rec)["price_per_night"])

	rec = s.do(t, http.MethodGet, "/api/listings/not-a-uuid/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/listings/"+"6f1c2a52-6a55-4a53-9c1e-2f3b7c1d9e10/", listingPayload())
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"detail":"Method \"POST\" not allowed."}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/unknown/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	all := s.do(t, http.MethodGet, "/api/listings/", nil)
	assert.JSONEq(t, `[]`, all.Body.String())
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t)
	booking := s.createBooking(t, listing["id"].(string))
	bookingBody := map[string]interface{}{
		"listing_id":  listing["id"],
		"guest_name":  "Ana Silva",
		"guest_email": "ana@example.com",
		"check_in":    "2024-06-01",
		"check_out":   "2024-06-04",
	}

	for _, prefix := range []string{"/api/listings/", "/api/bookings/"} {
		body := interface{}(listingPayload())
		if prefix == "/api/bookings/" {
			body = bookingBody
		}
		for _, id := range []string{"6f1c2a52-6a55-4a53-9c1e-2f3b7c1d9e10", "not-a-uuid"} {
			rec := s.do(t, http.MethodPut, prefix+id+"/", body)
			assert.Equal(t, http.StatusNotFound, rec.Code, "PUT "+prefix+id)
			rec = s.do(t, http.MethodPatch, prefix+id, `{"guests":1}`)
			assert.Equal(t, http.StatusNotFound, rec.Code, "PATCH "+prefix+id)
			rec = s.do(t, http.MethodDelete, prefix+id, nil)
			require.Equal(t, http.StatusNotFound, rec.Code, "DELETE "+prefix+id)
			assert.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String())
		}
	}

	rec := s.do(t, http.MethodGet, "/api/bookings/"+booking["id"].(string), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t)
	huge := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := s.do(t, http.MethodPost, "/api/listings/", huge)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"detail":"Request body too large."}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/listings/"+listing["id"].(string), huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/listings/"+listing["id"].(string), huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListingPriceIsDecimal(t *testing.T) {
	s := newTestServer(t)

	payload := listingPayload()
	payload["price_per_night"] = "80.555"
	rec := s.do(t, http.MethodPost, "/api/listings/", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Ensure that there are no more than 2 decimal places."}, decode[map[string][]string](t, rec)["price_per_night"])

	payload["price_per_night"] = 100000000
	rec = s.do(t, http.MethodPost, "/api/listings/", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Ensure this value is less than or equal to 99999999.99."}, decode[map[string][]string](t, rec)["price_per_night"])

	payload["price_per_night"] = "19.99"
	rec = s.do(t, http.MethodPost, "/api/listings/", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "19.99", decode[map[string]interface{}](t, rec)["price_per_night"])
}

func TestBookingEndpoints(t *testing.T) {
	s := newTestServer(t)
	listing := s.createListing(t)
	listingID := listing["id"].(string)

	booking := s.createBooking(t, listingID)
	assert.Equal(t, "pending", booking["status"])
	assert.Equal(t, "240.00", booking["total_price"])

	rec := s.do(t, http.MethodGet, "/api/bookings/?listing_id="+listingID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/bookings/", map[string]interface{}{
		"listing_id":  "6f1c2a52-6a55-4a53-9c1e-2f3b7c1d9e10",
		"guest_name":  "Bo",
		"guest_email": "bo@example.com",
		"check_in":    "2024-06-04",
		"check_out":   "2024-06-04",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{`Invalid pk "6f1c2a52-6a55-4a53-9c1e-2f3b7c1d9e10" - object does not exist.`}, errs["listing_id"])
	assert.Equal(t, []string{"Check-out date must be after check-in date."}, errs["check_out"])

	rec = s.do(t, http.MethodGet, "/api/bookings/", nil)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/listings/"+listingID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/bookings/"+booking["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingWritesRequireAdminWhenEnabled(t *testing.T) {
	s := newTestServer(t, withWriteAuth)
	require.NoError(t, s.auth.EnsureAdmin(context.Background(), "admin@example.com", "s3cret-pass"))

	rec := s.do(t, http.MethodGet, "/api/listings/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/listings/", listingPayload())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login/", map[string]string{"email": "admin@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodPost, "/api/listings/", listingPayload(), "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// bookings stay open to guests
	rec = s.do(t, http.MethodGet, "/api/bookings/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/admins", map[string]string{"email": "ops@example.com", "password": "long-enough"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/auth/admins", map[string]string{"email": "ops@example.com", "password": "long-enough"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, withRateLimit(0.001, 2))

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodGet, "/api/listings/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/listings/", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"detail":"Request was throttled."}`, rec.Body.String())

	// health checks are not throttled
	rec = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, rec.Body.String())

	s = newTestServer(t, withHealth(pingerFunc(func(context.Context) error { return errors.New("down") })))
	rec = s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","store":"postgres"}`, rec.Body.String())
}
