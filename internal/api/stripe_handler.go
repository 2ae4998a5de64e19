package api

import (
	"encoding/json"
	"io"
	"net/http"

	"travelapp/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	eventSessionCompleted = "checkout.session.completed"
	eventSessionExpired   = "checkout.session.expired"
)

type StripeWebhookHandler struct {
	WebhookSecret  string
	paymentService *service.PaymentService
}

func NewStripeWebhookHandler(webhookSecret string, paymentService *service.PaymentService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret:  webhookSecret,
		paymentService: paymentService,
	}
}

// InitiatePayment opens a checkout session for the booking in the path.
func (h *StripeWebhookHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.paymentService.Initiate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// VerifyPayment is hit by the checkout success page with ?session_id=.
func (h *StripeWebhookHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.paymentService.Verify(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.WebhookSecret == "" {
		writeDetail(w, http.StatusServiceUnavailable, "Payments are not configured.")
		return
	}

	const maxWebhookBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Warn("error reading webhook body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.WithError(err).Warn("webhook signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	entry := log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	switch event.Type {
	case eventSessionCompleted, eventSessionExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			entry.WithError(err).Warn("error parsing checkout.session")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			entry.Warn("no session id in checkout session event")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if event.Type == eventSessionCompleted {
			err = h.paymentService.CompleteSession(r.Context(), sess.ID)
		} else {
			err = h.paymentService.FailSession(r.Context(), sess.ID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		entry.WithField("session_id", sess.ID).Info("webhook handled")
	default:
		entry.Debug("unhandled event type")
	}

	w.WriteHeader(http.StatusOK)
}
