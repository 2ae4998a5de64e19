package service

import (
	"context"
	"errors"
	"fmt"

	"travelapp/internal/db"
	"travelapp/internal/entities"
	apperrors "travelapp/internal/errors"
	"travelapp/internal/logger"
	"travelapp/internal/repository"
	"travelapp/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionPaid = "paid"

type CheckoutRequest struct {
	Amount        int64
	Currency      string
	Description   string
	CustomerEmail string
	Reference     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentGateway is the payment provider seen by PaymentService.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	SessionPaymentStatus(ctx context.Context, sessionID string) (string, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *db.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*db.Payment, error)
	HasCompleted(ctx context.Context, bookingID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, p *db.Payment, status string) error
}

type PaymentService struct {
	gateway  PaymentGateway
	payments PaymentStore
	bookings BookingStore
	listings ListingGetter
	notifier Notifier
	currency string
	log      *logrus.Entry
}

// NewPaymentService wires payments. A nil gateway disables them.
func NewPaymentService(gateway PaymentGateway, payments PaymentStore, bookings BookingStore, listings ListingGetter, notifier Notifier, currency string) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		payments: payments,
		bookings: bookings,
		listings: listings,
		notifier: notifier,
		currency: currency,
		log:      logger.New("payments"),
	}
}

func (s *PaymentService) enabled() error {
	if s.gateway == nil {
		return apperrors.ErrUnavailable("Payments are not configured.")
	}
	return nil
}

// Initiate opens a checkout session for the full booking amount.
func (s *PaymentService) Initiate(ctx context.Context, bookingID string) (*entities.PaymentResponse, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	id, err := parseID(bookingID)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if booking.Status == db.BookingCanceled {
		return nil, apperrors.ErrBadRequest("Canceled bookings cannot be paid.")
	}
	paid, err := s.payments.HasCompleted(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, apperrors.ErrConflict("Booking is already paid.")
	}

	amount := utils.ToMinorUnits(booking.TotalPrice)
	if amount <= 0 {
		return nil, apperrors.ErrBadRequest("Booking has no amount to pay.")
	}
	listing, err := s.listings.Get(ctx, booking.ListingID)
	if err != nil {
		return nil, storeError(err)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Amount:        amount,
		Currency:      s.currency,
		Description:   fmt.Sprintf("%s, %s to %s", listing.Title, utils.FormatDate(booking.CheckIn), utils.FormatDate(booking.CheckOut)),
		CustomerEmail: booking.GuestEmail,
		Reference:     booking.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	payment := &db.Payment{
		BookingID:   booking.ID,
		Amount:      amount,
		Currency:    s.currency,
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
		Status:      db.PaymentPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "session_id": sess.ID, "amount": amount}).Info("payment initiated")

	resp := entities.ToPaymentResponse(payment)
	return &resp, nil
}

// Verify asks the provider for the session state and completes the payment
// when it has been paid.
func (s *PaymentService) Verify(ctx context.Context, sessionID string) (*entities.PaymentResponse, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, apperrors.ErrBadRequest("session_id required")
	}
	payment, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, storeError(err)
	}

	if payment.Status == db.PaymentPending {
		status, err := s.gateway.SessionPaymentStatus(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if status == sessionPaid {
			if err := s.complete(ctx, payment); err != nil {
				return nil, err
			}
		}
	}
	resp := entities.ToPaymentResponse(payment)
	return &resp, nil
}

// CompleteSession handles a checkout.session.completed notification.
func (s *PaymentService) CompleteSession(ctx context.Context, sessionID string) error {
	payment, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return storeError(err)
	}
	return s.complete(ctx, payment)
}

// FailSession handles a checkout.session.expired notification.
func (s *PaymentService) FailSession(ctx context.Context, sessionID string) error {
	payment, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return storeError(err)
	}
	if payment.Status != db.PaymentPending {
		return nil
	}
	return s.payments.UpdateStatus(ctx, payment, db.PaymentFailed)
}

// complete confirms the booking before it marks the payment completed, so a
// failed step is retried by the next notification. A booking canceled while
// its checkout was open is reinstated since the guest has been charged.
func (s *PaymentService) complete(ctx context.Context, payment *db.Payment) error {
	if payment.Status == db.PaymentCompleted {
		return nil
	}
	entry := s.log.WithFields(logrus.Fields{"booking_id": payment.BookingID, "session_id": payment.SessionID})

	booking, err := s.bookings.Get(ctx, payment.BookingID)
	if err != nil {
		return fmt.Errorf("loading booking %s: %w", payment.BookingID, err)
	}
	switch booking.Status {
	case db.BookingConfirmed, db.BookingCompleted:
	default:
		if booking.Status == db.BookingCanceled {
			entry.Warn("payment received for canceled booking, reinstating it")
		}
		if err := s.bookings.UpdateStatus(ctx, booking.ID, db.BookingConfirmed); err != nil {
			return fmt.Errorf("confirming booking %s: %w", booking.ID, err)
		}
	}

	if err := s.payments.UpdateStatus(ctx, payment, db.PaymentCompleted); err != nil {
		return err
	}
	entry.Info("payment completed")

	if s.notifier != nil {
		s.notifyConfirmed(ctx, payment.BookingID)
	}
	return nil
}

func (s *PaymentService) notifyConfirmed(ctx context.Context, bookingID uuid.UUID) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		s.log.WithError(err).Warn("could not load booking for confirmation notice")
		return
	}
	listing, err := s.listings.Get(ctx, booking.ListingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.WithError(err).Warn("could not load listing for confirmation notice")
		return
	}
	var l db.Listing
	if listing != nil {
		l = *listing
	}
	s.notifier.BookingConfirmed(entities.ToBookingResponse(booking), l)
}
