package repository

import (
	"context"
	"fmt"

	"travelapp/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, booking_id, amount, currency, session_id, checkout_url, status, created_at, updated_at`

type PaymentRepository struct {
	DB *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *db.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO payments (id, booking_id, amount, currency, session_id, checkout_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowxContext(ctx, query,
		p.ID, p.BookingID, p.Amount, p.Currency, p.SessionID, p.CheckoutURL, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating payment for booking %s: %w", p.BookingID, translate(err))
	}
	return nil
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*db.Payment, error) {
	var p db.Payment
	err := r.DB.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("payment for session %s: %w", sessionID, translate(err))
	}
	return &p, nil
}

// HasCompleted reports whether bookingID already has a completed payment.
func (r *PaymentRepository) HasCompleted(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = $2)`, bookingID, db.PaymentCompleted)
	if err != nil {
		return false, fmt.Errorf("error checking payments of booking %s: %w", bookingID, err)
	}
	return exists, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, p *db.Payment, status string) error {
	err := r.DB.QueryRowxContext(ctx,
		`UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`, p.ID, status,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating payment %s: %w", p.ID, translate(err))
	}
	p.Status = status
	return nil
}
