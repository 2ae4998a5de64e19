package entities

import (
	"time"

	"travelapp/internal/db"
	"travelapp/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID          uuid.UUID   `json:"payment_id"`
	BookingID   uuid.UUID   `json:"booking_id"`
	Amount      utils.Money `json:"amount"`
	Currency    string      `json:"currency"`
	Status      string      `json:"status"`
	CheckoutURL string      `json:"checkout_url,omitempty"`
	SessionID   string      `json:"session_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func ToPaymentResponse(p *db.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		BookingID:   p.BookingID,
		Amount:      utils.NewMoney(decimal.New(p.Amount, -utils.MoneyPlaces)),
		Currency:    p.Currency,
		Status:      p.Status,
		CheckoutURL: p.CheckoutURL,
		SessionID:   p.SessionID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
