package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCanceled  = "canceled"
	BookingCompleted = "completed"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Listing struct {
	ID            uuid.UUID       `db:"id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Location      string          `db:"location"`
	PricePerNight decimal.Decimal `db:"price_per_night"`
	MaxGuests     int             `db:"max_guests"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type Booking struct {
	ID         uuid.UUID       `db:"id"`
	ListingID  uuid.UUID       `db:"listing_id"`
	GuestName  string          `db:"guest_name"`
	GuestEmail string          `db:"guest_email"`
	GuestPhone string          `db:"guest_phone"`
	CheckIn    time.Time       `db:"check_in"`
	CheckOut   time.Time       `db:"check_out"`
	Guests     int             `db:"guests"`
	Status     string          `db:"status"`
	TotalPrice decimal.Decimal `db:"total_price"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

type Payment struct {
	ID          uuid.UUID `db:"id"`
	BookingID   uuid.UUID `db:"booking_id"`
	Amount      int64     `db:"amount"`
	Currency    string    `db:"currency"`
	SessionID   string    `db:"session_id"`
	CheckoutURL string    `db:"checkout_url"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Admin struct {
	ID           int    `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}
