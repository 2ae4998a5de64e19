package entities

import (
	"fmt"
	"strings"
	"time"

	"travelapp/internal/db"
	"travelapp/internal/utils"

	"github.com/google/uuid"
)

type BookingRequest struct {
	ListingID  string `json:"listing_id" validate:"required,uuid"`
	GuestName  string `json:"guest_name" validate:"required,max=255"`
	GuestEmail string `json:"guest_email" validate:"required,email,max=254"`
	GuestPhone string `json:"guest_phone,omitempty" validate:"omitempty,e164"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests     *int   `json:"guests,omitempty" validate:"omitempty,gte=1"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed canceled completed"`
}

type BookingResponse struct {
	ID         uuid.UUID   `json:"id"`
	ListingID  uuid.UUID   `json:"listing_id"`
	GuestName  string      `json:"guest_name"`
	GuestEmail string      `json:"guest_email"`
	GuestPhone string      `json:"guest_phone,omitempty"`
	CheckIn    string      `json:"check_in"`
	CheckOut   string      `json:"check_out"`
	Nights     int         `json:"nights"`
	Guests     int         `json:"guests"`
	Status     string      `json:"status"`
	TotalPrice utils.Money `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (r *BookingRequest) Normalize() {
	r.ListingID = strings.TrimSpace(r.ListingID)
	r.GuestName = strings.TrimSpace(r.GuestName)
	r.GuestEmail = strings.TrimSpace(r.GuestEmail)
	r.GuestPhone = strings.TrimSpace(r.GuestPhone)
	r.CheckIn = strings.TrimSpace(r.CheckIn)
	r.CheckOut = strings.TrimSpace(r.CheckOut)
	r.Status = strings.TrimSpace(r.Status)
}

// Apply copies the validated request onto b. Status is left untouched when
// the request omits it. total_price is owned by the caller.
func (r BookingRequest) Apply(b *db.Booking) error {
	listingID, err := uuid.Parse(r.ListingID)
	if err != nil {
		return fmt.Errorf("invalid listing_id: %w", err)
	}
	checkIn, err := utils.ParseDate(r.CheckIn)
	if err != nil {
		return fmt.Errorf("invalid check_in: %w", err)
	}
	checkOut, err := utils.ParseDate(r.CheckOut)
	if err != nil {
		return fmt.Errorf("invalid check_out: %w", err)
	}

	b.ListingID = listingID
	b.GuestName = r.GuestName
	b.GuestEmail = r.GuestEmail
	b.GuestPhone = r.GuestPhone
	b.CheckIn = checkIn
	b.CheckOut = checkOut
	b.Guests = 1
	if r.Guests != nil {
		b.Guests = *r.Guests
	}
	if r.Status != "" {
		b.Status = r.Status
	}
	return nil
}

func BookingRequestFrom(b *db.Booking) BookingRequest {
	guests := b.Guests
	return BookingRequest{
		ListingID:  b.ListingID.String(),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		CheckIn:    utils.FormatDate(b.CheckIn),
		CheckOut:   utils.FormatDate(b.CheckOut),
		Guests:     &guests,
		Status:     b.Status,
	}
}

func ToBookingResponse(b *db.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		ListingID:  b.ListingID,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		CheckIn:    utils.FormatDate(b.CheckIn),
		CheckOut:   utils.FormatDate(b.CheckOut),
		Nights:     utils.Nights(b.CheckIn, b.CheckOut),
		Guests:     b.Guests,
		Status:     b.Status,
		TotalPrice: utils.NewMoney(b.TotalPrice),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
