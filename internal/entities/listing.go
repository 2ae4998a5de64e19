package entities

import (
	"strings"
	"time"

	"travelapp/internal/db"
	"travelapp/internal/utils"

	"github.com/google/uuid"
)

// ListingRequest is the writable shape of a listing, used by create, update
// and as the merge target of partial updates.
type ListingRequest struct {
	Title         string       `json:"title" validate:"required,max=255"`
	Description   string       `json:"description" validate:"required"`
	Location      string       `json:"location" validate:"required,max=255"`
	PricePerNight *utils.Money `json:"price_per_night" validate:"required,dgt=0,dmax=99999999.99,dplaces=2"`
	MaxGuests     *int         `json:"max_guests,omitempty" validate:"omitempty,gte=1"`
}

type ListingResponse struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Location      string      `json:"location"`
	PricePerNight utils.Money `json:"price_per_night"`
	MaxGuests     int         `json:"max_guests"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Normalize trims surrounding whitespace so blank strings fail "required".
func (r *ListingRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
}

// Apply copies the validated request onto l.
func (r ListingRequest) Apply(l *db.Listing) {
	l.Title = r.Title
	l.Description = r.Description
	l.Location = r.Location
	if r.PricePerNight != nil {
		l.PricePerNight = r.PricePerNight.Decimal
	}
	l.MaxGuests = 1
	if r.MaxGuests != nil {
		l.MaxGuests = *r.MaxGuests
	}
}

// ListingRequestFrom is the inverse of Apply.
func ListingRequestFrom(l *db.Listing) ListingRequest {
	price := utils.NewMoney(l.PricePerNight)
	guests := l.MaxGuests
	return ListingRequest{
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: &price,
		MaxGuests:     &guests,
	}
}

func ToListingResponse(l *db.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: utils.NewMoney(l.PricePerNight),
		MaxGuests:     l.MaxGuests,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
