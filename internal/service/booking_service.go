package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travelapp/internal/db"
	"travelapp/internal/entities"
	apperrors "travelapp/internal/errors"
	"travelapp/internal/logger"
	"travelapp/internal/repository"
	"travelapp/internal/utils"
	"travelapp/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingStore interface {
	List(ctx context.Context, f repository.BookingFilter, limit, offset int) ([]db.Booking, error)
	Count(ctx context.Context, f repository.BookingFilter) (int, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Booking, error)
	Create(ctx context.Context, b *db.Booking) error
	Update(ctx context.Context, b *db.Booking) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListingGetter is the part of the listing store bookings depend on.
type ListingGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*db.Listing, error)
}

// Notifier is told about booking events. Implementations must not block.
type Notifier interface {
	BookingReceived(booking entities.BookingResponse, listing db.Listing)
	BookingConfirmed(booking entities.BookingResponse, listing db.Listing)
}

var _ Resource[entities.BookingRequest, entities.BookingResponse] = (*BookingService)(nil)

type BookingService struct {
	Repo     BookingStore
	Listings ListingGetter
	notifier Notifier
	log      *logrus.Entry
}

// NewBookingService wires the booking resource. notifier may be nil.
func NewBookingService(repo BookingStore, listings ListingGetter, notifier Notifier) *BookingService {
	return &BookingService{
		Repo:     repo,
		Listings: listings,
		notifier: notifier,
		log:      logger.New("bookings"),
	}
}

func (s *BookingService) List(ctx context.Context, q entities.ListQuery) ([]entities.BookingResponse, int, error) {
	var f repository.BookingFilter
	if raw := strings.TrimSpace(q.Filters.Get("listing_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			// nothing can match a malformed id
			return []entities.BookingResponse{}, 0, nil
		}
		f.ListingID = &id
	}
	f.Status = strings.TrimSpace(q.Filters.Get("status"))
	limit, offset := window(q)

	bookings, err := s.Repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total := len(bookings)
	if q.Paginate {
		if total, err = s.Repo.Count(ctx, f); err != nil {
			return nil, 0, err
		}
	}

	out := make([]entities.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, entities.ToBookingResponse(&bookings[i]))
	}
	return out, total, nil
}

func (s *BookingService) Retrieve(ctx context.Context, id string) (*entities.BookingResponse, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := entities.ToBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) Create(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error) {
	listing, err := s.validate(ctx, &req)
	if err != nil {
		return nil, err
	}

	b := &db.Booking{Status: db.BookingPending}
	if err := s.apply(b, req, listing); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, referenceError(err, req.ListingID)
	}

	resp := entities.ToBookingResponse(b)
	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "listing_id": b.ListingID}).Info("booking created")
	if s.notifier != nil {
		s.notifier.BookingReceived(resp, *listing)
	}
	return &resp, nil
}

func (s *BookingService) Update(ctx context.Context, id string, req entities.BookingRequest) (*entities.BookingResponse, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, b, req)
}

func (s *BookingService) PartialUpdate(ctx context.Context, id string, patch []byte) (*entities.BookingResponse, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := mergePatch(entities.BookingRequestFrom(b), patch)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, b, req)
}

func (s *BookingService) Destroy(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, uid); err != nil {
		return storeError(err)
	}
	s.log.WithField("booking_id", uid).Info("booking deleted")
	return nil
}

func (s *BookingService) get(ctx context.Context, id string) (*db.Booking, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	b, err := s.Repo.Get(ctx, uid)
	if err != nil {
		return nil, storeError(err)
	}
	return b, nil
}

func (s *BookingService) save(ctx context.Context, b *db.Booking, req entities.BookingRequest) (*entities.BookingResponse, error) {
	listing, err := s.validate(ctx, &req)
	if err != nil {
		return nil, err
	}
	if err := s.apply(b, req, listing); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, referenceError(storeError(err), req.ListingID)
	}
	resp := entities.ToBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) apply(b *db.Booking, req entities.BookingRequest, listing *db.Listing) error {
	if err := req.Apply(b); err != nil {
		return fmt.Errorf("applying validated booking: %w", err)
	}
	total := utils.StayPrice(listing.PricePerNight, utils.Nights(b.CheckIn, b.CheckOut))
	if total.GreaterThan(utils.MaxTotal) {
		verr := apperrors.NewValidationError()
		verr.Add("check_out", "Stay is too long for this listing's price.")
		return verr
	}
	b.TotalPrice = total
	return nil
}

// validate runs the field rules, the date ordering rule and resolves the
// referenced listing. All failures are reported together.
func (s *BookingService) validate(ctx context.Context, req *entities.BookingRequest) (*db.Listing, error) {
	req.Normalize()
	verr := validation.Struct(req)

	_, badIn := verr.Fields["check_in"]
	_, badOut := verr.Fields["check_out"]
	if !badIn && !badOut {
		in, _ := utils.ParseDate(req.CheckIn)
		out, _ := utils.ParseDate(req.CheckOut)
		if !out.After(in) {
			verr.Add("check_out", "Check-out date must be after check-in date.")
		}
	}

	var listing *db.Listing
	if _, badListing := verr.Fields["listing_id"]; !badListing {
		id, _ := uuid.Parse(req.ListingID)
		l, err := s.Listings.Get(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			verr.Add("listing_id", missingListing(req.ListingID))
		case err != nil:
			return nil, err
		default:
			listing = l
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return listing, nil
}

// referenceError covers a listing deleted between validation and write.
func referenceError(err error, listingID string) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		verr := apperrors.NewValidationError()
		verr.Add("listing_id", missingListing(listingID))
		return verr
	}
	return err
}

func missingListing(id string) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id)
}
