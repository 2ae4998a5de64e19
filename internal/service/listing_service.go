package service

import (
	"context"
	"strings"

	"travelapp/internal/db"
	"travelapp/internal/entities"
	"travelapp/internal/logger"
	"travelapp/internal/repository"
	"travelapp/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ListingStore interface {
	List(ctx context.Context, f repository.ListingFilter, limit, offset int) ([]db.Listing, error)
	Count(ctx context.Context, f repository.ListingFilter) (int, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Listing, error)
	Create(ctx context.Context, l *db.Listing) error
	Update(ctx context.Context, l *db.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ Resource[entities.ListingRequest, entities.ListingResponse] = (*ListingService)(nil)

type ListingService struct {
	Repo ListingStore
	log  *logrus.Entry
}

func NewListingService(repo ListingStore) *ListingService {
	return &ListingService{Repo: repo, log: logger.New("listings")}
}

func (s *ListingService) List(ctx context.Context, q entities.ListQuery) ([]entities.ListingResponse, int, error) {
	f := repository.ListingFilter{Location: strings.TrimSpace(q.Filters.Get("location"))}
	limit, offset := window(q)

	listings, err := s.Repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total := len(listings)
	if q.Paginate {
		if total, err = s.Repo.Count(ctx, f); err != nil {
			return nil, 0, err
		}
	}

	out := make([]entities.ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, entities.ToListingResponse(&listings[i]))
	}
	return out, total, nil
}

func (s *ListingService) Retrieve(ctx context.Context, id string) (*entities.ListingResponse, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := entities.ToListingResponse(l)
	return &resp, nil
}

func (s *ListingService) Create(ctx context.Context, req entities.ListingRequest) (*entities.ListingResponse, error) {
	if err := validateListing(&req); err != nil {
		return nil, err
	}
	l := &db.Listing{}
	req.Apply(l)
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.log.WithField("listing_id", l.ID).Info("listing created")
	resp := entities.ToListingResponse(l)
	return &resp, nil
}

func (s *ListingService) Update(ctx context.Context, id string, req entities.ListingRequest) (*entities.ListingResponse, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, l, req)
}

func (s *ListingService) PartialUpdate(ctx context.Context, id string, patch []byte) (*entities.ListingResponse, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := mergePatch(entities.ListingRequestFrom(l), patch)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, l, req)
}

func (s *ListingService) Destroy(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, uid); err != nil {
		return storeError(err)
	}
	s.log.WithField("listing_id", uid).Info("listing deleted")
	return nil
}

func (s *ListingService) get(ctx context.Context, id string) (*db.Listing, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	l, err := s.Repo.Get(ctx, uid)
	if err != nil {
		return nil, storeError(err)
	}
	return l, nil
}

func (s *ListingService) save(ctx context.Context, l *db.Listing, req entities.ListingRequest) (*entities.ListingResponse, error) {
	if err := validateListing(&req); err != nil {
		return nil, err
	}
	req.Apply(l)
	if err := s.Repo.Update(ctx, l); err != nil {
		return nil, storeError(err)
	}
	resp := entities.ToListingResponse(l)
	return &resp, nil
}

func validateListing(req *entities.ListingRequest) error {
	req.Normalize()
	return validation.Struct(req).OrNil()
}
