package repository

import (
	"context"
	"fmt"

	"travelapp/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const listingColumns = `id, title, description, location, price_per_night, max_guests, created_at, updated_at`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

func (f ListingFilter) where() *whereBuilder {
	w := newWhere()
	if f.Location != "" {
		w.add(`location ILIKE ?`, containsPattern(f.Location))
	}
	return w
}

// List returns listings ordered by creation time. A non-positive limit
// returns every match.
func (r *ListingRepository) List(ctx context.Context, f ListingFilter, limit, offset int) ([]db.Listing, error) {
	w := f.where()
	query, args := w.paginate(`SELECT `+listingColumns+` FROM listings`+w.clause+` ORDER BY created_at, id`, limit, offset)

	listings := []db.Listing{}
	if err := r.DB.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("error listing listings: %w", err)
	}
	return listings, nil
}

func (r *ListingRepository) Count(ctx context.Context, f ListingFilter) (int, error) {
	w := f.where()
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings`+w.clause, w.args...); err != nil {
		return 0, fmt.Errorf("error counting listings: %w", err)
	}
	return total, nil
}

func (r *ListingRepository) Get(ctx context.Context, id uuid.UUID) (*db.Listing, error) {
	var l db.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", id, translate(err))
	}
	return &l, nil
}

// Create inserts l, assigning an id when it has none.
func (r *ListingRepository) Create(ctx context.Context, l *db.Listing) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	query := `
		INSERT INTO listings (id, title, description, location, price_per_night, max_guests)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowxContext(ctx, query,
		l.ID, l.Title, l.Description, l.Location, l.PricePerNight, l.MaxGuests,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating listing: %w", translate(err))
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l *db.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, location = $4, price_per_night = $5, max_guests = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowxContext(ctx, query,
		l.ID, l.Title, l.Description, l.Location, l.PricePerNight, l.MaxGuests,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating listing %s: %w", l.ID, translate(err))
	}
	return nil
}

// Delete removes a listing; its bookings go with it (ON DELETE CASCADE).
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting listing %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting listing %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	return nil
}
