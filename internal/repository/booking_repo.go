package repository

import (
	"context"
	"fmt"

	"travelapp/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, listing_id, guest_name, guest_email, guest_phone, check_in, check_out, guests, status, total_price, created_at, updated_at`

type BookingRepository struct {
	DB *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (f BookingFilter) where() *whereBuilder {
	w := newWhere()
	if f.ListingID != nil {
		w.add(`listing_id = ?`, *f.ListingID)
	}
	if f.Status != "" {
		w.add(`status = ?`, f.Status)
	}
	return w
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter, limit, offset int) ([]db.Booking, error) {
	w := f.where()
	query, args := w.paginate(`SELECT `+bookingColumns+` FROM bookings`+w.clause+` ORDER BY created_at, id`, limit, offset)

	bookings := []db.Booking{}
	if err := r.DB.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) Count(ctx context.Context, f BookingFilter) (int, error) {
	w := f.where()
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings`+w.clause, w.args...); err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	return total, nil
}

func (r *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*db.Booking, error) {
	var b db.Booking
	err := r.DB.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, translate(err))
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *db.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
		INSERT INTO bookings
		(id, listing_id, guest_name, guest_email, guest_phone, check_in, check_out, guests, status, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowxContext(ctx, query,
		b.ID,
		b.ListingID,
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		b.CheckIn,
		b.CheckOut,
		b.Guests,
		b.Status,
		b.TotalPrice,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", translate(err))
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *db.Booking) error {
	query := `
		UPDATE bookings
		SET listing_id = $2, guest_name = $3, guest_email = $4, guest_phone = $5, check_in = $6,
			check_out = $7, guests = $8, status = $9, total_price = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowxContext(ctx, query,
		b.ID,
		b.ListingID,
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		b.CheckIn,
		b.CheckOut,
		b.Guests,
		b.Status,
		b.TotalPrice,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", b.ID, translate(err))
	}
	return nil
}

// UpdateStatus sets only the status column.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating booking %s status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return nil
}
