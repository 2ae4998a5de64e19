package repository

import (
	"context"
	"fmt"
	"time"

	"travelapp/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type JobRepository struct {
	DB *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// PendingBookingIDsCreatedBefore finds pending bookings that were never paid
// or confirmed since before.
func (r *JobRepository) PendingBookingIDsCreatedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	return r.selectIDs(ctx, `SELECT id FROM bookings WHERE status = $1 AND created_at < $2`, db.BookingPending, before)
}

// ConfirmedBookingIDsEndedBefore finds confirmed bookings whose check-out
// date is earlier than day.
func (r *JobRepository) ConfirmedBookingIDsEndedBefore(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	return r.selectIDs(ctx, `SELECT id FROM bookings WHERE status = $1 AND check_out < $2`, db.BookingConfirmed, day)
}

func (r *JobRepository) selectIDs(ctx context.Context, query string, args ...interface{}) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.DB.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("error querying booking ids: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses moves every id still in status from to status to and
// returns how many rows changed.
func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2::uuid[]) AND status = $3`
	result, err := r.DB.ExecContext(ctx, query, to, pq.Array(raw), from)
	if err != nil {
		return 0, fmt.Errorf("error updating booking statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		logrus.WithError(err).Warn("could not get rows affected")
		return 0, nil
	}
	return rowsAffected, nil
}
