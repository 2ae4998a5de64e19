package service

import (
	"context"
	"fmt"
	"time"

	"travelapp/internal/db"
	"travelapp/internal/logger"
	"travelapp/internal/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type JobStore interface {
	PendingBookingIDsCreatedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error)
	ConfirmedBookingIDsEndedBefore(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, from, to string) (int64, error)
}

// JobService runs the periodic booking housekeeping.
type JobService struct {
	Repo       JobStore
	pendingTTL time.Duration
	now        func() time.Time
	log        *logrus.Entry
}

func NewJobService(repo JobStore, pendingTTL time.Duration) *JobService {
	return &JobService{
		Repo:       repo,
		pendingTTL: pendingTTL,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.New("jobs"),
	}
}

// CancelStalePendingBookings cancels pending bookings older than the TTL.
func (s *JobService) CancelStalePendingBookings(ctx context.Context) (int64, error) {
	ids, err := s.Repo.PendingBookingIDsCreatedBefore(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get stale pending bookings: %w", err)
	}
	return s.update(ctx, ids, db.BookingPending, db.BookingCanceled)
}

// CompleteFinishedBookings marks confirmed bookings whose check-out day has
// passed as completed.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) (int64, error) {
	today, _ := utils.ParseDate(utils.FormatDate(s.now()))
	ids, err := s.Repo.ConfirmedBookingIDsEndedBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get finished bookings: %w", err)
	}
	return s.update(ctx, ids, db.BookingConfirmed, db.BookingCompleted)
}

// update moves ids from one status to another. Bookings that changed status
// since they were selected are skipped.
func (s *JobService) update(ctx context.Context, ids []uuid.UUID, from, status string) (int64, error) {
	if len(ids) == 0 {
		s.log.WithField("status", status).Debug("cron job: nothing to update")
		return 0, nil
	}
	n, err := s.Repo.UpdateBookingStatuses(ctx, ids, from, status)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to update booking statuses: %w", err)
	}
	s.log.WithFields(logrus.Fields{"status": status, "count": n}).Info("cron job: bookings updated")
	return n, nil
}

// Run executes every job once, logging failures.
func (s *JobService) Run(ctx context.Context) {
	if _, err := s.CancelStalePendingBookings(ctx); err != nil {
		s.log.WithError(err).Error("cancel stale pending bookings failed")
	}
	if _, err := s.CompleteFinishedBookings(ctx); err != nil {
		s.log.WithError(err).Error("complete finished bookings failed")
	}
}

// Schedule registers Run on c with the given cron spec.
func (s *JobService) Schedule(ctx context.Context, c *cron.Cron, spec string) error {
	if _, err := c.AddFunc(spec, func() { s.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid job schedule %q: %w", spec, err)
	}
	return nil
}
