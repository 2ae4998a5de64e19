package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"travelapp/internal/db"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore keeps every table in process memory. It backs STORE=memory
// and the service and handler tests. Records are listed in insertion order.
type MemoryStore struct {
	mu sync.RWMutex

	listings     map[uuid.UUID]db.Listing
	listingOrder []uuid.UUID
	bookings     map[uuid.UUID]db.Booking
	bookingOrder []uuid.UUID
	payments     map[uuid.UUID]db.Payment
	admins       map[string]db.Admin
	nextAdminID  int

	now func() time.Time

	Listings *MemoryListingRepository
	Bookings *MemoryBookingRepository
	Payments *MemoryPaymentRepository
	Admins   AdminAuthRepository
	Jobs     *MemoryJobRepository
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		listings: map[uuid.UUID]db.Listing{},
		bookings: map[uuid.UUID]db.Booking{},
		payments: map[uuid.UUID]db.Payment{},
		admins:   map[string]db.Admin{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.Listings = &MemoryListingRepository{s: s}
	s.Bookings = &MemoryBookingRepository{s: s}
	s.Payments = &MemoryPaymentRepository{s: s}
	s.Admins = &memoryAdminRepository{s: s}
	s.Jobs = &MemoryJobRepository{s: s}
	return s
}

// SetClock replaces the clock used for created_at and updated_at.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func removeID(order []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type MemoryListingRepository struct {
	s *MemoryStore
}

func (f ListingFilter) matches(l db.Listing) bool {
	return f.Location == "" || strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location))
}

func (r *MemoryListingRepository) filtered(f ListingFilter) []db.Listing {
	out := []db.Listing{}
	for _, id := range r.s.listingOrder {
		if l := r.s.listings[id]; f.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func (r *MemoryListingRepository) List(ctx context.Context, f ListingFilter, limit, offset int) ([]db.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return window(r.filtered(f), limit, offset), nil
}

func (r *MemoryListingRepository) Count(ctx context.Context, f ListingFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtered(f)), nil
}

func (r *MemoryListingRepository) Get(ctx context.Context, id uuid.UUID) (*db.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	return &l, nil
}

func (r *MemoryListingRepository) Create(ctx context.Context, l *db.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if _, exists := r.s.listings[l.ID]; exists {
		return fmt.Errorf("listing %s: %w", l.ID, ErrDuplicate)
	}
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.listings[l.ID] = *l
	r.s.listingOrder = append(r.s.listingOrder, l.ID)
	return nil
}

func (r *MemoryListingRepository) Update(ctx context.Context, l *db.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.listings[l.ID]
	if !ok {
		return fmt.Errorf("listing %s: %w", l.ID, ErrNotFound)
	}
	l.CreatedAt = current.CreatedAt
	l.UpdatedAt = r.s.now()
	r.s.listings[l.ID] = *l
	return nil
}

// Delete cascades to the listing's bookings and their payments.
func (r *MemoryListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[id]; !ok {
		return fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	delete(r.s.listings, id)
	r.s.listingOrder = removeID(r.s.listingOrder, id)

	for bookingID, b := range r.s.bookings {
		if b.ListingID == id {
			r.s.deleteBooking(bookingID)
		}
	}
	return nil
}

type MemoryBookingRepository struct {
	s *MemoryStore
}

func (f BookingFilter) matches(b db.Booking) bool {
	if f.ListingID != nil && b.ListingID != *f.ListingID {
		return false
	}
	return f.Status == "" || b.Status == f.Status
}

func (r *MemoryBookingRepository) filtered(f BookingFilter) []db.Booking {
	out := []db.Booking{}
	for _, id := range r.s.bookingOrder {
		if b := r.s.bookings[id]; f.matches(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *MemoryBookingRepository) List(ctx context.Context, f BookingFilter, limit, offset int) ([]db.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return window(r.filtered(f), limit, offset), nil
}

func (r *MemoryBookingRepository) Count(ctx context.Context, f BookingFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtered(f)), nil
}

func (r *MemoryBookingRepository) Get(ctx context.Context, id uuid.UUID) (*db.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return &b, nil
}

func (r *MemoryBookingRepository) Create(ctx context.Context, b *db.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[b.ListingID]; !ok {
		return fmt.Errorf("listing %s: %w", b.ListingID, ErrInvalidReference)
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	r.s.bookings[b.ID] = *b
	r.s.bookingOrder = append(r.s.bookingOrder, b.ID)
	return nil
}

func (r *MemoryBookingRepository) Update(ctx context.Context, b *db.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.bookings[b.ID]
	if !ok {
		return fmt.Errorf("booking %s: %w", b.ID, ErrNotFound)
	}
	if _, ok := r.s.listings[b.ListingID]; !ok {
		return fmt.Errorf("listing %s: %w", b.ListingID, ErrInvalidReference)
	}
	b.CreatedAt = current.CreatedAt
	b.UpdatedAt = r.s.now()
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *MemoryBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	b.Status = status
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return nil
}

func (r *MemoryBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	r.s.deleteBooking(id)
	return nil
}

// deleteBooking must be called with mu held.
func (s *MemoryStore) deleteBooking(id uuid.UUID) {
	delete(s.bookings, id)
	s.bookingOrder = removeID(s.bookingOrder, id)
	for paymentID, p := range s.payments {
		if p.BookingID == id {
			delete(s.payments, paymentID)
		}
	}
}

type MemoryJobRepository struct {
	s *MemoryStore
}

func (r *MemoryJobRepository) PendingBookingIDsCreatedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	return r.selectIDs(func(b db.Booking) bool {
		return b.Status == db.BookingPending && b.CreatedAt.Before(before)
	}), nil
}

func (r *MemoryJobRepository) ConfirmedBookingIDsEndedBefore(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	return r.selectIDs(func(b db.Booking) bool {
		return b.Status == db.BookingConfirmed && b.CheckOut.Before(day)
	}), nil
}

func (r *MemoryJobRepository) selectIDs(match func(db.Booking) bool) []uuid.UUID {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []uuid.UUID{}
	for _, id := range r.s.bookingOrder {
		if match(r.s.bookings[id]) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *MemoryJobRepository) UpdateBookingStatuses(ctx context.Context, ids []uuid.UUID, from, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		b, ok := r.s.bookings[id]
		if !ok || b.Status != from {
			continue
		}
		b.Status = to
		b.UpdatedAt = r.s.now()
		r.s.bookings[id] = b
		n++
	}
	return n, nil
}

type MemoryPaymentRepository struct {
	s *MemoryStore
}

func (r *MemoryPaymentRepository) Create(ctx context.Context, p *db.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[p.BookingID]; !ok {
		return fmt.Errorf("booking %s: %w", p.BookingID, ErrInvalidReference)
	}
	for _, existing := range r.s.payments {
		if existing.SessionID == p.SessionID {
			return fmt.Errorf("payment session %s: %w", p.SessionID, ErrDuplicate)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.payments[p.ID] = *p
	return nil
}

func (r *MemoryPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*db.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if p.SessionID == sessionID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("payment for session %s: %w", sessionID, ErrNotFound)
}

func (r *MemoryPaymentRepository) HasCompleted(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payments {
		if p.BookingID == bookingID && p.Status == db.PaymentCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryPaymentRepository) UpdateStatus(ctx context.Context, p *db.Payment, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[p.ID]
	if !ok {
		return fmt.Errorf("payment %s: %w", p.ID, ErrNotFound)
	}
	stored.Status = status
	stored.UpdatedAt = r.s.now()
	r.s.payments[p.ID] = stored
	p.Status = stored.Status
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

type memoryAdminRepository struct {
	s *MemoryStore
}

func (r *memoryAdminRepository) GetByEmail(ctx context.Context, email string) (*db.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	admin, ok := r.s.admins[email]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

func (r *memoryAdminRepository) CreateNewUser(ctx context.Context, email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.admins[email]; exists {
		return fmt.Errorf("admin %s: %w", email, ErrDuplicate)
	}
	r.s.nextAdminID++
	r.s.admins[email] = db.Admin{ID: r.s.nextAdminID, Email: email, PasswordHash: string(hashedPassword)}
	return nil
}
