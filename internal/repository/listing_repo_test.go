package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"travelapp/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

var listingCols = []string{"id", "title", "description", "location", "price_per_night", "max_guests", "created_at", "updated_at"}

func TestListingRepositoryListWithFilterAndPage(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM listings WHERE 1=1 AND location ILIKE $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`)).
		WithArgs(`%100\% Lisbon%`, 10, 20).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(id.String(), "Loft", "Bright", "Lisbon", "80.50", 2, now, now))

	listings, err := repo.List(context.Background(), ListingFilter{Location: "100% Lisbon"}, 10, 20)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, id, listings[0].ID)
	assert.Equal(t, "80.50", listings[0].PricePerNight.StringFixed(2))
	assert.Equal(t, 2, listings[0].MaxGuests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepositoryListAllWithoutLimit(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, description, location, price_per_night, max_guests, created_at, updated_at FROM listings WHERE 1=1 ORDER BY created_at, id`)).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(listingCols))

	listings, err := repo.List(context.Background(), ListingFilter{}, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepositoryCount(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM listings WHERE 1=1 AND location ILIKE $1`)).
		WithArgs("%porto%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background(), ListingFilter{Location: "porto"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestListingRepositoryGetNotFound(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM listings WHERE id = $1`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingRepositoryCreateAssignsID(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO listings`)).
		WithArgs(sqlmock.AnyArg(), "Loft", "Bright", "Lisbon", decimal.RequireFromString("80.5"), 2).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	l := &db.Listing{Title: "Loft", Description: "Bright", Location: "Lisbon", PricePerNight: decimal.RequireFromString("80.5"), MaxGuests: 2}
	require.NoError(t, repo.Create(context.Background(), l))
	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, now, l.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepositoryUpdateMissing(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)
	l := &db.Listing{ID: uuid.New(), Title: "Loft", Description: "Bright", Location: "Lisbon", PricePerNight: decimal.RequireFromString("80.5"), MaxGuests: 1}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE listings`)).
		WithArgs(l.ID, l.Title, l.Description, l.Location, l.PricePerNight, l.MaxGuests).
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), l)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingRepositoryDelete(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewListingRepository(conn)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM listings WHERE id = $1`)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM listings WHERE id = $1`)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23505", Constraint: "admins_email_key"}), ErrDuplicate)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23503", Constraint: "bookings_listing_id_fkey"}), ErrInvalidReference)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
