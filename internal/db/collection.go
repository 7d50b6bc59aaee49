package db

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
)

// ErrNotFound is returned when a document does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// pageOffset returns how many entries precede page, saturating instead of
// overflowing for very large pages.
func pageOffset(page, limit int) int64 {
	if page < 1 || limit < 1 {
		return 0
	}
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return int64(page-1) * int64(limit)
}

// EntryCollection defines the interface for fuel entry operations.
// Every method is scoped to a single user.
type EntryCollection interface {
	InsertEntry(ctx context.Context, entry models.FuelEntry) (string, error)
	FindEntries(ctx context.Context, userID string, page, limit int) ([]models.FuelEntry, int64, error)
	FindEntryByID(ctx context.Context, userID, id string) (*models.FuelEntry, error)
	UpdateEntry(ctx context.Context, userID, id string, entry models.FuelEntry) error
	SetIgnored(ctx context.Context, userID, id string, ignored bool) error
	DeleteEntry(ctx context.Context, userID, id string) error
	// FindReportableEntries returns entries with start <= dateTime <= end that
	// are not ignored, ascending by dateTime.
	FindReportableEntries(ctx context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error)
	// FindEntriesSince returns all entries (ignored included) at or after since, newest first.
	FindEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.FuelEntry, error)
}

// TruckCollection defines the interface for truck operations.
type TruckCollection interface {
	InsertTruck(ctx context.Context, truck models.Truck) (string, error)
	FindTrucks(ctx context.Context, userID string) ([]models.Truck, error)
	DeleteTruck(ctx context.Context, userID, id string) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// Store bundles the collections used by the API.
type Store struct {
	Entries EntryCollection
	Trucks  TruckCollection
	Users   UserCollection
	close   func(ctx context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
