package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps users, trucks and entries in process memory. It implements
// EntryCollection, TruckCollection and UserCollection and is safe for
// concurrent use. Data is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.FuelEntry
	trucks  map[string]models.Truck
	users   map[string]models.User
	// insertion order keeps ties on date_time deterministic
	seq      int64
	entrySeq map[string]int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]models.FuelEntry),
		trucks:   make(map[string]models.Truck),
		users:    make(map[string]models.User),
		entrySeq: make(map[string]int64),
	}
}

// NewMemoryBackedStore wraps a fresh MemoryStore in a Store.
func NewMemoryBackedStore() *Store {
	m := NewMemoryStore()
	return &Store{Entries: m, Trucks: m, Users: m}
}

func (m *MemoryStore) InsertEntry(_ context.Context, entry models.FuelEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.LastEditedAt = now
	m.seq++
	m.entries[entry.ID] = entry
	m.entrySeq[entry.ID] = m.seq
	return entry.ID, nil
}

func (m *MemoryStore) FindEntries(_ context.Context, userID string, page, limit int) ([]models.FuelEntry, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.userEntries(userID, func(models.FuelEntry) bool { return true })
	m.sortEntries(all, false)

	total := int64(len(all))
	offset := pageOffset(page, limit)
	if offset >= total {
		return []models.FuelEntry{}, total, nil
	}
	start := int(offset)
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *MemoryStore) FindEntryByID(_ context.Context, userID, id string) (*models.FuelEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok || entry.UserID != userID {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (m *MemoryStore) UpdateEntry(_ context.Context, userID, id string, entry models.FuelEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	entry.ID = existing.ID
	entry.UserID = existing.UserID
	entry.CreatedAt = existing.CreatedAt
	entry.LastEditedAt = time.Now().UTC()
	m.entries[id] = entry
	return nil
}

func (m *MemoryStore) SetIgnored(_ context.Context, userID, id string, ignored bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok || entry.UserID != userID {
		return ErrNotFound
	}
	entry.IsIgnored = ignored
	entry.LastEditedAt = time.Now().UTC()
	m.entries[id] = entry
	return nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok || entry.UserID != userID {
		return ErrNotFound
	}
	delete(m.entries, id)
	delete(m.entrySeq, id)
	return nil
}

func (m *MemoryStore) FindReportableEntries(_ context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.userEntries(userID, func(e models.FuelEntry) bool {
		return !e.IsIgnored && !e.DateTime.Before(start) && !e.DateTime.After(end)
	})
	m.sortEntries(out, true)
	return out, nil
}

func (m *MemoryStore) FindEntriesSince(_ context.Context, userID string, since time.Time) ([]models.FuelEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.userEntries(userID, func(e models.FuelEntry) bool {
		return !e.DateTime.Before(since)
	})
	m.sortEntries(out, false)
	return out, nil
}

func (m *MemoryStore) userEntries(userID string, keep func(models.FuelEntry) bool) []models.FuelEntry {
	out := []models.FuelEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemoryStore) sortEntries(entries []models.FuelEntry, ascending bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.DateTime.Equal(b.DateTime) {
			if ascending {
				return a.DateTime.Before(b.DateTime)
			}
			return a.DateTime.After(b.DateTime)
		}
		if ascending {
			return m.entrySeq[a.ID] < m.entrySeq[b.ID]
		}
		return m.entrySeq[a.ID] > m.entrySeq[b.ID]
	})
}

func (m *MemoryStore) InsertTruck(_ context.Context, truck models.Truck) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	truck.ID = uuid.NewString()
	truck.CreatedAt = time.Now().UTC()
	m.trucks[truck.ID] = truck
	return truck.ID, nil
}

func (m *MemoryStore) FindTrucks(_ context.Context, userID string) ([]models.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Truck{}
	for _, t := range m.trucks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteTruck(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trucks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.trucks, id)
	return nil
}

func (m *MemoryStore) InsertUser(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}
