package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/events"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockEntryCollection is a mock implementation of db.EntryCollection
type MockEntryCollection struct {
	mock.Mock
}

func (m *MockEntryCollection) InsertEntry(ctx context.Context, entry models.FuelEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockEntryCollection) FindEntries(ctx context.Context, userID string, page, limit int) ([]models.FuelEntry, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.FuelEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntryCollection) FindEntryByID(ctx context.Context, userID, id string) (*models.FuelEntry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FuelEntry), args.Error(1)
}

func (m *MockEntryCollection) UpdateEntry(ctx context.Context, userID, id string, entry models.FuelEntry) error {
	return m.Called(ctx, userID, id, entry).Error(0)
}

func (m *MockEntryCollection) SetIgnored(ctx context.Context, userID, id string, ignored bool) error {
	return m.Called(ctx, userID, id, ignored).Error(0)
}

func (m *MockEntryCollection) DeleteEntry(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockEntryCollection) FindReportableEntries(ctx context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelEntry), args.Error(1)
}

func (m *MockEntryCollection) FindEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.FuelEntry, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelEntry), args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errStore = errors.New("store unavailable")
