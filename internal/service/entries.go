package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/events"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage bounds the requested page so the store offset stays small.
	MaxPage = 100000
)

// EntryPage is one page of a user's entries, newest first.
type EntryPage struct {
	Entries     []models.FuelEntry `json:"entries"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Total       int64              `json:"total"`
}

// EntryService creates, edits and lists fuel entries and announces each
// change on the event publisher.
type EntryService struct {
	entries   db.EntryCollection
	publisher events.Publisher
	validate  *validator.Validate
	loc       *time.Location
	log       logrus.FieldLogger
}

// NewEntryService wires an entry service. Zone-less timestamps are read in loc.
func NewEntryService(entries db.EntryCollection, publisher events.Publisher, loc *time.Location, log logrus.FieldLogger) *EntryService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EntryService{
		entries:   entries,
		publisher: publisher,
		validate:  newValidator(),
		loc:       loc,
		log:       log,
	}
}

// build validates in and converts it to the stored form of the primary entry
// and, when the second fuel carries any amount or cost, its companion entry.
func (s *EntryService) build(userID string, in models.EntryInput) (models.FuelEntry, *models.FuelEntry, error) {
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	in.TruckNumber = strings.TrimSpace(in.TruckNumber)
	in.City = strings.TrimSpace(in.City)
	if err := s.validate.Struct(in); err != nil {
		return models.FuelEntry{}, nil, validationError(err)
	}
	at, err := models.ParseDateTime(in.DateTime, s.loc)
	if err != nil {
		return models.FuelEntry{}, nil, apperr.InvalidArgument("Invalid fields: dateTime (datetime)")
	}

	entry := models.FuelEntry{
		UserID:      userID,
		TruckNumber: in.TruckNumber,
		DateTime:    at,
		Odometer:    in.Odometer,
		City:        in.City,
		State:       in.State,
		FuelType:    in.FuelType,
		Amount:      in.Amount,
		Cost:        in.Cost,
		IsIgnored:   in.IsIgnored,
		ReceiptURL:  in.ReceiptURL,
	}
	if in.FuelType == models.FuelCustom {
		entry.CustomFuelType = strings.TrimSpace(in.CustomFuelType)
	}

	var second *models.FuelEntry
	if sf := in.SecondFuel; sf != nil && (sf.Amount > 0 || sf.Cost > 0) {
		e := entry
		e.FuelType = models.ComplementaryFuel(in.FuelType)
		e.CustomFuelType = ""
		e.Amount = sf.Amount
		e.Cost = sf.Cost
		second = &e
	}
	return entry, second, nil
}

// Create stores a new entry and, for dual-fuel stops, its companion entry.
// The two inserts run concurrently.
func (s *EntryService) Create(ctx context.Context, userID string, in models.EntryInput) ([]models.FuelEntry, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	entry, second, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}

	toInsert := []models.FuelEntry{entry}
	if second != nil {
		toInsert = append(toInsert, *second)
	}
	created, err := s.insertAll(ctx, toInsert)
	if err != nil {
		s.log.WithField("user_id", userID).WithError(err).Error("Failed to create fuel entry")
		return nil, apperr.Internal("Failed to save entry.", err)
	}
	for _, e := range created {
		s.publish(ctx, events.EntryCreated, userID, e.ID)
	}
	return created, nil
}

func (s *EntryService) insertAll(ctx context.Context, entries []models.FuelEntry) ([]models.FuelEntry, error) {
	created := make([]models.FuelEntry, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i := range entries {
		i := i
		g.Go(func() error {
			id, err := s.entries.InsertEntry(gctx, entries[i])
			if err != nil {
				return err
			}
			created[i] = entries[i]
			created[i].ID = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces the editable fields of an entry. A second fuel on the
// input is stored as an additional new entry.
func (s *EntryService) Update(ctx context.Context, userID, id string, in models.EntryInput) ([]models.FuelEntry, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	entry, second, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}

	logger := s.log.WithFields(logrus.Fields{"user_id": userID, "entry_id": id})
	if err := s.entries.UpdateEntry(ctx, userID, id, entry); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Entry not found.")
		}
		logger.WithError(err).Error("Failed to update fuel entry")
		return nil, apperr.Internal("Failed to save entry.", err)
	}
	s.publish(ctx, events.EntryUpdated, userID, id)

	updated, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	out := []models.FuelEntry{*updated}
	if second != nil {
		created, err := s.insertAll(ctx, []models.FuelEntry{*second})
		if err != nil {
			logger.WithError(err).Error("Failed to add second fuel entry")
			return nil, apperr.Internal("Failed to save entry.", err)
		}
		s.publish(ctx, events.EntryCreated, userID, created[0].ID)
		out = append(out, created...)
	}
	return out, nil
}

// Get returns one of the user's entries.
func (s *EntryService) Get(ctx context.Context, userID, id string) (*models.FuelEntry, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	entry, err := s.entries.FindEntryByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Entry not found.")
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "entry_id": id}).WithError(err).Error("Failed to load fuel entry")
		return nil, apperr.Internal("Failed to load entry.", err)
	}
	return entry, nil
}

// List returns a page of entries. Page is 1-based; out of range values fall
// back to the defaults.
func (s *EntryService) List(ctx context.Context, userID string, page, limit int) (*EntryPage, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	entries, total, err := s.entries.FindEntries(ctx, userID, page, limit)
	if err != nil {
		s.log.WithField("user_id", userID).WithError(err).Error("Failed to list fuel entries")
		return nil, apperr.Internal("Failed to load entries.", err)
	}
	return &EntryPage{
		Entries:     entries,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		Total:       total,
	}, nil
}

// SetIgnored toggles whether an entry counts toward reports.
func (s *EntryService) SetIgnored(ctx context.Context, userID, id string, ignored bool) (*models.FuelEntry, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	if err := s.entries.SetIgnored(ctx, userID, id, ignored); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Entry not found.")
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "entry_id": id}).WithError(err).Error("Failed to toggle ignore")
		return nil, apperr.Internal("Failed to update entry.", err)
	}
	s.publish(ctx, events.EntryIgnored, userID, id)
	return s.Get(ctx, userID, id)
}

// Delete removes an entry permanently.
func (s *EntryService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperr.Unauthenticated("Must be authenticated")
	}
	if err := s.entries.DeleteEntry(ctx, userID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Entry not found.")
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "entry_id": id}).WithError(err).Error("Failed to delete fuel entry")
		return apperr.Internal("Failed to delete entry.", err)
	}
	s.publish(ctx, events.EntryDeleted, userID, id)
	return nil
}

func (s *EntryService) publish(ctx context.Context, t events.Type, userID, entryID string) {
	if err := s.publisher.Publish(ctx, events.NewEvent(t, userID, entryID)); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"entry_id": entryID,
			"event":    t,
		}).WithError(err).Warn("Failed to publish entry event")
	}
}
