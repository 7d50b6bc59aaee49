package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/events"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validInput() models.EntryInput {
	return models.EntryInput{
		TruckNumber: " T-1 ",
		DateTime:    "2024-02-10T08:30",
		Odometer:    10500,
		City:        "Needles",
		State:       "ca",
		FuelType:    models.FuelDiesel,
		Amount:      60,
		Cost:        210,
	}
}

func newEntryService(t *testing.T) (*EntryService, *db.MemoryStore, *recordingPublisher) {
	t.Helper()
	store := db.NewMemoryStore()
	pub := &recordingPublisher{}
	logger, _ := test.NewNullLogger()
	return NewEntryService(store, pub, time.UTC, logger), store, pub
}

func TestEntryService_Create(t *testing.T) {
	svc, _, pub := newEntryService(t)

	created, err := svc.Create(context.Background(), "u1", validInput())
	require.NoError(t, err)
	require.Len(t, created, 1)

	e := created[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "CA", e.State)
	assert.Equal(t, "T-1", e.TruckNumber)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC), e.DateTime)
	assert.Equal(t, []events.Type{events.EntryCreated}, pub.types())
}

func TestEntryService_CreateDualFuel(t *testing.T) {
	svc, store, pub := newEntryService(t)

	in := validInput()
	in.SecondFuel = &models.SecondFuel{Amount: 5, Cost: 17.5}
	created, err := svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, models.FuelDiesel, created[0].FuelType)
	assert.Equal(t, models.FuelDEF, created[1].FuelType)
	assert.Equal(t, 5.0, created[1].Amount)
	assert.Equal(t, 17.5, created[1].Cost)
	assert.Equal(t, created[0].Odometer, created[1].Odometer)
	assert.Equal(t, created[0].State, created[1].State)
	assert.NotEqual(t, created[0].ID, created[1].ID)
	assert.Len(t, pub.types(), 2)

	_, total, err := store.FindEntries(context.Background(), "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestEntryService_CreateEmptySecondFuelIsSkipped(t *testing.T) {
	svc, _, _ := newEntryService(t)

	in := validInput()
	in.SecondFuel = &models.SecondFuel{}
	created, err := svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestEntryService_CreateCustomFuel(t *testing.T) {
	svc, _, _ := newEntryService(t)

	in := validInput()
	in.FuelType = models.FuelCustom
	in.CustomFuelType = " Biodiesel "
	in.SecondFuel = &models.SecondFuel{Amount: 10}
	created, err := svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Biodiesel", created[0].CustomFuelType)
	assert.Equal(t, models.FuelDiesel, created[1].FuelType)
	assert.Empty(t, created[1].CustomFuelType)

	in = validInput()
	in.CustomFuelType = "leftover"
	created, err = svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Empty(t, created[0].CustomFuelType)
}

func TestEntryService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.EntryInput)
		field  string
	}{
		{"missing state", func(in *models.EntryInput) { in.State = "" }, "state"},
		{"long state", func(in *models.EntryInput) { in.State = "CAL" }, "state"},
		{"numeric state", func(in *models.EntryInput) { in.State = "C1" }, "state"},
		{"bad fuel type", func(in *models.EntryInput) { in.FuelType = "gasoline" }, "fuelType"},
		{"custom without label", func(in *models.EntryInput) { in.FuelType = models.FuelCustom }, "customFuelType"},
		{"negative amount", func(in *models.EntryInput) { in.Amount = -1 }, "amount"},
		{"negative odometer", func(in *models.EntryInput) { in.Odometer = -5 }, "odometer"},
		{"missing date", func(in *models.EntryInput) { in.DateTime = "" }, "dateTime"},
		{"unparseable date", func(in *models.EntryInput) { in.DateTime = "yesterday" }, "dateTime"},
		{"negative second fuel", func(in *models.EntryInput) { in.SecondFuel = &models.SecondFuel{Cost: -2} }, "cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, pub := newEntryService(t)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), "u1", in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
			assert.Contains(t, apperr.MessageOf(err), tt.field)
			assert.Empty(t, pub.types())
		})
	}
}

func TestEntryService_RequiresUser(t *testing.T) {
	svc, _, _ := newEntryService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", validInput())
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = svc.List(ctx, "", 1, 10)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = svc.Get(ctx, "", "x")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = svc.Update(ctx, "", "x", validInput())
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = svc.SetIgnored(ctx, "", "x", true)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(svc.Delete(ctx, "", "x")))
}

func TestEntryService_UpdateAndSecondFuel(t *testing.T) {
	svc, _, pub := newEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)
	id := created[0].ID

	in := validInput()
	in.State = "nv"
	in.Odometer = 10600
	in.SecondFuel = &models.SecondFuel{Amount: 3, Cost: 12}
	out, err := svc.Update(ctx, "u1", id, in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, id, out[0].ID)
	assert.Equal(t, "NV", out[0].State)
	assert.Equal(t, 10600.0, out[0].Odometer)
	assert.Equal(t, models.FuelDEF, out[1].FuelType)

	assert.Equal(t, []events.Type{events.EntryCreated, events.EntryUpdated, events.EntryCreated}, pub.types())
}

func TestEntryService_UpdateNotFound(t *testing.T) {
	svc, _, _ := newEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u2", created[0].ID, validInput())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEntryService_SetIgnoredAndDelete(t *testing.T) {
	svc, _, pub := newEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)
	id := created[0].ID

	e, err := svc.SetIgnored(ctx, "u1", id, true)
	require.NoError(t, err)
	assert.True(t, e.IsIgnored)

	require.NoError(t, svc.Delete(ctx, "u1", id))
	_, err = svc.Get(ctx, "u1", id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, "u1", id)))
	_, err = svc.SetIgnored(ctx, "u1", id, false)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, []events.Type{events.EntryCreated, events.EntryIgnored, events.EntryDeleted}, pub.types())
}

func TestEntryService_List(t *testing.T) {
	svc, _, _ := newEntryService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		in := validInput()
		in.DateTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(time.RFC3339)
		_, err := svc.Create(ctx, "u1", in)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Entries, DefaultPageSize)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 25, page.Entries[0].DateTime.Day())

	page, err = svc.List(ctx, "u1", 2, 20)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 5)

	page, err = svc.List(ctx, "u1", 1, 1000)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 25)
	assert.Equal(t, 1, page.TotalPages)
}

func TestEntryService_ListCapsPage(t *testing.T) {
	entries := new(MockEntryCollection)
	entries.On("FindEntries", mock.Anything, "u1", MaxPage, MaxPageSize).Return([]models.FuelEntry{}, int64(3), nil)
	svc := NewEntryService(entries, nil, time.UTC, nil)

	page, err := svc.List(context.Background(), "u1", math.MaxInt, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxPage, page.CurrentPage)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, page.TotalPages)
	entries.AssertExpectations(t)
}

func TestEntryService_StoreFailureIsInternal(t *testing.T) {
	entries := new(MockEntryCollection)
	entries.On("InsertEntry", mock.Anything, mock.Anything).Return("", errStore)
	entries.On("FindEntries", mock.Anything, "u1", 1, DefaultPageSize).Return(nil, int64(0), errStore)

	logger, hook := test.NewNullLogger()
	svc := NewEntryService(entries, nil, time.UTC, logger)

	_, err := svc.Create(context.Background(), "u1", validInput())
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.True(t, errors.Is(err, errStore))

	_, err = svc.List(context.Background(), "u1", 1, 0)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "u1", hook.LastEntry().Data["user_id"])
}

func TestEntryService_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := db.NewMemoryStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	logger, hook := test.NewNullLogger()
	svc := NewEntryService(store, pub, time.UTC, logger)

	created, err := svc.Create(context.Background(), "u1", validInput())
	require.NoError(t, err)
	assert.Len(t, created, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Failed to publish entry event", hook.LastEntry().Message)
}
