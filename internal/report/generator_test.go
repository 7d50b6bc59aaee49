package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) FindReportableEntries(ctx context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelEntry), args.Error(1)
}

func TestGenerator_RejectsBeforeStoreAccess(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		year    int
		quarter int
		kind    apperr.Kind
	}{
		{"no user", "", 2024, 1, apperr.KindUnauthenticated},
		{"missing year", "u1", 0, 1, apperr.KindInvalidArgument},
		{"missing quarter", "u1", 2024, 0, apperr.KindInvalidArgument},
		{"quarter out of range", "u1", 2024, 5, apperr.KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(mockQuerier)
			g := NewGenerator(q, time.UTC, nil)

			out, err := g.Generate(context.Background(), tt.userID, tt.year, tt.quarter)
			assert.Nil(t, out)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			q.AssertNotCalled(t, "FindReportableEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGenerator_QueriesQuarterBounds(t *testing.T) {
	q := new(mockQuerier)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	q.On("FindReportableEntries", mock.Anything, "u1", start, end).Return([]models.FuelEntry{
		entry("T1", day(time.April, 2), 100, "AZ", 10, 30, models.FuelDiesel),
		entry("T1", day(time.May, 2), 300, "AZ", 10, 30, models.FuelDiesel),
	}, nil)

	g := NewGenerator(q, time.UTC, nil)
	out, err := g.Generate(context.Background(), "u1", 2024, 2)
	require.NoError(t, err)

	res := requireResult(t, out)
	assert.Equal(t, 200.0, rowFor(t, res, "AZ").TotalMiles)
	q.AssertExpectations(t)
}

func TestGenerator_StoreFailureIsInternalAndLogged(t *testing.T) {
	q := new(mockQuerier)
	q.On("FindReportableEntries", mock.Anything, "u1", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset by peer"))

	logger, hook := test.NewNullLogger()
	g := NewGenerator(q, time.UTC, logger)

	out, err := g.Generate(context.Background(), "u1", 2024, 1)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.NotContains(t, apperr.MessageOf(err), "connection reset")

	entryLog := hook.LastEntry()
	require.NotNil(t, entryLog)
	assert.Equal(t, logrus.ErrorLevel, entryLog.Level)
	assert.Equal(t, "u1", entryLog.Data["user_id"])
}

func TestGenerator_InsufficientDataIsNotAnError(t *testing.T) {
	q := new(mockQuerier)
	q.On("FindReportableEntries", mock.Anything, "u1", mock.Anything, mock.Anything).Return([]models.FuelEntry{}, nil)

	g := NewGenerator(q, time.UTC, nil)
	out, err := g.Generate(context.Background(), "u1", 2024, 3)
	require.NoError(t, err)
	assert.IsType(t, &InsufficientData{}, out)
}

func TestGenerator_WithMemoryStore(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	for _, e := range []models.FuelEntry{
		entry("T1", time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), 10000, "AZ", 50, 175, models.FuelDiesel),
		entry("T1", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), 10500, "CA", 60, 210, models.FuelDiesel),
		// outside Q1
		entry("T1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 11000, "NV", 70, 245, models.FuelDiesel),
	} {
		e.UserID = "u1"
		_, err := store.InsertEntry(ctx, e)
		require.NoError(t, err)
	}
	_, err := store.InsertEntry(ctx, models.FuelEntry{UserID: "u2", DateTime: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), State: "TX", Amount: 1000})
	require.NoError(t, err)

	g := NewGenerator(store, time.UTC, nil)
	out, err := g.Generate(ctx, "u1", 2024, 1)
	require.NoError(t, err)

	res := requireResult(t, out)
	assert.Equal(t, []Row{
		{Jurisdiction: "AZ", TotalMiles: 500, TotalFuel: 50, TotalCost: 175},
		{Jurisdiction: "CA", TotalMiles: 0, TotalFuel: 60, TotalCost: 210},
	}, res.Rows)
}
