package service

import (
	"context"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const recentEntryCount = 5

// MonthStats summarises one calendar month of entries.
type MonthStats struct {
	Miles    float64 `json:"miles"`
	Expenses float64 `json:"expenses"`
	MPG      float64 `json:"mpg"`
	Gallons  float64 `json:"gallons"`
}

// MonthlyCost is one bar of the cost chart.
type MonthlyCost struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// Dashboard is the overview shown after login.
type Dashboard struct {
	CurrentMonthStats MonthStats         `json:"currentMonthStats"`
	PrevMonthStats    MonthStats         `json:"prevMonthStats"`
	MonthlyCostData   []MonthlyCost      `json:"monthlyCostData"`
	RecentEntries     []models.FuelEntry `json:"recentEntries"`
}

// DashboardService computes dashboard figures. Ignored entries are included,
// as on the entries list.
type DashboardService struct {
	entries db.EntryCollection
	loc     *time.Location
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewDashboardService(entries db.EntryCollection, loc *time.Location, log logrus.FieldLogger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DashboardService{entries: entries, loc: loc, now: time.Now, log: log}
}

func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	now := s.now().In(s.loc)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	firstChartMonth := thisMonth.AddDate(0, -11, 0)

	logger := s.log.WithField("user_id", userID)
	entries, err := s.entries.FindEntriesSince(ctx, userID, firstChartMonth)
	if err != nil {
		logger.WithError(err).Error("Failed to load dashboard entries")
		return nil, apperr.Internal("Failed to load dashboard.", err)
	}
	recent, _, err := s.entries.FindEntries(ctx, userID, 1, recentEntryCount)
	if err != nil {
		logger.WithError(err).Error("Failed to load recent entries")
		return nil, apperr.Internal("Failed to load dashboard.", err)
	}

	byMonth := make(map[int][]models.FuelEntry)
	for _, e := range entries {
		key := monthKey(e.DateTime.In(s.loc))
		byMonth[key] = append(byMonth[key], e)
	}

	chart := make([]MonthlyCost, 0, 12)
	for i := 0; i < 12; i++ {
		month := firstChartMonth.AddDate(0, i, 0)
		cost := decimal.Zero
		for _, e := range byMonth[monthKey(month)] {
			cost = cost.Add(decimal.NewFromFloat(e.Cost))
		}
		chart = append(chart, MonthlyCost{Name: month.Format("Jan"), Cost: cost.InexactFloat64()})
	}

	return &Dashboard{
		CurrentMonthStats: monthStats(byMonth[monthKey(thisMonth)]),
		PrevMonthStats:    monthStats(byMonth[monthKey(thisMonth.AddDate(0, -1, 0))]),
		MonthlyCostData:   chart,
		RecentEntries:     recent,
	}, nil
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// monthStats derives miles from the odometer spread, which needs two readings.
func monthStats(entries []models.FuelEntry) MonthStats {
	cost, gallons := decimal.Zero, decimal.Zero
	for _, e := range entries {
		cost = cost.Add(decimal.NewFromFloat(e.Cost))
		gallons = gallons.Add(decimal.NewFromFloat(e.Amount))
	}

	miles := decimal.Zero
	if len(entries) > 1 {
		lo, hi := entries[0].Odometer, entries[0].Odometer
		for _, e := range entries[1:] {
			if e.Odometer < lo {
				lo = e.Odometer
			}
			if e.Odometer > hi {
				hi = e.Odometer
			}
		}
		miles = decimal.NewFromFloat(hi).Sub(decimal.NewFromFloat(lo))
	}

	mpg := 0.0
	if gallons.IsPositive() {
		mpg = miles.Div(gallons).InexactFloat64()
	}
	return MonthStats{
		Miles:    miles.InexactFloat64(),
		Expenses: cost.InexactFloat64(),
		MPG:      mpg,
		Gallons:  gallons.InexactFloat64(),
	}
}
