package report

import (
	"context"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/sirupsen/logrus"
)

// EntryQuerier is the read the generator needs from the entry store.
type EntryQuerier interface {
	FindReportableEntries(ctx context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error)
}

// Generator builds quarterly jurisdiction reports for one user at a time.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	entries EntryQuerier
	loc     *time.Location
	log     logrus.FieldLogger
}

// NewGenerator creates a generator reading from entries. Quarter bounds are
// computed in loc.
func NewGenerator(entries EntryQuerier, loc *time.Location, log logrus.FieldLogger) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{entries: entries, loc: loc, log: log}
}

// Generate aggregates the user's non-ignored entries for the given quarter.
func (g *Generator) Generate(ctx context.Context, userID string, year, quarter int) (Outcome, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	start, end, err := QuarterRange(year, quarter, g.loc)
	if err != nil {
		return nil, apperr.InvalidArgument("A valid year and quarter (1-4) are required.")
	}

	entries, err := g.entries.FindReportableEntries(ctx, userID, start, end)
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"user_id": userID,
			"year":    year,
			"quarter": quarter,
		}).WithError(err).Error("Failed to query entries for report")
		return nil, apperr.Internal("Failed to generate report.", err)
	}

	outcome := Aggregate(entries)
	if res, ok := outcome.(*Result); ok {
		g.log.WithFields(logrus.Fields{
			"user_id":       userID,
			"year":          year,
			"quarter":       quarter,
			"entries":       len(entries),
			"jurisdictions": len(res.Rows),
		}).Info("Generated IFTA report")
	}
	return outcome, nil
}
