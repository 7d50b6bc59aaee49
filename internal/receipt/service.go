package receipt

import (
	"context"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/sirupsen/logrus"
)

const failedScanMessage = "Failed to process receipt. Please try again or enter manually."

// Scanner turns a receipt image into model text containing a JSON object.
type Scanner interface {
	Extract(ctx context.Context, imageBase64, mimeType string) (string, error)
}

// Service validates scan requests and normalises scanner output. Results
// are advisory; nothing is stored.
type Service struct {
	scanner Scanner
	log     logrus.FieldLogger
}

// NewService creates a receipt service. A nil scanner makes every scan fail
// with an internal error.
func NewService(scanner Scanner, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{scanner: scanner, log: log}
}

// Scan extracts receipt fields for the authenticated user.
func (s *Service) Scan(ctx context.Context, userID string, req ScanRequest) (*Result, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("Must be authenticated")
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	logger := s.log.WithFields(logrus.Fields{"user_id": userID, "mime_type": req.MimeType})
	if s.scanner == nil {
		logger.Error("Receipt scan requested but no scanner is configured")
		return nil, apperr.Internal(failedScanMessage, nil)
	}

	text, err := s.scanner.Extract(ctx, req.ImageBase64, req.MimeType)
	if err != nil {
		logger.WithError(err).Error("Receipt scan error")
		return nil, apperr.Internal(failedScanMessage, err)
	}
	ex, err := ParseExtraction(text)
	if err != nil {
		logger.WithError(err).Error("Receipt scan returned unparseable output")
		return nil, apperr.Internal(failedScanMessage, err)
	}
	return &Result{Extraction: ex, Suggestion: Suggest(ex)}, nil
}
