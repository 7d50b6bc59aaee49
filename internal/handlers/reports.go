package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/report"
	"github.com/sirupsen/logrus"
)

// ReportGenerator produces a quarterly outcome for a user.
type ReportGenerator interface {
	Generate(ctx context.Context, userID string, year, quarter int) (report.Outcome, error)
}

// ReportHandler serves report generation and export.
type ReportHandler struct {
	generator ReportGenerator
	log       logrus.FieldLogger
}

func NewReportHandler(generator ReportGenerator, log logrus.FieldLogger) *ReportHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReportHandler{generator: generator, log: log}
}

type generateRequest struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Generate handles POST /api/reports/generate. The body is either
// {reportRows, overallMPG} or, when data is insufficient, {message}.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if err := readJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	outcome, err := h.generator.Generate(r.Context(), id, req.Year, req.Quarter)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	switch o := outcome.(type) {
	case *report.Result:
		writeJSON(w, http.StatusOK, o)
	case *report.InsufficientData:
		writeJSON(w, http.StatusOK, o)
	default:
		apperr.Write(w, apperr.Internal("Failed to generate report.", fmt.Errorf("unexpected outcome %T", outcome)))
	}
}

// Export handles GET /api/reports/export?year=&quarter=&format=csv|xlsx
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		apperr.Write(w, apperr.InvalidArgument("format must be csv or xlsx"))
		return
	}
	year, _ := strconv.Atoi(q.Get("year"))
	quarter, _ := strconv.Atoi(q.Get("quarter"))

	outcome, err := h.generator.Generate(r.Context(), id, year, quarter)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var res *report.Result
	switch o := outcome.(type) {
	case *report.Result:
		res = o
	case *report.InsufficientData:
		writeJSON(w, http.StatusUnprocessableEntity, o)
		return
	default:
		apperr.Write(w, apperr.Internal("Failed to export report.", fmt.Errorf("unexpected outcome %T", outcome)))
		return
	}

	var buf bytes.Buffer
	contentType := report.ContentTypeCSV
	if format == "xlsx" {
		contentType = report.ContentTypeXLSX
		err = report.WriteXLSX(&buf, year, quarter, res)
	} else {
		err = report.WriteCSV(&buf, year, quarter, res)
	}
	if err != nil {
		h.log.WithField("user_id", id).WithError(err).Error("Failed to render report export")
		apperr.Write(w, apperr.Internal("Failed to export report.", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(year, quarter, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
