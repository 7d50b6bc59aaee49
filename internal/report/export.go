package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds an exported report.
const SheetName = "IFTA Report"

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var columnHeaders = []string{
	"Jurisdiction",
	"Total Miles Driven",
	"Total Fuel Purchased (Gallons)",
	"Total Fuel Cost ($)",
}

// FileName returns the download name for an export, e.g. IFTA_Report_Q1_2024.csv.
func FileName(year, quarter int, ext string) string {
	return fmt.Sprintf("IFTA_Report_Q%d_%d.%s", quarter, year, ext)
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// records lays out the metadata block, a blank line, the header and one line
// per jurisdiction.
func records(year, quarter int, res *Result) [][]string {
	out := [][]string{
		{"IFTA Report"},
		{"Quarter", fmt.Sprintf("Q%d", quarter)},
		{"Year", strconv.Itoa(year)},
		{"Overall Fleet MPG", fixed2(res.OverallMPG)},
		{},
		columnHeaders,
	}
	for _, r := range res.Rows {
		out = append(out, []string{
			r.Jurisdiction,
			fixed2(r.TotalMiles),
			fixed2(r.TotalFuel),
			fixed2(r.TotalCost),
		})
	}
	return out
}

// WriteCSV renders res as CSV.
func WriteCSV(w io.Writer, year, quarter int, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records(year, quarter, res)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX renders res as a single-sheet workbook. Totals are written as
// numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, year, quarter int, res *Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	meta := [][]interface{}{
		{"IFTA Report"},
		{"Quarter", fmt.Sprintf("Q%d", quarter)},
		{"Year", year},
		{"Overall Fleet MPG", round2(res.OverallMPG)},
	}
	row := 1
	for _, values := range meta {
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}
	row++ // blank line

	header := make([]interface{}, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	if err := setRow(f, row, header); err != nil {
		return err
	}
	row++

	for _, r := range res.Rows {
		values := []interface{}{r.Jurisdiction, round2(r.TotalMiles), round2(r.TotalFuel), round2(r.TotalCost)}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
