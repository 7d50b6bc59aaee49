package report

// Outcome is the result of generating a report. It is either *Result or
// *InsufficientData.
type Outcome interface {
	isOutcome()
}

// Row is the per-jurisdiction line of a report.
type Row struct {
	Jurisdiction string  `json:"jurisdiction"`
	TotalMiles   float64 `json:"totalMiles"`
	TotalFuel    float64 `json:"totalFuel"`
	TotalCost    float64 `json:"totalCost"`
}

// Result is a computed quarterly report.
type Result struct {
	Rows       []Row   `json:"reportRows"`
	OverallMPG float64 `json:"overallMPG"`
}

// InsufficientData is returned instead of a report when the quarter has too
// few entries to derive any mileage. It is not an error.
type InsufficientData struct {
	Message string `json:"message"`
}

func (*Result) isOutcome()           {}
func (*InsufficientData) isOutcome() {}

// InsufficientDataMessage is the notice shown when fewer than two entries qualify.
const InsufficientDataMessage = "At least two fuel entries are required in the selected quarter to calculate mileage."
