package receipt

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
)

// MaxImageBytes is the largest decoded image accepted for scanning.
const MaxImageBytes = 10 * 1024 * 1024

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ScanRequest carries a base64 image (no data: prefix) and its MIME type.
type ScanRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// ValidateRequest checks presence, decoded size and format of a scan request.
func ValidateRequest(req ScanRequest) error {
	if req.ImageBase64 == "" || req.MimeType == "" {
		return apperr.InvalidArgument("imageBase64 and mimeType required")
	}
	if estimatedSize(req.ImageBase64) > MaxImageBytes {
		return apperr.InvalidArgument("Image too large. Maximum size is 10MB.")
	}
	if !allowedMimeTypes[req.MimeType] {
		return apperr.InvalidArgument("Invalid image format. Please use JPEG, PNG, WebP, or PDF.")
	}
	return nil
}

func estimatedSize(b64 string) int {
	return int(math.Ceil(float64(len(b64)) * 3 / 4))
}

// Extraction is the normalised receipt data. Nil means the field could not
// be determined.
type Extraction struct {
	Cost          *float64 `json:"cost"`
	Amount        *float64 `json:"amount"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	Date          *string  `json:"date"`
	Time          *string  `json:"time"`
	FuelType      *string  `json:"fuelType"`
	Odometer      *float64 `json:"odometer"`
	DieselGallons *float64 `json:"dieselGallons"`
	DieselCost    *float64 `json:"dieselCost"`
	DefGallons    *float64 `json:"defGallons"`
	DefCost       *float64 `json:"defCost"`
}

var errNoJSON = errors.New("no valid JSON found in response")

// ParseExtraction pulls the JSON object out of free-form model output and
// normalises its fields.
func ParseExtraction(text string) (*Extraction, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, errNoJSON
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, err
	}

	ex := &Extraction{
		Cost:          toNumber(raw["cost"]),
		Amount:        toNumber(raw["amount"]),
		City:          toString(raw["city"]),
		State:         toString(raw["state"]),
		Date:          toString(raw["date"]),
		Time:          toString(raw["time"]),
		FuelType:      toString(raw["fuelType"]),
		Odometer:      toNumber(raw["odometer"]),
		DieselGallons: toNumber(raw["dieselGallons"]),
		DieselCost:    toNumber(raw["dieselCost"]),
		DefGallons:    toNumber(raw["defGallons"]),
		DefCost:       toNumber(raw["defCost"]),
	}
	if ex.State != nil {
		s := strings.ToUpper(*ex.State)
		if s == "" {
			ex.State = nil
		} else {
			ex.State = &s
		}
	}
	return ex, nil
}

// toNumber accepts numbers and strings such as "$1,234.50" or "594,454 miles".
func toNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, n)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func toString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

// Suggestion is a pre-filled entry form derived from an extraction.
type Suggestion struct {
	DateTime       string             `json:"dateTime,omitempty"`
	Odometer       *float64           `json:"odometer,omitempty"`
	City           string             `json:"city,omitempty"`
	State          string             `json:"state,omitempty"`
	FuelType       models.FuelType    `json:"fuelType,omitempty"`
	Amount         *float64           `json:"amount,omitempty"`
	Cost           *float64           `json:"cost,omitempty"`
	PricePerGallon *float64           `json:"pricePerGallon,omitempty"`
	SecondFuel     *models.SecondFuel `json:"secondFuel,omitempty"`
}

// Result is what a scan returns to the client.
type Result struct {
	*Extraction
	Suggestion Suggestion `json:"suggestion"`
}

func positive(p *float64) bool {
	return p != nil && *p > 0
}

func nonEmpty(p *string) bool {
	return p != nil && *p != ""
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Suggest maps an extraction onto entry fields. Diesel and DEF line items
// become the primary fuel and the second fuel respectively; otherwise the
// generic amount and cost are used. Dates without a time default to noon.
func Suggest(ex *Extraction) Suggestion {
	var s Suggestion
	if ex == nil {
		return s
	}
	if positive(ex.Odometer) {
		s.Odometer = ex.Odometer
	}
	if nonEmpty(ex.City) {
		s.City = *ex.City
	}
	if nonEmpty(ex.State) {
		s.State = strings.ToUpper(*ex.State)
	}

	dual := positive(ex.DieselGallons) || positive(ex.DieselCost) || positive(ex.DefGallons) || positive(ex.DefCost)
	if dual {
		if positive(ex.DieselGallons) {
			s.FuelType = models.FuelDiesel
			s.Amount = ex.DieselGallons
			if positive(ex.DieselCost) {
				ppg := roundTo(*ex.DieselCost / *ex.DieselGallons, 4)
				s.PricePerGallon = &ppg
			}
		}
		if positive(ex.DieselCost) {
			s.Cost = ex.DieselCost
		}
		if positive(ex.DefGallons) || positive(ex.DefCost) {
			second := &models.SecondFuel{}
			if positive(ex.DefGallons) {
				second.Amount = *ex.DefGallons
			}
			if positive(ex.DefCost) {
				second.Cost = *ex.DefCost
			}
			s.SecondFuel = second
		}
	} else {
		if positive(ex.Cost) {
			s.Cost = ex.Cost
		}
		if positive(ex.Amount) {
			s.Amount = ex.Amount
		}
		if positive(ex.Cost) && positive(ex.Amount) {
			ppg := roundTo(*ex.Cost / *ex.Amount, 4)
			s.PricePerGallon = &ppg
		}
	}

	if nonEmpty(ex.Date) {
		s.DateTime = suggestDateTime(*ex.Date, ex.Time)
	}
	return s
}

func suggestDateTime(date string, clock *string) string {
	value := date + "T12:00"
	if nonEmpty(clock) {
		value = date + "T" + *clock
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02T15:04")
		}
	}
	return ""
}
