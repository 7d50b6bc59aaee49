package models

import (
	"fmt"
	"strings"
	"time"
)

// FuelType is the closed set of fuels an entry can record.
type FuelType string

const (
	FuelDiesel FuelType = "diesel"
	FuelDEF    FuelType = "def"
	FuelCustom FuelType = "custom"
)

// IsValidFuelType checks if a fuel type is one of the known values
func IsValidFuelType(ft FuelType) bool {
	switch ft {
	case FuelDiesel, FuelDEF, FuelCustom:
		return true
	default:
		return false
	}
}

// ComplementaryFuel returns the fuel recorded for the second line item of a
// dual-fuel stop: DEF alongside diesel, diesel alongside anything else.
func ComplementaryFuel(ft FuelType) FuelType {
	if ft == FuelDiesel {
		return FuelDEF
	}
	return FuelDiesel
}

// FuelEntry represents one fuel purchase event.
type FuelEntry struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	UserID         string    `json:"userId" bson:"user_id"`
	TruckNumber    string    `json:"truckNumber" bson:"truck_number"`
	DateTime       time.Time `json:"dateTime" bson:"date_time"`
	Odometer       float64   `json:"odometer" bson:"odometer"`
	City           string    `json:"city" bson:"city"`
	State          string    `json:"state" bson:"state"` // 2-letter jurisdiction code
	FuelType       FuelType  `json:"fuelType" bson:"fuel_type"`
	CustomFuelType string    `json:"customFuelType,omitempty" bson:"custom_fuel_type,omitempty"`
	Amount         float64   `json:"amount" bson:"amount"` // gallons
	Cost           float64   `json:"cost" bson:"cost"`
	IsIgnored      bool      `json:"isIgnored" bson:"is_ignored"`
	ReceiptURL     string    `json:"receiptUrl,omitempty" bson:"receipt_url,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	LastEditedAt   time.Time `json:"lastEditedAt" bson:"last_edited_at"`
}

// PricePerGallon returns cost divided by amount, or 0 when no fuel was bought.
func (e FuelEntry) PricePerGallon() float64 {
	if e.Amount <= 0 {
		return 0
	}
	return e.Cost / e.Amount
}

// SecondFuel is the optional second line item of a dual-fuel stop.
type SecondFuel struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Cost   float64 `json:"cost" validate:"gte=0"`
}

// EntryInput is the client payload for creating or editing an entry.
type EntryInput struct {
	TruckNumber    string      `json:"truckNumber" validate:"max=32"`
	DateTime       string      `json:"dateTime" validate:"required"`
	Odometer       float64     `json:"odometer" validate:"gte=0"`
	City           string      `json:"city" validate:"max=100"`
	State          string      `json:"state" validate:"required,len=2,alpha"`
	FuelType       FuelType    `json:"fuelType" validate:"required,oneof=diesel def custom"`
	CustomFuelType string      `json:"customFuelType" validate:"required_if=FuelType custom,max=50"`
	Amount         float64     `json:"amount" validate:"gte=0"`
	Cost           float64     `json:"cost" validate:"gte=0"`
	IsIgnored      bool        `json:"isIgnored"`
	ReceiptURL     string      `json:"receiptUrl" validate:"max=2048"`
	SecondFuel     *SecondFuel `json:"secondFuel,omitempty"`
}

// dateTimeLayouts are tried in order by ParseDateTime. The zone-less forms
// are what a datetime-local input field submits.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses an entry timestamp. Values without a zone are read in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid dateTime %q", s)
}
