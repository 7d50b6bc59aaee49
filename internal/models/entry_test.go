package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFuelType(t *testing.T) {
	tests := []struct {
		name     string
		fuelType FuelType
		expected bool
	}{
		{"diesel", FuelDiesel, true},
		{"def", FuelDEF, true},
		{"custom", FuelCustom, true},
		{"gasoline", "gasoline", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidFuelType(tt.fuelType))
		})
	}
}

func TestComplementaryFuel(t *testing.T) {
	assert.Equal(t, FuelDEF, ComplementaryFuel(FuelDiesel))
	assert.Equal(t, FuelDiesel, ComplementaryFuel(FuelDEF))
	assert.Equal(t, FuelDiesel, ComplementaryFuel(FuelCustom))
}

func TestFuelEntry_PricePerGallon(t *testing.T) {
	assert.InDelta(t, 3.5, FuelEntry{Amount: 50, Cost: 175}.PricePerGallon(), 1e-9)
	assert.Zero(t, FuelEntry{Amount: 0, Cost: 12}.PricePerGallon())
}

func TestParseDateTime(t *testing.T) {
	phoenix, err := time.LoadLocation("America/Phoenix")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		loc   *time.Location
		want  time.Time
	}{
		{"rfc3339 keeps its zone", "2024-01-05T10:30:00Z", phoenix, time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"datetime-local uses loc", "2024-01-05T10:30", phoenix, time.Date(2024, 1, 5, 10, 30, 0, 0, phoenix)},
		{"seconds without zone", "2024-02-10T08:15:42", time.UTC, time.Date(2024, 2, 10, 8, 15, 42, 0, time.UTC)},
		{"date only", "2024-03-31", nil, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}

	_, err = ParseDateTime("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	data, err := json.Marshal(User{Email: "driver@example.com", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-hash")
	assert.Contains(t, string(data), `"email":"driver@example.com"`)
}
