package report

import (
	"sort"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/shopspring/decimal"
)

// truckKey identifies a vehicle. Entries without a truck number share the
// blank key, which never equals a named truck.
type truckKey struct {
	blank  bool
	number string
}

type totals struct {
	miles decimal.Decimal
	fuel  decimal.Decimal
	cost  decimal.Decimal
}

// Aggregate computes a quarterly report from qualifying entries that are
// already sorted ascending by DateTime. Ignored entries are skipped.
//
// Miles for a truck are the absolute odometer differences between its
// consecutive entries, charged to the state of the earlier entry. Fuel and
// cost are charged to each entry's own state.
func Aggregate(entries []models.FuelEntry) Outcome {
	qualifying := make([]models.FuelEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsIgnored {
			qualifying = append(qualifying, e)
		}
	}
	if len(qualifying) < 2 {
		return &InsufficientData{Message: InsufficientDataMessage}
	}

	byState := make(map[string]*totals)
	get := func(state string) *totals {
		t, ok := byState[state]
		if !ok {
			t = &totals{}
			byState[state] = t
		}
		return t
	}

	byTruck := make(map[truckKey][]models.FuelEntry)
	var truckOrder []truckKey
	for _, e := range qualifying {
		key := truckKey{blank: e.TruckNumber == "", number: e.TruckNumber}
		if _, ok := byTruck[key]; !ok {
			truckOrder = append(truckOrder, key)
		}
		byTruck[key] = append(byTruck[key], e)
	}

	totalMiles := decimal.Zero
	for _, key := range truckOrder {
		truck := byTruck[key]
		for i := 0; i+1 < len(truck); i++ {
			delta := decimal.NewFromFloat(truck[i+1].Odometer).
				Sub(decimal.NewFromFloat(truck[i].Odometer)).
				Abs()
			t := get(truck[i].State)
			t.miles = t.miles.Add(delta)
			totalMiles = totalMiles.Add(delta)
		}
	}

	dieselGallons := decimal.Zero
	for _, e := range qualifying {
		amount := decimal.NewFromFloat(e.Amount)
		t := get(e.State)
		t.fuel = t.fuel.Add(amount)
		t.cost = t.cost.Add(decimal.NewFromFloat(e.Cost))
		if e.FuelType == models.FuelDiesel {
			dieselGallons = dieselGallons.Add(amount)
		}
	}

	rows := make([]Row, 0, len(byState))
	for state, t := range byState {
		rows = append(rows, Row{
			Jurisdiction: state,
			TotalMiles:   t.miles.InexactFloat64(),
			TotalFuel:    t.fuel.InexactFloat64(),
			TotalCost:    t.cost.InexactFloat64(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Jurisdiction < rows[j].Jurisdiction })

	mpg := 0.0
	if dieselGallons.IsPositive() {
		mpg = totalMiles.Div(dieselGallons).InexactFloat64()
	}
	return &Result{Rows: rows, OverallMPG: mpg}
}
