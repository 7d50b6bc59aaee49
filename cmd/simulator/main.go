package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/report"
	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FuelStop is a city a truck can refuel in.
type FuelStop struct {
	City         string
	State        string
	Location     Location
	DieselPerGal float64
}

// Fuel stops along the southern and central interstate corridors
var fuelStops = []FuelStop{
	{"Los Angeles", "CA", Location{34.0522, -118.2437}, 5.89},
	{"Barstow", "CA", Location{34.8958, -117.0173}, 5.49},
	{"Phoenix", "AZ", Location{33.4484, -112.0740}, 4.09},
	{"Flagstaff", "AZ", Location{35.1983, -111.6513}, 4.29},
	{"Las Vegas", "NV", Location{36.1699, -115.1398}, 4.59},
	{"Albuquerque", "NM", Location{35.0844, -106.6504}, 3.89},
	{"El Paso", "TX", Location{31.7619, -106.4850}, 3.59},
	{"Amarillo", "TX", Location{35.2220, -101.8313}, 3.49},
	{"Dallas", "TX", Location{32.7767, -96.7970}, 3.55},
	{"Oklahoma City", "OK", Location{35.4676, -97.5164}, 3.39},
	{"Denver", "CO", Location{39.7392, -104.9903}, 3.99},
	{"Salt Lake City", "UT", Location{40.7608, -111.8910}, 4.19},
}

// roadFactor converts great-circle distance to typical road distance.
const roadFactor = 1.2

var authToken string

func haversineMiles(a, b Location) float64 {
	R := 3958.8
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// TruckState tracks one simulated truck between stops.
type TruckState struct {
	Number   string
	Odometer float64
	MPG      float64
	Stop     int
}

// quarterStart returns the first instant of the quarter in UTC.
func quarterStart(year, quarter int) time.Time {
	return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// planTrip produces the fuel entries for one truck over a quarter. Stops are
// spread evenly across the quarter and the odometer only moves forward.
func planTrip(rng *rand.Rand, truck *TruckState, year, quarter, stops int) []models.EntryInput {
	start := quarterStart(year, quarter)
	span := start.AddDate(0, 3, 0).Sub(start)
	step := span / time.Duration(stops+1)

	entries := make([]models.EntryInput, 0, stops)
	for i := 0; i < stops; i++ {
		var miles float64
		if i > 0 {
			next := rng.Intn(len(fuelStops) - 1)
			if next >= truck.Stop {
				next++
			}
			miles = haversineMiles(fuelStops[truck.Stop].Location, fuelStops[next].Location) * roadFactor
			truck.Odometer += math.Round(miles)
			truck.Stop = next
		} else {
			// first fill-up tops the tank off after an unlogged leg
			miles = 300 + float64(rng.Intn(200))
		}
		to := fuelStops[truck.Stop]

		gallons := roundTo(miles/truck.MPG, 3)
		at := start.Add(step * time.Duration(i+1)).Add(time.Duration(rng.Intn(120)) * time.Minute)
		in := models.EntryInput{
			TruckNumber: truck.Number,
			DateTime:    at.Format("2006-01-02T15:04"),
			Odometer:    truck.Odometer,
			City:        to.City,
			State:       to.State,
			FuelType:    models.FuelDiesel,
			Amount:      gallons,
			Cost:        roundTo(gallons*to.DieselPerGal, 2),
		}
		// DEF is topped up roughly every third stop
		if rng.Intn(3) == 0 {
			def := roundTo(gallons*0.03, 3)
			in.SecondFuel = &models.SecondFuel{Amount: def, Cost: roundTo(def*3.99, 2)}
		}
		entries = append(entries, in)
	}
	return entries
}

func doJSON(method, url string, payload, out interface{}) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// authenticate registers the simulator account, logging in when it already exists.
func authenticate(apiURL, email, password string) (string, error) {
	creds := models.RegisterRequest{Email: email, Password: password}
	var resp models.LoginResponse

	status, err := doJSON(http.MethodPost, apiURL+"/auth/register", creds, &resp)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	if status == http.StatusCreated {
		log.WithField("email", email).Info("Registered simulator account")
		return resp.Token, nil
	}
	if status != http.StatusConflict {
		return "", fmt.Errorf("register failed with status: %d", status)
	}

	status, err = doJSON(http.MethodPost, apiURL+"/auth/login", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login failed with status: %d", status)
	}
	return resp.Token, nil
}

func createTruck(apiURL, number string) (string, error) {
	makes := []string{"Freightliner Cascadia", "Volvo VNL", "Kenworth T680", "Peterbilt 579", "International LT"}
	in := models.TruckInput{Number: number, MakeModel: makes[rand.Intn(len(makes))]}

	var truck models.Truck
	status, err := doJSON(http.MethodPost, apiURL+"/trucks", in, &truck)
	if err != nil {
		return "", fmt.Errorf("failed to create truck: %w", err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("truck creation failed with status: %d", status)
	}

	log.WithFields(log.Fields{
		"truck_id":   truck.ID,
		"number":     number,
		"make_model": in.MakeModel,
	}).Info("Created truck")
	return truck.ID, nil
}

func postEntry(apiURL string, in models.EntryInput) error {
	var out struct {
		Entries []models.FuelEntry `json:"entries"`
	}
	status, err := doJSON(http.MethodPost, apiURL+"/entries", in, &out)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("entry creation failed with status: %d", status)
	}
	log.WithFields(log.Fields{
		"truck":    in.TruckNumber,
		"state":    in.State,
		"odometer": in.Odometer,
		"entries":  len(out.Entries),
	}).Info("Logged fuel stop")
	return nil
}

var errInsufficientData = errors.New(report.InsufficientDataMessage)

func generateReport(apiURL string, year, quarter int) (*report.Result, error) {
	var raw json.RawMessage
	status, err := doJSON(http.MethodPost, apiURL+"/reports/generate", map[string]int{"year": year, "quarter": quarter}, &raw)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("report generation failed with status: %d", status)
	}

	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Message != "" {
		return nil, errInsufficientData
	}
	var res report.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &res, nil
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	email := os.Getenv("SIM_EMAIL")
	if email == "" {
		email = "simulator@iftaway.local"
	}
	password := os.Getenv("SIM_PASSWORD")
	if password == "" {
		password = "simulator-password"
	}

	now := time.Now()
	fleetSize := envInt("FLEET_SIZE", 3)
	stops := envInt("SIM_STOPS", 8)
	year := envInt("SIM_YEAR", now.Year())
	quarter := envInt("SIM_QUARTER", (int(now.Month())-1)/3+1)

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"stops":      stops,
		"api_url":    apiURL,
		"year":       year,
		"quarter":    quarter,
	}).Info("Starting fuel log simulation")

	token, err := authenticate(apiURL, email, password)
	if err != nil {
		log.WithError(err).Fatal("Failed to authenticate")
	}
	authToken = token

	rng := rand.New(rand.NewSource(now.UnixNano()))
	created := 0
	for i := 0; i < fleetSize; i++ {
		number := fmt.Sprintf("SIM-%03d", i+1)
		if _, err := createTruck(apiURL, number); err != nil {
			log.WithError(err).Error("Failed to create truck")
			continue
		}
		truck := &TruckState{
			Number:   number,
			Odometer: float64(100000 + rng.Intn(400000)),
			MPG:      5.5 + rng.Float64()*2,
			Stop:     rng.Intn(len(fuelStops)),
		}
		for _, in := range planTrip(rng, truck, year, quarter, stops) {
			if err := postEntry(apiURL, in); err != nil {
				log.WithError(err).WithField("truck", number).Error("Failed to log fuel stop")
			}
		}
		created++
	}

	log.WithField("created_trucks", created).Info("Fuel stops logged")
	if created == 0 {
		log.Error("No trucks created. Ensure the API is reachable. Exiting.")
		return
	}

	res, err := generateReport(apiURL, year, quarter)
	if err != nil {
		log.WithError(err).Error("Failed to generate report")
		return
	}
	for _, row := range res.Rows {
		log.WithFields(log.Fields{
			"jurisdiction": row.Jurisdiction,
			"miles":        row.TotalMiles,
			"gallons":      row.TotalFuel,
			"cost":         row.TotalCost,
		}).Info("Report row")
	}
	log.WithField("overall_mpg", res.OverallMPG).Info("Simulation complete")
}
