package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"tripwindow/planner"
)

// EstimatedFlights produces plausible flights without any API key. Prices
// depend only on the route and date, so repeated plans agree.
type EstimatedFlights struct{}

func (EstimatedFlights) Name() string { return "estimated" }

type routeInfo struct {
	basePrice float64
	duration  int // minutes
}

var estimatedRoutes = map[string]routeInfo{
	"JFK-LAX": {220, 360}, "LAX-JFK": {220, 330},
	"JFK-MIA": {140, 190}, "MIA-JFK": {140, 185},
	"LHR-JFK": {450, 480}, "JFK-LHR": {450, 420},
	"LHR-CDG": {80, 75}, "CDG-LHR": {80, 75},
	"BER-LHR": {100, 100}, "LHR-BER": {100, 100},
	"FRA-IST": {150, 165}, "IST-FRA": {150, 165},
	"IST-DXB": {250, 240}, "DXB-IST": {250, 240},
	"MAD-BCN": {60, 80}, "BCN-MAD": {60, 80},
}

type airlineOption struct {
	name     string
	code     string
	priceMod float64
	stops    int
}

var estimatedAirlines = []airlineOption{
	{"Delta Air Lines", "DL", 1.00, 0},
	{"United Airlines", "UA", 1.10, 0},
	{"Lufthansa", "LH", 1.25, 0},
	{"JetBlue", "B6", 0.85, 1},
	{"Wizz Air", "W6", 0.65, 1},
}

func (EstimatedFlights) SearchFlights(ctx context.Context, fq FlightQuery) ([]planner.FlightRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	depDate, err := planner.ParseDate(fq.DepartureDate)
	if err != nil {
		return nil, err
	}

	info, ok := estimatedRoutes[fq.Origin+"-"+fq.Destination]
	if !ok {
		info = routeInfo{350, 240}
	}

	// Weekend departures cost more; the hash spreads prices between dates.
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s|%s", fq.Origin, fq.Destination, fq.DepartureDate, fq.ReturnDate)
	jitter := 0.9 + float64(h.Sum32()%25)/100
	if wd := depDate.Weekday(); wd == time.Friday || wd == time.Saturday {
		jitter += 0.1
	}
	if fq.ReturnDate == "" {
		jitter *= 0.6
	}

	flights := make([]planner.FlightRecord, 0, len(estimatedAirlines))
	for i, opt := range estimatedAirlines {
		price := float64(int(info.basePrice*opt.priceMod*jitter/5) * 5)

		dur := info.duration
		layovers := []string{}
		if opt.stops > 0 {
			dur += 90
			layovers = append(layovers, formatLayover("Connection", "N/A", 90))
		}

		depTime := time.Date(depDate.Year(), depDate.Month(), depDate.Day(), 6+i*3, 0, 0, 0, time.UTC)
		arrTime := depTime.Add(time.Duration(dur) * time.Minute)

		flights = append(flights, planner.FlightRecord{
			Airline:            opt.name,
			FlightNumber:       fmt.Sprintf("%s%d", opt.code, 100+int(h.Sum32()%800)+i),
			Price:              fmt.Sprintf("$%.0f", price),
			Currency:           planner.DefaultCurrency,
			DepartureTime:      depTime.Format("2006-01-02 15:04"),
			ArrivalTime:        arrTime.Format("2006-01-02 15:04"),
			DurationMinutes:    dur,
			Layovers:           layovers,
			OriginAirport:      fq.Origin,
			DestinationAirport: fq.Destination,
			ReturnDate:         fq.ReturnDate,
			Provider:           "estimated",
		})
	}
	return flights, nil
}
