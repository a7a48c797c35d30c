package planner

// PriceInsights is the route-level price summary some flight sources attach
// to their results.
type PriceInsights struct {
	LowestPrice       any       `json:"lowest_price,omitempty"`
	PriceLevel        string    `json:"price_level,omitempty"`
	TypicalPriceRange []float64 `json:"typical_price_range,omitempty"`
}

// FlightRecord is one offer returned by a flight source. Price is kept exactly
// as the source sent it.
type FlightRecord struct {
	Airline            string         `json:"airline"`
	FlightNumber       string         `json:"flight_number,omitempty"`
	Price              any            `json:"price"`
	Currency           string         `json:"currency,omitempty"`
	DepartureTime      string         `json:"departure_time"`
	ArrivalTime        string         `json:"arrival_time"`
	DurationMinutes    int            `json:"duration_minutes"`
	Layovers           []string       `json:"layovers"`
	OriginAirport      string         `json:"origin_airport"`
	DestinationAirport string         `json:"destination_airport"`
	ReturnDate         string         `json:"return_date,omitempty"`
	BookingToken       string         `json:"booking_token,omitempty"`
	Insights           *PriceInsights `json:"price_insights,omitempty"`
	Provider           string         `json:"provider,omitempty"`

	// SearchDate is the departure date of the window that produced the record.
	SearchDate string `json:"search_date"`
	SearchKey  string `json:"source_key,omitempty"`
}

func (f FlightRecord) RawPrice() any     { return f.Price }
func (f FlightRecord) DateKey() string   { return f.SearchDate }
func (f FlightRecord) SourceKey() string { return f.SearchKey }
func (f FlightRecord) Carrier() string   { return f.Airline }
