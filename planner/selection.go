package planner

import (
	"sort"
	"strconv"
)

// DefaultCheapestN is the selection size when none is given.
const DefaultCheapestN = 3

// DefaultCheapestDates is the size of CheapestDates when none is given.
const DefaultCheapestDates = 5

// SelectOptions tunes SelectCheapest.
type SelectOptions struct {
	// N is how many records to keep. Values below 1 mean DefaultCheapestN.
	N int
	// Dedupe drops records repeating an earlier date, price and carrier.
	Dedupe bool
}

// Ranked pairs a selected record with its normalized price and 1-based rank.
type Ranked[T any] struct {
	Rank   int         `json:"rank"`
	Price  PriceRecord `json:"price"`
	Record T           `json:"record"`
}

// SelectCheapest concatenates the sources in order and returns the N cheapest
// records, ascending. Ties keep input order, so unreadable prices come last in
// the order they arrived.
func SelectCheapest[T Priced](opts SelectOptions, sources ...[]T) []Ranked[T] {
	n := opts.N
	if n < 1 {
		n = DefaultCheapestN
	}

	var all []Ranked[T]
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, rec := range src {
			pr := NewPriceRecord(rec)
			if opts.Dedupe {
				key := dedupeKey(rec, pr)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			all = append(all, Ranked[T]{Price: pr, Record: rec})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Price.NumericPrice < all[j].Price.NumericPrice
	})

	if len(all) > n {
		all = all[:n]
	}
	out := make([]Ranked[T], len(all))
	for i, r := range all {
		r.Rank = i + 1
		out[i] = r
	}
	return out
}

func dedupeKey(rec Priced, pr PriceRecord) string {
	carrier := ""
	if c, ok := rec.(interface{ Carrier() string }); ok {
		carrier = c.Carrier()
	}
	return pr.DateKey + "|" + strconv.FormatFloat(pr.NumericPrice, 'f', -1, 64) + "|" + carrier
}

// DatePrice is the lowest readable price seen on one date.
type DatePrice struct {
	DateKey string  `json:"date"`
	Price   float64 `json:"price"`
}

// CheapestDates keeps the lowest readable price per date and returns the n
// cheapest dates. Ties keep first-seen date order.
func CheapestDates[T Priced](records []T, n int) []DatePrice {
	if n < 1 {
		n = DefaultCheapestDates
	}
	var order []string
	best := make(map[string]float64)
	for _, rec := range records {
		p := NormalizePrice(rec.RawPrice())
		if !IsPriced(p) {
			continue
		}
		key := rec.DateKey()
		cur, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = p
			continue
		}
		if p < cur {
			best[key] = p
		}
	}

	out := make([]DatePrice, 0, len(order))
	for _, key := range order {
		out = append(out, DatePrice{DateKey: key, Price: best[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
