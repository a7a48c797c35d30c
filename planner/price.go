package planner

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Unpriced is the normalized value of a price that cannot be read.
var Unpriced = math.Inf(1)

// NormalizePrice turns a raw price of unknown shape into a non-negative float.
// Strings may carry one leading currency symbol and comma thousands
// separators. Anything missing, unreadable or negative yields Unpriced.
func NormalizePrice(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return Unpriced
	case float64:
		return nonNegative(v)
	case float32:
		return nonNegative(float64(v))
	case int:
		return nonNegative(float64(v))
	case int32:
		return nonNegative(float64(v))
	case int64:
		return nonNegative(float64(v))
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case decimal.Decimal:
		f, _ := v.Float64()
		return nonNegative(f)
	case json.Number:
		return parsePrice(v.String())
	case string:
		return parsePrice(v)
	case *string:
		if v == nil {
			return Unpriced
		}
		return parsePrice(*v)
	case *float64:
		if v == nil {
			return Unpriced
		}
		return nonNegative(*v)
	}
	return Unpriced
}

func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if r, size := utf8.DecodeRuneInString(s); r != utf8.RuneError && unicode.Is(unicode.Sc, r) {
		s = strings.TrimSpace(s[size:])
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Unpriced
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Unpriced
	}
	f, _ := d.Float64()
	return nonNegative(f)
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Unpriced
	}
	return f
}

// IsPriced reports whether a normalized price is a real number.
func IsPriced(f float64) bool {
	return !math.IsInf(f, 1)
}

// Priced is any record that can be ranked by price and aligned by date.
type Priced interface {
	RawPrice() any
	DateKey() string
}

// PriceRecord is the normalized view of one priced record.
type PriceRecord struct {
	RawPrice     any
	NumericPrice float64
	SourceKey    string
	DateKey      string
}

// NewPriceRecord normalizes rec's price. SourceKey is filled when rec
// implements SourceKey() string.
func NewPriceRecord(rec Priced) PriceRecord {
	pr := PriceRecord{
		RawPrice:     rec.RawPrice(),
		NumericPrice: NormalizePrice(rec.RawPrice()),
		DateKey:      rec.DateKey(),
	}
	if s, ok := rec.(interface{ SourceKey() string }); ok {
		pr.SourceKey = s.SourceKey()
	}
	return pr
}

type priceRecordJSON struct {
	RawPrice     any      `json:"raw_price"`
	NumericPrice *float64 `json:"numeric_price"`
	SourceKey    string   `json:"source_key,omitempty"`
	DateKey      string   `json:"date_key"`
}

// MarshalJSON writes an unreadable price as a null numeric_price.
func (p PriceRecord) MarshalJSON() ([]byte, error) {
	out := priceRecordJSON{RawPrice: p.RawPrice, SourceKey: p.SourceKey, DateKey: p.DateKey}
	if IsPriced(p.NumericPrice) {
		n := p.NumericPrice
		out.NumericPrice = &n
	}
	return json.Marshal(out)
}

func (p *PriceRecord) UnmarshalJSON(data []byte) error {
	var raw priceRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PriceRecord{RawPrice: raw.RawPrice, SourceKey: raw.SourceKey, DateKey: raw.DateKey, NumericPrice: Unpriced}
	if raw.NumericPrice != nil {
		p.NumericPrice = *raw.NumericPrice
	}
	return nil
}
