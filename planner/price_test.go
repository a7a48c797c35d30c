package planner

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"currency and separators", "$1,234.50", 1234.50},
		{"euro", "€89", 89},
		{"pound with space", "£ 1,000", 1000},
		{"plain string", "412", 412},
		{"float", 299.99, 299.99},
		{"int", 350, 350},
		{"json number", json.Number("77.5"), 77.5},
		{"decimal", decimal.RequireFromString("12.25"), 12.25},
		{"not available", "N/A", math.Inf(1)},
		{"empty", "", math.Inf(1)},
		{"symbol only", "$", math.Inf(1)},
		{"missing", nil, math.Inf(1)},
		{"negative number", -5.0, math.Inf(1)},
		{"negative string", "-20", math.Inf(1)},
		{"two symbols", "$$100", math.Inf(1)},
		{"nan", math.NaN(), math.Inf(1)},
		{"unsupported type", []int{1}, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrice(tt.raw))
		})
	}
}

func TestPriceRecord_JSONUnpriced(t *testing.T) {
	pr := NewPriceRecord(FlightRecord{Price: "N/A", SearchDate: "2025-03-07", SearchKey: "JFK_LAX_2025-03-07"})
	assert.Equal(t, "JFK_LAX_2025-03-07", pr.SourceKey)

	data, err := json.Marshal(pr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_price":"N/A","numeric_price":null,"source_key":"JFK_LAX_2025-03-07","date_key":"2025-03-07"}`, string(data))

	var back PriceRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(back.NumericPrice, 1))
}
