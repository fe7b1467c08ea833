package invoice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/awb-proforma/internal/manifest"
)

func sampleRows() []manifest.Row {
	return []manifest.Row{
		{ColTrackingNumber: "TRK2", ColDescription: "Shoes", ColTaric: "6403", ColQuantity: "1", ColAmount: "20"},
		{ColTrackingNumber: "TRK1", ColDescription: "Bag", ColTaric: "4202", ColQuantity: "2", ColAmount: "10.50"},
		{ColTrackingNumber: "TRK1", ColDescription: "Belt", ColTaric: "4203", ColQuantity: "3", ColAmount: "99"},
		{ColTrackingNumber: "TRK1", ColDescription: "Bag", ColTaric: "4202", ColQuantity: "x", ColAmount: "1"},
		{ColTrackingNumber: " ", ColDescription: "Orphan", ColQuantity: "5", ColAmount: "5"},
		{ColTrackingNumber: "TRK3", ColDescription: "", ColTaric: "", ColQuantity: "", ColAmount: "n/a"},
	}
}

func TestAggregate(t *testing.T) {
	lines := Aggregate(sampleRows())
	require.Len(t, lines, 3)

	assert.Equal(t, Line{
		TrackingNumber:   "TRK1",
		GoodsDescription: "Bag, Belt",
		CommodityTaric:   "4202, 4203",
		Quantity:         5,
		Amount:           10.5,
	}, lines[0])

	assert.Equal(t, "TRK2", lines[1].TrackingNumber)
	assert.Equal(t, "Shoes", lines[1].GoodsDescription)
	assert.Equal(t, 1.0, lines[1].Quantity)
	assert.Equal(t, 20.0, lines[1].Amount)

	assert.Equal(t, Line{TrackingNumber: "TRK3"}, lines[2])
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]manifest.Row{{ColDescription: "no key"}}))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{" 12.5 ", 12.5},
		{"-3", -3},
		{"1e3", 1000},
		{"", 0},
		{"abc", 0},
		{"1,5", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		got := ParseNumber(tt.in)
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, tt.want, got, "ParseNumber(%q)", tt.in)
	}
}
