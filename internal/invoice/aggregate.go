// Package invoice aggregates matched manifest rows and renders proforma
// invoices for a master waybill.
package invoice

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/a3tai/awb-proforma/internal/manifest"
)

// Manifest columns read by the invoice builder
const (
	ColTrackingNumber = "TrackingNumber"
	ColDescription    = "GoodsDescription"
	ColTaric          = "CommodityTaric"
	ColQuantity       = "ItemPackageQuantity"
	ColAmount         = "InvoiceAmountTotal"
)

// TextColumns are transliterated to ASCII before rendering
var TextColumns = []string{ColTrackingNumber, ColDescription, ColTaric, ColQuantity, ColAmount}

// Line is one house waybill (tracking number) on the invoice
type Line struct {
	TrackingNumber   string
	GoodsDescription string
	CommodityTaric   string
	Quantity         float64
	Amount           float64
}

// Aggregate groups rows by tracking number, in key order. Descriptions and
// HS codes become the sorted distinct values joined by ", ", quantities are
// summed and the amount is the first value of the group. Rows without a
// tracking number are ignored.
func Aggregate(rows []manifest.Row) []Line {
	type group struct {
		descriptions map[string]bool
		tarics       map[string]bool
		quantity     float64
		amount       float64
	}

	groups := make(map[string]*group)
	var keys []string

	for _, row := range rows {
		key := strings.TrimSpace(row[ColTrackingNumber])
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{
				descriptions: make(map[string]bool),
				tarics:       make(map[string]bool),
				amount:       ParseNumber(row[ColAmount]),
			}
			groups[key] = g
			keys = append(keys, key)
		}
		if v := strings.TrimSpace(row[ColDescription]); v != "" {
			g.descriptions[v] = true
		}
		if v := strings.TrimSpace(row[ColTaric]); v != "" {
			g.tarics[v] = true
		}
		g.quantity += ParseNumber(row[ColQuantity])
	}

	sort.Strings(keys)

	lines := make([]Line, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		lines = append(lines, Line{
			TrackingNumber:   key,
			GoodsDescription: joinSorted(g.descriptions),
			CommodityTaric:   joinSorted(g.tarics),
			Quantity:         g.quantity,
			Amount:           g.amount,
		})
	}
	return lines
}

// ParseNumber converts a cell value to a number. Anything that is not a
// finite number counts as 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func joinSorted(set map[string]bool) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
