package models

import (
	"sort"
	"strings"
)

// PricePoint is a single observation in a historical price series.
type PricePoint struct {
	Time  int64   `json:"time"` // unix seconds
	Price float64 `json:"price"`
}

// PriceHistory holds the historical price series for a ticker, including
// synthetic FX tickers of the form "{CUR}{BASE}=X". Points may arrive in any
// order; callers needing lookup semantics use SortedPoints.
type PriceHistory struct {
	Symbol   string       `json:"symbol"`
	Currency string       `json:"currency,omitempty"`
	Points   []PricePoint `json:"points"`
}

// SortedPoints returns a copy of the series sorted ascending by time.
// The receiver is never mutated.
func (h PriceHistory) SortedPoints() []PricePoint {
	pts := make([]PricePoint, len(h.Points))
	copy(pts, h.Points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	return pts
}

// FXTicker derives the synthetic ticker for converting cur into base,
// e.g. FXTicker("usd", "EUR") == "USDEUR=X". The series quotes units of base
// per one unit of cur.
func FXTicker(cur, base string) string {
	return strings.ToUpper(cur) + strings.ToUpper(base) + "=X"
}

// Position is the engine-internal holding state for one ticker during a
// single replay pass. Never persisted; recomputed from scratch per query.
type Position struct {
	Quantity float64
	Currency string
}
