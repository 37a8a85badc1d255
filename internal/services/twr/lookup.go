package twr

import (
	"sort"

	"github.com/averlon/folioperf/internal/models"
)

// getPriceAt returns the forward-filled price of the last point whose time is
// at or before ts + tolerance. Daily snapshots are queried at UTC midnight but
// market closes are stamped later the same calendar day; the tolerance keeps
// same-day data from appearing to be in the future.
//
// The series must be sorted ascending. Returns false when no point qualifies
// or the series is empty.
func getPriceAt(points []models.PricePoint, ts, tolerance int64) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}

	limit := ts + tolerance
	idx := sort.Search(len(points), func(i int) bool {
		return points[i].Time > limit
	})
	if idx == 0 {
		return 0, false
	}
	return points[idx-1].Price, true
}

// toBase converts an amount denominated in currency into the base currency at
// a point in time, via the synthetic FX series "{CUR}{BASE}=X".
//
// A missing series or a zero/absent rate yields 0, never a 1:1 fallback:
// silently passing the unconverted amount through would overstate value for
// untracked foreign cash, so the engine undercounts instead.
func (c *computation) toBase(amount float64, currency string, ts int64) float64 {
	if c.isBase(currency) {
		return amount
	}

	rate, ok := getPriceAt(c.histories[models.FXTicker(currency, c.base)], ts, c.tolerance)
	if !ok || rate == 0 {
		return 0
	}
	return amount * rate
}
