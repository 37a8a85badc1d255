package twr

import (
	"time"

	"github.com/averlon/folioperf/internal/models"
)

// Range is a preset chart window.
type Range string

const (
	RangeYTD Range = "ytd"
	Range6M  Range = "6m"
	Range1Y  Range = "1y"
	Range2Y  Range = "2y"
	Range5Y  Range = "5y"
	RangeMax Range = "max"
)

// avgDaysPerMonth converts month-denominated presets to a fixed day count.
const avgDaysPerMonth = 30.44

// FilterByRange trims a data point series to a preset window ending at now.
// RangeMax (or an unknown range) returns the series unchanged. A window that
// would exclude everything collapses to the single most recent point, so a
// chart never renders with no data.
func FilterByRange(points []models.TWRDataPoint, rng Range, now time.Time) []models.TWRDataPoint {
	if len(points) == 0 {
		return points
	}

	var months float64
	switch rng {
	case RangeYTD:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return filterFrom(points, from.Unix())
	case Range6M:
		months = 6
	case Range1Y:
		months = 12
	case Range2Y:
		months = 24
	case Range5Y:
		months = 60
	default:
		return points
	}

	from := now.Add(-time.Duration(months * avgDaysPerMonth * float64(24*time.Hour)))
	return filterFrom(points, from.Unix())
}

// FilterByWindow trims a data point series to explicit inclusive bounds, with
// the same never-empty fallback as FilterByRange.
func FilterByWindow(points []models.TWRDataPoint, from, to time.Time) []models.TWRDataPoint {
	if len(points) == 0 {
		return points
	}

	out := make([]models.TWRDataPoint, 0, len(points))
	for _, p := range points {
		if p.Time >= from.Unix() && p.Time <= to.Unix() {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return points[len(points)-1:]
	}
	return out
}

func filterFrom(points []models.TWRDataPoint, fromUnix int64) []models.TWRDataPoint {
	out := make([]models.TWRDataPoint, 0, len(points))
	for _, p := range points {
		if p.Time >= fromUnix {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return points[len(points)-1:]
	}
	return out
}

// RebaseTWR re-zeroes a cumulative return series so the first visible point
// reads exactly 0%. The chain's cumulative origin is the portfolio's full
// history, not the visible window's start, so trimmed series need rebasing
// before display.
func RebaseTWR(points []models.TWRDataPoint) []models.TWRDataPoint {
	if len(points) == 0 {
		return points
	}

	out := make([]models.TWRDataPoint, len(points))
	copy(out, points)

	base := 1 + out[0].TWR
	if base == 0 {
		return out
	}
	for i := range out {
		out[i].TWR = (1+out[i].TWR)/base - 1
	}
	return out
}

// RebaseBenchmark re-expresses a benchmark price series in the same
// cumulative-return convention as a visible TWR series. The base is the
// forward-filled benchmark price at or before the first visible date; dates
// without a benchmark price are skipped.
func RebaseBenchmark(history models.PriceHistory, visible []models.TWRDataPoint, tolerance int64) []models.TWRDataPoint {
	if len(visible) == 0 {
		return nil
	}

	points := history.SortedPoints()
	base, ok := getPriceAt(points, visible[0].Time, tolerance)
	if !ok || base == 0 {
		return nil
	}

	out := make([]models.TWRDataPoint, 0, len(visible))
	for _, v := range visible {
		price, ok := getPriceAt(points, v.Time, tolerance)
		if !ok || price == 0 {
			continue
		}
		out = append(out, models.TWRDataPoint{
			Time:  v.Time,
			Date:  v.Date,
			Value: price,
			TWR:   price/base - 1,
		})
	}
	return out
}

// DownsampleToWeekly keeps the last data point per ISO week.
func DownsampleToWeekly(points []models.TWRDataPoint) []models.TWRDataPoint {
	if len(points) == 0 {
		return nil
	}

	weekly := make([]models.TWRDataPoint, 0)
	for i, p := range points {
		if i == len(points)-1 {
			weekly = append(weekly, p)
			continue
		}
		y1, w1 := time.Unix(p.Time, 0).UTC().ISOWeek()
		y2, w2 := time.Unix(points[i+1].Time, 0).UTC().ISOWeek()
		if w1 != w2 || y1 != y2 {
			weekly = append(weekly, p)
		}
	}

	return weekly
}

// DownsampleToMonthly keeps the last data point per calendar month.
func DownsampleToMonthly(points []models.TWRDataPoint) []models.TWRDataPoint {
	if len(points) == 0 {
		return nil
	}

	monthly := make([]models.TWRDataPoint, 0)
	for i, p := range points {
		if i == len(points)-1 {
			monthly = append(monthly, p)
			continue
		}
		d1 := time.Unix(p.Time, 0).UTC()
		d2 := time.Unix(points[i+1].Time, 0).UTC()
		if d1.Month() != d2.Month() || d1.Year() != d2.Year() {
			monthly = append(monthly, p)
		}
	}

	return monthly
}
