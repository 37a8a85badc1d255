package twr

import (
	"math"
	"time"

	"github.com/averlon/folioperf/internal/models"
)

const (
	// minSubPeriodReturn caps a sub-period loss so the multiplicative
	// factor never goes negative or to zero.
	minSubPeriodReturn = -0.999999

	// daysPerYear is the mean calendar year length used for annualisation.
	daysPerYear = 365.25
)

// computation holds the prepared, immutable inputs of a single TWR run.
// Everything is an in-memory private copy; no state survives the run.
type computation struct {
	base       string
	tolerance  int64
	minBase    float64
	txs        []models.Transaction          // canonical order, parsable dates only
	histories  map[string][]models.PricePoint // sorted ascending per ticker
	currencies map[string]string             // ticker -> trading currency
	freeze     *freezeInterval
	now        time.Time
}

// freezeInterval is a resolved data-quality freeze window, inclusive on both
// UTC-midnight day bounds.
type freezeInterval struct {
	from, to time.Time
}

func (c *computation) frozen(day time.Time) bool {
	return c.freeze != nil && !day.Before(c.freeze.from) && !day.After(c.freeze.to)
}

// run walks the daily timeline from the first transaction to now, valuing the
// portfolio by full replay at each day and chaining sub-period returns
// geometrically. Returns the data points, total TWR and annualised TWR.
func (c *computation) run() ([]models.TWRDataPoint, float64, float64) {
	if len(c.txs) == 0 {
		return nil, 0, 0
	}

	start := c.txs[0].Day()
	end := c.now.UTC().Truncate(24 * time.Hour)
	if end.Before(start) {
		end = start
	}

	factor := 1.0
	prevValue := 0.0
	prevTime := start.AddDate(0, 0, -1).Unix()
	var points []models.TWRDataPoint

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		t := day.Unix()

		if c.frozen(day) {
			// Known bad source data: hold the chain flat and force a zero
			// value, but keep recording flows so cumulative-deposit curves
			// stay correct.
			flow := c.netFlows(prevTime, t)
			points = append(points, models.TWRDataPoint{
				Time:    t,
				Date:    day.Format("2006-01-02"),
				Value:   0,
				TWR:     factor - 1,
				NetFlow: flow,
			})
			prevTime = t
			continue
		}

		value, held := c.valueAt(t)
		flow := c.netFlows(prevTime, t)

		// A held position with a non-positive total value signals a price
		// lookup gap, not a genuinely empty portfolio. Neither the chain nor
		// the comparison base may move on such a day, or one bad price point
		// would corrupt the compounding permanently.
		missingPrices := held > 0 && value <= 0

		if !day.Equal(start) && !missingPrices && value > 0 {
			// A near-empty portfolio receiving a large re-deposit restarts
			// the chain: compounding off the stale near-zero base would
			// produce a meaningless percentage spike.
			freshRestart := prevValue < c.minBase && flow > c.minBase
			if !freshRestart {
				denom := prevValue + flow // start-of-period flow convention
				if denom > c.minBase {
					r := value/denom - 1
					if r < minSubPeriodReturn {
						r = minSubPeriodReturn
					}
					if !math.IsNaN(r) && !math.IsInf(r, 0) {
						factor *= 1 + r
					}
				}
			}
		}

		if value > 0 {
			points = append(points, models.TWRDataPoint{
				Time:    t,
				Date:    day.Format("2006-01-02"),
				Value:   value,
				TWR:     factor - 1,
				NetFlow: flow,
			})
		}

		if !missingPrices {
			prevValue = value
		}
		prevTime = t
	}

	totalTWR := factor - 1
	annualised := 0.0
	if len(points) >= 2 {
		years := float64(points[len(points)-1].Time-points[0].Time) / (daysPerYear * 86400)
		if years > 0 {
			annualised = annualise(totalTWR, years)
		}
	}

	return points, totalTWR, annualised
}

// valueAt values the portfolio at t: base-currency cash plus each position at
// its forward-filled market price, FX-converted. Positions without a usable
// price are omitted from the sum, not counted as zero. Returns the value and
// the number of held positions.
func (c *computation) valueAt(t int64) (float64, int) {
	positions, cash := c.replayState(t)

	value := cash
	for ticker, pos := range positions {
		price, ok := getPriceAt(c.histories[ticker], t, c.tolerance)
		if !ok || price == 0 {
			continue
		}
		currency := c.currencies[ticker]
		if currency == "" {
			currency = pos.Currency
		}
		value += c.toBase(pos.Quantity*price, currency, t)
	}
	return value, len(positions)
}

// annualise converts a cumulative return over the given span in years to an
// annualised return. The sign-preserving power avoids NaN from fractional
// powers of a negative base when the compounded return is below -100%.
func annualise(cumulative, years float64) float64 {
	base := 1 + cumulative
	return math.Copysign(math.Pow(math.Abs(base), 1/years), base) - 1
}
