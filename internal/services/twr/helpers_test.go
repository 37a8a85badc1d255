package twr

import (
	"time"

	"github.com/averlon/folioperf/internal/common"
	"github.com/averlon/folioperf/internal/models"
)

func newTestService() *Service {
	return NewService(common.EngineConfig{
		BaseCurrency:          "EUR",
		PriceToleranceSeconds: 86400,
		MinChainBase:          100,
	}, common.NewSilentLogger())
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func unix(s string) int64 {
	return day(s).Unix()
}

// flatHistory builds a series with one point per day at the given price,
// from start for the given number of days.
func flatHistory(symbol, start string, days int, price float64) models.PriceHistory {
	h := models.PriceHistory{Symbol: symbol}
	d := day(start)
	for i := 0; i < days; i++ {
		h.Points = append(h.Points, models.PricePoint{Time: d.AddDate(0, 0, i).Unix(), Price: price})
	}
	return h
}
