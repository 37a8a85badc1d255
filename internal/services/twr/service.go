// Package twr implements the time-weighted return engine: historical replay
// of a multi-currency transaction log into daily portfolio values, external
// flow detection, and geometric chaining of sub-period returns.
package twr

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/averlon/folioperf/internal/common"
	"github.com/averlon/folioperf/internal/models"
)

// Input is everything a single TWR computation consumes. All data must be
// fully materialized before the call; the engine performs no I/O.
type Input struct {
	PortfolioID   string
	PortfolioName string
	Color         string
	Transactions  []models.Transaction
	// Histories maps ticker symbols, including synthetic FX tickers
	// ("USDEUR=X"), to their price series. Series ordering is not assumed.
	Histories map[string]models.PriceHistory
	// AssetCurrencies maps tickers to their trading currency, used for
	// position valuation independent of what each transaction recorded.
	AssetCurrencies map[string]string
	// AsOf pins "today" for the timeline walk. Zero means time.Now().
	AsOf time.Time
}

// Service computes TWR results for portfolios.
type Service struct {
	cfg    common.EngineConfig
	logger *common.Logger
}

// NewService creates a new TWR service
func NewService(cfg common.EngineConfig, logger *common.Logger) *Service {
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "EUR"
	}
	if cfg.PriceToleranceSeconds == 0 {
		cfg.PriceToleranceSeconds = 86400
	}
	if cfg.MinChainBase == 0 {
		cfg.MinChainBase = 100
	}
	return &Service{cfg: cfg, logger: logger}
}

// Compute runs the full daily TWR chain for one portfolio. It never fails:
// degenerate inputs degrade to a neutral result with no data points.
func (s *Service) Compute(in Input) models.PortfolioTWRResult {
	funcStart := time.Now()

	result := models.PortfolioTWRResult{
		PortfolioID:   in.PortfolioID,
		PortfolioName: in.PortfolioName,
		Color:         in.Color,
		DataPoints:    []models.TWRDataPoint{},
	}
	if result.PortfolioID == "" {
		result.PortfolioID = uuid.NewString()
	}

	c := s.newComputation(in)
	if len(c.txs) == 0 {
		s.logger.Debug().Str("portfolio", in.PortfolioName).Msg("No usable transactions, returning neutral TWR result")
		return result
	}
	if c.freeze != nil {
		s.logger.Warn().
			Str("portfolio", in.PortfolioName).
			Str("from", c.freeze.from.Format("2006-01-02")).
			Str("to", c.freeze.to.Format("2006-01-02")).
			Msg("Data-quality freeze window active")
	}

	points, total, annualised := c.run()
	if points != nil {
		result.DataPoints = points
	}
	result.TotalTWR = total
	result.AnnualisedTWR = annualised

	s.logger.Info().
		Str("portfolio", in.PortfolioName).
		Int("transactions", len(c.txs)).
		Int("points", len(points)).
		Float64("total_twr", total).
		Dur("elapsed", time.Since(funcStart)).
		Msg("TWR computation complete")
	return result
}

// ComputeAll computes every portfolio concurrently. Each computation is
// independent and referentially transparent, so one goroutine per portfolio
// is safe; result order matches input order.
func (s *Service) ComputeAll(ins []Input) []models.PortfolioTWRResult {
	results := make([]models.PortfolioTWRResult, len(ins))

	var wg sync.WaitGroup
	for i := range ins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Compute(ins[i])
		}(i)
	}
	wg.Wait()

	return results
}

// newComputation prepares the private, canonical copies a run operates on.
func (s *Service) newComputation(in Input) *computation {
	txs := make([]models.Transaction, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		tx.Normalize()
		if tx.Day().IsZero() {
			continue
		}
		txs = append(txs, tx)
	}
	models.SortCanonical(txs)

	histories := make(map[string][]models.PricePoint, len(in.Histories))
	for ticker, h := range in.Histories {
		histories[ticker] = h.SortedPoints()
	}

	now := in.AsOf
	if now.IsZero() {
		now = time.Now()
	}

	return &computation{
		base:       s.cfg.BaseCurrency,
		tolerance:  s.cfg.PriceToleranceSeconds,
		minBase:    s.cfg.MinChainBase,
		txs:        txs,
		histories:  histories,
		currencies: in.AssetCurrencies,
		freeze:     s.resolveFreeze(in.PortfolioID, in.PortfolioName),
		now:        now,
	}
}

// resolveFreeze returns the first configured freeze window matching the
// portfolio, by exact ID or by normalized name substring.
func (s *Service) resolveFreeze(id, name string) *freezeInterval {
	normName := normalizeName(name)

	for _, w := range s.cfg.FreezeWindows {
		matched := w.PortfolioID != "" && w.PortfolioID == id
		if !matched && w.NameMatch != "" && normName != "" {
			matched = strings.Contains(normName, normalizeName(w.NameMatch))
		}
		if !matched {
			continue
		}

		from, to, err := w.Interval()
		if err != nil {
			s.logger.Warn().Err(err).Str("portfolio", name).Msg("Skipping unparsable freeze window")
			continue
		}
		return &freezeInterval{from: from, to: to}
	}
	return nil
}
