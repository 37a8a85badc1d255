package twr

import (
	"math"

	"github.com/averlon/folioperf/internal/models"
)

// dayNetEpsilon is the threshold below which a calendar day's net external
// flow is treated as zero.
const dayNetEpsilon = 1e-6

// netFlows sums the external capital movements inside (fromExcl, toIncl] in
// base currency. Only deposits, withdrawals and asset transfers count;
// trades and income are performance-internal.
//
// Transferred assets are valued at the market price on the transfer date when
// available, falling back to the transaction's own recorded unit price.
// Flows are aggregated per calendar day first and days netting to ~zero are
// dropped, so same-day offsetting broker-internal movements (a deposit and
// withdrawal pair that cancels out) inject no phantom flow into the chain.
func (c *computation) netFlows(fromExcl, toIncl int64) float64 {
	dayNet := make(map[string]float64)

	for i := range c.txs {
		tx := &c.txs[i]
		ts := tx.Unix()
		if ts > toIncl {
			break
		}
		if ts <= fromExcl || !models.IsExternalFlowType(tx.Type) {
			continue
		}

		switch tx.Type {
		case models.TxDeposit:
			if c.isBase(tx.Currency) {
				dayNet[tx.DateKey()] += resolveTransactionAmountAbs(tx)
			}

		case models.TxWithdrawal:
			if c.isBase(tx.Currency) {
				dayNet[tx.DateKey()] -= resolveTransactionAmountAbs(tx)
			}

		case models.TxTransferIn, models.TxTransferOut:
			if tx.Ticker == "" || tx.Quantity == 0 {
				continue
			}
			price, ok := getPriceAt(c.histories[tx.Ticker], ts, c.tolerance)
			if !ok || price == 0 {
				price = tx.UnitPrice
			}
			currency := tx.Currency
			if currency == "" {
				currency = c.currencies[tx.Ticker]
			}
			amount := c.toBase(tx.Quantity*price, currency, ts)
			if tx.Type == models.TxTransferOut {
				amount = -amount
			}
			dayNet[tx.DateKey()] += amount
		}
	}

	total := 0.0
	for _, net := range dayNet {
		if math.Abs(net) >= dayNetEpsilon {
			total += net
		}
	}
	return total
}
