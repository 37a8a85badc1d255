package twr

import (
	"math"
	"strings"

	"github.com/averlon/folioperf/internal/models"
)

// dustThreshold is the residual quantity below which a sold-out position is
// deleted rather than kept as floating-point dust.
const dustThreshold = 1e-9

// replayState folds all transactions up to and including upTo (unix seconds)
// into asset positions and a base-currency cash scalar. Transactions must be
// in canonical order; the fold stops at the first future transaction.
//
// Foreign-currency cash legs of buys and sells are deliberately not tracked:
// without a verified per-trade FX record, converting foreign settlement cash
// historically introduces unverifiable distortions. Only base-currency legs
// and explicit conversions move the cash scalar.
func (c *computation) replayState(upTo int64) (map[string]models.Position, float64) {
	positions := make(map[string]models.Position)
	cash := 0.0

	for i := range c.txs {
		tx := &c.txs[i]
		if tx.Unix() > upTo {
			break
		}

		switch tx.Type {
		case models.TxBuy:
			if tx.Ticker == "" || tx.Quantity == 0 || tx.UnitPrice == 0 {
				continue
			}
			pos := positions[tx.Ticker]
			pos.Quantity += tx.Quantity
			if pos.Currency == "" {
				pos.Currency = tx.Currency
			}
			positions[tx.Ticker] = pos
			if c.isBase(tx.Currency) {
				cash -= tx.Quantity*tx.UnitPrice + tx.Fees
			}

		case models.TxSell:
			if tx.Ticker == "" || tx.Quantity == 0 {
				continue
			}
			pos := positions[tx.Ticker]
			pos.Quantity -= tx.Quantity
			if pos.Quantity <= dustThreshold {
				delete(positions, tx.Ticker)
			} else {
				positions[tx.Ticker] = pos
			}
			if c.isBase(tx.Currency) {
				cash += tx.Quantity*tx.UnitPrice - tx.Fees
			}

		case models.TxTransferIn, models.TxTransferOut:
			// Asset moved in or out of custody, not bought or sold:
			// position quantity only, cash untouched.
			if tx.Ticker == "" || tx.Quantity == 0 {
				continue
			}
			pos := positions[tx.Ticker]
			if tx.Type == models.TxTransferIn {
				pos.Quantity += tx.Quantity
			} else {
				pos.Quantity -= tx.Quantity
			}
			if pos.Currency == "" {
				pos.Currency = tx.Currency
			}
			positions[tx.Ticker] = pos

		case models.TxDeposit:
			if c.isBase(tx.Currency) {
				cash += resolveTransactionAmountAbs(tx)
			}

		case models.TxWithdrawal:
			if c.isBase(tx.Currency) {
				cash -= resolveTransactionAmountAbs(tx)
			}

		case models.TxDividend, models.TxInterest, models.TxCoupon:
			if c.isBase(tx.Currency) {
				cash += resolveTransactionAmountAbs(tx)
			}

		case models.TxConversion:
			// Source and target legs apply independently. Valid data never
			// has source == target == base, but if it did both legs would
			// touch the scalar.
			if strings.EqualFold(tx.SourceCurrency, c.base) {
				cash -= tx.Quantity*tx.UnitPrice + tx.Fees
			}
			if strings.EqualFold(tx.Currency, c.base) {
				cash += tx.Quantity
			}
		}
	}

	return positions, cash
}

// resolveTransactionAmountAbs resolves the cash amount of a deposit-like row.
// Some exports store the amount as quantity × unit price, others put it
// directly in the price-like field with no quantity.
func resolveTransactionAmountAbs(tx *models.Transaction) float64 {
	if tx.Quantity > 0 && tx.UnitPrice > 0 {
		return math.Abs(tx.Quantity * tx.UnitPrice)
	}
	return math.Abs(tx.UnitPrice)
}

// isBase reports whether a currency code is the base currency. Rows without a
// currency are treated as base-denominated.
func (c *computation) isBase(currency string) bool {
	return currency == "" || strings.EqualFold(currency, c.base)
}
