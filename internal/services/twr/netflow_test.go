package twr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/averlon/folioperf/internal/models"
)

func TestNetFlows_DepositsAndWithdrawalsSigned(t *testing.T) {
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-02", Type: models.TxDeposit, Quantity: 1000, UnitPrice: 1, Currency: "EUR"},
		{Date: "2024-01-05", Type: models.TxWithdrawal, Quantity: 300, UnitPrice: 1, Currency: "EUR"},
	}})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.InDelta(t, 700.0, flow, 1e-9)
}

func TestNetFlows_WindowBounds(t *testing.T) {
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-01", Type: models.TxDeposit, Quantity: 100, UnitPrice: 1, Currency: "EUR"},
		{Date: "2024-01-10", Type: models.TxDeposit, Quantity: 200, UnitPrice: 1, Currency: "EUR"},
	}})

	// Lower bound is exclusive, upper inclusive.
	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-10"))
	assert.InDelta(t, 200.0, flow, 1e-9)

	flow = c.netFlows(unix("2023-12-31"), unix("2024-01-09"))
	assert.InDelta(t, 100.0, flow, 1e-9)
}

func TestNetFlows_TradesAndIncomeAreInternal(t *testing.T) {
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-02", Type: models.TxBuy, Ticker: "X", Quantity: 10, UnitPrice: 50, Currency: "EUR"},
		{Date: "2024-01-03", Type: models.TxSell, Ticker: "X", Quantity: 5, UnitPrice: 60, Currency: "EUR"},
		{Date: "2024-01-04", Type: models.TxDividend, Ticker: "X", UnitPrice: 12, Currency: "EUR"},
		{Date: "2024-01-05", Type: models.TxConversion, SourceCurrency: "USD", Currency: "EUR", Quantity: 500, UnitPrice: 1.1},
	}})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.Zero(t, flow)
}

func TestNetFlows_SameDayOffsetNeutralized(t *testing.T) {
	// A same-day deposit+withdrawal pair that nets to zero is a
	// broker-internal movement, not a real flow.
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-02", Type: models.TxDeposit, Quantity: 5000, UnitPrice: 1, Currency: "EUR"},
		{Date: "2024-01-02", Type: models.TxWithdrawal, Quantity: 5000, UnitPrice: 1, Currency: "EUR"},
		{Date: "2024-01-03", Type: models.TxDeposit, Quantity: 250, UnitPrice: 1, Currency: "EUR"},
	}})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.InDelta(t, 250.0, flow, 1e-9)
}

func TestNetFlows_TransferValuedAtMarketPrice(t *testing.T) {
	// Market price on the transfer date (50) wins over the recorded unit
	// price (40).
	c := newTestService().newComputation(Input{
		Transactions: []models.Transaction{
			{Date: "2024-01-05", Type: models.TxTransferIn, Ticker: "ABC", Quantity: 10, UnitPrice: 40, Currency: "EUR"},
		},
		Histories: map[string]models.PriceHistory{
			"ABC": flatHistory("ABC", "2024-01-01", 10, 50),
		},
	})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.InDelta(t, 500.0, flow, 1e-9)
}

func TestNetFlows_TransferFallsBackToRecordedPrice(t *testing.T) {
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-05", Type: models.TxTransferOut, Ticker: "ABC", Quantity: 10, UnitPrice: 40, Currency: "EUR"},
	}})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.InDelta(t, -400.0, flow, 1e-9)
}

func TestNetFlows_TransferConvertedViaAssetCurrency(t *testing.T) {
	// The transfer row carries no currency; the asset's known trading
	// currency resolves the FX conversion.
	c := newTestService().newComputation(Input{
		Transactions: []models.Transaction{
			{Date: "2024-01-05", Type: models.TxTransferIn, Ticker: "AAPL", Quantity: 10, UnitPrice: 180},
		},
		AssetCurrencies: map[string]string{"AAPL": "USD"},
		Histories: map[string]models.PriceHistory{
			"USDEUR=X": flatHistory("USDEUR=X", "2024-01-01", 10, 0.9),
		},
	})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.InDelta(t, 1620.0, flow, 1e-9) // 10 × 180 × 0.9
}

func TestNetFlows_ForeignDepositNotCounted(t *testing.T) {
	// Matches the replayer's cash-tracking restriction.
	c := newTestService().newComputation(Input{Transactions: []models.Transaction{
		{Date: "2024-01-02", Type: models.TxDeposit, Quantity: 1000, UnitPrice: 1, Currency: "USD"},
	}})

	flow := c.netFlows(unix("2024-01-01"), unix("2024-01-31"))
	assert.Zero(t, flow)
}
