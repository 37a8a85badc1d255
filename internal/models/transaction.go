// Package models defines data structures for Folioperf
package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// TransactionType categorizes a portfolio transaction.
type TransactionType string

const (
	TxBuy         TransactionType = "buy"
	TxSell        TransactionType = "sell"
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxTransferIn  TransactionType = "transfer_in"
	TxTransferOut TransactionType = "transfer_out"
	TxDividend    TransactionType = "dividend"
	TxInterest    TransactionType = "interest"
	TxCoupon      TransactionType = "coupon"
	TxConversion  TransactionType = "conversion"
)

// validTransactionTypes lists all accepted transaction types.
var validTransactionTypes = map[TransactionType]bool{
	TxBuy:         true,
	TxSell:        true,
	TxDeposit:     true,
	TxWithdrawal:  true,
	TxTransferIn:  true,
	TxTransferOut: true,
	TxDividend:    true,
	TxInterest:    true,
	TxCoupon:      true,
	TxConversion:  true,
}

// ValidTransactionType returns true if t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	return validTransactionTypes[TransactionType(strings.ToLower(string(t)))]
}

// IsExternalFlowType returns true if the transaction type represents capital
// moving in or out of the portfolio from outside. Buys, sells, income and
// conversions are performance-internal.
func IsExternalFlowType(t TransactionType) bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransferIn, TxTransferOut:
		return true
	default:
		return false
	}
}

// replayPriority orders same-day transactions for deterministic replay:
// money arrives before it is spent, shares are bought before sold.
var replayPriority = map[TransactionType]int{
	TxDeposit:     0,
	TxTransferIn:  1,
	TxBuy:         2,
	TxConversion:  3,
	TxSell:        4,
	TxTransferOut: 5,
	TxWithdrawal:  6,
}

// ReplayPriority returns the intraday ordering rank of the transaction type.
// Income types (dividend, interest, coupon) rank with conversions.
func (t TransactionType) ReplayPriority() int {
	if p, ok := replayPriority[t]; ok {
		return p
	}
	return 3
}

// Transaction is a single immutable row from a brokerage export.
// Quantity and UnitPrice carry magnitudes; direction is carried by Type.
//
// For conversions, Quantity is the target-currency amount received, UnitPrice
// is the source-per-target rate, Currency is the target currency and
// SourceCurrency the source. Legacy exports store the source currency in the
// ticker column; UnmarshalJSON migrates that encoding so the engine never has
// to interpret Ticker conditionally on Type.
type Transaction struct {
	Date           string          `json:"date"`
	Type           TransactionType `json:"type"`
	Ticker         string          `json:"ticker,omitempty"`
	Quantity       float64         `json:"quantity"`
	UnitPrice      float64         `json:"unit_price"`
	Fees           float64         `json:"fees"`
	Currency       string          `json:"currency,omitempty"`
	SourceCurrency string          `json:"source_currency,omitempty"`
}

// UnmarshalJSON decodes a transaction and normalizes legacy conversion rows.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Transaction(a)
	t.Normalize()
	return nil
}

// Normalize lowercases the type and migrates the legacy ticker-as-source-currency
// encoding used by conversion rows.
func (t *Transaction) Normalize() {
	t.Type = TransactionType(strings.ToLower(strings.TrimSpace(string(t.Type))))
	t.Ticker = strings.TrimSpace(t.Ticker)
	if t.Type == TxConversion && t.SourceCurrency == "" && t.Ticker != "" {
		t.SourceCurrency = t.Ticker
		t.Ticker = ""
	}
}

// DateKey returns the "YYYY-MM-DD" portion of the date for reliable string
// comparison, stripping any time component.
func (t *Transaction) DateKey() string {
	s := strings.TrimSpace(t.Date)
	if idx := strings.IndexByte(s, 'T'); idx == 10 {
		return s[:10]
	}
	return s
}

// Day parses the transaction date as a UTC-midnight day.
// Returns the zero time when the date is missing or unparsable.
func (t *Transaction) Day() time.Time {
	s := t.DateKey()
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// Unix returns the transaction timestamp in unix seconds at UTC midnight,
// or 0 when the date is unparsable.
func (t *Transaction) Unix() int64 {
	d := t.Day()
	if d.IsZero() {
		return 0
	}
	return d.Unix()
}

// SortCanonical orders transactions in place by date ascending, breaking
// same-day ties by replay priority. Replay correctness depends on this order.
func SortCanonical(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		di, dj := txs[i].DateKey(), txs[j].DateKey()
		if di != dj {
			return di < dj
		}
		return txs[i].Type.ReplayPriority() < txs[j].Type.ReplayPriority()
	})
}
