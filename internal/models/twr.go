package models

// TWRDataPoint is one included calendar day of the computed series.
// TWR is the cumulative decimal return of the chain up to this day; NetFlow
// is the base-currency external flow within the period ending at this point.
type TWRDataPoint struct {
	Time    int64   `json:"time"` // unix seconds, UTC midnight
	Date    string  `json:"date"` // "YYYY-MM-DD"
	Value   float64 `json:"value"`
	TWR     float64 `json:"twr"`
	NetFlow float64 `json:"net_flow"`
}

// PortfolioTWRResult is the engine output for one portfolio.
// TotalTWR is the final cumulative chain factor minus 1; AnnualisedTWR
// geometrically annualizes over the elapsed calendar span.
type PortfolioTWRResult struct {
	PortfolioID   string         `json:"portfolio_id"`
	PortfolioName string         `json:"portfolio_name"`
	Color         string         `json:"color,omitempty"`
	DataPoints    []TWRDataPoint `json:"data_points"`
	TotalTWR      float64        `json:"total_twr"`
	AnnualisedTWR float64        `json:"annualised_twr"`
}
