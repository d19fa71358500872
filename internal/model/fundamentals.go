package model

// Fundamentals is a point-in-time snapshot of company ratios. Every metric
// is optional: nil means the provider did not report it (throttling makes
// this common) and must be treated as unknown, never as zero.
type Fundamentals struct {
	LongName string `json:"long_name,omitempty" msgpack:"long_name"`
	Currency string `json:"currency,omitempty" msgpack:"currency"`

	// Valuation
	TrailingPE      *float64 `json:"trailing_pe" msgpack:"trailing_pe"`
	ForwardPE       *float64 `json:"forward_pe" msgpack:"forward_pe"`
	PEGRatio        *float64 `json:"peg_ratio" msgpack:"peg_ratio"`
	PriceToBook     *float64 `json:"price_to_book" msgpack:"price_to_book"`
	PriceToSales    *float64 `json:"price_to_sales" msgpack:"price_to_sales"`
	EnterpriseValue *float64 `json:"enterprise_value" msgpack:"enterprise_value"`

	// Profitability and growth, as fractions (0.15 = 15%)
	ProfitMargins    *float64 `json:"profit_margins" msgpack:"profit_margins"`
	OperatingMargins *float64 `json:"operating_margins" msgpack:"operating_margins"`
	GrossMargins     *float64 `json:"gross_margins" msgpack:"gross_margins"`
	ReturnOnEquity   *float64 `json:"return_on_equity" msgpack:"return_on_equity"`
	RevenueGrowth    *float64 `json:"revenue_growth" msgpack:"revenue_growth"`
	EarningsGrowth   *float64 `json:"earnings_growth" msgpack:"earnings_growth"`

	// Balance sheet
	TotalCash         *float64 `json:"total_cash" msgpack:"total_cash"`
	TotalDebt         *float64 `json:"total_debt" msgpack:"total_debt"`
	TotalCashPerShare *float64 `json:"total_cash_per_share" msgpack:"total_cash_per_share"`
	CurrentRatio      *float64 `json:"current_ratio" msgpack:"current_ratio"`
	DebtToEquity      *float64 `json:"debt_to_equity" msgpack:"debt_to_equity"`

	// Market
	DividendYield    *float64 `json:"dividend_yield" msgpack:"dividend_yield"`
	Beta             *float64 `json:"beta" msgpack:"beta"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high" msgpack:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low" msgpack:"fifty_two_week_low"`
}

// metrics lists every numeric field so IsEmpty cannot drift from the struct.
func (f Fundamentals) metrics() []*float64 {
	return []*float64{
		f.TrailingPE, f.ForwardPE, f.PEGRatio, f.PriceToBook, f.PriceToSales, f.EnterpriseValue,
		f.ProfitMargins, f.OperatingMargins, f.GrossMargins, f.ReturnOnEquity, f.RevenueGrowth, f.EarningsGrowth,
		f.TotalCash, f.TotalDebt, f.TotalCashPerShare, f.CurrentRatio, f.DebtToEquity,
		f.DividendYield, f.Beta, f.FiftyTwoWeekHigh, f.FiftyTwoWeekLow,
	}
}

// IsEmpty reports whether no numeric metric is known. Names alone do not count.
func (f Fundamentals) IsEmpty() bool {
	for _, m := range f.metrics() {
		if m != nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to v, for building snapshots.
func Float(v float64) *float64 { return &v }

// Value returns the metric and whether it is known.
func Value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
