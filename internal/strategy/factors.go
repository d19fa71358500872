package strategy

import (
	"fmt"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/model"
)

// Factor weights.
const (
	FullWeight    = 20
	PartialWeight = 10
)

// Factor thresholds.
const (
	maxTrailingPE      = 40.0
	maxPEG             = 2.0
	maxFallbackPE      = 25.0
	minProfitMargin    = 0.15
	minReturnOnEquity  = 0.15
	minRevenueGrowth   = 0.10
	insufficientReason = "Date insuficiente pentru evaluarea fundamentala"
	neutralScore       = 50
)

func triggered(name string, points int, reason string) model.FactorResult {
	return model.FactorResult{Name: name, Points: points, Triggered: true, Reason: reason}
}

func skipped(name string) model.FactorResult {
	return model.FactorResult{Name: name}
}

// scoreTrend compares the latest close with the mean close of the whole
// series. The window is whatever period the caller fetched.
func scoreTrend(series model.PriceSeries) model.FactorResult {
	const name = "Trend"
	if series.Len() < 2 {
		return skipped(name)
	}
	closes := series.Closes()
	mean := calculator.Mean(closes)
	if closes[len(closes)-1] > mean {
		return triggered(name, FullWeight, "Trend Ascendent (Peste medie)")
	}
	return skipped(name)
}

// scoreValuationPE: 0 < trailing P/E < 40.
func scoreValuationPE(f model.Fundamentals) model.FactorResult {
	const name = "Valuation"
	pe, ok := model.Value(f.TrailingPE)
	if ok && pe > 0 && pe < maxTrailingPE {
		return triggered(name, FullWeight, fmt.Sprintf("Evaluare Corecta (P/E: %.2f)", pe))
	}
	return skipped(name)
}

// scoreValuationPEG: 0 < PEG < 2 for the full weight, otherwise
// 0 < trailing P/E < 25 for the partial weight.
func scoreValuationPEG(f model.Fundamentals) model.FactorResult {
	const name = "Valuation"
	if peg, ok := model.Value(f.PEGRatio); ok && peg > 0 && peg < maxPEG {
		return triggered(name, FullWeight, fmt.Sprintf("Evaluare Atractiva (PEG: %.2f)", peg))
	}
	if pe, ok := model.Value(f.TrailingPE); ok && pe > 0 && pe < maxFallbackPE {
		return triggered(name, PartialWeight, fmt.Sprintf("Evaluare Acceptabila (P/E: %.2f)", pe))
	}
	return skipped(name)
}

func scoreProfitMargin(f model.Fundamentals) model.FactorResult {
	const name = "Profitability"
	pm, ok := model.Value(f.ProfitMargins)
	if ok && pm > minProfitMargin {
		return triggered(name, FullWeight, fmt.Sprintf("Marja Profit Solida: %.1f%%", pm*100))
	}
	return skipped(name)
}

func scoreReturnOnEquity(f model.Fundamentals) model.FactorResult {
	const name = "Profitability"
	roe, ok := model.Value(f.ReturnOnEquity)
	if ok && roe > minReturnOnEquity {
		return triggered(name, FullWeight, fmt.Sprintf("Randament Capital (ROE): %.1f%%", roe*100))
	}
	return skipped(name)
}

func scoreGrowth(f model.Fundamentals) model.FactorResult {
	const name = "Growth"
	rg, ok := model.Value(f.RevenueGrowth)
	if ok && rg > minRevenueGrowth {
		return triggered(name, FullWeight, fmt.Sprintf("Crestere Venituri: %.1f%%", rg*100))
	}
	return skipped(name)
}

// scoreBalanceSheet requires both cash and debt to be reported.
func scoreBalanceSheet(f model.Fundamentals) model.FactorResult {
	const name = "BalanceSheet"
	cash, okCash := model.Value(f.TotalCash)
	debt, okDebt := model.Value(f.TotalDebt)
	if okCash && okDebt && cash > debt {
		return triggered(name, FullWeight, "Bilant Puternic (Cash > Datorii)")
	}
	return skipped(name)
}
