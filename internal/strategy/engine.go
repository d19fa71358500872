package strategy

import (
	"fmt"
	"sort"
	"strings"

	"PrimeTerminal/internal/model"
)

// ValuationRule selects how the valuation factor is scored.
type ValuationRule string

const (
	ValuationPE  ValuationRule = "pe"  // 0 < P/E < 40 -> 20
	ValuationPEG ValuationRule = "peg" // 0 < PEG < 2 -> 20, else 0 < P/E < 25 -> 10
)

// ProfitabilityRule selects how the profitability factor is scored.
type ProfitabilityRule string

const (
	ProfitabilityMargin ProfitabilityRule = "margin" // profit margin > 15%
	ProfitabilityROE    ProfitabilityRule = "roe"    // return on equity > 15%
)

// Policy is a named scoring configuration.
type Policy struct {
	Name          string            `yaml:"name" json:"name"`
	Valuation     ValuationRule     `yaml:"valuation" json:"valuation"`
	Profitability ProfitabilityRule `yaml:"profitability" json:"profitability"`
}

// DefaultPolicy scores valuation on trailing P/E and profitability on margin.
var DefaultPolicy = Policy{Name: "classic", Valuation: ValuationPE, Profitability: ProfitabilityMargin}

// Policies holds every selectable scoring configuration.
var Policies = map[string]Policy{
	"classic": DefaultPolicy,
	"peg":     {Name: "peg", Valuation: ValuationPEG, Profitability: ProfitabilityMargin},
	"roe":     {Name: "roe", Valuation: ValuationPE, Profitability: ProfitabilityROE},
	"peg-roe": {Name: "peg-roe", Valuation: ValuationPEG, Profitability: ProfitabilityROE},
}

// ParsePolicy looks up a named policy.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return DefaultPolicy, nil
	}
	p, ok := Policies[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(Policies))
		for k := range Policies {
			names = append(names, k)
		}
		sort.Strings(names)
		return Policy{}, fmt.Errorf("unknown scoring policy %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}

// Engine computes the composite quality score. It holds only its policy and
// is safe for concurrent use.
type Engine struct {
	Policy Policy
}

// NewEngine creates an engine for the given policy.
func NewEngine(p Policy) *Engine {
	return &Engine{Policy: p}
}

// Compute scores a fundamentals snapshot and price series. Factors are
// evaluated in a fixed order (trend, valuation, profitability, growth,
// balance sheet) and each triggered factor appends its reason.
//
// An entirely empty snapshot returns a neutral 50 with a single
// insufficient-data reason: missing evidence is not poor quality.
func (e *Engine) Compute(f model.Fundamentals, series model.PriceSeries) model.ScoreResult {
	if f.IsEmpty() {
		return model.ScoreResult{
			Score:   neutralScore,
			Reasons: []string{insufficientReason},
			Factors: []model.FactorResult{},
		}
	}

	factors := []model.FactorResult{
		scoreTrend(series),
		e.scoreValuation(f),
		e.scoreProfitability(f),
		scoreGrowth(f),
		scoreBalanceSheet(f),
	}

	result := model.ScoreResult{Reasons: []string{}, Factors: factors}
	for _, fr := range factors {
		if !fr.Triggered {
			continue
		}
		result.Score += fr.Points
		result.Reasons = append(result.Reasons, fr.Reason)
	}
	return result
}

func (e *Engine) scoreValuation(f model.Fundamentals) model.FactorResult {
	if e.Policy.Valuation == ValuationPEG {
		return scoreValuationPEG(f)
	}
	return scoreValuationPE(f)
}

func (e *Engine) scoreProfitability(f model.Fundamentals) model.FactorResult {
	if e.Policy.Profitability == ProfitabilityROE {
		return scoreReturnOnEquity(f)
	}
	return scoreProfitMargin(f)
}
