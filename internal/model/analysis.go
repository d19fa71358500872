package model

import (
	"fmt"
	"strings"
	"time"
)

// FactorResult records the outcome of a single scoring factor.
type FactorResult struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
}

// ScoreResult is the output of the score engine. Score is in [0,100] and a
// multiple of 10; Reasons holds one entry per triggered factor in
// evaluation order.
type ScoreResult struct {
	Score   int            `json:"score"`
	Reasons []string       `json:"reasons"`
	Factors []FactorResult `json:"factors"`
}

// RiskSnapshot holds the risk statistics of a price series. Volatility,
// MaxDrawdown and CAGR are percentages; MaxDrawdown is always <= 0.
type RiskSnapshot struct {
	Volatility  float64 `json:"volatility"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Sharpe      float64 `json:"sharpe"`
	CAGR        float64 `json:"cagr"`
	Available   bool    `json:"available"`
}

// Range52w is the 52-week trading range computed from daily bars.
type Range52w struct {
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Position float64 `json:"position"` // 0.0 ~ 1.0
}

// Verdict is the final screening label.
type Verdict int

const (
	VerdictWeak Verdict = iota
	VerdictNeutral
	VerdictOpportunity
	VerdictStrong
	VerdictHighRisk
)

var verdictNames = map[Verdict]string{
	VerdictWeak:        "Weak",
	VerdictNeutral:     "Neutral",
	VerdictOpportunity: "Opportunity",
	VerdictStrong:      "Strong",
	VerdictHighRisk:    "HighRisk",
}

func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(b []byte) error {
	for k, name := range verdictNames {
		if strings.EqualFold(name, string(b)) {
			*v = k
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", string(b))
}

// Sentiment is the headline tone label.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Analysis bundles everything derived from one fetched snapshot. It is the
// input of the report renderer and of every outer surface.
type Analysis struct {
	Ticker       string       `json:"ticker"`
	CompanyName  string       `json:"company_name"`
	Period       Period       `json:"period"`
	CurrentPrice float64      `json:"current_price"`
	Score        ScoreResult  `json:"score"`
	Verdict      Verdict      `json:"verdict"`
	Risk         RiskSnapshot `json:"risk"`
	RSI          float64      `json:"rsi"`
	RSIDefined   bool         `json:"rsi_defined"`
	Range        *Range52w    `json:"range_52w,omitempty"`
	Fundamentals Fundamentals `json:"fundamentals"`
	Sentiment    Sentiment    `json:"sentiment"`
	Headlines    []string     `json:"headlines"`
	Series       PriceSeries  `json:"-"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// Favorite is a saved ticker with its display name.
type Favorite struct {
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

// Performance is a closing-price series rebased to percent change from its
// first bar, used to compare tickers on one chart.
type Performance struct {
	Symbol string      `json:"symbol"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}
