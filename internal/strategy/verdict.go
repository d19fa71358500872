package strategy

import (
	"fmt"
	"strings"

	"PrimeTerminal/internal/model"
)

// VerdictPolicy holds the thresholds used to label a screened stock.
type VerdictPolicy struct {
	Name         string        `yaml:"name" json:"name"`
	StrongAbove  int           `yaml:"strong_above" json:"strong_above"`
	NeutralAbove int           `yaml:"neutral_above" json:"neutral_above"`
	DrawdownVeto float64       `yaml:"drawdown_veto" json:"drawdown_veto"`
	Top          model.Verdict `yaml:"-" json:"top"`
}

// DefaultVerdictPolicy labels scores above 75 as an opportunity.
var DefaultVerdictPolicy = VerdictPolicy{
	Name:         "opportunity",
	StrongAbove:  75,
	NeutralAbove: 50,
	DrawdownVeto: -35,
	Top:          model.VerdictOpportunity,
}

// StrongVerdictPolicy labels scores above 70 as strong.
var StrongVerdictPolicy = VerdictPolicy{
	Name:         "strong",
	StrongAbove:  70,
	NeutralAbove: 50,
	DrawdownVeto: -35,
	Top:          model.VerdictStrong,
}

// ParseVerdictPolicy looks up a named verdict policy.
func ParseVerdictPolicy(name string) (VerdictPolicy, error) {
	switch strings.ToLower(name) {
	case "", DefaultVerdictPolicy.Name:
		return DefaultVerdictPolicy, nil
	case StrongVerdictPolicy.Name:
		return StrongVerdictPolicy, nil
	default:
		return VerdictPolicy{}, fmt.Errorf("unknown verdict policy %q", name)
	}
}

// Classify maps (score, max drawdown) to a verdict. The drawdown veto takes
// precedence: a high score with a catastrophic drawdown is still high risk.
func (p VerdictPolicy) Classify(score int, maxDrawdown float64) model.Verdict {
	switch {
	case maxDrawdown < p.DrawdownVeto:
		return model.VerdictHighRisk
	case score > p.StrongAbove:
		return p.Top
	case score > p.NeutralAbove:
		return model.VerdictNeutral
	default:
		return model.VerdictWeak
	}
}
