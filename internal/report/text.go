package report

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/model"
)

var markerReplacer = strings.NewReplacer(
	"🔴", "[RISC]",
	"🟢", "[BUN]",
	"🟡", "[NEUTRU]",
	"⚪", "-",
)

// NormalizeText makes s printable with the core PDF fonts: status emoji
// become text markers, diacritics are stripped and any rune outside
// Latin-1 is dropped.
func NormalizeText(s string) string {
	s = markerReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VerdictLabel is the Romanian display label of a verdict, with its marker.
func VerdictLabel(v model.Verdict) string {
	switch v {
	case model.VerdictOpportunity:
		return "Oportunitate 🟢"
	case model.VerdictStrong:
		return "Puternic 🟢"
	case model.VerdictNeutral:
		return "Neutru 🟡"
	case model.VerdictHighRisk:
		return "Risc Ridicat 🔴"
	default:
		return "Slab ⚪"
	}
}

// SentimentLabel is the Romanian display label of a headline tone.
func SentimentLabel(s model.Sentiment) string {
	switch s {
	case model.SentimentPositive:
		return "Pozitiv 🟢"
	case model.SentimentNegative:
		return "Negativ 🔴"
	default:
		return "Neutru ⚪"
	}
}

// RSISignal interprets an RSI reading the way the report prints it.
func RSISignal(rsi float64) string {
	switch calculator.RSIZone(rsi) {
	case "Overbought":
		return "Supra-cumpărat (Scump)"
	case "Oversold":
		return "Supra-vândut (Ieftin)"
	default:
		return "Neutru"
	}
}
