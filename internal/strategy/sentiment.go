package strategy

import (
	"strings"

	"PrimeTerminal/internal/model"
)

// MaxHeadlines is how many of the latest headlines are considered.
const MaxHeadlines = 5

var (
	positiveKeywords = []string{"beat", "rise", "jump", "buy", "growth", "strong", "record", "profit"}
	negativeKeywords = []string{"miss", "fall", "drop", "sell", "weak", "loss", "crash", "risk"}
)

// Sentiment tags the latest headlines. Only the first MaxHeadlines are used,
// duplicates (exact text) are dropped, and each headline counts +1 when it
// contains any positive keyword and -1 when it contains any negative one.
// It returns the label and the headlines that were counted.
func Sentiment(headlines []string) (model.Sentiment, []string) {
	if len(headlines) > MaxHeadlines {
		headlines = headlines[:MaxHeadlines]
	}

	seen := make(map[string]bool, len(headlines))
	unique := make([]string, 0, len(headlines))
	for _, h := range headlines {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		unique = append(unique, h)
	}

	net := 0
	for _, h := range unique {
		lower := strings.ToLower(h)
		if containsAny(lower, positiveKeywords) {
			net++
		}
		if containsAny(lower, negativeKeywords) {
			net--
		}
	}

	switch {
	case net > 0:
		return model.SentimentPositive, unique
	case net < 0:
		return model.SentimentNegative, unique
	default:
		return model.SentimentNeutral, unique
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
