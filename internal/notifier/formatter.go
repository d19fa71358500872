package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
)

// DigestEntry is one favorite's line in the watchlist digest.
type DigestEntry struct {
	Symbol   string
	Analysis *model.Analysis
	Err      error
}

// FormatAnalysis formats one analysis into a Telegram message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛡️ <b>%s</b> | %s\n", html.EscapeString(a.Ticker), html.EscapeString(a.CompanyName))
	fmt.Fprintf(&b, "Perioadă: %s | %s\n\n", a.Period, a.GeneratedAt.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "Preț: $%.2f\n", a.CurrentPrice)
	fmt.Fprintf(&b, "Scor PRIME: <b>%d/100</b>\n", a.Score.Score)
	fmt.Fprintf(&b, "Verdict: %s\n\n", report.VerdictLabel(a.Verdict))

	b.WriteString("📉 <b>Risc:</b>\n")
	if a.Risk.Available {
		fmt.Fprintf(&b, "  Volatilitate: %.1f%%\n", a.Risk.Volatility)
		fmt.Fprintf(&b, "  Max Drawdown: %.1f%%\n", a.Risk.MaxDrawdown)
		fmt.Fprintf(&b, "  Sharpe: %.2f | CAGR: %.1f%%\n", a.Risk.Sharpe, a.Risk.CAGR)
	} else {
		b.WriteString("  Date insuficiente\n")
	}
	if a.RSIDefined {
		fmt.Fprintf(&b, "  RSI (14): %.0f (%s)\n", a.RSI, report.RSISignal(a.RSI))
	}

	if len(a.Score.Reasons) > 0 {
		b.WriteString("\n📈 <b>Detalii scoring:</b>\n")
		for _, r := range a.Score.Reasons {
			fmt.Fprintf(&b, "  • %s\n", html.EscapeString(r))
		}
	}

	fmt.Fprintf(&b, "\n📰 Sentiment: %s\n", report.SentimentLabel(a.Sentiment))
	return b.String()
}

// FormatDigest formats the watchlist digest sent on schedule.
func FormatDigest(entries []DigestEntry, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>PrimeTerminal Watchlist</b> | %s\n\n", at.Format("2006-01-02"))
	if len(entries) == 0 {
		b.WriteString("Nicio companie salvată.\n")
		return b.String()
	}
	for _, e := range entries {
		if e.Err != nil || e.Analysis == nil {
			fmt.Fprintf(&b, "❌ <b>%s</b>: date indisponibile\n", html.EscapeString(e.Symbol))
			continue
		}
		a := e.Analysis
		fmt.Fprintf(&b, "<b>%s</b> $%.2f | %d/100 | %s", html.EscapeString(a.Ticker), a.CurrentPrice, a.Score.Score, report.VerdictLabel(a.Verdict))
		if a.Risk.Available {
			fmt.Fprintf(&b, " | DD %.1f%%", a.Risk.MaxDrawdown)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatFavorites lists the saved tickers.
func FormatFavorites(favs []model.Favorite) string {
	if len(favs) == 0 {
		return "Nicio companie salvată."
	}
	var b strings.Builder
	b.WriteString("⭐ <b>Favorite</b>\n\n")
	for _, f := range favs {
		name := f.Name
		if name == "" {
			name = f.Symbol
		}
		fmt.Fprintf(&b, "• <b>%s</b> %s\n", html.EscapeString(f.Symbol), html.EscapeString(name))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return "Comenzi disponibile:\n" +
		"• /analyze TICKER [perioadă]\n" +
		"• /report TICKER [perioadă]\n" +
		"• /favorites\n" +
		"• /add TICKER\n" +
		"• /remove TICKER\n" +
		"• /digest"
}
