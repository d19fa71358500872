package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrimeTerminal/internal/model"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Risc Ridicat 🔴", "Risc Ridicat [RISC]"},
		{"Oportunitate 🟢", "Oportunitate [BUN]"},
		{"Neutru 🟡", "Neutru [NEUTRU]"},
		{"⚪ Slab", "- Slab"},
		{"Creștere Venituri, Bilanț, Săptămâni, Îmbunătățire", "Crestere Venituri, Bilant, Saptamani, Imbunatatire"},
		{"Café ünd 📈 rocket 🚀", "Cafe und  rocket "},
		{"Price € and ™", "Price  and "},
		{"plain ascii 123", "plain ascii 123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), tt.in)
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Oportunitate [BUN]", NormalizeText(VerdictLabel(model.VerdictOpportunity)))
	assert.Equal(t, "Risc Ridicat [RISC]", NormalizeText(VerdictLabel(model.VerdictHighRisk)))
	assert.Equal(t, "Slab -", NormalizeText(VerdictLabel(model.VerdictWeak)))
	assert.Equal(t, "Negativ [RISC]", NormalizeText(SentimentLabel(model.SentimentNegative)))
	assert.Equal(t, "Supra-cumparat (Scump)", NormalizeText(RSISignal(75)))
	assert.Equal(t, "Supra-vandut (Ieftin)", NormalizeText(RSISignal(20)))
	assert.Equal(t, "Neutru", RSISignal(70))
}

func testSeries(n int, flat bool) model.PriceSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100.0
		if !flat {
			c += float64(i%17) + float64(i)*0.2
		}
		bars[i] = model.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return model.PriceSeries{Symbol: "TEST", Period: model.Period1y, Bars: bars}
}

func testAnalysis(series model.PriceSeries, f model.Fundamentals) *model.Analysis {
	last, _ := series.Last()
	return &model.Analysis{
		Ticker:       "TEST",
		CompanyName:  "Test Ședință SA",
		Period:       model.Period1y,
		CurrentPrice: last.Close,
		Score:        model.ScoreResult{Score: 60, Reasons: []string{"Creștere Venituri: 12.0%"}},
		Verdict:      model.VerdictNeutral,
		Risk:         model.RiskSnapshot{Volatility: 22.5, MaxDrawdown: -12.3, Sharpe: 0.8, CAGR: 9.1, Available: true},
		RSI:          55,
		RSIDefined:   true,
		Fundamentals: f,
		Sentiment:    model.SentimentPositive,
		Headlines:    []string{"Shares jump 🚀"},
		Series:       series,
	}
}

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart(testSeries(260, false), DefaultOverlays...)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	png, err = RenderPriceChart(testSeries(10, true), DefaultOverlays...)
	require.NoError(t, err, "flat series and overlays longer than the series are tolerated")
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = RenderPriceChart(testSeries(1, false))
	assert.Error(t, err)
}

func TestRenderComparisonChart(t *testing.T) {
	times := []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	png, err := RenderComparisonChart([]model.Performance{
		{Symbol: "A", Times: times, Values: []float64{0, 5}},
		{Symbol: "B", Times: times, Values: []float64{0, -3}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = RenderComparisonChart([]model.Performance{{Symbol: "A", Times: times[:1], Values: []float64{0}}})
	assert.Error(t, err)
}

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer(1000)
	r.Compress = false
	r.now = func() time.Time { return time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC) }

	f := model.Fundamentals{
		TrailingPE:    model.Float(18.25),
		ProfitMargins: model.Float(0.2),
		TotalCash:     model.Float(5e9),
		DividendYield: model.Float(0.024),
	}
	out, err := r.Render(testAnalysis(testSeries(260, false), f))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, want := range []string{
		"RAPORT DE AUDIT: TEST",
		"Generat la: 2024-06-03 09:30",
		"Companie: Test Sedinta SA",
		"Scor PRIME: 60/100",
		"Verdict: Neutru [NEUTRU]",
		"P/E Ratio: 18.25",
		"Forward P/E: N/A",
		"Marja Profit: 20.00%",
		"Total Cash: $5.0 B",
		"Datorie Totala: N/A",
		"Venit lunar la $1000: $2.00",
		" -> Crestere Venituri: 12.0%",
		"- Shares jump",
	} {
		assert.Contains(t, string(out), want)
	}
}

func TestPDFRenderer_EmptySnapshot(t *testing.T) {
	r := NewPDFRenderer(1000)
	r.Compress = false
	r.Chart = false

	a := testAnalysis(testSeries(1, false), model.Fundamentals{})
	a.Risk = model.RiskSnapshot{}
	a.RSIDefined = false
	a.Headlines = nil

	out, err := r.Render(a)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "Volatilitate \\(Risc\\): N/A")
	assert.Contains(t, s, "RSI \\(14\\): N/A")
	assert.Contains(t, s, "PEG Ratio: N/A")
	assert.Contains(t, s, "Venit lunar: N/A")
	assert.NotContains(t, s, "STIRI RECENTE")

	_, err = r.Render(nil)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Raport_Audit_AAPL.pdf", FileName("AAPL"))
}
