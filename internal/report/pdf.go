package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/strategy"
)

const disclaimer = "DISCLAIMER: Acest document este generat automat și nu reprezintă un sfat financiar. " +
	"Informațiile sunt preluate din surse publice și pot conține erori. Investițiile la bursă implică riscuri."

// Renderer turns an analysis into a document.
type Renderer interface {
	Render(a *model.Analysis) ([]byte, error)
}

// PDFRenderer renders the audit report with the core Arial font.
type PDFRenderer struct {
	// Investment is the amount used for the monthly dividend estimate.
	Investment float64
	// Chart embeds a price chart when the series allows one.
	Chart bool
	// Compress deflates page streams. Tests turn it off to inspect text.
	Compress bool

	now func() time.Time
}

// NewPDFRenderer returns a renderer with chart and compression enabled.
func NewPDFRenderer(investment float64) *PDFRenderer {
	return &PDFRenderer{Investment: investment, Chart: true, Compress: true, now: time.Now}
}

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d *pdfDoc) text(s string) string { return d.tr(NormalizeText(s)) }

func (d *pdfDoc) section(title string) {
	d.pdf.Ln(5)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.SetFont("Arial", "B", 14)
	d.pdf.CellFormat(0, 10, d.text(title), "", 1, "L", true, 0, "")
	d.pdf.Ln(2)
}

func (d *pdfDoc) subsection(title string) {
	d.pdf.Ln(2)
	d.pdf.SetFont("Arial", "B", 11)
	d.pdf.CellFormat(0, 8, d.text(title), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Arial", "", 11)
}

func (d *pdfDoc) line(s string) {
	d.pdf.CellFormat(0, 8, d.text(s), "", 1, "L", false, 0, "")
}

// row prints bordered cells of equal width across the page.
func (d *pdfDoc) row(cells ...string) {
	w := 190 / float64(len(cells))
	for i, c := range cells {
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		d.pdf.CellFormat(w, 8, d.text(c), "1", ln, "L", false, 0, "")
	}
}

func ratio(p *float64) string {
	if v, ok := model.Value(p); ok {
		return fmt.Sprintf("%.2f", v)
	}
	return "N/A"
}

func percent(p *float64) string {
	if v, ok := model.Value(p); ok {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return "N/A"
}

func billions(p *float64, prefix string) string {
	if v, ok := model.Value(p); ok {
		return fmt.Sprintf("%s%.1f B", prefix, v/1e9)
	}
	return "N/A"
}

// Render builds the audit report. Unknown metrics print as N/A.
func (r *PDFRenderer) Render(a *model.Analysis) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("nil analysis")
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetCompression(r.Compress)
	pdf.SetTitle("Raport de audit "+a.Ticker, true)
	pdf.AddPage()
	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 15, d.text("RAPORT DE AUDIT: "+a.Ticker), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, d.text("Generat la: "+now().Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")

	f := a.Fundamentals

	d.section("1. REZUMAT EXECUTIV")
	pdf.SetFont("Arial", "", 12)
	d.line("Companie: " + a.CompanyName)
	d.line(fmt.Sprintf("Preț Curent: $%.2f", a.CurrentPrice))
	d.line(fmt.Sprintf("Scor PRIME: %d/100", a.Score.Score))
	d.line("Verdict: " + VerdictLabel(a.Verdict))
	d.line("Sentiment știri: " + SentimentLabel(a.Sentiment))

	if r.Chart {
		if png, err := RenderPriceChart(a.Series, DefaultOverlays...); err == nil {
			name := "chart-" + a.Ticker
			opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
			pdf.Ln(2)
			pdf.ImageOptions(name, 10, pdf.GetY(), 190, 0, true, opts, 0, "")
		}
	}

	d.section("2. PROFIL DE RISC & TEHNIC")
	pdf.SetFont("Arial", "", 11)
	if a.Risk.Available {
		d.row(fmt.Sprintf("Volatilitate (Risc): %.1f%%", a.Risk.Volatility),
			fmt.Sprintf("Max Drawdown (Cădere Max): %.1f%%", a.Risk.MaxDrawdown))
		d.row(fmt.Sprintf("Sharpe: %.2f", a.Risk.Sharpe),
			fmt.Sprintf("CAGR: %.1f%%", a.Risk.CAGR))
	} else {
		d.row("Volatilitate (Risc): N/A", "Max Drawdown (Cădere Max): N/A")
		d.row("Sharpe: N/A", "CAGR: N/A")
	}
	if a.RSIDefined {
		d.row(fmt.Sprintf("RSI (14): %.2f", a.RSI), "Semnal RSI: "+RSISignal(a.RSI))
	} else {
		d.row("RSI (14): N/A", "Semnal RSI: N/A")
	}
	high, low := ratio(f.FiftyTwoWeekHigh), ratio(f.FiftyTwoWeekLow)
	if a.Range != nil {
		if high == "N/A" {
			high = fmt.Sprintf("%.2f", a.Range.High)
		}
		if low == "N/A" {
			low = fmt.Sprintf("%.2f", a.Range.Low)
		}
	}
	d.row("High 52 Săptămâni: "+high, "Low 52 Săptămâni: "+low)

	d.section("3. INDICATORI FUNDAMENTALI")
	d.subsection("A. Evaluare (Este prețul corect?)")
	d.row("P/E Ratio: "+ratio(f.TrailingPE), "Forward P/E: "+ratio(f.ForwardPE), "PEG Ratio: "+ratio(f.PEGRatio))
	d.row("Price/Book: "+ratio(f.PriceToBook), "Price/Sales: "+ratio(f.PriceToSales),
		"Enterprise Value: "+billions(f.EnterpriseValue, ""))

	d.subsection("B. Profitabilitate & Eficiență")
	d.row("Marja Profit: "+percent(f.ProfitMargins), "Marja Operațională: "+percent(f.OperatingMargins),
		"ROE (Return on Equity): "+percent(f.ReturnOnEquity))
	d.row("Creștere Venituri: "+percent(f.RevenueGrowth), "Creștere Profit: "+percent(f.EarningsGrowth),
		"Gross Margins: "+percent(f.GrossMargins))

	d.subsection("C. Bilanț (Sănătate Financiară)")
	d.row("Total Cash: "+billions(f.TotalCash, "$"), "Datorie Totală: "+billions(f.TotalDebt, "$"))
	d.row("Current Ratio: "+ratio(f.CurrentRatio), "Cash per Share: "+ratio(f.TotalCashPerShare))

	d.subsection("D. Dividende")
	if monthly, ok := strategy.DividendIncome(f.DividendYield, r.Investment); ok {
		d.row("Randament: "+percent(f.DividendYield),
			fmt.Sprintf("Venit lunar la $%.0f: $%.2f", r.Investment, monthly))
	} else {
		d.row("Randament: "+percent(f.DividendYield), "Venit lunar: N/A")
	}

	d.section("4. DETALII SCORING")
	pdf.SetFont("Arial", "", 11)
	for _, reason := range a.Score.Reasons {
		d.line(" -> " + reason)
	}

	if len(a.Headlines) > 0 {
		d.section("5. ȘTIRI RECENTE")
		pdf.SetFont("Arial", "", 10)
		for _, h := range a.Headlines {
			pdf.MultiCell(0, 6, d.text("- "+h), "", "L", false)
		}
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(0, 5, d.text(disclaimer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the suggested download name for a report.
func FileName(ticker string) string {
	return "Raport_Audit_" + ticker + ".pdf"
}
