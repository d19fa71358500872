package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"PrimeTerminal/internal/model"
)

// nativeRanges are the history ranges the chart API accepts directly.
var nativeRanges = map[model.Period]bool{
	model.Period1mo: true, model.Period3mo: true, model.Period6mo: true,
	model.Period1y: true, model.Period2y: true, model.Period5y: true,
	model.Period10y: true, model.PeriodYTD: true, model.PeriodMax: true,
}

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// FetchHistory returns daily bars for the requested period, oldest first.
func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker string, period model.Period) (model.PriceSeries, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	if nativeRanges[period] {
		params.Set("range", string(period))
	} else {
		years, ok := period.Years()
		if !ok {
			return model.PriceSeries{}, fmt.Errorf("%w: %q", model.ErrInvalidPeriod, period)
		}
		now := f.now()
		params.Set("period1", strconv.FormatInt(now.AddDate(-int(years), 0, 0).Unix(), 10))
		params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	}

	body, err := f.get(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, false)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: %s: %s", ErrNoData, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			continue // null bars (holidays, halted sessions)
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	bars = sortUnique(bars)
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	f.log.Debug().Str("ticker", ticker).Str("period", string(period)).Int("bars", len(bars)).Msg("fetched history")
	return model.PriceSeries{
		Symbol:    strings.ToUpper(ticker),
		Period:    period,
		Bars:      bars,
		FetchedAt: f.now(),
	}, nil
}

// sortUnique orders bars by time and keeps the last bar of any duplicated
// timestamp, so the series is strictly increasing.
func sortUnique(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) value() *float64 {
	if r == nil {
		return nil
	}
	return r.Raw
}

type quoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
				Currency  string `json:"currency"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       *rawValue `json:"trailingPE"`
				ForwardPE        *rawValue `json:"forwardPE"`
				PriceToSales     *rawValue `json:"priceToSalesTrailing12Months"`
				DividendYield    *rawValue `json:"dividendYield"`
				Beta             *rawValue `json:"beta"`
				FiftyTwoWeekHigh *rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  *rawValue `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ProfitMargins     *rawValue `json:"profitMargins"`
				OperatingMargins  *rawValue `json:"operatingMargins"`
				GrossMargins      *rawValue `json:"grossMargins"`
				ReturnOnEquity    *rawValue `json:"returnOnEquity"`
				RevenueGrowth     *rawValue `json:"revenueGrowth"`
				EarningsGrowth    *rawValue `json:"earningsGrowth"`
				TotalCash         *rawValue `json:"totalCash"`
				TotalDebt         *rawValue `json:"totalDebt"`
				TotalCashPerShare *rawValue `json:"totalCashPerShare"`
				CurrentRatio      *rawValue `json:"currentRatio"`
				DebtToEquity      *rawValue `json:"debtToEquity"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				PEGRatio        *rawValue `json:"pegRatio"`
				PriceToBook     *rawValue `json:"priceToBook"`
				EnterpriseValue *rawValue `json:"enterpriseValue"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

const summaryModules = "price,summaryDetail,financialData,defaultKeyStatistics"

// FetchFundamentals returns the fundamentals snapshot. Metrics the provider
// omits stay nil.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, ticker string) (model.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", summaryModules)

	body, err := f.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), params, true)
	if err != nil {
		return model.Fundamentals{}, fmt.Errorf("yahoo quoteSummary %s: %w", ticker, err)
	}

	var qs quoteSummary
	if err := json.Unmarshal(body, &qs); err != nil {
		return model.Fundamentals{}, fmt.Errorf("yahoo decode quoteSummary: %w", err)
	}
	if qs.QuoteSummary.Error != nil {
		return model.Fundamentals{}, fmt.Errorf("%w: %s: %s", ErrNoData, ticker, qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return model.Fundamentals{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	r := qs.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}
	return model.Fundamentals{
		LongName: name,
		Currency: r.Price.Currency,

		TrailingPE:      r.SummaryDetail.TrailingPE.value(),
		ForwardPE:       r.SummaryDetail.ForwardPE.value(),
		PEGRatio:        r.DefaultKeyStatistics.PEGRatio.value(),
		PriceToBook:     r.DefaultKeyStatistics.PriceToBook.value(),
		PriceToSales:    r.SummaryDetail.PriceToSales.value(),
		EnterpriseValue: r.DefaultKeyStatistics.EnterpriseValue.value(),

		ProfitMargins:    r.FinancialData.ProfitMargins.value(),
		OperatingMargins: r.FinancialData.OperatingMargins.value(),
		GrossMargins:     r.FinancialData.GrossMargins.value(),
		ReturnOnEquity:   r.FinancialData.ReturnOnEquity.value(),
		RevenueGrowth:    r.FinancialData.RevenueGrowth.value(),
		EarningsGrowth:   r.FinancialData.EarningsGrowth.value(),

		TotalCash:         r.FinancialData.TotalCash.value(),
		TotalDebt:         r.FinancialData.TotalDebt.value(),
		TotalCashPerShare: r.FinancialData.TotalCashPerShare.value(),
		CurrentRatio:      r.FinancialData.CurrentRatio.value(),
		DebtToEquity:      r.FinancialData.DebtToEquity.value(),

		DividendYield:    r.SummaryDetail.DividendYield.value(),
		Beta:             r.SummaryDetail.Beta.value(),
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.value(),
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.value(),
	}, nil
}

type searchResponse struct {
	News []struct {
		Title string `json:"title"`
	} `json:"news"`
}

// FetchHeadlines returns up to limit of the latest news titles.
func (f *YahooFetcher) FetchHeadlines(ctx context.Context, ticker string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", ticker)
	params.Set("quotesCount", "0")
	params.Set("newsCount", strconv.Itoa(limit))

	body, err := f.get(ctx, "/v1/finance/search", params, false)
	if err != nil {
		return nil, fmt.Errorf("yahoo search %s: %w", ticker, err)
	}
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("yahoo decode search: %w", err)
	}

	titles := make([]string, 0, len(sr.News))
	for _, n := range sr.News {
		if t := strings.TrimSpace(n.Title); t != "" {
			titles = append(titles, t)
		}
		if len(titles) == limit {
			break
		}
	}
	return titles, nil
}
