package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/store"
	"PrimeTerminal/internal/strategy"
)

func newTestServer(t *testing.T, fetcher collector.Fetcher) *Server {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "favorites.json"), zerolog.Nop())
	require.NoError(t, err)

	col := collector.NewCollector(fetcher, strategy.NewEngine(strategy.DefaultPolicy),
		strategy.DefaultVerdictPolicy, 0.04, zerolog.Nop())
	return New(Config{
		Addr:          ":0",
		Log:           zerolog.Nop(),
		Collector:     col,
		Store:         st,
		Renderer:      &report.PDFRenderer{Investment: 1000},
		DefaultPeriod: model.Period1y,
		DevMode:       true,
	})
}

func strongMock() *collector.MockFetcher {
	return &collector.MockFetcher{
		Price: 100,
		Fundamentals: model.Fundamentals{
			LongName:      "Strong Corp",
			TrailingPE:    model.Float(20),
			PEGRatio:      model.Float(3),
			ProfitMargins: model.Float(0.2),
			RevenueGrowth: model.Float(0.2),
			TotalCash:     model.Float(200),
			TotalDebt:     model.Float(100),
		},
		Headlines: []string{"Record quarter"},
	}
}

func do(t *testing.T, s *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, strongMock())
	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["fetcher"])
}

func TestAnalysis(t *testing.T) {
	s := newTestServer(t, strongMock())

	rec := do(t, s, http.MethodGet, "/api/analysis/strg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var a model.Analysis
	decode(t, rec, &a)
	assert.Equal(t, "STRG", a.Ticker)
	assert.Equal(t, "Strong Corp", a.CompanyName)
	assert.Equal(t, model.Period1y, a.Period)
	assert.Equal(t, 100, a.Score.Score)
	assert.Equal(t, model.VerdictOpportunity, a.Verdict)
}

func TestAnalysis_PolicyOverrides(t *testing.T) {
	s := newTestServer(t, strongMock())

	rec := do(t, s, http.MethodGet, "/api/analysis/strg?policy=peg&verdict=strong&period=6mo", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var a model.Analysis
	decode(t, rec, &a)
	assert.Equal(t, 90, a.Score.Score, "PEG 3 falls back to the half-weight P/E tier")
	assert.Equal(t, model.VerdictStrong, a.Verdict)
	assert.Equal(t, model.Period6mo, a.Period)

	// The server default is untouched by a per-request override.
	rec = do(t, s, http.MethodGet, "/api/analysis/strg", "")
	decode(t, rec, &a)
	assert.Equal(t, 100, a.Score.Score)
}

func TestAnalysis_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher collector.Fetcher
		path    string
		status  int
	}{
		{"unknown policy", strongMock(), "/api/analysis/strg?policy=magic", http.StatusBadRequest},
		{"unknown verdict policy", strongMock(), "/api/analysis/strg?verdict=magic", http.StatusBadRequest},
		{"invalid period", strongMock(), "/api/analysis/strg?period=7w", http.StatusBadRequest},
		{"invalid ticker", strongMock(), "/api/analysis/bad!ticker", http.StatusBadRequest},
		{"no data", &collector.MockFetcher{Err: collector.ErrNoData}, "/api/analysis/none", http.StatusNotFound},
		{"upstream status", &collector.MockFetcher{Err: &collector.StatusError{Status: 500}}, "/api/analysis/x", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.fetcher), http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			decode(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReport(t *testing.T) {
	s := newTestServer(t, strongMock())
	rec := do(t, s, http.MethodGet, "/api/report/strg", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Raport_Audit_STRG.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestChart(t *testing.T) {
	s := newTestServer(t, strongMock())
	rec := do(t, s, http.MethodGet, "/api/chart/strg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, s, http.MethodGet, "/api/chart/a%20b", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompare(t *testing.T) {
	s := newTestServer(t, strongMock())

	rec := do(t, s, http.MethodGet, "/api/compare?tickers=aaa,bbb&period=3mo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body compareResponse
	decode(t, rec, &body)
	assert.Equal(t, model.Period3mo, body.Period)
	require.Len(t, body.Series, 2)
	assert.Equal(t, "AAA", body.Series[0].Symbol)
	assert.Equal(t, "BBB", body.Series[1].Symbol)

	rec = do(t, s, http.MethodGet, "/api/compare?tickers=aaa,bbb&format=png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/api/compare", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no tickers and no favorites")

	rec = do(t, s, http.MethodGet, "/api/compare?tickers=a,b,c,d,e,f,g,h,i,j,k", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, strongMock())

	rec := do(t, s, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/favorites", `{"symbol":"strg"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var fav model.Favorite
	decode(t, rec, &fav)
	assert.Equal(t, "STRG", fav.Symbol)
	assert.Equal(t, "Strong Corp", fav.Name)

	rec = do(t, s, http.MethodPost, "/api/favorites", `{"symbol":"STRG"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "adding twice keeps the first entry")

	rec = do(t, s, http.MethodGet, "/api/favorites", "")
	var favs []model.Favorite
	decode(t, rec, &favs)
	require.Len(t, favs, 1)

	// Saved favorites are the default comparison set.
	rec = do(t, s, http.MethodGet, "/api/compare", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/favorites/strg", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/favorites/strg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/favorites", `{"symbol":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidPeriod))
	assert.Equal(t, http.StatusBadGateway, statusFor(collector.ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
