package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/store"
	"PrimeTerminal/internal/strategy"
)

// maxCompare caps the tickers accepted by /api/compare.
const maxCompare = 10

type addFavoriteRequest struct {
	Symbol string `json:"symbol"`
}

type compareResponse struct {
	Period model.Period        `json:"period"`
	Series []model.Performance `json:"series"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"fetcher": s.collector.Fetcher.Name(),
	})
}

// periodParam reads ?period= and falls back to the configured default.
func (s *Server) periodParam(r *http.Request) (model.Period, error) {
	v := r.URL.Query().Get("period")
	if v == "" {
		return s.period, nil
	}
	return model.ParsePeriod(v)
}

// collectorFor applies the optional ?policy= and ?verdict= overrides.
func (s *Server) collectorFor(r *http.Request) (*collector.Collector, error) {
	q := r.URL.Query()
	if q.Get("policy") == "" && q.Get("verdict") == "" {
		return s.collector, nil
	}
	policy := s.collector.Engine.Policy
	if name := q.Get("policy"); name != "" {
		p, err := strategy.ParsePolicy(name)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	verdicts := s.collector.Verdicts
	if name := q.Get("verdict"); name != "" {
		v, err := strategy.ParseVerdictPolicy(name)
		if err != nil {
			return nil, err
		}
		verdicts = v
	}
	return s.collector.WithPolicies(policy, verdicts), nil
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*model.Analysis, bool) {
	period, err := s.periodParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	c, err := s.collectorFor(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	a, err := c.Analyze(r.Context(), chi.URLParam(r, "ticker"), period)
	if err != nil {
		s.writeFailure(w, err)
		return nil, false
	}
	return a, true
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		s.writeError(w, http.StatusNotImplemented, "reports are not configured")
		return
	}
	a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	pdf, err := s.renderer.Render(a)
	if err != nil {
		s.log.Error().Err(err).Str("ticker", a.Ticker).Msg("Failed to render report")
		s.writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(a.Ticker)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	period, err := s.periodParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol := collector.NormalizeTicker(chi.URLParam(r, "ticker"))
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, collector.ErrInvalidTicker.Error())
		return
	}
	series, err := s.collector.Fetcher.FetchHistory(r.Context(), symbol, period)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	png, err := report.RenderPriceChart(series, report.DefaultOverlays...)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writePNG(w, png)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	period, err := s.periodParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tickers []string
	if raw := r.URL.Query().Get("tickers"); raw != "" {
		tickers = strings.Split(raw, ",")
	} else {
		// No explicit list compares the saved favorites.
		favs, err := s.store.List(r.Context())
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		for _, f := range favs {
			tickers = append(tickers, f.Symbol)
		}
	}
	if len(tickers) == 0 {
		s.writeError(w, http.StatusBadRequest, "no tickers to compare")
		return
	}
	if len(tickers) > maxCompare {
		s.writeError(w, http.StatusBadRequest, "too many tickers")
		return
	}

	perfs, err := s.collector.Compare(r.Context(), tickers, period)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if r.URL.Query().Get("format") == "png" {
		png, err := report.RenderComparisonChart(perfs)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writePNG(w, png)
		return
	}
	s.writeJSON(w, http.StatusOK, compareResponse{Period: period, Series: perfs})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.store.List(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if favs == nil {
		favs = []model.Favorite{}
	}
	s.writeJSON(w, http.StatusOK, favs)
}

// handleAddFavorite validates the symbol against the data source before
// saving it, so the stored name is the company's long name.
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.collector.Analyze(r.Context(), req.Symbol, model.Period1mo)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	fav := model.Favorite{Symbol: a.Ticker, Name: a.CompanyName, AddedAt: time.Now().UTC()}
	added, err := s.store.Add(r.Context(), fav)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if !added {
		existing, err := s.store.Get(r.Context(), a.Ticker)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, existing)
		return
	}
	s.log.Info().Str("symbol", fav.Symbol).Msg("Favorite added")
	s.writeJSON(w, http.StatusCreated, fav)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := s.store.Remove(r.Context(), symbol); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrInvalidTicker), errors.Is(err, model.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrNoData), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, collector.ErrUnauthorized):
		return http.StatusBadGateway
	}
	var se *collector.StatusError
	if errors.As(err, &se) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
