package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/notifier"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/store"
)

// Analyzer produces an analysis for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, period model.Period) (*model.Analysis, error)
}

// Messenger delivers digests and reports to the chat.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendDocument(ctx context.Context, filename string, data []byte, caption string) error
}

// Scheduler runs the watchlist digest on a cron schedule and serves chat
// commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Store    store.FavoritesStore
	Notifier Messenger
	Renderer report.Renderer
	Period   model.Period
	Ctx      context.Context

	log zerolog.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an Analyzer, st store.FavoritesStore, n Messenger, r report.Renderer, period model.Period, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		Analyzer: an,
		Store:    st,
		Notifier: n,
		Renderer: r,
		Period:   period,
		Ctx:      ctx,
		log:      log,
		now:      time.Now,
	}
}

// Register schedules the watchlist digest.
func (s *Scheduler) Register(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDigestNow executes the digest immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.log.Info().Msg("running watchlist digest")
	entries, err := s.Digest(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("digest")
		s.trySend(fmt.Sprintf("❌ Digest indisponibil: %v", err))
		return
	}
	s.trySend(notifier.FormatDigest(entries, s.now()))
}

// Digest analyses every favorite in order. A failing ticker is reported in
// its entry and does not stop the others.
func (s *Scheduler) Digest(ctx context.Context) ([]notifier.DigestEntry, error) {
	favs, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	entries := make([]notifier.DigestEntry, 0, len(favs))
	for _, f := range favs {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		a, err := s.Analyzer.Analyze(ctx, f.Symbol, s.Period)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", f.Symbol).Msg("digest analysis failed")
		}
		entries = append(entries, notifier.DigestEntry{Symbol: f.Symbol, Analysis: a, Err: err})
	}
	return entries, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Commands may arrive as /cmd@BotName in group chats.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch cmd {
	case "/analyze", "/report":
		if len(args) == 0 {
			return "Utilizare: " + cmd + " TICKER [perioadă]"
		}
		period := s.Period
		if len(args) > 1 {
			p, err := model.ParsePeriod(args[1])
			if err != nil {
				return fmt.Sprintf("Perioadă invalidă: %s", args[1])
			}
			period = p
		}
		a, err := s.Analyzer.Analyze(ctx, args[0], period)
		if err != nil {
			return describeError(args[0], err)
		}
		if cmd == "/analyze" {
			return notifier.FormatAnalysis(a)
		}
		return s.sendReport(ctx, a)
	case "/favorites":
		favs, err := s.Store.List(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("list favorites")
			return "❌ Eroare la citirea favoritelor."
		}
		return notifier.FormatFavorites(favs)
	case "/add":
		if len(args) == 0 {
			return "Utilizare: /add TICKER"
		}
		return s.addFavorite(ctx, args[0])
	case "/remove":
		if len(args) == 0 {
			return "Utilizare: /remove TICKER"
		}
		symbol := collector.NormalizeTicker(args[0])
		if err := s.Store.Remove(ctx, symbol); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Sprintf("%s nu este în favorite.", args[0])
			}
			return "❌ Eroare la ștergere."
		}
		return fmt.Sprintf("🗑️ %s a fost șters din favorite.", symbol)
	case "/digest":
		s.digestTask()
		return ""
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) addFavorite(ctx context.Context, ticker string) string {
	a, err := s.Analyzer.Analyze(ctx, ticker, model.Period1mo)
	if err != nil {
		return describeError(ticker, err)
	}
	added, err := s.Store.Add(ctx, model.Favorite{Symbol: a.Ticker, Name: a.CompanyName, AddedAt: s.now()})
	if err != nil {
		s.log.Error().Err(err).Str("ticker", a.Ticker).Msg("add favorite")
		return "❌ Eroare la salvare."
	}
	if !added {
		return fmt.Sprintf("%s este deja în favorite.", a.Ticker)
	}
	return fmt.Sprintf("⭐ %s (%s) a fost salvat.", a.Ticker, a.CompanyName)
}

func (s *Scheduler) sendReport(ctx context.Context, a *model.Analysis) string {
	if s.Renderer == nil {
		return "Rapoartele PDF nu sunt configurate."
	}
	pdf, err := s.Renderer.Render(a)
	if err != nil {
		s.log.Error().Err(err).Str("ticker", a.Ticker).Msg("render report")
		return "❌ Eroare generare PDF."
	}
	if err := s.Notifier.SendDocument(ctx, report.FileName(a.Ticker), pdf, a.Ticker+" "+report.VerdictLabel(a.Verdict)); err != nil {
		s.log.Error().Err(err).Str("ticker", a.Ticker).Msg("send report")
		return "❌ Eroare la trimiterea raportului."
	}
	return ""
}

func describeError(ticker string, err error) string {
	switch {
	case errors.Is(err, collector.ErrInvalidTicker):
		return fmt.Sprintf("Simbol invalid: %s", ticker)
	case errors.Is(err, collector.ErrNoData):
		return fmt.Sprintf("Nu există date pentru %s.", strings.ToUpper(ticker))
	default:
		return fmt.Sprintf("❌ Eroare pentru %s: %v", strings.ToUpper(ticker), err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
