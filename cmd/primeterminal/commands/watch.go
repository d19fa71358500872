package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/notifier"
	"PrimeTerminal/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the Telegram watchlist bot",
	Long: `Sends a digest of every favorite's verdict on schedule.digest_cron and
answers chat commands (/analyze, /report, /favorites, /add, /remove, /digest).

Set RUN_ON_START=true (or --now) to send a digest immediately.

Example:
  primeterminal watch
  primeterminal watch --api`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchNow bool
	watchAPI bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchNow, "now", false, "send a digest on start")
	watchCmd.Flags().BoolVar(&watchAPI, "api", false, "also serve the JSON API")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, a.log)
	if cfg.Telegram.APIURL != "" {
		tn.APIURL = cfg.Telegram.APIURL
	}

	sched := scheduler.NewScheduler(ctx, a.collector, a.store, tn, a.renderer, a.period, a.log)
	if err := sched.Register(cfg.Schedule.DigestCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	a.log.Info().Str("cron", cfg.Schedule.DigestCron).Msg("Telegram polling started")

	if watchNow || os.Getenv("RUN_ON_START") == "true" {
		a.log.Info().Msg("running digest on start")
		go sched.RunDigestNow()
	}

	if watchAPI {
		return listen(ctx, a, newServer(a))
	}

	a.log.Info().Msg("PrimeTerminal is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received, stopping...")
	return nil
}
