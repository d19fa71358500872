package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report TICKER [TICKER...]",
	Short: "Write PDF audit reports",
	Long: `Analyses each ticker and writes Raport_Audit_<TICKER>.pdf into the
output directory (report.output_dir unless --out is given).

Example:
  primeterminal report AAPL MSFT --out /tmp/reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

var (
	reportOut    string
	reportPeriod string
	reportChart  bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output directory")
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "", "history period")
	reportCmd.Flags().BoolVar(&reportChart, "chart", true, "embed the price chart")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	period, err := a.periodOr(reportPeriod)
	if err != nil {
		return err
	}
	dir := reportOut
	if dir == "" {
		dir = cfg.Report.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	a.renderer.Chart = reportChart

	var written int
	for _, ticker := range args {
		res, err := a.collector.Analyze(cmd.Context(), ticker, period)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ticker, err)
			continue
		}
		pdf, err := a.renderer.Render(res)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Ticker, err)
			continue
		}
		path := filepath.Join(dir, report.FileName(res.Ticker))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		a.log.Info().Str("ticker", res.Ticker).Str("path", path).Msg("report written")
		fmt.Fprintln(cmd.OutOrStdout(), path)
		written++
	}
	if written == 0 {
		return fmt.Errorf("no report written")
	}
	return nil
}
