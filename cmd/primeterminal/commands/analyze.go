package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/strategy"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER [TICKER...]",
	Short: "Score one or more tickers",
	Long: `Fetches price history, fundamentals and headlines for each ticker and
prints the PRIME score, verdict and risk profile.

Example:
  primeterminal analyze AAPL
  primeterminal analyze AAPL MSFT --period 2y --policy peg --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzePeriod  string
	analyzePolicy  string
	analyzeVerdict string
	analyzeJSON    bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzePeriod, "period", "p", "", "history period (1mo..10y, ytd, max)")
	analyzeCmd.Flags().StringVar(&analyzePolicy, "policy", "", "scoring policy (classic, peg, roe, peg-roe)")
	analyzeCmd.Flags().StringVar(&analyzeVerdict, "verdict", "", "verdict policy (opportunity, strong)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON")
}

// collectorWith applies per-invocation policy overrides.
func collectorWith(c *collector.Collector, policyName, verdictName string) (*collector.Collector, error) {
	if policyName == "" && verdictName == "" {
		return c, nil
	}
	policy := c.Engine.Policy
	if policyName != "" {
		p, err := strategy.ParsePolicy(policyName)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	verdicts := c.Verdicts
	if verdictName != "" {
		v, err := strategy.ParseVerdictPolicy(verdictName)
		if err != nil {
			return nil, err
		}
		verdicts = v
	}
	return c.WithPolicies(policy, verdicts), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	period, err := a.periodOr(analyzePeriod)
	if err != nil {
		return err
	}
	col, err := collectorWith(a.collector, analyzePolicy, analyzeVerdict)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var results []*model.Analysis
	var failed int
	for _, ticker := range args {
		res, err := col.Analyze(cmd.Context(), ticker, period)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ticker, err)
			continue
		}
		results = append(results, res)
	}

	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printAnalysis(out, res)
		}
	}
	if failed == len(args) {
		return fmt.Errorf("no ticker could be analysed")
	}
	return nil
}

func printAnalysis(w io.Writer, a *model.Analysis) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s (%s)\n", a.Ticker, a.CompanyName, a.Period)
	fmt.Fprintf(tw, "Price\t%.2f\n", a.CurrentPrice)
	fmt.Fprintf(tw, "Score\t%d/100\n", a.Score.Score)
	fmt.Fprintf(tw, "Verdict\t%s\n", report.VerdictLabel(a.Verdict))
	if a.Risk.Available {
		fmt.Fprintf(tw, "Volatility\t%.1f%%\n", a.Risk.Volatility)
		fmt.Fprintf(tw, "Max drawdown\t%.1f%%\n", a.Risk.MaxDrawdown)
		fmt.Fprintf(tw, "Sharpe\t%.2f\n", a.Risk.Sharpe)
		fmt.Fprintf(tw, "CAGR\t%.1f%%\n", a.Risk.CAGR)
	}
	if a.RSIDefined {
		fmt.Fprintf(tw, "RSI(%d)\t%.1f %s\n", calculator.DefaultRSIWindow, a.RSI, report.RSISignal(a.RSI))
	}
	if a.Range != nil {
		fmt.Fprintf(tw, "52w range\t%.2f - %.2f (%.0f%%)\n", a.Range.Low, a.Range.High, a.Range.Position*100)
	}
	fmt.Fprintf(tw, "Sentiment\t%s\n", report.SentimentLabel(a.Sentiment))
	tw.Flush()

	for _, reason := range a.Score.Reasons {
		fmt.Fprintf(w, "  -> %s\n", reason)
	}
	fmt.Fprintln(w)
}
