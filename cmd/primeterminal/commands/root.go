package commands

import (
	"os"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/config"
)

var (
	// Global flags
	configFile string
	verbose    bool
	useMock    bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "primeterminal",
	Short: "PrimeTerminal - stock screening and risk metrics",
	Long: `PrimeTerminal scores a ticker from its fundamentals and price history,
computes volatility, drawdown, Sharpe, CAGR and RSI, and classifies a verdict.

Examples:
  primeterminal analyze AAPL --period 1y
  primeterminal report MSFT --out reports
  primeterminal favorites add NVDA
  primeterminal serve --addr :8080
  primeterminal watch`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfig, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use generated data instead of Yahoo Finance")
}

func loadConfig() (*config.Config, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if useMock {
		c.DataSource.Mock = true
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
