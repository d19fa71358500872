package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"PrimeTerminal/internal/model"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage saved tickers",
	Long: `Lists, adds and removes favorites. Favorites feed the watch digest
and the default comparison set of the API.

Subcommands:
  list    - show saved tickers
  add     - validate and save tickers
  remove  - delete tickers`,
}

var (
	favoritesListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show saved tickers",
		Args:  cobra.NoArgs,
		RunE:  runFavoritesList,
	}

	favoritesAddCmd = &cobra.Command{
		Use:   "add TICKER [TICKER...]",
		Short: "Validate and save tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFavoritesAdd,
	}

	favoritesRemoveCmd = &cobra.Command{
		Use:   "remove TICKER [TICKER...]",
		Short: "Delete tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFavoritesRemove,
	}
)

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	favs, err := a.store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no favorites")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, f := range favs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Symbol, f.Name, f.AddedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, ticker := range args {
		// A short fetch confirms the symbol exists and yields its long name.
		res, err := a.collector.Analyze(cmd.Context(), ticker, model.Period1mo)
		if err != nil {
			return fmt.Errorf("%s: %w", ticker, err)
		}
		added, err := a.store.Add(cmd.Context(), model.Favorite{
			Symbol:  res.Ticker,
			Name:    res.CompanyName,
			AddedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", res.Ticker, res.CompanyName)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already saved\n", res.Ticker)
		}
	}
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, ticker := range args {
		if err := a.store.Remove(cmd.Context(), ticker); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", ticker)
	}
	return nil
}
