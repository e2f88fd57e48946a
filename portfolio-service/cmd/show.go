package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/storage"
)

func showCmd() *cobra.Command {
	var (
		sortKey string
		asc     bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved portfolio and its totals",
		Long: `show reads the portfolio from local storage and prints it with the
prices it was last refreshed at. It does not contact the gateway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !portfolio.ValidSortKey(sortKey) {
				return fmt.Errorf("unknown sort key: %s", sortKey)
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			kv, err := storage.Open(cfg.Portfolio.Storage)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}

			store := portfolio.NewStore(storage.ReadOnly(kv), nil, portfolio.WithLogger(logger))
			positions := portfolio.Sort(store.Portfolio(), sortKey, !asc)
			return printPortfolio(cmd.OutOrStdout(), portfolio.NewView(positions))
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", portfolio.SortEquity, "Sort key: symbol, name, currentPrice, quantity, avgCost, equity, percentChange, dayChange, volume")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	return cmd
}
