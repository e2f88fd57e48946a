// folio - stock portfolio service and command line
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZhouDavid/stock-folio/internal/config"
	"github.com/ZhouDavid/stock-folio/internal/logging"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Stock portfolio tracker",
		Long: `folio keeps a portfolio of stock positions and cash, prices it through
the quote gateway and serves it over HTTP and a websocket stream.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config file (default "+config.DefaultPath+")")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}).
		With().Str("service", "portfolio-service").Logger()
	return cfg, logger, nil
}
