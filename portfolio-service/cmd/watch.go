package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/stream"
)

func watchCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live portfolio of a running service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			if url == "" {
				url, err = stream.StreamURL("http://" + localAddr(cfg.Portfolio.Addr))
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			w := stream.NewWatcher(url, logger.With().Str("component", "watcher").Logger())
			w.AddHandler(func(msg portfolio.StreamMessage) {
				printStats(out, msg.Stats)
				fmt.Fprintln(out)
			})

			if err := w.Connect(ctx); err != nil {
				return err
			}
			defer w.Close()

			if err := w.Stream(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Stream URL (default derived from portfolio.addr)")
	return cmd
}
