package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ZhouDavid/stock-folio/internal/logging"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/quote"
	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			kv, err := storage.Open(cfg.Portfolio.Storage)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}

			quotes := quote.NewClient(cfg.Portfolio.GatewayURL)
			store := portfolio.NewStore(kv, quotes,
				portfolio.WithLogger(logger.With().Str("component", "store").Logger()),
				portfolio.WithRefreshConcurrency(cfg.Portfolio.RefreshConcurrency),
				portfolio.WithRefreshTimeout(cfg.Portfolio.RefreshTimeout),
			)

			gin.SetMode(gin.ReleaseMode)
			r := gin.New()
			r.Use(gin.Recovery(), logging.GinLogger(logger))
			portfolio.NewHandler(store, quotes, logger.With().Str("component", "handler").Logger()).Register(r)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Prices in storage are as old as the last run.
			go func() {
				results, err := store.Refresh(ctx).Wait(ctx)
				if err != nil {
					return
				}
				failed := 0
				for _, res := range results {
					if res.Err != nil {
						failed++
					}
				}
				logger.Info().Int("positions", len(results)).Int("failed", failed).Msg("Startup refresh finished")
			}()

			srv := &http.Server{Addr: cfg.Portfolio.Addr, Handler: r}
			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Portfolio.Addr).Str("gateway", cfg.Portfolio.GatewayURL).Msg("Server is running")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("failed to start server: %w", err)
			case <-ctx.Done():
			}

			logger.Info().Msg("Received shutdown signal")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			logger.Info().Msg("Portfolio service shutdown complete")
			return nil
		},
	}
}
