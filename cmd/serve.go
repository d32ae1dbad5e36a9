package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emperance/statify/config"
	"github.com/emperance/statify/history"
	"github.com/emperance/statify/market"
	v1 "github.com/emperance/statify/router/v1"
	"github.com/emperance/statify/telemetry"
)

const shutdownGrace = 5 * time.Second

func getServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve [config-file]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Runs the statistics API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := getCmdLogger(cmd)
			if err != nil {
				return err
			}

			// optional .env for the market API key and database DSN
			_ = godotenv.Load()

			cfg := config.DefaultConfig()
			if len(args) > 0 {
				cfg, err = config.ParseConfig(args[0])
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// listen for and trap any OS signal to gracefully shutdown and exit
			trapSignal(cancel, logger)

			metrics, err := telemetry.Init()
			if err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}

			store, err := newHistoryStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var watcher *market.Watcher
			if cfg.Market.Enabled {
				source := market.NewAlphaVantageSource(
					logger,
					market.Endpoint{Rest: cfg.Market.Endpoint, APIKey: cfg.Market.APIKey},
					cfg.Market.Timeout,
				)
				watcher = market.NewWatcher(
					logger,
					source,
					cfg.Market.Symbols,
					cfg.Market.Interval,
					cfg.DefaultClasses,
				)
			}

			muxRouter := mux.NewRouter()

			// v1.Market is a non-nil interface only when the watcher runs
			var mkt v1.Market
			if watcher != nil {
				mkt = watcher
			}

			router := v1.New(logger, cfg, store, mkt, metrics)
			router.RegisterRoutes(muxRouter, v1.APIPathPrefix)

			srv := &http.Server{
				Addr:         cfg.Server.ListenAddr,
				Handler:      muxRouter,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.Info().Str("listen_addr", cfg.Server.ListenAddr).Msg("starting api server...")
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			if watcher != nil {
				g.Go(func() error {
					logger.Info().
						Strs("symbols", cfg.Market.Symbols).
						Dur("interval", cfg.Market.Interval).
						Msg("starting market watcher...")
					if err := watcher.Start(ctx); err != nil && err != context.Canceled {
						return err
					}
					return nil
				})
			}

			g.Go(func() error {
				<-ctx.Done()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer shutdownCancel()

				logger.Info().Msg("shutting down api server...")
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	return serveCmd
}

func newHistoryStore(ctx context.Context, cfg config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryBackendPostgres:
		store, err := history.NewPostgresStore(ctx, cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres history store: %w", err)
		}
		return store, nil

	default:
		return history.NewMemoryStore(cfg.History.Limit), nil
	}
}
