package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/dockhand/internal/batchclose"
	"github.com/groblegark/dockhand/internal/config"
	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/export"
	"github.com/groblegark/dockhand/internal/facility"
	"github.com/groblegark/dockhand/internal/presence"
	"github.com/groblegark/dockhand/internal/server"
	"github.com/groblegark/dockhand/internal/session"
	"github.com/groblegark/dockhand/internal/store/postgres"
	"github.com/groblegark/dockhand/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the receiving server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Load the facility profile.
		profile, err := facility.Load(cfg.FacilityProfile)
		if err != nil {
			return err
		}
		if cfg.FacilityProfile != "" {
			logger.Info("facility profile loaded", "path", cfg.FacilityProfile)
		}

		// Connect to Postgres.
		repo, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Sessions share the workflow database so operators survive a
		// server restart mid-pallet.
		sessions := session.NewPostgres(repo.DB())

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				repo.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (DOCKHAND_NATS_URL not set)")
		}

		// Create server components.
		dispatcher := workflow.New(sessions, repo, publisher, profile, logger)
		receivingServer := server.New(dispatcher, sessions, repo, logger)

		// The presence reaper marks operators off shift after 30 idle
		// minutes so the receiver roster stays honest.
		receivingServer.Presence.StartReaper(&presence.ReaperConfig{
			OnIdle: func(operator, batchNumber string) {
				logger.Info("operator off shift", "operator", operator, "batch", batchNumber)
			},
		})

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: receivingServer.NewHTTPHandler(cfg.AuthToken),
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the batch-close subscriber if NATS is available.
		var closeCancel context.CancelFunc
		if cfg.NATSURL != "" {
			closeSub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create batch-close subscriber", "err", err)
			} else {
				closer := batchclose.New(repo, publisher, profile, logger)
				var closeCtx context.Context
				closeCtx, closeCancel = context.WithCancel(context.Background())
				go func() {
					if err := closer.StartSubscriber(closeCtx, closeSub); err != nil {
						logger.Error("batch-close subscriber error", "err", err)
					}
					closeSub.Close()
				}()
				logger.Info("batch-close subscriber started", "settle_delay", profile.CloseSettleDelay)
			}
		}

		// Start the activity exporter if a destination is configured.
		var exporter *export.Exporter
		if cfg.NATSURL != "" && cfg.ExportInterval > 0 && cfg.ExportS3Bucket != "" {
			s3Dest, err := export.NewS3Destination(
				context.Background(),
				cfg.ExportS3Bucket,
				cfg.ExportS3Prefix,
				cfg.ExportS3Region,
				cfg.ExportS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 export destination", "err", err)
			} else {
				exportSub, err := events.NewNATSSubscriber(cfg.NATSURL)
				if err != nil {
					logger.Error("failed to create export subscriber", "err", err)
				} else {
					exporter = export.New([]export.Destination{s3Dest}, cfg.ExportInterval, logger)
					if err := exporter.Start(exportSub); err != nil {
						logger.Error("failed to start exporter", "err", err)
						exportSub.Close()
						exporter = nil
					} else {
						logger.Info("activity export enabled",
							"bucket", cfg.ExportS3Bucket, "interval", cfg.ExportInterval)
					}
				}
			}
		}

		logger.Info("receiving server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if closeCancel != nil {
			closeCancel()
			logger.Info("batch-close subscriber stopped")
		}

		if exporter != nil {
			exporter.Stop()
			logger.Info("activity exporter stopped")
		}

		receivingServer.Presence.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := repo.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
