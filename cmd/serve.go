package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"edaqa/internal/quality"
	"edaqa/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dataset-quality HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if !cmd.Flags().Changed("addr") {
			addr = cfg.ListenAddr
		}

		opts := quality.Options{
			MissingThreshold:         cfg.MissingThreshold,
			HighCardinalityThreshold: cfg.HighCardinalityThreshold,
			ZeroThreshold:            cfg.ZeroThreshold,
		}
		if err := opts.Validate(); err != nil {
			return fmt.Errorf("configured thresholds: %w", err)
		}

		metrics := server.NewMetrics(
			"quality", "quality-from-csv", "quality-flags-from-csv",
		)
		srv := server.New(opts, metrics, log.Logger)

		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Msg("HTTP API listening")
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}
