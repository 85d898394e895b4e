package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/modeldiff/adapters/metrics"
	"github.com/artpar/modeldiff/app"
	"github.com/artpar/modeldiff/core/formatter"
	"github.com/artpar/modeldiff/core/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <schema> <base> <current>",
	Short: "Re-diff two documents whenever either file changes",
	Long: `Print the edit script between two documents, then print it again each
time either file is saved. Send SIGHUP to force a new comparison.

When metrics are enabled the command also serves /metrics and /health.

Examples:
  modeldiff watch Order order.json order-draft.json
  MODELDIFF_METRICS_ENABLED=true modeldiff watch Items a.yaml b.yaml`,
	Args: cobra.ExactArgs(3),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}

	f, opts, err := outputFormatter()
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	var promReg *prometheus.Registry
	if cfg.Metrics.Enabled {
		promReg = prometheus.NewRegistry()
		collector = metrics.NewWithRegistry(promReg)
	}

	differ := app.NewDiffer(reg, collector, logger)
	compare := func() (formatter.Result, error) {
		return differ.DiffFiles(args[0], args[1], args[2])
	}

	w, err := watch.New(compare, args[1:], cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	w.OnDiff(func(res formatter.Result) {
		fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.RFC3339))
		if err := f.FormatDiff(out, res, opts); err != nil {
			logger.Error().Err(err).Msg("format diff failed")
		}
	})
	if collector != nil {
		w.OnReload(collector.ObserveReload)
	}

	if err := w.Reload(); err != nil {
		return err
	}
	if err := w.WatchFiles(); err != nil {
		return err
	}
	w.WatchSignals()

	errCh := make(chan error, 1)
	var srv *http.Server
	if promReg != nil {
		srv = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metrics.Router(promReg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", srv.Addr).Msg("starting metrics server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for interrupt or error
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server error: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}
	return nil
}
