package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/fetchd/internal/config"
	"github.com/fyrsmithlabs/fetchd/internal/logging"
	"github.com/fyrsmithlabs/fetchd/internal/plugins"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/seen"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute configured tasks",
	Long: `Run every configured task (or one task with --task) through the full
phase sequence: input, filter, download, output, then terminate.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagLearn, "learn", false, "skip download and output phases so filters can learn")
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (overrides config)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := metricsAddr(cfg); addr != "" {
		go serveMetrics(ctx, addr, logger)
	}

	store, err := seen.OpenStore(seenPath(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := plugins.NewRegistry(store)
	if err != nil {
		return err
	}

	opts := task.Options{
		Quiet:   flagQuiet,
		Details: flagDetails,
		Learn:   flagLearn,
	}
	sink := &failureReporter{log: logger}

	aborted := 0
	names := taskNames(cfg)
	for _, name := range names {
		t := task.New(name, cfg.Tasks[name], registry, opts)
		t.SetLogger(logger)
		t.SetFailureSink(sink)

		err := t.Execute(ctx)
		t.Terminate(ctx)
		if errors.Is(err, task.ErrAborted) {
			aborted++
		}
	}

	if sink.count > 0 {
		logger.Warn(ctx, "run finished with failed entries", zap.Int("failed", sink.count))
	}
	if aborted > 0 {
		return fmt.Errorf("%d of %d tasks aborted", aborted, len(names))
	}
	return nil
}

// taskNames returns the tasks to run in deterministic order.
func taskNames(cfg *config.Config) []string {
	if flagTask != "" {
		if _, ok := cfg.Tasks[flagTask]; ok {
			return []string{flagTask}
		}
		return nil
	}
	names := make([]string, 0, len(cfg.Tasks))
	for name := range cfg.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func metricsAddr(cfg *config.Config) string {
	if flagMetricsAddr != "" {
		return flagMetricsAddr
	}
	return cfg.Metrics.Addr
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn(ctx, "metrics endpoint stopped", zap.Error(err))
	}
}

func seenPath(cfg *config.Config) string {
	if cfg.Seen.Path != "" {
		return cfg.Seen.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "seen.db"
	}
	dir := filepath.Join(home, ".config", "fetchd")
	_ = os.MkdirAll(dir, 0o700)
	return filepath.Join(dir, "seen.db")
}

// failureReporter is the run-level failure bookkeeping collaborator: it is
// notified once per entry the first time the entry is marked failed.
type failureReporter struct {
	log   *logging.Logger
	count int
}

func (f *failureReporter) AddFailed(e *task.Entry) {
	f.count++
	f.log.Warn(context.Background(), "entry failed", zap.String("entry", e.String()))
}
