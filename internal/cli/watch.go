package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/pkg/composer"
	"github.com/matzehuels/storekit/pkg/cron"
	"github.com/matzehuels/storekit/pkg/metrics"
	"github.com/matzehuels/storekit/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// watchOpts holds flags for the watch command.
type watchOpts struct {
	schedule    string
	metricsAddr string
}

// composerWatchCommand creates the "composer watch" subcommand.
func (c *CLI) composerWatchCommand(opts *composerOpts) *cobra.Command {
	wopts := watchOpts{schedule: "@hourly"}

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-run the update check on a schedule and export metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cron.ValidateSchedule(wopts.schedule); err != nil {
				return err
			}

			insp, err := c.newInspector(cmd.Context(), rootArg(args), opts)
			if err != nil {
				return err
			}
			defer insp.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			rec := metrics.NewPrometheusRecorder(reg)
			rec.Install()
			defer observability.Reset()

			logger := sessionLogger(c.Logger, insp.SessionID(), insp.Root())
			observability.SetInspectorHooks(observability.MultiInspectorHooks{
				rec, observability.LogInspectorHooks{Logger: logger},
			})
			ctx := withLogger(cmd.Context(), logger)

			if wopts.metricsAddr != "" {
				srv := &http.Server{
					Addr:              wopts.metricsAddr,
					Handler:           newMetricsRouter(reg, insp.Inspector),
					ReadHeaderTimeout: shutdownTimeout,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						c.Logger.Error("metrics server", "addr", wopts.metricsAddr, "error", err)
					}
				}()
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					_ = srv.Shutdown(sctx)
				}()
				printInfo("Serving metrics on %s", StyleHighlight.Render(wopts.metricsAddr))
			}

			job := syncJob(insp.Inspector, opts.timeout)
			job(ctx)

			printInfo("Watching %s (%s)", insp.Root(), wopts.schedule)
			return cron.Run(ctx, cron.NewRealScheduler(), wopts.schedule, job)
		},
	}

	cmd.Flags().StringVar(&wopts.schedule, "schedule", wopts.schedule, `cron expression or descriptor (e.g. "@hourly", "@every 30m")`)
	_ = cmd.RegisterFlagCompletionFunc("schedule", completeSchedules)
	cmd.Flags().StringVar(&wopts.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "timeout for each registry check")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached registry responses")

	return cmd
}

// syncJob returns a scheduled job that runs one bounded update check and
// logs its outcome through the logger carried by ctx.
func syncJob(insp *composer.Inspector, timeout time.Duration) func(context.Context) {
	return func(ctx context.Context) {
		logger := loggerFromContext(ctx)
		prog := newProgress(logger)

		sctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if !insp.SyncPackagesForUpdate(sctx) {
			logger.Warn("update check failed", "root", insp.Root())
			return
		}
		report := insp.PackagesForUpdate()
		for _, name := range report.Names() {
			p := report.Packages[name]
			logger.Info("outdated", "package", name, "installed", p.InstalledVersion, "latest", p.LatestVersion)
		}
		prog.done("Update check complete")
	}
}

// healthStatus is the /healthz response body.
type healthStatus struct {
	Status    string    `json:"status"`
	Synced    bool      `json:"synced"`
	Outdated  int       `json:"outdated"`
	CheckedAt time.Time `json:"checked_at,omitzero"`
	Session   string    `json:"session"`
}

// newMetricsRouter serves Prometheus metrics from reg and the inspector's
// sync state.
func newMetricsRouter(reg *prometheus.Registry, insp *composer.Inspector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		report := insp.PackagesForUpdate()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthStatus{
			Status:    "ok",
			Synced:    insp.Synced(),
			Outdated:  len(report.Packages),
			CheckedAt: report.CheckedAt,
			Session:   insp.SessionID(),
		})
	})

	return r
}
