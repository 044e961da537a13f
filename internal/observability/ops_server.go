package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/contest-radar/internal/config"
	"github.com/riskibarqy/contest-radar/internal/platform/logging"
)

// HealthCheck reports whether the worker's dependencies are reachable.
type HealthCheck func(ctx context.Context) error

// NewOpsHandler serves /healthz plus /metrics when metrics is non-nil and the
// pprof endpoints when enabled.
func NewOpsHandler(metrics *Metrics, pprofEnabled bool, health HealthCheck) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	}

	if pprofEnabled {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

// StartOpsServer returns a nil server when neither metrics nor pprof is enabled.
func StartOpsServer(cfg config.Config, metrics *Metrics, health HealthCheck, logger *logging.Logger) *http.Server {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.MetricsEnabled && !cfg.PprofEnabled {
		logger.Info("ops server disabled", "reason", "METRICS_ENABLED=false PPROF_ENABLED=false")
		return nil
	}
	if !cfg.MetricsEnabled {
		metrics = nil
	}

	srv := &http.Server{
		Addr:              cfg.OpsAddr,
		Handler:           NewOpsHandler(metrics, cfg.PprofEnabled, health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("ops server starting", "addr", cfg.OpsAddr, "metrics", metrics != nil, "pprof", cfg.PprofEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "error", err)
		}
	}()

	return srv
}

func StopOpsServer(srv *http.Server, logger *logging.Logger, timeout time.Duration) error {
	if srv == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("ops server stopped")

	return nil
}
