package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/orgball2608/fb-repost-bot/internal/page"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// NewRouter serves the operational endpoints: /healthz and /metrics.
func NewRouter(registry *page.Registry, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, registry, log)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, registry *page.Registry, log logger.Logger) {
	log.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")

	body := fmt.Sprintf("ok sources=%d targets=%d\n", len(registry.SourcePages()), len(registry.TargetPages()))
	if _, err := w.Write([]byte(body)); err != nil {
		log.Error("Failed to write response", "Error", err)
	}
}

type HTTPOpts struct {
	fx.In
	LC fx.Lifecycle

	Config   *config.Config
	Registry *page.Registry
	Logger   logger.Logger
}

func registerHTTPServer(opts HTTPOpts) {
	log := opts.Logger.WithComponent("HTTP")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           NewRouter(opts.Registry, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}

			log.Info("Starting server", "addr", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
