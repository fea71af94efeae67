package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/remote"
	"github.com/vango-dev/reactor/pkg/telemetry"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [app]",
		Short: "Serve an example app over a websocket",
		Long: `Serve an example app. Each browser tab gets its own session: the app
runs on the server and every update is streamed to the page as a
mutation frame.

Routes:
  /         the page, server-rendered
  /ws       the session websocket
  /metrics  Prometheus metrics (when metrics.enabled)

Examples:
  reactor serve todos
  reactor serve counter --addr :8080`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: appNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			name := "counter"
			if len(args) == 1 {
				name = args[0]
			}
			if _, err := lookupApp(name); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, name)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// server serves one example app.
type server struct {
	cfg      atomic.Pointer[config.Config]
	app      string
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
	upgrader websocket.Upgrader
}

func newServer(cfg *config.Config, app string) *server {
	s := &server{
		app:    app,
		logger: slog.Default().With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.cfg.Store(cfg)
	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		s.metrics = telemetry.NewMetrics(
			telemetry.WithRegistry(s.registry),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
	}
	if cfg.Tracing.Enabled {
		s.tracer = telemetry.NewTracer(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithAttributes(attribute.String("reactor.app", app)),
		)
	}
	return s
}

// config returns the current config. Reloads apply to sessions started
// afterwards; metrics and tracing are fixed at startup.
func (s *server) config() *config.Config {
	return s.cfg.Load()
}

// reload swaps in a changed config file, keeping the listen address.
func (s *server) reload(next *config.Config) {
	next.Server.Addr = s.config().Server.Addr
	setupLogging(next)
	s.cfg.Store(next)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger)
		r.Get("/", s.handlePage)
		if s.registry != nil {
			r.Handle(s.config().Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
		}
	})
	r.Get("/ws", s.handleSession)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return r
}

func (s *server) options() *component.Options {
	opts, _ := lookupApp(s.app)
	return opts
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	rendered := renderApp(s.config(), s.options(), true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePage(w, s.app, rendered.html); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	cfg := s.config()
	logger := s.logger.With("session", middleware.GetReqID(r.Context()))
	opts := []remote.Option{
		remote.WithLogger(logger),
		remote.WithConfig(remote.Config{
			ReadTimeout:       cfg.ReadTimeout(),
			WriteTimeout:      cfg.WriteTimeout(),
			HeartbeatInterval: cfg.HeartbeatInterval(),
			SendQueueSize:     cfg.Server.SendQueueSize,
		}),
		remote.WithSchedulerOptions(reactive.WithMaxUpdateCount(cfg.Scheduler.MaxUpdateCount)),
	}

	var flushes []reactive.FlushObserver
	var patches []vdom.PatchObserver
	if s.metrics != nil {
		opts = append(opts, remote.WithObserver(s.metrics))
		flushes = append(flushes, s.metrics)
		patches = append(patches, s.metrics)
	}
	if s.tracer != nil {
		flushes = append(flushes, s.tracer)
		patches = append(patches, s.tracer)
	}
	if len(flushes) > 0 {
		opts = append(opts,
			remote.WithFlushObserver(telemetry.Flushes(flushes...)),
			remote.WithPatcherOptions(vdom.WithPatchObserver(telemetry.Patches(patches...))),
		)
	}

	if err := remote.NewSession(conn, s.options(), opts...).Run(r.Context()); err != nil {
		logger.Error("session ended", "error", err)
	}
}

func runServer(ctx context.Context, cfg *config.Config, app string) error {
	s := newServer(cfg, app)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if path := cfg.Path(); path != "" {
		w := config.NewWatcher(path, 0)
		w.OnChange(s.reload)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	success("Serving %s on http://%s", app, cfg.Server.Addr)
	if cfg.Metrics.Enabled {
		info("Metrics on http://%s%s", cfg.Server.Addr, cfg.Metrics.Path)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
