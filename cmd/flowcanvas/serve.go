package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flowcanvas/internal/ctxlog"
	"flowcanvas/internal/execution"
	"flowcanvas/internal/handler"
	"flowcanvas/internal/hub"
	"flowcanvas/internal/service"
	"flowcanvas/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow editor API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	logger := a.logger
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("starting flowcanvas", "config", cfg.Summary())

	cat, err := loadCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		return err
	}

	var executor *execution.Service
	if cfg.ExecutionEnabled() {
		timeout := cfg.Execution.Timeout.Duration()
		executor = execution.NewService(execution.NewClient(cfg.Execution.Endpoint, timeout), timeout)
	}

	eventBus := service.NewEventBus()
	svc := service.NewWorkflowService(service.Options{
		Catalog:  cat,
		Executor: executor,
		EventBus: eventBus,
		Logger:   logger,
	})
	defer svc.Close()

	sseHub := hub.New(logger).WithKeepAlive(cfg.Server.KeepAlive.Duration())
	events := make(chan service.Event, 100)
	unsubscribe := eventBus.Subscribe(events)
	defer unsubscribe()

	mux := http.NewServeMux()
	handler.NewWorkflowHandler(svc, logger).Register(mux)
	mux.Handle("GET /api/events", sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.Chain(mux,
			handler.Recover,
			handler.CORS,
			handler.Logger(logger),
		),
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: SSE responses stay open
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		hub.Forward[service.Event](gctx, sseHub, events)
		return nil
	})

	if cfg.Catalog.Path != "" && cfg.Catalog.Watch {
		path := cfg.Catalog.Path
		w := watcher.New(path, func() {
			// a failed reload is logged and keeps the previous catalog
			_ = svc.ReloadCatalogFile(gctx, path)
		}, logger)
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
