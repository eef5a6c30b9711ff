package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"runpal/internal/coach"
	"runpal/internal/config"
	"runpal/internal/handlers"
	"runpal/internal/journal"
	"runpal/internal/logging"
	"runpal/internal/viewport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "runpal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg, err := config.FromEnvironment()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	viewports := viewport.NewStore(cfg.Viewport.IdleTTL, cfg.Viewport.MaxInstances, logger.Named("viewport"))
	catalog := journal.NewCatalog(journal.SampleRuns)
	resilient := coach.NewResilient(coach.Offline{}, coach.Offline{}, logger.Named("coach"))

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	// SSE streams outlive the request timeout, so viewport routes sit outside it.
	handlers.NewViewportHandler(viewports, logger).RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		handlers.NewJournalHandler(catalog, journal.SampleProfile, viewports, cfg, logger).RegisterRoutes(r)
		handlers.NewCoachHandler(resilient, logger).RegisterRoutes(r)
		handlers.NewHealthHandler(viewports).RegisterRoutes(r)
	})

	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Open event streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}

//go:embed static/*
var embeddedStatic embed.FS
