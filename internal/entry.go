// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/warrantdesk/internal/api"
	"github.com/starford/warrantdesk/internal/inbox"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/sse"
)

// Run starts the HTTP review service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("export_dir", cfg.Export.Dir),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2*time.Second, 30*time.Second)
	defer broker.Close()

	comp, err := newComponents(cfg, logger, reviewservice.WithEvents(broker))
	if err != nil {
		return err
	}
	defer comp.Close()

	var drop *inbox.Inbox
	if cfg.Inbox.Enabled() {
		drop, err = inbox.New(cfg.Inbox.Path, comp.svc, logger)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		if err := drop.LoadLatest(ctx); err != nil {
			logger.Warn("initial inbox load failed", slog.String("error", err.Error()))
		}
	}

	limits := api.Limits{
		MaxWorkbookBytes: cfg.Upload.WorkbookBytes(),
		MaxPhotoBytes:    cfg.Upload.PhotoBytes(),
	}
	apiRouter := api.NewRouter(comp.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, limits)
	web := api.NewWebHandler(comp.svc, limits)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := comp.svc.Session(req.Context()); err != nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok","session":false}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","session":true}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(comp.registry, promhttp.HandlerOpts{}))

	// Mount API routes under /api (SSE included, behind the same auth).
	r.Mount("/api", apiRouter)

	// Review page, behind the same auth as the API.
	r.Group(func(r chi.Router) {
		r.Use(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token))
		r.Get("/", web.Page)
		r.Mount("/ui", web.Routes())
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the inbox for new workbooks.
	if drop != nil {
		g.Go(func() error {
			if err := drop.Watch(gCtx); err != nil {
				logger.Error("inbox watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown is not held open by them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the inbox watcher stops with the
// server.
var errShutdown = errors.New("shutdown")
