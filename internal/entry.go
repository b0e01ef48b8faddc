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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scribe/internal/api"
	"github.com/starford/scribe/internal/mcpserver"
	"github.com/starford/scribe/internal/sse"
	"github.com/starford/scribe/internal/storage"
	"github.com/starford/scribe/internal/style"
	"github.com/starford/scribe/internal/tui"
)

// Run starts the HTTP host: REST API, SSE preview stream, browser page and
// style watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("profile_path", cfg.Profile.Path),
		slog.Bool("journal", cfg.Journal.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker; the surface turns engine notifications into events.
	broker := sse.NewBroker(sse.Replayed...)
	defer broker.Close()

	st, err := app.start(logger, sse.NewSurface(broker, logger))
	if err != nil {
		return err
	}
	defer st.close(logger)

	apiRouter := api.NewRouter(st.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := st.eng.Status(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api; the page itself is public and passes
	// ?access_token= through to the API.
	r.Mount("/api", apiRouter)
	r.Get("/", api.Page)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := st.watchStyles(gCtx, cfg, logger); err != nil {
				logger.Warn("watcher: disabled", slog.String("error", err.Error()))
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

		// SSE streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
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

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunTUI starts the terminal host. Logs go to the profile's log file.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, logFile, err := fileLogger(cfg.Profile.Path, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	bridge := &tui.Bridge{}
	st, err := app.start(logger, bridge)
	if err != nil {
		return err
	}
	defer st.close(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := st.watchStyles(gCtx, cfg, logger); err != nil {
				logger.Warn("watcher: disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	p := tea.NewProgram(tui.NewModel(st.eng), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)
	_, runErr := p.Run()
	bridge.Attach(nil)

	cancel()
	_ = g.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", runErr)
	}
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, logFile, err := fileLogger(cfg.Profile.Path, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	st, err := app.start(logger)
	if err != nil {
		return err
	}
	defer st.close(logger)

	logger.Info("MCP server starting", slog.String("profile_path", cfg.Profile.Path))
	if err := mcpserver.New(st.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// WriteStyles writes the default style file into the profile, replacing
// any existing one, and returns its path.
func WriteStyles(opts ...Option) (string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return "", err
	}
	cfg := app.config

	store, err := storage.Open(cfg.Profile.Path)
	if err != nil {
		return "", err
	}
	if err := style.WriteDefaults(store, cfg.Editor.StyleFile); err != nil {
		return "", err
	}
	return store.Root() + string(os.PathSeparator) + cfg.Editor.StyleFile, nil
}
