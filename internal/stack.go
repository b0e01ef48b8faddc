package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/journal"
	"github.com/starford/scribe/internal/noteservice"
	"github.com/starford/scribe/internal/watch"
)

const (
	logFileName     = "scribe.log"
	shutdownTimeout = 10 * time.Second
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// stack is the engine with its journal and host facade, shared by every
// command.
type stack struct {
	eng      *engine.Engine
	svc      *noteservice.Service
	journal  *journal.DB
	retarget chan string
}

// start opens the journal, starts the engine with listeners and binds it to
// the configured profile.
func (a *application) start(logger *slog.Logger, listeners ...engine.Listener) (*stack, error) {
	cfg := a.config
	if err := os.MkdirAll(cfg.Profile.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	s := &stack{retarget: make(chan string, 1)}
	var j journal.Journal
	if cfg.Journal.Enabled {
		db, err := journal.Open(cfg.Journal.Resolve(cfg.Profile.Path))
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		s.journal = db
		j = db
		listeners = append(listeners, journal.NewListener(db, logger))
	}
	listeners = append(listeners, profileTracker{ch: s.retarget})

	opts := append(cfg.Editor.Options(),
		engine.WithLogger(logger),
		engine.WithListener(listeners...),
	)
	s.eng = engine.New(opts...)
	s.eng.SetProfilePath(cfg.Profile.Path)
	s.svc = noteservice.NewService(s.eng, j)
	return s, nil
}

// close flushes and stops the engine, then closes the journal.
func (s *stack) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.eng.Close(ctx); err != nil {
		logger.Error("engine: final flush failed", slog.String("error", err.Error()))
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			logger.Warn("journal: close failed", slog.String("error", err.Error()))
		}
	}
}

// watchStyles reloads the theme whenever the style or stylesheet file of
// the active profile changes. It blocks until ctx is done.
func (s *stack) watchStyles(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	names := []string{cfg.Editor.StyleFile}
	if cfg.Editor.PreviewCSS != "" {
		names = append(names, cfg.Editor.PreviewCSS)
	}
	return watch.Watch(ctx, cfg.Profile.Path, s.retarget, names, cfg.Watch.Delay, logger, func(changed []string) {
		logger.Info("watcher: style files changed", slog.Any("files", changed))
		s.eng.ReloadStyles()
	})
}

// profileTracker forwards profile switches to the watcher. It never blocks
// the engine loop: only the newest path is kept.
type profileTracker struct {
	engine.NopListener
	ch chan string
}

func (p profileTracker) ProfileLoaded(path string, err error) {
	if err != nil {
		return
	}
	for {
		select {
		case p.ch <- path:
			return
		default:
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

// fileLogger logs JSON to scribe.log in the profile. The terminal and MCP
// hosts own stdout.
func fileLogger(profile string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(profile, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create profile dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(profile, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}
