package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/echomate/internal/api"
	"github.com/MikeSquared-Agency/echomate/internal/config"
	"github.com/MikeSquared-Agency/echomate/internal/events"
)

const usage = `usage:
  echomate [serve]                               run the HTTP API
  echomate chat -file <export.txt> -me <name> -them <name>
`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "echomate:", err)
		os.Exit(1)
	}
	cfg := config.Load()

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		setupLogging(cfg.LogLevel, os.Stdout)
		serve(cfg)
	case "chat":
		// stdout belongs to the conversation
		setupLogging(cfg.LogLevel, os.Stderr)
		if err := chatCommand(cfg, args); err != nil {
			os.Exit(1)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func serve(cfg config.Config) {
	slog.Info("echomate starting", "port", cfg.Port, "provider", cfg.Provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gen, model, err := newGenerator(ctx, cfg)
	if err != nil {
		slog.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	slog.Info("generator ready", "provider", cfg.Provider, "model", model)

	// NATS is optional; without it lifecycle events are dropped.
	var emitter *events.Emitter
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		emitter = events.NewEmitter(nc, slog.Default())
		slog.Info("NATS publisher ready", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without events")
	}

	srv := api.NewServer(api.Config{
		Port:           cfg.Port,
		APIToken:       cfg.APIToken,
		Provider:       cfg.Provider,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, gen, emitter, slog.Default())

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("echomate ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	slog.Info("echomate stopped")
}

func setupLogging(level string, w io.Writer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
