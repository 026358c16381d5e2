package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lllllllleong/ocrpdfbot/internal/app"
	"github.com/Lllllllleong/ocrpdfbot/internal/config"
	"github.com/Lllllllleong/ocrpdfbot/internal/server"
	"github.com/Lllllllleong/ocrpdfbot/internal/telegram"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration.", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Bot stopped with an error.", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot stopped.")
}

func run(ctx context.Context, cfg *config.Config) error {
	bot, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := bot.Close(); err != nil {
			slog.Warn("Failed to close clients.", "error", err)
		}
	}()

	var webhook http.Handler
	if cfg.Mode == config.ModeWebhook {
		webhook = telegram.NewWebhookHandler(bot.Bot)
	}
	srv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           server.NewRouter(webhook),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening.", "addr", cfg.HealthAddr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		// Webhook requests in flight run to completion within the process timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ProcessTimeout+5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown incomplete.", "error", err)
		}
	}()

	if cfg.Mode == config.ModeWebhook {
		slog.Info("Waiting for webhook updates.", "path", server.WebhookPath, "engine", cfg.OCREngine)
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		}
	}

	slog.Info("Polling for updates.", "maxConcurrentUpdates", cfg.MaxUpdates, "engine", cfg.OCREngine)
	return telegram.NewPoller(bot.API, bot.Bot, cfg.MaxUpdates).Run(ctx)
}
