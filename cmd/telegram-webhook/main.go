package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/ocrpdfbot/internal/app"
	"github.com/Lllllllleong/ocrpdfbot/internal/config"
	"github.com/Lllllllleong/ocrpdfbot/internal/telegram"
)

var (
	webhookHandler http.Handler
	once           sync.Once
	initErr        error
)

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// "HandleTelegramUpdate" is the entry point name configured in GCP.
	functions.HTTP("HandleTelegramUpdate", handleTelegramUpdate)
}

// main is required by the Go Functions Framework.
func main() {}

func handleTelegramUpdate(w http.ResponseWriter, r *http.Request) {
	// Clients are built on the first request and reused by warm instances.
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.LoadWebhook()
		if initErr != nil {
			return
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

		var bot *app.App
		bot, initErr = app.New(context.Background(), cfg)
		if initErr != nil {
			return
		}
		webhookHandler = telegram.NewWebhookHandler(bot.Bot)
	})
	if initErr != nil {
		slog.Error("CRITICAL: Bot initialization failed.", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	webhookHandler.ServeHTTP(w, r)
}
