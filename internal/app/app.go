// Package app wires configuration, Google Cloud clients, the pipeline and the
// Telegram transport into a ready bot. Both entrypoints share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/ocrpdfbot/internal/config"
	"github.com/Lllllllleong/ocrpdfbot/internal/gcp"
	"github.com/Lllllllleong/ocrpdfbot/internal/jobs"
	"github.com/Lllllllleong/ocrpdfbot/internal/ocr"
	"github.com/Lllllllleong/ocrpdfbot/internal/pdf"
	"github.com/Lllllllleong/ocrpdfbot/internal/services"
	"github.com/Lllllllleong/ocrpdfbot/internal/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// App is a fully wired bot.
type App struct {
	Bot     *services.BotFunction
	API     *tgbotapi.BotAPI
	closers []func() error
}

// New builds every long-lived client once. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	extractor, err := a.newExtractor(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var recorder services.JobRecorder
	if cfg.FirestoreCollection != "" {
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID, cfg.CredentialsFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		recorder = jobs.NewFirestoreRecorder(client, cfg.FirestoreCollection)
		slog.Info("Job ledger enabled.", "collection", cfg.FirestoreCollection)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	a.API = api
	slog.Info("Authorized on Telegram.", "username", api.Self.UserName)

	pipeline := services.NewPipeline(
		pdf.NewFitzRasterizer(cfg.RenderDPI),
		extractor,
		pdf.NewTextBuilder(),
		services.PipelineConfig{PageConcurrency: cfg.PageConcurrency, OCRTimeout: cfg.OCRTimeout, MaxPages: cfg.MaxPages},
	)
	a.Bot = services.NewBot(
		telegram.NewClient(api, cfg.ProcessTimeout),
		pipeline,
		recorder,
		services.BotConfig{MaxFileBytes: cfg.MaxFileBytes, ProcessTimeout: cfg.ProcessTimeout},
	)
	return a, nil
}

func (a *App) newExtractor(ctx context.Context, cfg *config.Config) (services.TextExtractor, error) {
	slog.Info("Initializing OCR engine.", "engine", cfg.OCREngine)
	switch cfg.OCREngine {
	case config.EngineVision:
		client, err := gcp.NewVisionClient(ctx, cfg.ProjectID, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return ocr.NewVisionExtractor(client, cfg.MaxImageDimension), nil

	case config.EngineGemini:
		client, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.GeminiModel, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return ocr.NewGeminiExtractor(client.OCRModel, cfg.MaxImageDimension), nil

	case config.EngineTesseract:
		return newTesseractExtractor(cfg)
	}
	return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCREngine)
}

// Close releases the cloud clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
