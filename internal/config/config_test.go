package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("PROJECT_ID", "demo-project")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OCREngine != EngineVision {
		t.Errorf("expected vision engine, got %q", cfg.OCREngine)
	}
	if cfg.Mode != ModePolling {
		t.Errorf("expected polling mode, got %q", cfg.Mode)
	}
	if cfg.RenderDPI != 150 {
		t.Errorf("expected 150 dpi, got %v", cfg.RenderDPI)
	}
	if cfg.PageConcurrency != 4 {
		t.Errorf("expected page concurrency 4, got %d", cfg.PageConcurrency)
	}
	if cfg.MaxPages != 500 {
		t.Errorf("expected max pages 500, got %d", cfg.MaxPages)
	}
	if cfg.MaxFileBytes != 20<<20 {
		t.Errorf("unexpected max file bytes %d", cfg.MaxFileBytes)
	}
	if cfg.ProcessTimeout != 5*time.Minute || cfg.OCRTimeout != time.Minute {
		t.Errorf("unexpected timeouts %v / %v", cfg.ProcessTimeout, cfg.OCRTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if len(cfg.TesseractLanguages) != 1 || cfg.TesseractLanguages[0] != "eng" {
		t.Errorf("unexpected tesseract languages %v", cfg.TesseractLanguages)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OCR_ENGINE", "Tesseract")
	t.Setenv("TESSERACT_LANGUAGES", "eng+deu")
	t.Setenv("PAGE_CONCURRENCY", "0")
	t.Setenv("OCR_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BOT_MODE", "Webhook")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OCREngine != EngineTesseract {
		t.Errorf("expected tesseract, got %q", cfg.OCREngine)
	}
	if strings.Join(cfg.TesseractLanguages, ",") != "eng,deu" {
		t.Errorf("unexpected languages %v", cfg.TesseractLanguages)
	}
	if cfg.PageConcurrency != 1 {
		t.Errorf("expected concurrency clamped to 1, got %d", cfg.PageConcurrency)
	}
	if cfg.OCRTimeout != 15*time.Second {
		t.Errorf("unexpected ocr timeout %v", cfg.OCRTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.Mode != ModeWebhook {
		t.Errorf("expected webhook mode, got %q", cfg.Mode)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing token",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "", "PROJECT_ID": "p"},
			want: "TELEGRAM_BOT_TOKEN",
		},
		{
			name: "missing project for vision",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": ""},
			want: "PROJECT_ID",
		},
		{
			name: "unknown engine",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": "p", "OCR_ENGINE": "lens"},
			want: "unknown OCR_ENGINE",
		},
		{
			name: "unknown mode",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": "p", "BOT_MODE": "push"},
			want: "BOT_MODE",
		},
		{
			name: "bad integer",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": "p", "RENDER_DPI": "high"},
			want: "RENDER_DPI",
		},
		{
			name: "bad duration",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": "p", "PROCESS_TIMEOUT": "soon"},
			want: "PROCESS_TIMEOUT",
		},
		{
			name: "ledger without project",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PROJECT_ID": "", "OCR_ENGINE": "tesseract", "FIRESTORE_COLLECTION": "jobs"},
			want: "FIRESTORE_COLLECTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTesseractWithoutProject(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "t")
	t.Setenv("PROJECT_ID", "")
	t.Setenv("OCR_ENGINE", "tesseract")

	if _, err := FromEnv(); err != nil {
		t.Fatalf("tesseract should not need a project: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"noise": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv_WebhookModeShortensProcessTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", "webhook")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProcessTimeout != WebhookProcessTimeout {
		t.Fatalf("expected %v in webhook mode, got %v", WebhookProcessTimeout, cfg.ProcessTimeout)
	}
	if cfg.ProcessTimeout >= time.Minute {
		t.Fatalf("webhook deadline must stay below the 60s function timeout, got %v", cfg.ProcessTimeout)
	}
}

func TestWebhookFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_MODE", "polling")

	cfg, err := WebhookFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeWebhook || cfg.ProcessTimeout != WebhookProcessTimeout {
		t.Fatalf("expected webhook mode with %v, got %q with %v", WebhookProcessTimeout, cfg.Mode, cfg.ProcessTimeout)
	}

	t.Setenv("PROCESS_TIMEOUT", "30s")
	if cfg, err = WebhookFromEnv(); err != nil || cfg.ProcessTimeout != 30*time.Second {
		t.Fatalf("expected explicit 30s timeout, got %v, %v", cfg, err)
	}
}

func TestFromEnv_MaxPages(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_PAGES", "-1")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxPages != 0 {
		t.Fatalf("expected negative limit to disable the check, got %d", cfg.MaxPages)
	}

	t.Setenv("MAX_PAGES", "many")
	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "MAX_PAGES") {
		t.Fatalf("expected MAX_PAGES error, got %v", err)
	}
}
