package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// OCR engines selectable through OCR_ENGINE.
const (
	EngineVision    = "vision"
	EngineGemini    = "gemini"
	EngineTesseract = "tesseract"
)

// Update delivery modes selectable through BOT_MODE.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Default per-document deadlines. Webhook requests are answered synchronously,
// so that mode stays inside the 60s Cloud Functions request timeout.
const (
	DefaultProcessTimeout = 5 * time.Minute
	WebhookProcessTimeout = 50 * time.Second
)

// Config holds all process-wide settings. It is read once at startup and never mutated.
type Config struct {
	BotToken        string
	Mode            string
	ProjectID       string
	CredentialsFile string

	OCREngine          string
	VertexAIRegion     string
	GeminiModel        string
	TesseractLanguages []string

	RenderDPI         float64
	MaxImageDimension int
	PageConcurrency   int
	MaxPages          int
	MaxUpdates        int
	MaxFileBytes      int
	ProcessTimeout    time.Duration
	OCRTimeout        time.Duration

	FirestoreCollection string
	HealthAddr          string
	LogLevel            slog.Level
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads .env (if present) and the environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// LoadWebhook is Load for the webhook function, which always runs in webhook mode.
func LoadWebhook() (*Config, error) {
	_ = godotenv.Load(".env")
	return WebhookFromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	return fromEnv(strings.ToLower(GetEnv("BOT_MODE", ModePolling)))
}

// WebhookFromEnv is FromEnv with the mode fixed to webhook.
func WebhookFromEnv() (*Config, error) {
	return fromEnv(ModeWebhook)
}

func fromEnv(mode string) (*Config, error) {
	cfg := &Config{
		BotToken:            GetEnv("TELEGRAM_BOT_TOKEN", ""),
		Mode:                mode,
		ProjectID:           GetEnv("PROJECT_ID", ""),
		CredentialsFile:     GetEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		OCREngine:           strings.ToLower(GetEnv("OCR_ENGINE", EngineVision)),
		VertexAIRegion:      GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:         GetEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		TesseractLanguages:  strings.Split(GetEnv("TESSERACT_LANGUAGES", "eng"), "+"),
		FirestoreCollection: GetEnv("FIRESTORE_COLLECTION", ""),
		HealthAddr:          GetEnv("HEALTH_ADDR", ":8080"),
		LogLevel:            ParseLevel(GetEnv("LOG_LEVEL", "info")),
	}

	dpi, err := getEnvInt("RENDER_DPI", 150)
	if err != nil {
		return nil, err
	}
	cfg.RenderDPI = float64(dpi)
	if cfg.MaxImageDimension, err = getEnvInt("MAX_IMAGE_DIMENSION", 2048); err != nil {
		return nil, err
	}
	if cfg.PageConcurrency, err = getEnvInt("PAGE_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = getEnvInt("MAX_PAGES", 500); err != nil {
		return nil, err
	}
	if cfg.MaxUpdates, err = getEnvInt("MAX_CONCURRENT_UPDATES", 8); err != nil {
		return nil, err
	}
	if cfg.MaxFileBytes, err = getEnvInt("MAX_FILE_BYTES", 20<<20); err != nil {
		return nil, err
	}
	processTimeout := DefaultProcessTimeout
	if mode == ModeWebhook {
		processTimeout = WebhookProcessTimeout
	}
	if cfg.ProcessTimeout, err = getEnvDuration("PROCESS_TIMEOUT", processTimeout); err != nil {
		return nil, err
	}
	if cfg.OCRTimeout, err = getEnvDuration("OCR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable must be set")
	}
	if c.Mode != ModePolling && c.Mode != ModeWebhook {
		return fmt.Errorf("unknown BOT_MODE %q", c.Mode)
	}
	switch c.OCREngine {
	case EngineVision, EngineGemini:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the %s engine", c.OCREngine)
		}
	case EngineTesseract:
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q", c.OCREngine)
	}
	if c.FirestoreCollection != "" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set when FIRESTORE_COLLECTION is set")
	}
	if c.RenderDPI <= 0 {
		return fmt.Errorf("RENDER_DPI must be positive")
	}
	if c.PageConcurrency < 1 {
		c.PageConcurrency = 1
	}
	if c.MaxUpdates < 1 {
		c.MaxUpdates = 1
	}
	if c.MaxPages < 0 {
		c.MaxPages = 0
	}
	if c.MaxImageDimension < 0 {
		c.MaxImageDimension = 0
	}
	return nil
}
