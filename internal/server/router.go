package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WebhookPath is where Telegram updates are accepted when a webhook handler is mounted.
const WebhookPath = "/telegram/webhook"

// NewRouter serves /healthz and, when webhook is non-nil, accepts updates on WebhookPath.
func NewRouter(webhook http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if webhook != nil {
		r.Post(WebhookPath, webhook.ServeHTTP)
	}
	return r
}
