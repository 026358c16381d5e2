package telegram

import (
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NewWebhookHandler decodes a Telegram update from the request body and
// handles it before responding. Handler failures are logged and acknowledged
// with 200 so that Telegram does not redeliver the update.
func NewWebhookHandler(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			slog.Error("Failed to decode update.", "error", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := Dispatch(r.Context(), h, update); err != nil {
			slog.Warn("Update handling failed.", "updateId", update.UpdateID, "error", err)
		}
		w.WriteHeader(http.StatusOK)
	}
}
