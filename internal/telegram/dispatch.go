package telegram

import (
	"context"
	"log/slog"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

// Handler receives the two kinds of updates the bot reacts to.
// *services.BotFunction satisfies it.
type Handler interface {
	HandleStart(ctx context.Context, req models.StartRequest) error
	HandleDocument(ctx context.Context, doc models.IncomingDocument) error
}

// Dispatch routes a single update. Updates that are neither /start nor a PDF
// upload are ignored.
func Dispatch(ctx context.Context, h Handler, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		req := models.StartRequest{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
		if msg.From != nil {
			req.FirstName = msg.From.FirstName
		}
		return h.HandleStart(ctx, req)

	case msg.Document != nil && msg.Document.MimeType == models.PDFMIMEType:
		return h.HandleDocument(ctx, models.IncomingDocument{
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			FileID:    msg.Document.FileID,
			FileName:  msg.Document.FileName,
			MIMEType:  msg.Document.MimeType,
			Size:      msg.Document.FileSize,
		})
	}
	return nil
}

// UpdateSource delivers updates by long polling. *tgbotapi.BotAPI satisfies it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller handles every update in its own goroutine, with at most MaxConcurrent
// in flight.
type Poller struct {
	source        UpdateSource
	handler       Handler
	maxConcurrent int
	pollTimeout   int
}

// NewPoller creates a Poller.
func NewPoller(source UpdateSource, handler Handler, maxConcurrent int) *Poller {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Poller{source: source, handler: handler, maxConcurrent: maxConcurrent, pollTimeout: 60}
}

// Run polls until ctx is cancelled or the update channel closes, then waits for
// in-flight handlers to finish.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.pollTimeout
	updates := p.source.GetUpdatesChan(u)

	eg := new(errgroup.Group)
	eg.SetLimit(p.maxConcurrent)
	// In-flight documents finish after shutdown starts; they carry their own deadline.
	handlerCtx := context.WithoutCancel(ctx)

loop:
	for {
		select {
		case <-ctx.Done():
			p.source.StopReceivingUpdates()
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			eg.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("Update handling panicked.", "updateId", update.UpdateID, "panic", r)
					}
				}()
				if err := Dispatch(handlerCtx, p.handler, update); err != nil {
					slog.Warn("Update handling failed.", "updateId", update.UpdateID, "error", err)
				}
				return nil
			})
		}
	}

	slog.Info("Waiting for in-flight updates to finish.")
	return eg.Wait()
}
