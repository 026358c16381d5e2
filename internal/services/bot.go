package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"github.com/oklog/ulid/v2"
)

// Messages sent to users.
const (
	greetingFormat = "Hi %s!\nSend me a PDF file and I will convert it to a searchable PDF using Google Lens."
	progressFormat = "Processed page %d/%d"
	finishedText   = "Finished processing the PDF."
	failureFormat  = "An error occurred: %v"
)

// OutgoingText is a text reply to a chat.
type OutgoingText struct {
	ChatID           int64
	ReplyToMessageID int
	Text             string
	ForceReply       bool
}

// Transport is the chat platform as seen by the bot.
type Transport interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	SendText(ctx context.Context, msg OutgoingText) error
	SendDocument(ctx context.Context, chatID int64, fileName string, data []byte) error
}

// DocumentProcessor converts one PDF. *Pipeline is the production implementation.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc models.IncomingDocument, progress ProgressFunc) (*models.OutgoingDocument, error)
}

// JobRecorder keeps the metadata ledger of conversion requests.
type JobRecorder interface {
	Create(ctx context.Context, job models.Job) error
	UpdateStatus(ctx context.Context, jobID, status string, pageCount int, errDetails string) error
}

// BotConfig holds limits applied to every request.
type BotConfig struct {
	MaxFileBytes   int
	ProcessTimeout time.Duration
}

// BotFunction holds the dependencies for the greeting and document handlers.
type BotFunction struct {
	transport Transport
	processor DocumentProcessor
	jobs      JobRecorder
	config    BotConfig
	now       func() time.Time
}

// NewBot creates a new BotFunction. A nil recorder disables the ledger.
func NewBot(transport Transport, processor DocumentProcessor, jobs JobRecorder, config BotConfig) *BotFunction {
	if jobs == nil {
		jobs = nopRecorder{}
	}
	return &BotFunction{
		transport: transport,
		processor: processor,
		jobs:      jobs,
		config:    config,
		now:       time.Now,
	}
}

// HandleStart answers the session-start command with a static greeting.
func (b *BotFunction) HandleStart(ctx context.Context, req models.StartRequest) error {
	msg := OutgoingText{
		ChatID:           req.ChatID,
		ReplyToMessageID: req.MessageID,
		Text:             fmt.Sprintf(greetingFormat, req.FirstName),
		ForceReply:       true,
	}
	if err := b.transport.SendText(ctx, msg); err != nil {
		slog.Error("Failed to send greeting.", "chatId", req.ChatID, "error", err)
		return &TransportError{Op: "send greeting", Err: err}
	}
	return nil
}

// HandleDocument converts an uploaded PDF and replies with the result. Every
// failure is reported to the chat exactly once; the returned error is for logging
// by the caller and never needs to be surfaced again.
func (b *BotFunction) HandleDocument(ctx context.Context, doc models.IncomingDocument) error {
	if b.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.ProcessTimeout)
		defer cancel()
	}

	jobID := ulid.Make().String()
	logCtx := slog.With("jobId", jobID, "chatId", doc.ChatID, "fileName", doc.FileName)
	logCtx.Info("Processing new document.", "size", doc.Size)

	pageCount, err := b.process(ctx, logCtx, jobID, doc)
	if err != nil {
		return b.handleError(ctx, logCtx, jobID, doc.ChatID, err)
	}

	if err := b.jobs.UpdateStatus(ctx, jobID, models.StatusCompleted, pageCount, ""); err != nil {
		logCtx.Warn("Failed to mark job completed in ledger.", "error", err)
	}
	logCtx.Info("Finished processing the PDF.", "pageCount", pageCount)
	return nil
}

func (b *BotFunction) process(ctx context.Context, logCtx *slog.Logger, jobID string, doc models.IncomingDocument) (int, error) {
	if b.config.MaxFileBytes > 0 && doc.Size > b.config.MaxFileBytes {
		return 0, fmt.Errorf("file is too large (%d bytes, limit %d)", doc.Size, b.config.MaxFileBytes)
	}

	if doc.Data == nil {
		data, err := b.transport.DownloadFile(ctx, doc.FileID)
		if err != nil {
			return 0, &TransportError{Op: "download document", Err: err}
		}
		doc.Data = data
	}
	if b.config.MaxFileBytes > 0 && len(doc.Data) > b.config.MaxFileBytes {
		return 0, fmt.Errorf("file is too large (%d bytes, limit %d)", len(doc.Data), b.config.MaxFileBytes)
	}
	logCtx.Info("Downloaded document.", "bytes", len(doc.Data))

	now := b.now()
	job := models.Job{
		JobID:     jobID,
		ChatID:    doc.ChatID,
		FileName:  doc.FileName,
		FileHash:  calculateHash(doc.Data),
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.jobs.Create(ctx, job); err != nil {
		logCtx.Warn("Failed to create job in ledger.", "error", err)
	}

	progress := func(ctx context.Context, page, total int) error {
		logCtx.Info(fmt.Sprintf(progressFormat, page, total))
		msg := OutgoingText{ChatID: doc.ChatID, Text: fmt.Sprintf(progressFormat, page, total)}
		if err := b.transport.SendText(ctx, msg); err != nil {
			return &TransportError{Op: "send progress", Err: err}
		}
		return nil
	}

	out, err := b.processor.ProcessDocument(ctx, doc, progress)
	if err != nil {
		return 0, err
	}

	if err := b.transport.SendDocument(ctx, doc.ChatID, out.FileName, out.Data); err != nil {
		return 0, &TransportError{Op: "send document", Err: err}
	}
	if err := b.transport.SendText(ctx, OutgoingText{ChatID: doc.ChatID, Text: finishedText}); err != nil {
		return 0, &TransportError{Op: "send completion", Err: err}
	}
	return out.PageCount, nil
}

func (b *BotFunction) handleError(ctx context.Context, logCtx *slog.Logger, jobID string, chatID int64, originalErr error) error {
	logCtx.Error("Error processing PDF.", "error", originalErr)
	if err := b.jobs.UpdateStatus(ctx, jobID, models.StatusFailed, 0, originalErr.Error()); err != nil {
		logCtx.Warn("Failed to mark job failed in ledger.", "updateError", err)
	}

	// The request context may already be expired; the failure report gets its own deadline.
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	msg := OutgoingText{ChatID: chatID, Text: fmt.Sprintf(failureFormat, originalErr)}
	if err := b.transport.SendText(reportCtx, msg); err != nil {
		logCtx.Error("CRITICAL: Failed to report processing error to user.", "sendError", err)
	}
	return originalErr
}

func calculateHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type nopRecorder struct{}

func (nopRecorder) Create(context.Context, models.Job) error { return nil }

func (nopRecorder) UpdateStatus(context.Context, string, string, int, string) error { return nil }
