package models

import "time"

// Job statuses recorded in the ledger.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Job represents the ledger record for one document conversion request in Firestore.
// It tracks status and metadata only; document bytes and extracted text are never stored.
type Job struct {
	JobID        string    `firestore:"jobId,omitempty"`
	ChatID       int64     `firestore:"chatId,omitempty"`
	FileName     string    `firestore:"fileName,omitempty"`
	FileHash     string    `firestore:"fileHash,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt,omitempty"`
}
