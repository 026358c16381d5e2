package jobs

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/ocrpdfbot/internal/models"
)

// DocumentStore is the subset of Firestore the recorder uses, keyed by job ID.
type DocumentStore interface {
	Create(ctx context.Context, id string, data interface{}) error
	Merge(ctx context.Context, id string, fields map[string]interface{}) error
}

// Recorder writes job metadata to a collection. Document bytes and extracted
// text are never written.
type Recorder struct {
	store DocumentStore
	now   func() time.Time
}

// NewRecorder returns a Recorder backed by store.
func NewRecorder(store DocumentStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// NewFirestoreRecorder returns a Recorder writing to the named Firestore collection.
func NewFirestoreRecorder(client *firestore.Client, collection string) *Recorder {
	return NewRecorder(&firestoreStore{collection: client.Collection(collection)})
}

// Create stores a new job record.
func (r *Recorder) Create(ctx context.Context, job models.Job) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID must be set")
	}
	if err := r.store.Create(ctx, job.JobID, job); err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.JobID, err)
	}
	return nil
}

// UpdateStatus sets the status of a job. The record is created if it does not exist yet,
// so failures before Create still leave a trace.
func (r *Recorder) UpdateStatus(ctx context.Context, jobID, status string, pageCount int, errDetails string) error {
	fields := map[string]interface{}{
		"jobId":     jobID,
		"status":    status,
		"updatedAt": r.now(),
	}
	if pageCount > 0 {
		fields["pageCount"] = pageCount
	}
	if errDetails != "" {
		fields["errorDetails"] = errDetails
	}
	if err := r.store.Merge(ctx, jobID, fields); err != nil {
		return fmt.Errorf("failed to update job %s to %s: %w", jobID, status, err)
	}
	return nil
}

type firestoreStore struct {
	collection *firestore.CollectionRef
}

func (s *firestoreStore) Create(ctx context.Context, id string, data interface{}) error {
	_, err := s.collection.Doc(id).Create(ctx, data)
	return err
}

func (s *firestoreStore) Merge(ctx context.Context, id string, fields map[string]interface{}) error {
	_, err := s.collection.Doc(id).Set(ctx, fields, firestore.MergeAll)
	return err
}
