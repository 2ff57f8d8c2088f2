package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"invoicedesk/internal/services"
	"invoicedesk/internal/snapshot"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task type definitions
const (
	TypeDocumentArchive = "document:archive"
)

// DefaultQueue is where archive tasks are enqueued unless configured otherwise
const DefaultQueue = "documents"

// DocumentArchivePayload defines the payload for document archive tasks
type DocumentArchivePayload struct {
	OwnerID   uuid.UUID           `json:"owner_id"`
	InvoiceID uuid.UUID           `json:"invoice_id"`
	Template  snapshot.TemplateID `json:"template"`
}

// NewDocumentArchiveTask creates a new document archive task
func NewDocumentArchiveTask(ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*asynq.Task, error) {
	data, err := json.Marshal(DocumentArchivePayload{
		OwnerID:   ownerID,
		InvoiceID: invoiceID,
		Template:  template,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDocumentArchive, data), nil
}

// TaskEnqueuer is the part of *asynq.Client the enqueuer needs
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ArchiveEnqueuer queues document archives on asynq
type ArchiveEnqueuer struct {
	client   TaskEnqueuer
	queue    string
	maxRetry int
	timeout  time.Duration
}

// NewArchiveEnqueuer wraps an asynq client. An empty queue uses DefaultQueue.
func NewArchiveEnqueuer(client TaskEnqueuer, queue string) *ArchiveEnqueuer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &ArchiveEnqueuer{
		client:   client,
		queue:    queue,
		maxRetry: 5,
		timeout:  2 * time.Minute,
	}
}

// EnqueueArchive schedules an archive and returns the task id
func (e *ArchiveEnqueuer) EnqueueArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	task, err := NewDocumentArchiveTask(ownerID, invoiceID, template)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

var _ services.ArchiveEnqueuer = (*ArchiveEnqueuer)(nil)

// DocumentArchiver runs archive tasks against the document service
type DocumentArchiver struct {
	documents services.DocumentServiceInterface
	logger    zerolog.Logger
}

// NewDocumentArchiver creates the archive task handler
func NewDocumentArchiver(documents services.DocumentServiceInterface, logger zerolog.Logger) *DocumentArchiver {
	return &DocumentArchiver{
		documents: documents,
		logger:    logger.With().Str("component", "document_archiver").Logger(),
	}
}

// HandleDocumentArchive handles document archive tasks. Invoices that are gone
// or templates that do not exist are not retried.
func (a *DocumentArchiver) HandleDocumentArchive(ctx context.Context, t *asynq.Task) error {
	var payload DocumentArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal archive payload: %v: %w", err, asynq.SkipRetry)
	}

	archived, err := a.documents.Archive(ctx, payload.OwnerID, payload.InvoiceID, payload.Template)
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) || errors.Is(err, snapshot.ErrUnknownTemplate) {
			a.logger.Warn().Err(err).Str("invoice_id", payload.InvoiceID.String()).Msg("dropping archive task")
			return fmt.Errorf("archive invoice %s: %v: %w", payload.InvoiceID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("archive invoice %s: %w", payload.InvoiceID, err)
	}

	a.logger.Info().
		Str("invoice_id", payload.InvoiceID.String()).
		Str("object_key", archived.ObjectKey).
		Msg("archive task completed")
	return nil
}

// NewServeMux routes every task type this service handles
func NewServeMux(archiver *DocumentArchiver) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDocumentArchive, archiver.HandleDocumentArchive)
	return mux
}
