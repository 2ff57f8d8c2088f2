package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"invoicedesk/internal/caching"
	"invoicedesk/internal/models"
	"invoicedesk/internal/repositories"
	"invoicedesk/internal/snapshot"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArchiveEnqueuer schedules a background archive of an invoice document
type ArchiveEnqueuer interface {
	EnqueueArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error)
}

// ArchivedDocument is a rendered invoice stored in the object store
type ArchivedDocument struct {
	ObjectKey string    `json:"object_key"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	TotalDue  float64   `json:"total_due"`
}

// DocumentServiceInterface builds printable documents from committed invoice state
type DocumentServiceInterface interface {
	Snapshot(ctx context.Context, ownerID, invoiceID uuid.UUID) (snapshot.Snapshot, error)
	Render(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*snapshot.Document, error)
	Archive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*ArchivedDocument, error)
	RequestArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error)
	DocumentLink(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error)
}

type documentService struct {
	invoiceRepo    repositories.InvoiceRepository
	businessRepo   repositories.BusinessRepository
	clientRepo     repositories.ClientRepository
	attachmentRepo repositories.AttachmentRepository
	renderer       *snapshot.Renderer
	minioSvc       MinioService
	bucket         string
	linkExpiry     time.Duration
	cacheSvc       caching.CacheService
	enqueuer       ArchiveEnqueuer
	logger         zerolog.Logger
	now            func() time.Time
}

// NewDocumentService creates a document service. enqueuer may be nil, in
// which case archive requests run inline.
func NewDocumentService(
	invoiceRepo repositories.InvoiceRepository,
	businessRepo repositories.BusinessRepository,
	clientRepo repositories.ClientRepository,
	attachmentRepo repositories.AttachmentRepository,
	renderer *snapshot.Renderer,
	minioSvc MinioService,
	bucket string,
	linkExpiry time.Duration,
	cacheSvc caching.CacheService,
	enqueuer ArchiveEnqueuer,
	logger zerolog.Logger,
) DocumentServiceInterface {
	if renderer == nil {
		renderer = snapshot.NewRenderer()
	}
	if linkExpiry <= 0 {
		linkExpiry = 24 * time.Hour
	}
	return &documentService{
		invoiceRepo:    invoiceRepo,
		businessRepo:   businessRepo,
		clientRepo:     clientRepo,
		attachmentRepo: attachmentRepo,
		renderer:       renderer,
		minioSvc:       minioSvc,
		bucket:         bucket,
		linkExpiry:     linkExpiry,
		cacheSvc:       cacheSvc,
		enqueuer:       enqueuer,
		logger:         logger.With().Str("component", "document_service").Logger(),
		now:            time.Now,
	}
}

// Snapshot loads the invoice graph and normalizes it
func (s *documentService) Snapshot(ctx context.Context, ownerID, invoiceID uuid.UUID) (snapshot.Snapshot, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, ownerID, invoiceID)
	if errors.Is(err, store.ErrNotFound) {
		return snapshot.Snapshot{}, ErrInvoiceNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("load invoice: %w", err)
	}

	business, err := s.businessRepo.GetByID(ctx, invoice.BusinessID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("load business: %w", err)
	}

	var client *models.Client
	if invoice.ClientID != nil {
		client, err = s.clientRepo.GetByID(ctx, ownerID, *invoice.ClientID)
		if errors.Is(err, store.ErrNotFound) {
			client = nil
		} else if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("load client: %w", err)
		}
	}

	return snapshot.Normalize(invoice, business, client), nil
}

// Render produces the document for one template
func (s *documentService) Render(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*snapshot.Document, error) {
	snap, err := s.Snapshot(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.Render(template, snap)
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", snap.InvoiceNumber, err)
	}
	return doc, nil
}

// Archive renders the document, stores it as an invoice attachment and
// caches a presigned download link.
func (s *documentService) Archive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*ArchivedDocument, error) {
	doc, err := s.Render(ctx, ownerID, invoiceID, template)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(invoiceID, doc.Template, doc.FileName)
	if err := s.minioSvc.Upload(ctx, s.bucket, key, bytes.NewReader(doc.Content), int64(len(doc.Content)), doc.ContentType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	attachment := &models.Attachment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ObjectKey:   key,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	url, err := s.minioSvc.GetPresignedURL(ctx, s.bucket, key, s.linkExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign document: %w", err)
	}

	// Expire the cached link a little before the signature does
	ttl := s.linkExpiry - s.linkExpiry/10
	if err := s.cacheSvc.SetDocumentLink(ctx, invoiceID, string(doc.Template), url, ttl); err != nil {
		s.logger.Warn().Err(err).Str("invoice_id", invoiceID.String()).Msg("failed to cache document link")
	}

	s.logger.Info().
		Str("invoice_id", invoiceID.String()).
		Str("template", string(doc.Template)).
		Str("object_key", key).
		Msg("document archived")

	return &ArchivedDocument{
		ObjectKey: key,
		FileName:  doc.FileName,
		URL:       url,
		ExpiresAt: s.now().Add(s.linkExpiry),
		TotalDue:  doc.TotalDue,
	}, nil
}

// RequestArchive queues an archive. Without a queue it archives inline and
// returns the object key.
func (s *documentService) RequestArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, ownerID, invoiceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvoiceNotFound
		}
		return "", fmt.Errorf("load invoice: %w", err)
	}

	if s.enqueuer == nil {
		archived, err := s.Archive(ctx, ownerID, invoiceID, template)
		if err != nil {
			return "", err
		}
		return archived.ObjectKey, nil
	}

	taskID, err := s.enqueuer.EnqueueArchive(ctx, ownerID, invoiceID, template)
	if err != nil {
		return "", fmt.Errorf("enqueue document archive: %w", err)
	}
	return taskID, nil
}

// DocumentLink returns a download link for the current state of the invoice.
// Cached links are dropped whenever the invoice changes, so a miss archives
// a fresh document.
func (s *documentService) DocumentLink(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	url, err := s.cacheSvc.GetDocumentLink(ctx, invoiceID, string(template))
	if err != nil {
		s.logger.Warn().Err(err).Str("invoice_id", invoiceID.String()).Msg("document link cache unavailable")
	}
	if url != "" {
		// The cache is keyed by invoice only, so ownership is still checked
		if _, err := s.invoiceRepo.GetByID(ctx, ownerID, invoiceID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", ErrInvoiceNotFound
			}
			return "", fmt.Errorf("load invoice: %w", err)
		}
		return url, nil
	}

	archived, err := s.Archive(ctx, ownerID, invoiceID, template)
	if err != nil {
		return "", err
	}
	return archived.URL, nil
}

// ObjectKey is where an archived document lives in the bucket
func ObjectKey(invoiceID uuid.UUID, template snapshot.TemplateID, fileName string) string {
	return fmt.Sprintf("invoices/%s/%s/%s", invoiceID.String(), template, fileName)
}
