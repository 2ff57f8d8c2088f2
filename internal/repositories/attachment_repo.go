package repositories

import (
	"context"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Attachment, error)
}

type attachmentRepo struct {
	db DBTX
}

func NewAttachmentRepo(db DBTX) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, invoice_id, object_key, file_name, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (object_key) DO UPDATE SET file_name = EXCLUDED.file_name, content_type = EXCLUDED.content_type
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.InvoiceID, a.ObjectKey, a.FileName, a.ContentType)
	return err
}

func (r *attachmentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Attachment, error) {
	query := `
		SELECT id, invoice_id, object_key, file_name, content_type, created_at
		FROM attachments
		WHERE invoice_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		a := &models.Attachment{}
		if err := rows.Scan(&a.ID, &a.InvoiceID, &a.ObjectKey, &a.FileName, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
