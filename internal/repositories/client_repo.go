package repositories

import (
	"context"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
)

type ClientRepository interface {
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error)
}

type clientRepo struct {
	db DBTX
}

func NewClientRepo(db DBTX) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error) {
	c := &models.Client{}
	query := `
		SELECT id, owner_id, business_id, name, email, gstin, address, payment_terms, custom_term_days, created_at, updated_at
		FROM clients
		WHERE owner_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&c.ID, &c.OwnerID, &c.BusinessID, &c.Name, &c.Email, &c.GSTIN, &c.Address, &c.PaymentTerms, &c.CustomTermDays, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
