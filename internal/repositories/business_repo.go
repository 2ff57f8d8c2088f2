package repositories

import (
	"context"
	"strings"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
)

type BusinessRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int, error)
	ListPendingClaimByEmail(ctx context.Context, email string) ([]*models.Business, error)
}

type businessRepo struct {
	db DBTX
}

func NewBusinessRepo(db DBTX) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b := &models.Business{}
	query := `
		SELECT id, owner_id, name, email, gstin, address, phone, status, created_by, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Email, &b.GSTIN, &b.Address, &b.Phone, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// CountOwnedBy counts businesses of any status owned by ownerID
func (r *businessRepo) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM businesses WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

// ListPendingClaimByEmail returns claimable businesses for an email, oldest first
func (r *businessRepo) ListPendingClaimByEmail(ctx context.Context, email string) ([]*models.Business, error) {
	query := `
		SELECT id, owner_id, name, email, gstin, address, phone, status, created_by, created_at, updated_at
		FROM businesses
		WHERE status = $1 AND LOWER(email) = $2
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, models.BusinessStatusPendingClaim, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*models.Business
	for rows.Next() {
		b := &models.Business{}
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Email, &b.GSTIN, &b.Address, &b.Phone, &b.Status, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
