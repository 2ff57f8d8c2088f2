package repositories

import (
	"context"
	"fmt"
	"strings"

	"invoicedesk/internal/models"
)

// TDSRepository reads the withholding ledger. Writes go through store operations.
type TDSRepository interface {
	List(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error)
}

type tdsRepo struct {
	db DBTX
}

func NewTDSRepo(db DBTX) TDSRepository {
	return &tdsRepo{db: db}
}

// List scopes entries by the businesses the caller currently owns. Entries are
// append-only and keep the owner recorded at withholding time, which is the
// administrator for payments taken before a claim.
func (r *tdsRepo) List(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error) {
	conditions := []string{"business_id IN (SELECT id FROM businesses WHERE owner_id = $1)"}
	args := []any{filter.OwnerID}

	if filter.BusinessID != nil {
		args = append(args, *filter.BusinessID)
		conditions = append(conditions, fmt.Sprintf("business_id = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.FiscalYear != nil {
		args = append(args, *filter.FiscalYear)
		conditions = append(conditions, fmt.Sprintf("fiscal_year = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, owner_id, business_id, client_id, invoice_id, amount, section, fiscal_year, recorded_on, created_at
		FROM tds_entries
		WHERE %s
		ORDER BY recorded_on DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.TDSEntry
	for rows.Next() {
		e := &models.TDSEntry{}
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.BusinessID, &e.ClientID, &e.InvoiceID, &e.Amount, &e.Section, &e.FiscalYear, &e.RecordedOn, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
