package repositories

import (
	"context"
	"fmt"
	"time"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error)
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error)
	GenerateInvoiceNumber(ctx context.Context, businessID uuid.UUID, invoiceDate time.Time) (string, error)
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepo(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

// GetByID loads an invoice with its line items in position order
func (r *invoiceRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	inv := &models.Invoice{}
	query := `
		SELECT id, owner_id, business_id, client_id, invoice_number, subtotal, discount, cgst, sgst, igst, total, invoice_date, due_date, payment_terms, status, advance_amount, tds_amount, is_advance_received, notes, created_at, updated_at
		FROM invoices
		WHERE owner_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&inv.ID, &inv.OwnerID, &inv.BusinessID, &inv.ClientID, &inv.InvoiceNumber, &inv.Subtotal, &inv.Discount, &inv.CGST, &inv.SGST, &inv.IGST, &inv.Total, &inv.InvoiceDate, &inv.DueDate, &inv.PaymentTerms, &inv.Status, &inv.AdvanceAmount, &inv.TDSAmount, &inv.IsAdvanceReceived, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, position, description, quantity, rate, amount
		FROM line_items
		WHERE invoice_id = $1
		ORDER BY position
	`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Position, &item.Description, &item.Quantity, &item.Rate, &item.Amount); err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListOverdueCandidates returns outstanding invoices whose due date is before asOf
func (r *invoiceRepo) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM invoices
		WHERE status IN ('Unpaid', 'Sent', 'PartiallyPaid') AND due_date < $1
		ORDER BY due_date
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// GenerateInvoiceNumber hands out the next number in the business's monthly sequence
func (r *invoiceRepo) GenerateInvoiceNumber(ctx context.Context, businessID uuid.UUID, invoiceDate time.Time) (string, error) {
	yearMonth := invoiceDate.Format("2006-01")

	query := `
		WITH upsert AS (
			INSERT INTO invoice_sequences (business_id, year_month, last_number)
			VALUES ($1, $2, 1)
			ON CONFLICT (business_id, year_month)
			DO UPDATE SET
				last_number = invoice_sequences.last_number + 1,
				updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert;
	`

	var sequenceNum int
	err := r.db.QueryRow(ctx, query, businessID, yearMonth).Scan(&sequenceNum)
	if err != nil {
		return "", fmt.Errorf("failed to generate invoice sequence: %w", err)
	}

	// INV-<last 8 of business id>-YYYY-MM-NNNNNN
	suffix := businessID.String()[len(businessID.String())-8:]
	return fmt.Sprintf("INV-%s-%s-%06d", suffix, yearMonth, sequenceNum), nil
}
