package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrClaimConflict means the business was no longer pending_claim when the
	// claim transaction ran.
	ErrClaimConflict = errors.New("business is no longer pending claim")
	// ErrStaleInvoice means the invoice settlement totals changed since they
	// were read.
	ErrStaleInvoice = errors.New("invoice settlement changed concurrently")
)

// EntityKind identifies a table in the invoice graph
type EntityKind string

const (
	KindBusiness      EntityKind = "business"
	KindClient        EntityKind = "client"
	KindInvoice       EntityKind = "invoice"
	KindService       EntityKind = "service"
	KindBankAccount   EntityKind = "bank_account"
	KindTax           EntityKind = "tax"
	KindExpense       EntityKind = "expense"
	KindTermsTemplate EntityKind = "terms_template"
	KindTDSEntry      EntityKind = "tds_entry"
)

// Table returns the backing table name
func (k EntityKind) Table() string {
	switch k {
	case KindBusiness:
		return "businesses"
	case KindClient:
		return "clients"
	case KindInvoice:
		return "invoices"
	case KindService:
		return "services"
	case KindBankAccount:
		return "bank_accounts"
	case KindTax:
		return "taxes"
	case KindExpense:
		return "expenses"
	case KindTermsTemplate:
		return "terms_templates"
	case KindTDSEntry:
		return "tds_entries"
	}
	return ""
}

// DependentKinds are the business-scoped tables whose owner follows the
// business owner when it is claimed.
var DependentKinds = []EntityKind{KindService, KindBankAccount, KindTax, KindExpense, KindTermsTemplate}

// Operation is one statement of an atomic submission. The set of operations is
// closed: each variant below carries exactly the fields its statement needs.
// apply returns the change events to publish once the transaction commits.
type Operation interface {
	apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error)
}

func single(kind EntityKind, id uuid.UUID, action ChangeAction) []ChangeEvent {
	return []ChangeEvent{{Kind: kind, ID: id, Action: action}}
}

// CreateBusiness inserts a business profile
type CreateBusiness struct {
	Business *models.Business
}

func (op CreateBusiness) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	b := op.Business
	_, err := tx.Exec(ctx, `
		INSERT INTO businesses (id, owner_id, name, email, gstin, address, phone, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		b.ID, b.OwnerID, b.Name, b.Email, b.GSTIN, b.Address, b.Phone, b.Status, b.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	return single(KindBusiness, b.ID, ActionCreated), nil
}

// CreateInvoice inserts an invoice with its line items
type CreateInvoice struct {
	Invoice *models.Invoice
}

func (op CreateInvoice) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	inv := op.Invoice
	_, err := tx.Exec(ctx, `
		INSERT INTO invoices (id, owner_id, business_id, client_id, invoice_number, subtotal, discount, cgst, sgst, igst, total, invoice_date, due_date, payment_terms, status, advance_amount, tds_amount, is_advance_received, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())`,
		inv.ID, inv.OwnerID, inv.BusinessID, inv.ClientID, inv.InvoiceNumber, inv.Subtotal, inv.Discount,
		inv.CGST, inv.SGST, inv.IGST, inv.Total, inv.InvoiceDate, inv.DueDate, inv.PaymentTerms, inv.Status,
		inv.AdvanceAmount, inv.TDSAmount, inv.IsAdvanceReceived, inv.Notes)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}
	for _, item := range inv.LineItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO line_items (id, invoice_id, position, description, quantity, rate, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, inv.ID, item.Position, item.Description, item.Quantity, item.Rate, item.Amount)
		if err != nil {
			return nil, fmt.Errorf("insert line item: %w", err)
		}
	}
	return single(KindInvoice, inv.ID, ActionCreated), nil
}

// UpdateSettlement writes new cumulative settlement totals. The update only
// applies while the stored totals still equal the Expected values.
type UpdateSettlement struct {
	InvoiceID         uuid.UUID
	ExpectedAdvance   float64
	ExpectedTDS       float64
	AdvanceAmount     float64
	TDSAmount         float64
	Status            models.InvoiceStatus
	IsAdvanceReceived bool
}

func (op UpdateSettlement) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE invoices
		SET advance_amount = $1, tds_amount = $2, status = $3, is_advance_received = $4, updated_at = NOW()
		WHERE id = $5 AND advance_amount = $6 AND tds_amount = $7`,
		op.AdvanceAmount, op.TDSAmount, op.Status, op.IsAdvanceReceived, op.InvoiceID, op.ExpectedAdvance, op.ExpectedTDS)
	if err != nil {
		return nil, fmt.Errorf("update settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrStaleInvoice
	}
	return single(KindInvoice, op.InvoiceID, ActionUpdated), nil
}

// InsertTDSEntry appends a ledger entry
type InsertTDSEntry struct {
	Entry models.TDSEntry
}

func (op InsertTDSEntry) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	e := op.Entry
	_, err := tx.Exec(ctx, `
		INSERT INTO tds_entries (id, owner_id, business_id, client_id, invoice_id, amount, section, fiscal_year, recorded_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		e.ID, e.OwnerID, e.BusinessID, e.ClientID, e.InvoiceID, e.Amount, e.Section, e.FiscalYear, e.RecordedOn)
	if err != nil {
		return nil, fmt.Errorf("insert tds entry: %w", err)
	}
	return single(KindTDSEntry, e.ID, ActionCreated), nil
}

// MarkInvoiceOverdue flags an outstanding invoice as overdue. Invoices that
// were settled in the meantime are left alone.
type MarkInvoiceOverdue struct {
	InvoiceID uuid.UUID
}

func (op MarkInvoiceOverdue) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	_, err := tx.Exec(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('Unpaid', 'Sent', 'PartiallyPaid')`,
		models.InvoiceStatusOverdue, op.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("mark invoice overdue: %w", err)
	}
	return single(KindInvoice, op.InvoiceID, ActionUpdated), nil
}

// DeleteInvoice removes an invoice with its line items and attachment rows
type DeleteInvoice struct {
	InvoiceID uuid.UUID
	OwnerID   uuid.UUID
}

func (op DeleteInvoice) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE invoice_id = $1`, op.InvoiceID); err != nil {
		return nil, fmt.Errorf("delete attachments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE invoice_id = $1`, op.InvoiceID); err != nil {
		return nil, fmt.Errorf("delete line items: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND owner_id = $2`, op.InvoiceID, op.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return single(KindInvoice, op.InvoiceID, ActionDeleted), nil
}

// ClaimBusiness activates a pending_claim business for its new owner. It is a
// compare-and-set: a business that is not pending_claim aborts the whole
// transaction with ErrClaimConflict.
type ClaimBusiness struct {
	BusinessID uuid.UUID
	OwnerID    uuid.UUID
}

func (op ClaimBusiness) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE businesses
		SET status = $1, owner_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.BusinessStatusActive, op.OwnerID, op.BusinessID, models.BusinessStatusPendingClaim)
	if err != nil {
		return nil, fmt.Errorf("claim business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrClaimConflict
	}
	return single(KindBusiness, op.BusinessID, ActionClaimed), nil
}

// LinkClientOwner points every client of a business at a new owner. Linked
// holds the relinked client ids once the operation has been applied.
type LinkClientOwner struct {
	BusinessID uuid.UUID
	OwnerID    uuid.UUID
	Linked     []uuid.UUID
}

func (op *LinkClientOwner) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	ids, err := relink(ctx, tx, KindClient,
		`UPDATE clients SET owner_id = $1, updated_at = NOW() WHERE business_id = $2 RETURNING id`,
		op.OwnerID, op.BusinessID)
	op.Linked = ids
	return relinked(KindClient, ids), err
}

// LinkInvoiceOwner points every invoice of a business at a new owner, whether
// the invoice references the business directly or through one of its clients.
type LinkInvoiceOwner struct {
	BusinessID uuid.UUID
	OwnerID    uuid.UUID
	Linked     []uuid.UUID
}

func (op *LinkInvoiceOwner) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	ids, err := relink(ctx, tx, KindInvoice, `
		UPDATE invoices SET owner_id = $1, updated_at = NOW()
		WHERE business_id = $2 OR client_id IN (SELECT id FROM clients WHERE business_id = $2)
		RETURNING id`,
		op.OwnerID, op.BusinessID)
	op.Linked = ids
	return relinked(KindInvoice, ids), err
}

// LinkDependentOwner points every row of one dependent kind belonging to a
// business at a new owner. Kind must be one of DependentKinds.
type LinkDependentOwner struct {
	Kind       EntityKind
	BusinessID uuid.UUID
	OwnerID    uuid.UUID
	Linked     []uuid.UUID
}

func (op *LinkDependentOwner) apply(ctx context.Context, tx pgx.Tx) ([]ChangeEvent, error) {
	if !slices.Contains(DependentKinds, op.Kind) {
		return nil, fmt.Errorf("link owner: %q is not a dependent kind", op.Kind)
	}
	query := fmt.Sprintf(`UPDATE %s SET owner_id = $1, updated_at = NOW() WHERE business_id = $2 RETURNING id`, op.Kind.Table())
	ids, err := relink(ctx, tx, op.Kind, query, op.OwnerID, op.BusinessID)
	op.Linked = ids
	return relinked(op.Kind, ids), err
}

// relink runs a set-based owner assignment and returns the touched ids.
// Repeating it is harmless.
func relink(ctx context.Context, tx pgx.Tx, kind EntityKind, query string, ownerID, businessID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, query, ownerID, businessID)
	if err != nil {
		return nil, fmt.Errorf("link %s owner: %w", kind, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("link %s owner: %w", kind, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("link %s owner: %w", kind, err)
	}
	return ids, nil
}

func relinked(kind EntityKind, ids []uuid.UUID) []ChangeEvent {
	events := make([]ChangeEvent, 0, len(ids))
	for _, id := range ids {
		events = append(events, ChangeEvent{Kind: kind, ID: id, Action: ActionRelinked})
	}
	return events
}
