// Package snapshot freezes an invoice, its seller and its buyer into a
// versioned record that document templates render from.
package snapshot

import (
	"time"

	"invoicedesk/internal/models"
	"invoicedesk/internal/money"

	"github.com/google/uuid"
)

// SchemaVersion is bumped whenever a field is added to Snapshot. Templates
// ignore fields newer than the version they were written against.
const SchemaVersion = 1

// TaxMode says which GST components an invoice carries
type TaxMode string

const (
	TaxModeNone       TaxMode = "none"
	TaxModeIntraState TaxMode = "intra_state"
	TaxModeInterState TaxMode = "inter_state"
)

// Party is the seller or buyer block of a document
type Party struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// Line is one frozen line item
type Line struct {
	Position    int     `json:"position"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Snapshot is immutable once built. Optional money fields are nil when zero.
type Snapshot struct {
	SchemaVersion int                  `json:"schema_version"`
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       time.Time            `json:"due_date"`
	PaymentTerms  models.PaymentTerms  `json:"payment_terms"`
	Status        models.InvoiceStatus `json:"status"`
	Seller        Party                `json:"seller"`
	Buyer         *Party               `json:"buyer,omitempty"`
	Lines         []Line               `json:"lines"`
	TaxMode       TaxMode              `json:"tax_mode"`
	Subtotal      float64              `json:"subtotal"`
	Discount      *float64             `json:"discount,omitempty"`
	CGST          *float64             `json:"cgst,omitempty"`
	SGST          *float64             `json:"sgst,omitempty"`
	IGST          *float64             `json:"igst,omitempty"`
	Total         float64              `json:"total"`
	AdvancePaid   *float64             `json:"advance_paid,omitempty"`
	TDSAmount     *float64             `json:"tds_amount,omitempty"`
	BalanceDue    float64              `json:"balance_due"`
	Notes         *string              `json:"notes,omitempty"`
}

// Normalize builds a snapshot from the live records. It reads nothing but its
// arguments and copies everything it keeps, so later edits to inv, business
// or client do not reach the snapshot. client may be nil.
func Normalize(inv *models.Invoice, business *models.Business, client *models.Client) Snapshot {
	s := Snapshot{
		SchemaVersion: SchemaVersion,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		PaymentTerms:  inv.PaymentTerms,
		Status:        inv.Status,
		Subtotal:      money.Round2(inv.Subtotal),
		Discount:      optional(inv.Discount),
		CGST:          optional(inv.CGST),
		SGST:          optional(inv.SGST),
		IGST:          optional(inv.IGST),
		Total:         money.Round2(inv.Total),
		AdvancePaid:   optional(inv.AdvanceAmount),
		TDSAmount:     optional(inv.TDSAmount),
		BalanceDue:    money.Sub(inv.Total, inv.AdvanceAmount, inv.TDSAmount),
		Notes:         copyString(inv.Notes),
	}

	switch {
	case s.IGST != nil:
		s.TaxMode = TaxModeInterState
	case s.CGST != nil || s.SGST != nil:
		s.TaxMode = TaxModeIntraState
	default:
		s.TaxMode = TaxModeNone
	}

	if business != nil {
		s.Seller = Party{
			Name:    business.Name,
			Email:   copyString(nonEmpty(business.Email)),
			GSTIN:   copyString(business.GSTIN),
			Address: copyString(business.Address),
			Phone:   copyString(business.Phone),
		}
	}
	if client != nil {
		s.Buyer = &Party{
			Name:    client.Name,
			Email:   copyString(client.Email),
			GSTIN:   copyString(client.GSTIN),
			Address: copyString(client.Address),
		}
	}

	s.Lines = make([]Line, 0, len(inv.LineItems))
	for _, item := range inv.LineItems {
		s.Lines = append(s.Lines, Line{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        money.Round2(item.Rate),
			Amount:      money.Round2(item.Amount),
		})
	}
	return s
}

// Row is one labelled amount in the totals block
type Row struct {
	Label  string
	Amount float64
	Strong bool
}

// Figures is the totals block every template prints. Rows holds only the
// sections present on the snapshot, in print order.
type Figures struct {
	Rows     []Row
	TotalDue float64
}

// Figures derives the totals block. Templates must not compute amounts of
// their own.
func (s Snapshot) Figures() Figures {
	var rows []Row
	// Subtotal is the taxable value, already net of any discount
	if s.Discount != nil {
		rows = append(rows,
			Row{Label: "Gross amount", Amount: money.Sum(s.Subtotal, *s.Discount)},
			Row{Label: "Discount", Amount: -*s.Discount},
		)
	}
	rows = append(rows, Row{Label: "Subtotal", Amount: s.Subtotal})
	if s.CGST != nil {
		rows = append(rows, Row{Label: "CGST", Amount: *s.CGST})
	}
	if s.SGST != nil {
		rows = append(rows, Row{Label: "SGST", Amount: *s.SGST})
	}
	if s.IGST != nil {
		rows = append(rows, Row{Label: "IGST", Amount: *s.IGST})
	}
	rows = append(rows, Row{Label: "Total", Amount: s.Total, Strong: true})
	if s.AdvancePaid != nil {
		rows = append(rows, Row{Label: "Advance received", Amount: -*s.AdvancePaid})
	}
	if s.TDSAmount != nil {
		rows = append(rows, Row{Label: "TDS withheld", Amount: -*s.TDSAmount})
	}
	rows = append(rows, Row{Label: "Balance due", Amount: s.BalanceDue, Strong: true})
	return Figures{Rows: rows, TotalDue: s.BalanceDue}
}

func optional(v float64) *float64 {
	v = money.Round2(v)
	if money.IsZero(v) {
		return nil
	}
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
