package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the payment lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "Draft"
	InvoiceStatusUnpaid        InvoiceStatus = "Unpaid"
	InvoiceStatusSent          InvoiceStatus = "Sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PartiallyPaid"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
)

// IsOutstanding reports whether an invoice in this status still expects money.
func (s InvoiceStatus) IsOutstanding() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// PaymentTerms names the credit period granted to a client
type PaymentTerms string

const (
	PaymentTermsDueOnReceipt PaymentTerms = "due_on_receipt"
	PaymentTermsNet15        PaymentTerms = "net_15"
	PaymentTermsNet30        PaymentTerms = "net_30"
	PaymentTermsNet45        PaymentTerms = "net_45"
	PaymentTermsNet60        PaymentTerms = "net_60"
	PaymentTermsCustom       PaymentTerms = "custom"
)

type Invoice struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	OwnerID           uuid.UUID     `json:"owner_id" db:"owner_id"`
	BusinessID        uuid.UUID     `json:"business_id" db:"business_id"`
	ClientID          *uuid.UUID    `json:"client_id" db:"client_id"`
	InvoiceNumber     string        `json:"invoice_number" db:"invoice_number"`
	Subtotal          float64       `json:"subtotal" db:"subtotal"`
	Discount          float64       `json:"discount" db:"discount"`
	CGST              float64       `json:"cgst" db:"cgst"`
	SGST              float64       `json:"sgst" db:"sgst"`
	IGST              float64       `json:"igst" db:"igst"`
	Total             float64       `json:"total" db:"total"`
	InvoiceDate       time.Time     `json:"invoice_date" db:"invoice_date"`
	DueDate           time.Time     `json:"due_date" db:"due_date"`
	PaymentTerms      PaymentTerms  `json:"payment_terms" db:"payment_terms"`
	Status            InvoiceStatus `json:"status" db:"status"`
	AdvanceAmount     float64       `json:"advance_amount" db:"advance_amount"`
	TDSAmount         float64       `json:"tds_amount" db:"tds_amount"`
	IsAdvanceReceived bool          `json:"is_advance_received" db:"is_advance_received"`
	Notes             *string       `json:"notes" db:"notes"`
	LineItems         []LineItem    `json:"line_items"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

type LineItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Position    int       `json:"position" db:"position"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Rate        float64   `json:"rate" db:"rate"`
	Amount      float64   `json:"amount" db:"amount"`
}

// Attachment is a stored file that belongs to an invoice
type Attachment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
