package models

import (
	"time"

	"github.com/google/uuid"
)

// TDSEntry is one line of the tax-deducted-at-source ledger. Entries are
// appended by settlement and never updated.
type TDSEntry struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OwnerID    uuid.UUID  `json:"owner_id" db:"owner_id"`
	BusinessID uuid.UUID  `json:"business_id" db:"business_id"`
	ClientID   *uuid.UUID `json:"client_id" db:"client_id"`
	InvoiceID  uuid.UUID  `json:"invoice_id" db:"invoice_id"`
	Amount     float64    `json:"amount" db:"amount"`
	Section    *string    `json:"section" db:"section"`
	FiscalYear string     `json:"fiscal_year" db:"fiscal_year"`
	RecordedOn time.Time  `json:"recorded_on" db:"recorded_on"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// TDSFilter narrows a ledger listing. Nil fields are not applied.
type TDSFilter struct {
	OwnerID    uuid.UUID
	BusinessID *uuid.UUID
	ClientID   *uuid.UUID
	FiscalYear *string
	Limit      int
	Offset     int
}
