// Package settlement reconciles invoice totals against cash receipts and tax
// deducted at source. Everything here is pure: callers pass the payment date
// in and submit the resulting update themselves.
package settlement

import (
	"time"

	"invoicedesk/internal/models"
	"invoicedesk/internal/money"

	"github.com/google/uuid"
)

// DefaultSettlementTolerance is the rounding margin, in rupees, under which an
// invoice is still considered fully settled.
const DefaultSettlementTolerance = 1.0

// IsSettled reports whether settled covers total within tolerance.
func IsSettled(total, settled, tolerance float64) bool {
	return settled >= total-tolerance
}

// Payment is a single settlement event. Amounts are for this event only, not
// cumulative.
type Payment struct {
	CashAmount  float64
	TaxWithheld float64
	TaxSection  string
	ReceivedOn  time.Time
}

// InvoiceUpdate carries the new settlement fields of an invoice together with
// the values they were computed from.
type InvoiceUpdate struct {
	InvoiceID         uuid.UUID
	PrevAdvanceAmount float64
	PrevTDSAmount     float64
	AdvanceAmount     float64
	TDSAmount         float64
	Status            models.InvoiceStatus
	IsAdvanceReceived bool
}

// Result is the outcome of applying a payment
type Result struct {
	Update      InvoiceUpdate
	LedgerEntry *models.TDSEntry
	NetDue      float64
	Settled     float64
}

// Engine applies payments to invoices
type Engine struct {
	tolerance float64
	sections  SectionRates
	newID     func() uuid.UUID
}

// Option configures an Engine
type Option func(*Engine)

// WithTolerance overrides DefaultSettlementTolerance
func WithTolerance(tolerance float64) Option {
	return func(e *Engine) {
		if tolerance >= 0 {
			e.tolerance = tolerance
		}
	}
}

// WithSectionRates overrides the built-in TDS section table
func WithSectionRates(rates SectionRates) Option {
	return func(e *Engine) {
		if len(rates) > 0 {
			e.sections = rates
		}
	}
}

// WithIDGenerator sets how ledger entry ids are produced
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates a settlement engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tolerance: DefaultSettlementTolerance,
		sections:  DefaultSectionRates(),
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tolerance returns the rounding margin in use
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// SuggestTDS returns the withholding for section computed on the invoice
// subtotal, so the GST component is never taxed. Unknown sections yield 0.
func (e *Engine) SuggestTDS(invoice *models.Invoice, section string) float64 {
	rate, ok := e.sections.Rate(section)
	if !ok || invoice == nil {
		return 0
	}
	return money.Percent(invoice.Subtotal, rate)
}

// ApplyPayment computes the new settlement state of invoice after payment.
// It never fails: negative or non-finite amounts count as zero and
// overpayment is allowed to produce a negative NetDue.
func (e *Engine) ApplyPayment(invoice *models.Invoice, payment Payment) Result {
	cash := sanitize(payment.CashAmount)
	withheld := sanitize(payment.TaxWithheld)
	if withheld == 0 && payment.TaxSection != "" {
		withheld = e.SuggestTDS(invoice, payment.TaxSection)
	}

	newCashTotal := money.Sum(invoice.AdvanceAmount, cash)
	newTDSTotal := money.Sum(invoice.TDSAmount, withheld)
	settled := money.Sum(newCashTotal, newTDSTotal)

	status := invoice.Status
	switch {
	case IsSettled(invoice.Total, settled, e.tolerance):
		status = models.InvoiceStatusPaid
	case settled > 0:
		status = models.InvoiceStatusPartiallyPaid
	}

	result := Result{
		Update: InvoiceUpdate{
			InvoiceID:         invoice.ID,
			PrevAdvanceAmount: invoice.AdvanceAmount,
			PrevTDSAmount:     invoice.TDSAmount,
			AdvanceAmount:     newCashTotal,
			TDSAmount:         newTDSTotal,
			Status:            status,
			IsAdvanceReceived: invoice.IsAdvanceReceived || newCashTotal > 0,
		},
		NetDue:  money.Sub(invoice.Total, newCashTotal, newTDSTotal),
		Settled: settled,
	}

	if withheld > 0 {
		entry := &models.TDSEntry{
			ID:         e.newID(),
			OwnerID:    invoice.OwnerID,
			BusinessID: invoice.BusinessID,
			ClientID:   invoice.ClientID,
			InvoiceID:  invoice.ID,
			Amount:     withheld,
			FiscalYear: FiscalYear(payment.ReceivedOn),
			RecordedOn: payment.ReceivedOn,
		}
		if payment.TaxSection != "" {
			section := payment.TaxSection
			entry.Section = &section
		}
		result.LedgerEntry = entry
	}

	return result
}
