package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/money"
	"invoicedesk/internal/repositories"
	"invoicedesk/internal/session"
	"invoicedesk/internal/settlement"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GSTType represents the type of GST applicable
type GSTType int

const (
	GSTIntraState GSTType = iota // CGST + SGST
	GSTInterState                // IGST
)

// TaxRules are the tables invoice creation consults
type TaxRules struct {
	GSTRate  float64
	TermDays settlement.TermDays
}

// LineItemInput is one billed line as entered by the user
type LineItemInput struct {
	Description string
	Quantity    float64
	Rate        float64
}

// CreateInvoiceInput describes a new invoice. BusinessID falls back to the
// session's active business. Explicit CGST/SGST/IGST amounts win over GSTRate.
type CreateInvoiceInput struct {
	BusinessID   *uuid.UUID
	ClientID     *uuid.UUID
	InvoiceDate  time.Time
	DueDate      *time.Time
	PaymentTerms models.PaymentTerms
	GSTType      GSTType
	GSTRate      *float64
	CGST         *float64
	SGST         *float64
	IGST         *float64
	Discount     float64
	Draft        bool
	Notes        *string
	LineItems    []LineItemInput
}

// DueDateInput asks for the due date a new invoice would get
type DueDateInput struct {
	InvoiceDate  time.Time
	PaymentTerms models.PaymentTerms
	ClientID     *uuid.UUID
}

// PaymentOutcome is the committed result of recording a payment
type PaymentOutcome struct {
	Invoice     *models.Invoice
	NetDue      float64
	LedgerEntry *models.TDSEntry
}

// InvoiceServiceInterface defines the interface for invoice service
type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, state *session.State, input CreateInvoiceInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) error
	RecordPayment(ctx context.Context, ownerID, invoiceID uuid.UUID, payment settlement.Payment) (*PaymentOutcome, error)
	ComputeDueDate(ctx context.Context, ownerID uuid.UUID, input DueDateInput) (time.Time, error)
	MarkOverdueInvoices(ctx context.Context, asOf time.Time, batchSize int) (int, error)
	CalculateGSTComponents(amount float64, gstRate float64, gstType GSTType) (cgst, sgst, igst float64)
}

type invoiceService struct {
	invoiceRepo    repositories.InvoiceRepository
	businessRepo   repositories.BusinessRepository
	clientRepo     repositories.ClientRepository
	attachmentRepo repositories.AttachmentRepository
	submitter      store.Submitter
	minioSvc       MinioService
	bucket         string
	engine         *settlement.Engine
	tax            TaxRules
	logger         zerolog.Logger
	now            func() time.Time
	newID          func() uuid.UUID
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	businessRepo repositories.BusinessRepository,
	clientRepo repositories.ClientRepository,
	attachmentRepo repositories.AttachmentRepository,
	submitter store.Submitter,
	minioSvc MinioService,
	bucket string,
	engine *settlement.Engine,
	tax TaxRules,
	logger zerolog.Logger,
) InvoiceServiceInterface {
	if tax.TermDays == nil {
		tax.TermDays = settlement.DefaultTermDays()
	}
	return &invoiceService{
		invoiceRepo:    invoiceRepo,
		businessRepo:   businessRepo,
		clientRepo:     clientRepo,
		attachmentRepo: attachmentRepo,
		submitter:      submitter,
		minioSvc:       minioSvc,
		bucket:         bucket,
		engine:         engine,
		tax:            tax,
		logger:         logger.With().Str("component", "invoice_service").Logger(),
		now:            time.Now,
		newID:          uuid.New,
	}
}

// CreateInvoice validates input, derives totals and the due date, and
// submits the invoice with its line items in one transaction.
func (s *invoiceService) CreateInvoice(ctx context.Context, state *session.State, input CreateInvoiceInput) (*models.Invoice, error) {
	if state == nil {
		return nil, errors.New("create invoice: no session")
	}
	ownerID := state.OwnerID()

	businessID := input.BusinessID
	if businessID == nil {
		if active, ok := state.ActiveBusiness(); ok {
			businessID = &active
		}
	}
	if businessID == nil {
		return nil, invalid("business_id", "business_id is required")
	}
	if input.ClientID == nil {
		return nil, invalid("client_id", "client_id is required")
	}
	if input.InvoiceDate.IsZero() {
		return nil, invalid("invoice_date", "invoice_date is required")
	}
	if len(input.LineItems) == 0 {
		return nil, invalid("line_items", "at least one line item is required")
	}
	if input.PaymentTerms != "" && !settlement.ValidPaymentTerms(input.PaymentTerms) {
		return nil, invalid("payment_terms", "unknown payment terms %q", input.PaymentTerms)
	}
	if hasAmount(input.IGST) && (hasAmount(input.CGST) || hasAmount(input.SGST)) {
		return nil, invalid("igst", "IGST cannot be combined with CGST/SGST")
	}
	if err := common.ValidateOptionalString(input.Notes, "notes", 2000); err != nil {
		return nil, invalid("notes", "%s", err.Error())
	}

	business, err := s.ownedBusiness(ctx, ownerID, *businessID)
	if err != nil {
		return nil, err
	}
	client, err := s.ownedClient(ctx, ownerID, *input.ClientID)
	if err != nil {
		return nil, err
	}
	if client.BusinessID != nil && *client.BusinessID != business.ID {
		return nil, invalid("client_id", "client belongs to another business")
	}
	if err := common.ValidateGSTIN(common.SafeString(business.GSTIN), "business GSTIN"); err != nil {
		return nil, invalid("business_id", "%s", err.Error())
	}
	if err := common.ValidateGSTIN(common.SafeString(client.GSTIN), "client GSTIN"); err != nil {
		return nil, invalid("client_id", "%s", err.Error())
	}

	invoiceID := s.newID()
	items, gross, err := s.buildLineItems(invoiceID, input.LineItems)
	if err != nil {
		return nil, err
	}

	discount := money.Round2(max(input.Discount, 0))
	if discount > gross {
		return nil, invalid("discount", "discount cannot exceed the line item total")
	}
	subtotal := money.Sub(gross, discount)

	cgst, sgst, igst, err := s.taxAmounts(subtotal, input)
	if err != nil {
		return nil, err
	}

	dueDate := s.tax.TermDays.DueDate(input.InvoiceDate, input.PaymentTerms, client)
	if input.DueDate != nil {
		if input.DueDate.Before(input.InvoiceDate) {
			return nil, invalid("due_date", "due_date cannot be before invoice_date")
		}
		dueDate = *input.DueDate
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, business.ID, input.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	status := models.InvoiceStatusUnpaid
	if input.Draft {
		status = models.InvoiceStatusDraft
	}

	invoice := &models.Invoice{
		ID:            invoiceID,
		OwnerID:       ownerID,
		BusinessID:    business.ID,
		ClientID:      &client.ID,
		InvoiceNumber: invoiceNumber,
		Subtotal:      subtotal,
		Discount:      discount,
		CGST:          cgst,
		SGST:          sgst,
		IGST:          igst,
		Total:         money.Sum(subtotal, cgst, sgst, igst),
		InvoiceDate:   input.InvoiceDate,
		DueDate:       dueDate,
		PaymentTerms:  resolveTerms(input.PaymentTerms, client),
		Status:        status,
		Notes:         input.Notes,
		LineItems:     items,
	}

	if err := s.submitter.Submit(ctx, store.CreateInvoice{Invoice: invoice}); err != nil {
		return nil, fmt.Errorf("create invoice %s: %w", invoiceNumber, err)
	}

	s.logger.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("invoice_number", invoiceNumber).
		Float64("total", invoice.Total).
		Msg("invoice created")
	return invoice, nil
}

// GetInvoice returns an invoice with its line items
func (s *invoiceService) GetInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, ownerID, invoiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}

// DeleteInvoice removes the invoice, its line items and attachment rows in one
// transaction, then removes the stored attachment objects.
func (s *invoiceService) DeleteInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, ownerID, invoiceID); err != nil {
		return err
	}

	attachments, err := s.attachmentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}

	err = s.submitter.Submit(ctx, store.DeleteInvoice{InvoiceID: invoiceID, OwnerID: ownerID})
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	// The rows are gone; a leftover object is only wasted space.
	for _, attachment := range attachments {
		if err := s.minioSvc.Remove(ctx, s.bucket, attachment.ObjectKey); err != nil {
			s.logger.Warn().Err(err).
				Str("invoice_id", invoiceID.String()).
				Str("object_key", attachment.ObjectKey).
				Msg("failed to remove attachment object")
		}
	}

	s.logger.Info().Str("invoice_id", invoiceID.String()).Int("attachments", len(attachments)).Msg("invoice deleted")
	return nil
}

// RecordPayment applies a payment through the settlement engine and submits
// the new totals together with any ledger entry. The returned invoice
// reflects the committed state; on error nothing changed.
func (s *invoiceService) RecordPayment(ctx context.Context, ownerID, invoiceID uuid.UUID, payment settlement.Payment) (*PaymentOutcome, error) {
	invoice, err := s.GetInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if payment.ReceivedOn.IsZero() {
		payment.ReceivedOn = s.now()
	}

	result := s.engine.ApplyPayment(invoice, payment)

	ops := []store.Operation{store.UpdateSettlement{
		InvoiceID:         result.Update.InvoiceID,
		ExpectedAdvance:   result.Update.PrevAdvanceAmount,
		ExpectedTDS:       result.Update.PrevTDSAmount,
		AdvanceAmount:     result.Update.AdvanceAmount,
		TDSAmount:         result.Update.TDSAmount,
		Status:            result.Update.Status,
		IsAdvanceReceived: result.Update.IsAdvanceReceived,
	}}
	if result.LedgerEntry != nil {
		ops = append(ops, store.InsertTDSEntry{Entry: *result.LedgerEntry})
	}

	if err := s.submitter.Submit(ctx, ops...); err != nil {
		return nil, fmt.Errorf("record payment on %s: %w", invoice.InvoiceNumber, err)
	}

	updated := *invoice
	updated.AdvanceAmount = result.Update.AdvanceAmount
	updated.TDSAmount = result.Update.TDSAmount
	updated.Status = result.Update.Status
	updated.IsAdvanceReceived = result.Update.IsAdvanceReceived

	s.logger.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("status", string(updated.Status)).
		Float64("net_due", result.NetDue).
		Bool("ledger_entry", result.LedgerEntry != nil).
		Msg("payment recorded")

	return &PaymentOutcome{Invoice: &updated, NetDue: result.NetDue, LedgerEntry: result.LedgerEntry}, nil
}

// ComputeDueDate previews the due date for an invoice date, terms and client
func (s *invoiceService) ComputeDueDate(ctx context.Context, ownerID uuid.UUID, input DueDateInput) (time.Time, error) {
	if input.InvoiceDate.IsZero() {
		return time.Time{}, invalid("invoice_date", "invoice_date is required")
	}
	if input.PaymentTerms != "" && !settlement.ValidPaymentTerms(input.PaymentTerms) {
		return time.Time{}, invalid("payment_terms", "unknown payment terms %q", input.PaymentTerms)
	}

	var client *models.Client
	if input.ClientID != nil {
		c, err := s.ownedClient(ctx, ownerID, *input.ClientID)
		if err != nil {
			return time.Time{}, err
		}
		client = c
	}
	return s.tax.TermDays.DueDate(input.InvoiceDate, input.PaymentTerms, client), nil
}

// MarkOverdueInvoices flags up to batchSize outstanding invoices whose due
// date is before asOf. It returns how many were submitted.
func (s *invoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	y, m, d := asOf.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())

	ids, err := s.invoiceRepo.ListOverdueCandidates(ctx, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list overdue candidates: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	ops := make([]store.Operation, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, store.MarkInvoiceOverdue{InvoiceID: id})
	}
	if err := s.submitter.Submit(ctx, ops...); err != nil {
		return 0, fmt.Errorf("mark invoices overdue: %w", err)
	}

	s.logger.Info().Int("invoices", len(ids)).Time("cutoff", cutoff).Msg("invoices marked overdue")
	return len(ids), nil
}

// CalculateGSTComponents calculates GST components for a given amount, rate, and GST type
func (s *invoiceService) CalculateGSTComponents(amount float64, gstRate float64, gstType GSTType) (cgst, sgst, igst float64) {
	if amount <= 0 || gstRate <= 0 {
		return 0, 0, 0
	}

	gstAmount := money.Percent(amount, gstRate)

	if gstType == GSTInterState {
		return 0, 0, gstAmount
	}
	cgst = money.Percent(amount, gstRate/2)
	return cgst, money.Sub(gstAmount, cgst), 0
}

func (s *invoiceService) taxAmounts(subtotal float64, input CreateInvoiceInput) (cgst, sgst, igst float64, err error) {
	if input.CGST != nil || input.SGST != nil || input.IGST != nil {
		cgst = money.Round2(max(common.SafeFloat64(input.CGST), 0))
		sgst = money.Round2(max(common.SafeFloat64(input.SGST), 0))
		igst = money.Round2(max(common.SafeFloat64(input.IGST), 0))
		return cgst, sgst, igst, nil
	}

	rate := s.tax.GSTRate
	if input.GSTRate != nil {
		rate = *input.GSTRate
	}
	if rate < 0 || rate > 100 {
		return 0, 0, 0, invalid("gst_rate", "GST rate must be between 0 and 100")
	}
	cgst, sgst, igst = s.CalculateGSTComponents(subtotal, rate, input.GSTType)
	return cgst, sgst, igst, nil
}

func (s *invoiceService) buildLineItems(invoiceID uuid.UUID, inputs []LineItemInput) ([]models.LineItem, float64, error) {
	items := make([]models.LineItem, 0, len(inputs))
	amounts := make([]float64, 0, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("line_items[%d]", i)
		if err := common.ValidateRequiredString(in.Description, field+".description"); err != nil {
			return nil, 0, invalid(field+".description", "%s", err.Error())
		}
		if in.Quantity <= 0 {
			return nil, 0, invalid(field+".quantity", "quantity must be positive")
		}
		if in.Rate < 0 {
			return nil, 0, invalid(field+".rate", "rate cannot be negative")
		}
		amount := money.Mul(in.Quantity, in.Rate)
		items = append(items, models.LineItem{
			ID:          s.newID(),
			InvoiceID:   invoiceID,
			Position:    i,
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      amount,
		})
		amounts = append(amounts, amount)
	}
	return items, money.Sum(amounts...), nil
}

func (s *invoiceService) ownedBusiness(ctx context.Context, ownerID, businessID uuid.UUID) (*models.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("business_id", "business not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	if business.OwnerID == nil || *business.OwnerID != ownerID {
		return nil, invalid("business_id", "business not found")
	}
	if business.Status == models.BusinessStatusDisabled {
		return nil, invalid("business_id", "business is disabled")
	}
	return business, nil
}

func (s *invoiceService) ownedClient(ctx context.Context, ownerID, clientID uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, ownerID, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("client_id", "client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	return client, nil
}

// resolveTerms names the terms a due date was derived from
func resolveTerms(terms models.PaymentTerms, client *models.Client) models.PaymentTerms {
	if settlement.HasCustomDays(client) {
		return models.PaymentTermsCustom
	}
	if terms != "" {
		return terms
	}
	if client != nil && client.PaymentTerms != nil {
		return *client.PaymentTerms
	}
	return models.PaymentTermsDueOnReceipt
}

func hasAmount(v *float64) bool {
	return v != nil && !money.IsZero(*v)
}
