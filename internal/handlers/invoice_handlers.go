package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/services"
	"invoicedesk/internal/settlement"
	"invoicedesk/internal/snapshot"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices and their documents
type InvoiceHandlers struct {
	invoiceService  services.InvoiceServiceInterface
	documentService services.DocumentServiceInterface
	renderer        *snapshot.Renderer
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceServiceInterface, documentService services.DocumentServiceInterface, renderer *snapshot.Renderer) *InvoiceHandlers {
	if renderer == nil {
		renderer = snapshot.NewRenderer()
	}
	return &InvoiceHandlers{
		invoiceService:  invoiceService,
		documentService: documentService,
		renderer:        renderer,
	}
}

type lineItemRequest struct {
	Description string               `json:"description"`
	Quantity    common.LenientAmount `json:"quantity"`
	Rate        common.LenientAmount `json:"rate"`
}

type createInvoiceRequest struct {
	BusinessID   string                `json:"business_id"`
	ClientID     string                `json:"client_id"`
	InvoiceDate  string                `json:"invoice_date"`
	DueDate      string                `json:"due_date"`
	PaymentTerms string                `json:"payment_terms"`
	TaxMode      string                `json:"tax_mode"`
	GSTRate      *common.LenientAmount `json:"gst_rate"`
	CGST         *common.LenientAmount `json:"cgst"`
	SGST         *common.LenientAmount `json:"sgst"`
	IGST         *common.LenientAmount `json:"igst"`
	Discount     common.LenientAmount  `json:"discount"`
	Draft        bool                  `json:"draft"`
	Notes        *string               `json:"notes"`
	LineItems    []lineItemRequest     `json:"line_items"`
}

type paymentRequest struct {
	CashAmount common.LenientAmount `json:"cash_amount"`
	TDSAmount  common.LenientAmount `json:"tds_amount"`
	TDSSection string               `json:"tds_section"`
	ReceivedOn string               `json:"received_on"`
}

type paymentResponse struct {
	Invoice     *models.Invoice  `json:"invoice"`
	NetDue      float64          `json:"net_due"`
	LedgerEntry *models.TDSEntry `json:"ledger_entry,omitempty"`
}

type dueDateRequest struct {
	InvoiceDate  string `json:"invoice_date"`
	PaymentTerms string `json:"payment_terms"`
	ClientID     string `json:"client_id"`
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	state, ok := requireSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	input, field, err := req.toInput()
	if err != nil {
		return common.SendValidationError(c, field, err.Error())
	}

	invoice, err := h.invoiceService.CreateInvoice(ctx, state, input)
	if err != nil {
		return respondError(c, err, "create invoice")
	}
	return c.JSON(http.StatusCreated, invoice)
}

func (r createInvoiceRequest) toInput() (services.CreateInvoiceInput, string, error) {
	var input services.CreateInvoiceInput
	var err error

	if input.BusinessID, err = common.ValidateOptionalUUID(r.BusinessID, "business_id"); err != nil {
		return input, "business_id", err
	}
	if input.ClientID, err = common.ValidateOptionalUUID(r.ClientID, "client_id"); err != nil {
		return input, "client_id", err
	}
	if input.InvoiceDate, err = common.ParseDate(r.InvoiceDate, "invoice_date"); err != nil {
		return input, "invoice_date", err
	}
	if strings.TrimSpace(r.DueDate) != "" {
		due, err := common.ParseDate(r.DueDate, "due_date")
		if err != nil {
			return input, "due_date", err
		}
		input.DueDate = &due
	}

	switch strings.ToLower(strings.TrimSpace(r.TaxMode)) {
	case "", "intra_state":
		input.GSTType = services.GSTIntraState
	case "inter_state":
		input.GSTType = services.GSTInterState
	default:
		return input, "tax_mode", fmt.Errorf("tax_mode must be intra_state or inter_state")
	}

	input.PaymentTerms = models.PaymentTerms(strings.ToLower(strings.TrimSpace(r.PaymentTerms)))
	input.GSTRate = amountPtr(r.GSTRate)
	input.CGST = amountPtr(r.CGST)
	input.SGST = amountPtr(r.SGST)
	input.IGST = amountPtr(r.IGST)
	input.Discount = r.Discount.Float64()
	input.Draft = r.Draft
	input.Notes = r.Notes

	for _, item := range r.LineItems {
		input.LineItems = append(input.LineItems, services.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity.Float64(),
			Rate:        item.Rate.Float64(),
		})
	}
	return input, "", nil
}

func amountPtr(a *common.LenientAmount) *float64 {
	if a == nil {
		return nil
	}
	v := a.Float64()
	return &v
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request().Context(), ownerID, invoiceID)
	if err != nil {
		return respondError(c, err, "retrieve invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}

	if err := h.invoiceService.DeleteInvoice(c.Request().Context(), ownerID, invoiceID); err != nil {
		return respondError(c, err, "delete invoice")
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordPayment handles POST /invoices/:id/payments
func (h *InvoiceHandlers) RecordPayment(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}

	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	receivedOn, err := common.ParseDate(req.ReceivedOn, "received_on")
	if err != nil {
		return common.SendValidationError(c, "received_on", err.Error())
	}

	outcome, err := h.invoiceService.RecordPayment(c.Request().Context(), ownerID, invoiceID, settlement.Payment{
		CashAmount:  req.CashAmount.Float64(),
		TaxWithheld: req.TDSAmount.Float64(),
		TaxSection:  strings.ToUpper(strings.TrimSpace(req.TDSSection)),
		ReceivedOn:  receivedOn,
	})
	if err != nil {
		return respondError(c, err, "record payment")
	}

	return c.JSON(http.StatusOK, paymentResponse{
		Invoice:     outcome.Invoice,
		NetDue:      outcome.NetDue,
		LedgerEntry: outcome.LedgerEntry,
	})
}

// ComputeDueDate handles POST /invoices/due-date
func (h *InvoiceHandlers) ComputeDueDate(c echo.Context) error {
	state, ok := requireSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req dueDateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	invoiceDate, err := common.ParseDate(req.InvoiceDate, "invoice_date")
	if err != nil {
		return common.SendValidationError(c, "invoice_date", err.Error())
	}
	clientID, err := common.ValidateOptionalUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendValidationError(c, "client_id", err.Error())
	}

	due, err := h.invoiceService.ComputeDueDate(c.Request().Context(), state.OwnerID(), services.DueDateInput{
		InvoiceDate:  invoiceDate,
		PaymentTerms: models.PaymentTerms(strings.ToLower(strings.TrimSpace(req.PaymentTerms))),
		ClientID:     clientID,
	})
	if err != nil {
		return respondError(c, err, "compute due date")
	}
	return c.JSON(http.StatusOK, map[string]string{"due_date": due.Format(common.DateLayout)})
}

// DownloadDocument handles GET /invoices/:id/document?template=
func (h *InvoiceHandlers) DownloadDocument(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}
	template, err := h.renderer.ParseTemplateID(c.QueryParam("template"))
	if err != nil {
		return common.SendValidationError(c, "template", err.Error())
	}

	doc, err := h.documentService.Render(c.Request().Context(), ownerID, invoiceID, template)
	if err != nil {
		return respondError(c, err, "render invoice")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Response().Header().Set("X-Total-Due", fmt.Sprintf("%.2f", doc.TotalDue))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Content)
}

// ArchiveDocument handles POST /invoices/:id/document/archive
func (h *InvoiceHandlers) ArchiveDocument(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}
	template, err := h.renderer.ParseTemplateID(c.QueryParam("template"))
	if err != nil {
		return common.SendValidationError(c, "template", err.Error())
	}

	ref, err := h.documentService.RequestArchive(c.Request().Context(), ownerID, invoiceID, template)
	if err != nil {
		return respondError(c, err, "archive invoice")
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"reference": ref,
		"template":  string(template),
	})
}

// DocumentLink handles GET /invoices/:id/document/link
func (h *InvoiceHandlers) DocumentLink(c echo.Context) error {
	ownerID, invoiceID, ok := h.invoiceTarget(c)
	if !ok {
		return nil
	}
	template, err := h.renderer.ParseTemplateID(c.QueryParam("template"))
	if err != nil {
		return common.SendValidationError(c, "template", err.Error())
	}

	url, err := h.documentService.DocumentLink(c.Request().Context(), ownerID, invoiceID, template)
	if err != nil {
		return respondError(c, err, "link invoice document")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url, "template": string(template)})
}

// invoiceTarget resolves the caller and the :id path parameter. When it
// returns false the error response has already been written.
func (h *InvoiceHandlers) invoiceTarget(c echo.Context) (uuid.UUID, uuid.UUID, bool) {
	state, ok := requireSession(c)
	if !ok {
		_ = common.SendUnauthorizedError(c)
		return uuid.Nil, uuid.Nil, false
	}
	invoiceID, err := common.ValidateUUID(c.Param("id"), "invoice_id")
	if err != nil {
		_ = common.SendValidationError(c, "invoice_id", err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return state.OwnerID(), invoiceID, true
}
