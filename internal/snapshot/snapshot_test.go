package snapshot

import (
	"bytes"
	"testing"
	"time"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() (*models.Invoice, *models.Business, *models.Client) {
	gstin := "29ABCDE1234F1Z5"
	address := "12 MG Road, Bengaluru"
	clientEmail := "accounts@client.example"
	notes := "Thank you for your business"
	clientID := uuid.New()
	invoiceID := uuid.New()

	inv := &models.Invoice{
		ID:            invoiceID,
		ClientID:      &clientID,
		InvoiceNumber: "INV-0042",
		Subtotal:      10000,
		CGST:          900,
		SGST:          900,
		Total:         11800,
		InvoiceDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		PaymentTerms:  models.PaymentTermsNet30,
		Status:        models.InvoiceStatusPartiallyPaid,
		AdvanceAmount: 5000,
		Notes:         &notes,
		LineItems: []models.LineItem{
			{Position: 0, Description: "Design", Quantity: 2, Rate: 2500, Amount: 5000},
			{Position: 1, Description: "Build", Quantity: 1, Rate: 5000, Amount: 5000},
		},
	}
	business := &models.Business{Name: "Acme Studio", Email: "hello@acme.example", GSTIN: &gstin, Address: &address}
	client := &models.Client{ID: clientID, Name: "Globex", Email: &clientEmail}
	return inv, business, client
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inv, business, client := sampleGraph()
	first := Normalize(inv, business, client)
	second := Normalize(inv, business, client)
	assert.Equal(t, first, second)
}

func TestNormalizeOmitsZeroFields(t *testing.T) {
	inv, business, client := sampleGraph()
	s := Normalize(inv, business, client)

	assert.Equal(t, SchemaVersion, s.SchemaVersion)
	assert.Nil(t, s.Discount)
	assert.Nil(t, s.IGST)
	assert.Nil(t, s.TDSAmount)
	require.NotNil(t, s.CGST)
	assert.Equal(t, 900.0, *s.CGST)
	require.NotNil(t, s.AdvancePaid)
	assert.Equal(t, 5000.0, *s.AdvancePaid)
	assert.Equal(t, TaxModeIntraState, s.TaxMode)
}

func TestNormalizeRecomputesBalanceDue(t *testing.T) {
	inv, business, client := sampleGraph()
	inv.TDSAmount = 1000
	s := Normalize(inv, business, client)
	assert.Equal(t, 5800.0, s.BalanceDue)
}

func TestNormalizeDoesNotAliasInputs(t *testing.T) {
	inv, business, client := sampleGraph()
	s := Normalize(inv, business, client)

	inv.LineItems[0].Description = "changed"
	*inv.Notes = "changed"
	*business.GSTIN = "changed"
	inv.Total = 1

	assert.Equal(t, "Design", s.Lines[0].Description)
	assert.Equal(t, "Thank you for your business", *s.Notes)
	assert.Equal(t, "29ABCDE1234F1Z5", *s.Seller.GSTIN)
	assert.Equal(t, 11800.0, s.Total)
}

func TestNormalizeInterStateWithoutClient(t *testing.T) {
	inv, business, _ := sampleGraph()
	inv.CGST, inv.SGST, inv.IGST = 0, 0, 1800
	s := Normalize(inv, business, nil)
	assert.Equal(t, TaxModeInterState, s.TaxMode)
	assert.Nil(t, s.Buyer)
	assert.Nil(t, s.CGST)
}

func TestFiguresRows(t *testing.T) {
	inv, business, client := sampleGraph()
	fig := Normalize(inv, business, client).Figures()

	var labels []string
	for _, row := range fig.Rows {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"Subtotal", "CGST", "SGST", "Total", "Advance received", "Balance due"}, labels)
	assert.Equal(t, 6800.0, fig.TotalDue)
}

func TestTemplatesAgreeOnTotalDue(t *testing.T) {
	inv, business, client := sampleGraph()
	inv.TDSAmount = 680
	s := Normalize(inv, business, client)
	r := NewRenderer()

	require.Equal(t, []TemplateID{TemplateClassic, TemplateCompact, TemplateCreative}, r.Templates())
	for _, id := range r.Templates() {
		doc, err := r.Render(id, s)
		require.NoError(t, err, id)
		assert.Equal(t, s.BalanceDue, doc.TotalDue, id)
		assert.Equal(t, "Invoice_INV-0042.pdf", doc.FileName)
		assert.Equal(t, ContentTypePDF, doc.ContentType)
		assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")), id)
	}
}

func TestRenderIsReproducible(t *testing.T) {
	inv, business, client := sampleGraph()
	s := Normalize(inv, business, client)

	first, err := Render(TemplateCreative, s)
	require.NoError(t, err)
	second, err := Render(TemplateCreative, s)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)
}

func TestRenderUnknownTemplate(t *testing.T) {
	inv, business, client := sampleGraph()
	_, err := Render("modern", Normalize(inv, business, client))
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestParseTemplateID(t *testing.T) {
	r := NewRenderer()

	id, err := r.ParseTemplateID("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, id)

	id, err = r.ParseTemplateID(" Compact ")
	require.NoError(t, err)
	assert.Equal(t, TemplateCompact, id)

	_, err = r.ParseTemplateID("fancy")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestFileNameReplacesPathSeparators(t *testing.T) {
	assert.Equal(t, "Invoice_2024-15.pdf", FileName("2024/15"))
}

func TestFiguresShowDiscountAgainstGross(t *testing.T) {
	inv, business, client := sampleGraph()
	inv.Discount = 1000
	inv.Subtotal = 9000
	inv.CGST, inv.SGST = 810, 810
	inv.Total = 10620
	inv.AdvanceAmount = 0

	fig := Normalize(inv, business, client).Figures()
	require.Len(t, fig.Rows, 7)
	assert.Equal(t, Row{Label: "Gross amount", Amount: 10000}, fig.Rows[0])
	assert.Equal(t, Row{Label: "Discount", Amount: -1000}, fig.Rows[1])
	assert.Equal(t, Row{Label: "Subtotal", Amount: 9000}, fig.Rows[2])
	assert.Equal(t, 10620.0, fig.TotalDue)
}
