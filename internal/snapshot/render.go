package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ErrUnknownTemplate is returned for a template id with no registered template
var ErrUnknownTemplate = errors.New("unknown document template")

// TemplateID names a document layout
type TemplateID string

const (
	TemplateClassic  TemplateID = "classic"
	TemplateCompact  TemplateID = "compact"
	TemplateCreative TemplateID = "creative"
)

// DefaultTemplate is used when a caller does not pick one
const DefaultTemplate = TemplateClassic

// ContentTypePDF is the media type of rendered documents
const ContentTypePDF = "application/pdf"

// Template lays out a snapshot on a page. Amounts come from fig only.
type Template interface {
	ID() TemplateID
	Draw(pdf *gofpdf.Fpdf, s Snapshot, fig Figures)
}

// Document is a rendered invoice
type Document struct {
	Template    TemplateID
	FileName    string
	ContentType string
	Content     []byte
	TotalDue    float64
}

// Renderer dispatches snapshots to registered templates
type Renderer struct {
	templates map[TemplateID]Template
}

// NewRenderer returns a renderer with the built-in templates registered
func NewRenderer() *Renderer {
	r := &Renderer{templates: make(map[TemplateID]Template)}
	r.Register(classicTemplate{})
	r.Register(compactTemplate{})
	r.Register(creativeTemplate{})
	return r
}

// Register adds or replaces a template
func (r *Renderer) Register(t Template) {
	r.templates[t.ID()] = t
}

// Templates lists registered template ids in name order
func (r *Renderer) Templates() []TemplateID {
	ids := make([]TemplateID, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ParseTemplateID resolves a user supplied id, empty meaning DefaultTemplate
func (r *Renderer) ParseTemplateID(raw string) (TemplateID, error) {
	id := TemplateID(strings.ToLower(strings.TrimSpace(raw)))
	if id == "" {
		return DefaultTemplate, nil
	}
	if _, ok := r.templates[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, raw)
	}
	return id, nil
}

// Render draws s with the template id. Output is byte-for-byte reproducible
// for the same snapshot and template.
func (r *Renderer) Render(id TemplateID, s Snapshot) (*Document, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}

	fig := s.Figures()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(s.InvoiceDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+s.InvoiceNumber, true)
	pdf.SetAuthor(s.Seller.Name, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tmpl.Draw(pdf, s, fig)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return &Document{
		Template:    id,
		FileName:    FileName(s.InvoiceNumber),
		ContentType: ContentTypePDF,
		Content:     buf.Bytes(),
		TotalDue:    fig.TotalDue,
	}, nil
}

var defaultRenderer = NewRenderer()

// Render uses the built-in templates
func Render(id TemplateID, s Snapshot) (*Document, error) {
	return defaultRenderer.Render(id, s)
}

// FileName is the download name for an invoice number
func FileName(invoiceNumber string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(invoiceNumber))
	return fmt.Sprintf("Invoice_%s.pdf", name)
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func optionalText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// partyLines lists the printable lines of a party block
func partyLines(p Party) []string {
	lines := []string{p.Name}
	if p.Address != nil {
		lines = append(lines, *p.Address)
	}
	if p.GSTIN != nil {
		lines = append(lines, "GSTIN: "+*p.GSTIN)
	}
	if p.Email != nil {
		lines = append(lines, *p.Email)
	}
	if p.Phone != nil {
		lines = append(lines, *p.Phone)
	}
	return lines
}

// drawLineTable prints line items with the given column widths
// (description, qty, rate, amount).
func drawLineTable(pdf *gofpdf.Fpdf, tr func(string) string, lines []Line, widths [4]float64, border string, fill bool) {
	headers := [4]string{"Description", "Qty", "Rate", "Amount"}
	aligns := [4]string{"L", "C", "R", "R"}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, border, 0, aligns[i], fill, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, line := range lines {
		pdf.CellFormat(widths[0], 7, tr(line.Description), border, 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%g", line.Quantity), border, 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, amount(line.Rate), border, 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, amount(line.Amount), border, 0, "R", false, 0, "")
		pdf.Ln(7)
	}
}

// drawFigures prints the totals block right aligned
func drawFigures(pdf *gofpdf.Fpdf, fig Figures, labelW, amountW, height float64) {
	for _, row := range fig.Rows {
		if row.Strong {
			pdf.SetFont("Arial", "B", 11)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(labelW, height, row.Label+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(amountW, height, amount(row.Amount), "", 0, "R", false, 0, "")
		pdf.Ln(height)
	}
}
