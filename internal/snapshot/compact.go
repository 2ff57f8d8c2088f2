package snapshot

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// compactTemplate fits a short invoice in the top half of the page
type compactTemplate struct{}

func (compactTemplate) ID() TemplateID { return TemplateCompact }

func (compactTemplate) Draw(pdf *gofpdf.Fpdf, s Snapshot, fig Figures) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetXY(12, 12)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  |  Invoice %s", s.Seller.Name, s.InvoiceNumber)), "B", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	meta := []string{
		"Date " + s.InvoiceDate.Format("2006-01-02"),
		"Due " + s.DueDate.Format("2006-01-02"),
	}
	if s.Seller.GSTIN != nil {
		meta = append(meta, "GSTIN "+*s.Seller.GSTIN)
	}
	pdf.CellFormat(0, 5, strings.Join(meta, "   "), "", 1, "L", false, 0, "")

	if s.Buyer != nil {
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(0, 5, "Billed to", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 4, tr(strings.Join(partyLines(*s.Buyer), ", ")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	drawLineTable(pdf, tr, s.Lines, [4]float64{110, 16, 30, 30}, "B", false)
	pdf.Ln(2)

	drawFigures(pdf, fig, 156, 30, 5)
}
