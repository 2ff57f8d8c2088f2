package snapshot

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

type classicTemplate struct{}

func (classicTemplate) ID() TemplateID { return TemplateClassic }

func (classicTemplate) Draw(pdf *gofpdf.Fpdf, s Snapshot, fig Figures) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	marginX, marginY := 20.0, 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetXY(marginX, marginY)

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.Cell(0, 10, "TAX INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Invoice Number: %s", tr(s.InvoiceNumber)))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice Date: %s", s.InvoiceDate.Format("02-Jan-2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Due Date: %s", s.DueDate.Format("02-Jan-2006")))
	pdf.Ln(10)

	// Seller and buyer side by side
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(85, 7, "FROM:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	for _, line := range partyLines(s.Seller) {
		pdf.Cell(85, 5, tr(line))
		pdf.Ln(5)
	}
	bottom := pdf.GetY()

	if s.Buyer != nil {
		pdf.SetXY(marginX+90, top)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(80, 7, "BILL TO:")
		pdf.SetXY(marginX+90, top+7)
		pdf.SetFont("Arial", "", 10)
		for _, line := range partyLines(*s.Buyer) {
			pdf.Cell(80, 5, tr(line))
			pdf.SetXY(marginX+90, pdf.GetY()+5)
		}
		if pdf.GetY() > bottom {
			bottom = pdf.GetY()
		}
	}
	pdf.SetXY(marginX, bottom+8)

	// Items
	pdf.SetFillColor(240, 240, 240)
	drawLineTable(pdf, tr, s.Lines, [4]float64{90, 20, 30, 30}, "1", true)
	pdf.Ln(5)

	// Totals
	drawFigures(pdf, fig, 130, 40, 6)

	if s.Notes != nil {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 6, "Notes:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(optionalText(s.Notes)), "", "L", false)
	}

	// Footer
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated invoice.")
}
