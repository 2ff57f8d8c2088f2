package snapshot

import (
	"github.com/jung-kurt/gofpdf"
)

// creativeTemplate puts a colour band across the top and the balance due in
// a highlighted box.
type creativeTemplate struct{}

func (creativeTemplate) ID() TemplateID { return TemplateCreative }

func (creativeTemplate) Draw(pdf *gofpdf.Fpdf, s Snapshot, fig Figures) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()

	pdf.SetFillColor(52, 73, 94)
	pdf.Rect(0, 0, pageW, 38, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.SetXY(18, 10)
	pdf.Cell(100, 10, tr(s.Seller.Name))
	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(18, 22)
	pdf.Cell(100, 6, "Invoice "+tr(s.InvoiceNumber))
	pdf.SetXY(pageW-78, 14)
	pdf.CellFormat(60, 6, "Issued "+s.InvoiceDate.Format("02 Jan 2006"), "", 2, "R", false, 0, "")
	pdf.CellFormat(60, 6, "Due "+s.DueDate.Format("02 Jan 2006"), "", 0, "R", false, 0, "")

	pdf.SetTextColor(33, 37, 41)
	pdf.SetMargins(18, 18, 18)
	pdf.SetXY(18, 48)

	if s.Buyer != nil {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(52, 73, 94)
		pdf.Cell(0, 6, "PREPARED FOR")
		pdf.Ln(6)
		pdf.SetTextColor(33, 37, 41)
		pdf.SetFont("Arial", "", 10)
		for _, line := range partyLines(*s.Buyer) {
			pdf.Cell(0, 5, tr(line))
			pdf.Ln(5)
		}
		pdf.Ln(6)
	}

	pdf.SetFillColor(236, 240, 241)
	drawLineTable(pdf, tr, s.Lines, [4]float64{94, 18, 31, 31}, "", true)
	pdf.Ln(6)

	// Every row except the final balance, then the balance in a box
	rows := fig.Rows[:len(fig.Rows)-1]
	drawFigures(pdf, Figures{Rows: rows, TotalDue: fig.TotalDue}, 134, 40, 6)
	pdf.Ln(3)

	balance := fig.Rows[len(fig.Rows)-1]
	pdf.SetFillColor(231, 76, 60)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetX(pageW - 18 - 84)
	pdf.CellFormat(44, 11, balance.Label, "", 0, "L", true, 0, "")
	pdf.CellFormat(40, 11, amount(balance.Amount), "", 1, "R", true, 0, "")

	if s.Notes != nil {
		pdf.Ln(8)
		pdf.SetTextColor(90, 90, 90)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(optionalText(s.Notes)), "", "L", false)
	}
}
