package settlement

import (
	"fmt"
	"strings"
	"time"

	"invoicedesk/internal/models"
)

// TermDays maps payment terms to their credit period in days
type TermDays map[models.PaymentTerms]int

// DefaultTermDays returns the built-in payment term table
func DefaultTermDays() TermDays {
	return TermDays{
		models.PaymentTermsDueOnReceipt: 0,
		models.PaymentTermsNet15:        15,
		models.PaymentTermsNet30:        30,
		models.PaymentTermsNet45:        45,
		models.PaymentTermsNet60:        60,
	}
}

// ValidPaymentTerms reports whether terms is a known value
func ValidPaymentTerms(terms models.PaymentTerms) bool {
	if terms == models.PaymentTermsCustom {
		return true
	}
	_, ok := DefaultTermDays()[terms]
	return ok
}

// Days resolves the credit period for terms. A client with its own custom day
// count always wins over the generic table.
func (t TermDays) Days(terms models.PaymentTerms, client *models.Client) int {
	if HasCustomDays(client) {
		return *client.CustomTermDays
	}
	if terms == "" && client != nil && client.PaymentTerms != nil {
		terms = *client.PaymentTerms
	}
	if days, ok := t[terms]; ok {
		return days
	}
	return 0
}

// HasCustomDays reports whether client carries its own credit period
func HasCustomDays(client *models.Client) bool {
	return client != nil && client.CustomTermDays != nil && *client.CustomTermDays >= 0
}

// DueDate derives the due date from the invoice date and payment terms
func (t TermDays) DueDate(invoiceDate time.Time, terms models.PaymentTerms, client *models.Client) time.Time {
	return invoiceDate.AddDate(0, 0, t.Days(terms, client))
}

// DueDate uses the default term table
func DueDate(invoiceDate time.Time, terms models.PaymentTerms, client *models.Client) time.Time {
	return DefaultTermDays().DueDate(invoiceDate, terms, client)
}

// IsOverdue reports whether an outstanding invoice is past its due date at now
func IsOverdue(invoice *models.Invoice, now time.Time) bool {
	if invoice == nil || invoice.DueDate.IsZero() {
		return false
	}
	if !invoice.Status.IsOutstanding() || invoice.Status == models.InvoiceStatusOverdue {
		return false
	}
	return dateOnly(now).After(dateOnly(invoice.DueDate))
}

// FiscalYear labels the April-to-March fiscal year containing t, e.g.
// 2024-02-15 is "2023-2024" and 2024-04-01 is "2024-2025".
func FiscalYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// ParseFiscalYear validates a "YYYY-YYYY" label
func ParseFiscalYear(label string) (string, error) {
	var start, end int
	if _, err := fmt.Sscanf(strings.TrimSpace(label), "%d-%d", &start, &end); err != nil {
		return "", fmt.Errorf("fiscal year must look like 2024-2025")
	}
	if end != start+1 {
		return "", fmt.Errorf("fiscal year %q must span consecutive years", label)
	}
	return fmt.Sprintf("%d-%d", start, end), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
