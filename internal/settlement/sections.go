package settlement

import "strings"

// SectionRates maps an Income Tax Act TDS section to its withholding rate in
// percent.
type SectionRates map[string]float64

// DefaultSectionRates returns the common TDS sections seen on service invoices
func DefaultSectionRates() SectionRates {
	return SectionRates{
		"194C":  2,   // contractors, other than individual/HUF
		"194C1": 1,   // contractors, individual/HUF
		"194H":  5,   // commission or brokerage
		"194I":  10,  // rent of land, building, furniture
		"194IA": 1,   // transfer of immovable property
		"194J":  10,  // professional or technical fees
		"194JA": 2,   // technical services
		"194Q":  0.1, // purchase of goods
	}
}

// Rate looks up a section, ignoring case and spaces
func (r SectionRates) Rate(section string) (float64, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(section), " ", ""))
	key = strings.TrimPrefix(key, "SECTION")
	rate, ok := r[key]
	return rate, ok
}
