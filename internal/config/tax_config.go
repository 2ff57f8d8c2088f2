package config

import (
	"fmt"
	"strings"

	"invoicedesk/internal/models"
	"invoicedesk/internal/settlement"

	"github.com/BurntSushi/toml"
)

// DefaultGSTRate is applied when an invoice does not state its own rate
const DefaultGSTRate = 18.0

// TaxConfig is the optional TOML file overriding tax and settlement tables
type TaxConfig struct {
	Settlement   SettlementConfig   `toml:"settlement"`
	GST          GSTConfig          `toml:"gst"`
	TDSSections  map[string]float64 `toml:"tds_sections"`
	PaymentTerms map[string]int     `toml:"payment_terms"`
}

// SettlementConfig holds the rounding margin for settled invoices
type SettlementConfig struct {
	Tolerance *float64 `toml:"tolerance"`
}

// GSTConfig holds the default GST rate in percent
type GSTConfig struct {
	DefaultRate float64 `toml:"default_rate"`
}

// LoadTaxConfig loads the tax configuration from a TOML file. An empty
// filename yields the built-in defaults.
func LoadTaxConfig(filename string) (*TaxConfig, error) {
	config := &TaxConfig{}
	if filename == "" {
		return config, nil
	}
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load tax config file: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("tax config %s: %w", filename, err)
	}
	return config, nil
}

func (c *TaxConfig) validate() error {
	if c.Settlement.Tolerance != nil && *c.Settlement.Tolerance < 0 {
		return fmt.Errorf("settlement.tolerance cannot be negative")
	}
	if c.GST.DefaultRate < 0 || c.GST.DefaultRate > 100 {
		return fmt.Errorf("gst.default_rate must be between 0 and 100")
	}
	for section, rate := range c.TDSSections {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("tds_sections.%s must be between 0 and 100", section)
		}
	}
	for terms, days := range c.PaymentTerms {
		if days < 0 {
			return fmt.Errorf("payment_terms.%s cannot be negative", terms)
		}
	}
	return nil
}

// GSTRate returns the configured default GST rate
func (c *TaxConfig) GSTRate() float64 {
	if c.GST.DefaultRate == 0 {
		return DefaultGSTRate
	}
	return c.GST.DefaultRate
}

// SectionRates returns the built-in TDS sections overlaid with the file's
func (c *TaxConfig) SectionRates() settlement.SectionRates {
	rates := settlement.DefaultSectionRates()
	for section, rate := range c.TDSSections {
		rates[strings.ToUpper(section)] = rate
	}
	return rates
}

// TermDays returns the built-in payment terms overlaid with the file's
func (c *TaxConfig) TermDays() settlement.TermDays {
	days := settlement.DefaultTermDays()
	for terms, n := range c.PaymentTerms {
		days[models.PaymentTerms(terms)] = n
	}
	return days
}

// EngineOptions configures a settlement engine from the file
func (c *TaxConfig) EngineOptions() []settlement.Option {
	opts := []settlement.Option{settlement.WithSectionRates(c.SectionRates())}
	if c.Settlement.Tolerance != nil {
		opts = append(opts, settlement.WithTolerance(*c.Settlement.Tolerance))
	}
	return opts
}
