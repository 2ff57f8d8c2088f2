package settlement

import (
	"math"
	"testing"
	"time"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
	engine   *Engine
	entryID  uuid.UUID
	clientID uuid.UUID
	invoice  *models.Invoice
}

func (suite *EngineTestSuite) SetupTest() {
	suite.entryID = uuid.New()
	suite.clientID = uuid.New()
	suite.engine = NewEngine(WithIDGenerator(func() uuid.UUID { return suite.entryID }))
	suite.invoice = &models.Invoice{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		BusinessID: uuid.New(),
		ClientID:   &suite.clientID,
		Subtotal:   10000,
		CGST:       900,
		SGST:       900,
		Total:      11800,
		Status:     models.InvoiceStatusUnpaid,
	}
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) apply(inv *models.Invoice, p Payment) Result {
	result := suite.engine.ApplyPayment(inv, p)
	inv.AdvanceAmount = result.Update.AdvanceAmount
	inv.TDSAmount = result.Update.TDSAmount
	inv.Status = result.Update.Status
	inv.IsAdvanceReceived = result.Update.IsAdvanceReceived
	return result
}

func (suite *EngineTestSuite) TestPartialThenFullSettlement() {
	t := suite.T()
	first := suite.apply(suite.invoice, Payment{CashAmount: 5000, ReceivedOn: date(2024, 5, 2)})

	assert.Equal(t, 5000.0, first.Update.AdvanceAmount)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, first.Update.Status)
	assert.Equal(t, 6800.0, first.NetDue)
	assert.True(t, first.Update.IsAdvanceReceived)
	assert.Nil(t, first.LedgerEntry)

	second := suite.apply(suite.invoice, Payment{TaxWithheld: 6800, ReceivedOn: date(2024, 6, 1)})

	assert.Equal(t, 11800.0, second.Settled)
	assert.Equal(t, models.InvoiceStatusPaid, second.Update.Status)
	assert.Equal(t, 0.0, second.NetDue)
	assert.Equal(t, 5000.0, second.Update.PrevAdvanceAmount)
	require.NotNil(t, second.LedgerEntry)
	assert.Equal(t, 6800.0, second.LedgerEntry.Amount)
	assert.Equal(t, "2024-2025", second.LedgerEntry.FiscalYear)
	assert.Equal(t, suite.entryID, second.LedgerEntry.ID)
	assert.Equal(t, suite.invoice.ID, second.LedgerEntry.InvoiceID)
	assert.Equal(t, &suite.clientID, second.LedgerEntry.ClientID)
	assert.Equal(t, suite.invoice.OwnerID, second.LedgerEntry.OwnerID)
	assert.Equal(t, suite.invoice.BusinessID, second.LedgerEntry.BusinessID)
}

func (suite *EngineTestSuite) TestRoundingMarginCountsAsPaid() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{CashAmount: 11799.2})
	assert.Equal(suite.T(), models.InvoiceStatusPaid, result.Update.Status)
	assert.InDelta(suite.T(), 0.8, result.NetDue, 0.0001)
}

func (suite *EngineTestSuite) TestJustBelowMarginIsPartial() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{CashAmount: 11798.99})
	assert.Equal(suite.T(), models.InvoiceStatusPartiallyPaid, result.Update.Status)
}

func (suite *EngineTestSuite) TestZeroPaymentLeavesStatusUnchanged() {
	suite.invoice.Status = models.InvoiceStatusSent
	result := suite.engine.ApplyPayment(suite.invoice, Payment{})
	assert.Equal(suite.T(), models.InvoiceStatusSent, result.Update.Status)
	assert.Equal(suite.T(), 11800.0, result.NetDue)
	assert.False(suite.T(), result.Update.IsAdvanceReceived)
}

func (suite *EngineTestSuite) TestInvalidAmountsCoercedToZero() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{CashAmount: math.NaN(), TaxWithheld: -50})
	assert.Equal(suite.T(), 0.0, result.Update.AdvanceAmount)
	assert.Equal(suite.T(), 0.0, result.Update.TDSAmount)
	assert.Nil(suite.T(), result.LedgerEntry)
}

func (suite *EngineTestSuite) TestOverpaymentIsRepresentable() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{CashAmount: 12000})
	assert.Equal(suite.T(), models.InvoiceStatusPaid, result.Update.Status)
	assert.Equal(suite.T(), -200.0, result.NetDue)
}

func (suite *EngineTestSuite) TestAutoTDSUsesSubtotalNotTotal() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{
		CashAmount: 10800,
		TaxSection: "194J",
		ReceivedOn: date(2024, 2, 15),
	})

	require.NotNil(suite.T(), result.LedgerEntry)
	assert.Equal(suite.T(), 1000.0, result.LedgerEntry.Amount)
	assert.Equal(suite.T(), "2023-2024", result.LedgerEntry.FiscalYear)
	require.NotNil(suite.T(), result.LedgerEntry.Section)
	assert.Equal(suite.T(), "194J", *result.LedgerEntry.Section)
	assert.Equal(suite.T(), models.InvoiceStatusPaid, result.Update.Status)
}

func (suite *EngineTestSuite) TestExplicitTDSWinsOverSection() {
	result := suite.engine.ApplyPayment(suite.invoice, Payment{TaxWithheld: 250, TaxSection: "194J"})
	require.NotNil(suite.T(), result.LedgerEntry)
	assert.Equal(suite.T(), 250.0, result.LedgerEntry.Amount)
}

func (suite *EngineTestSuite) TestUnknownSectionWithholdsNothing() {
	assert.Equal(suite.T(), 0.0, suite.engine.SuggestTDS(suite.invoice, "999Z"))
}

func TestSettlementPropertyHolds(t *testing.T) {
	engine := NewEngine()
	payments := []Payment{
		{CashAmount: 1000},
		{TaxWithheld: 118},
		{CashAmount: 333.33, TaxWithheld: 12.5},
		{CashAmount: 0.67},
		{CashAmount: 10000},
	}
	inv := &models.Invoice{ID: uuid.New(), Subtotal: 10000, IGST: 1800, Total: 11800, Status: models.InvoiceStatusUnpaid}

	for _, p := range payments {
		result := engine.ApplyPayment(inv, p)
		inv.AdvanceAmount = result.Update.AdvanceAmount
		inv.TDSAmount = result.Update.TDSAmount
		inv.Status = result.Update.Status

		assert.InDelta(t, inv.Total-inv.AdvanceAmount-inv.TDSAmount, result.NetDue, 0.001)
		paid := inv.AdvanceAmount+inv.TDSAmount >= inv.Total-1
		assert.Equal(t, paid, inv.Status == models.InvoiceStatusPaid)
	}
}

func TestCustomTolerance(t *testing.T) {
	engine := NewEngine(WithTolerance(0))
	inv := &models.Invoice{Total: 100, Status: models.InvoiceStatusUnpaid}

	assert.Equal(t, 0.0, engine.Tolerance())
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, engine.ApplyPayment(inv, Payment{CashAmount: 99.5}).Update.Status)
	assert.Equal(t, models.InvoiceStatusPaid, engine.ApplyPayment(inv, Payment{CashAmount: 100}).Update.Status)
}

func TestIsSettled(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		settled  float64
		expected bool
	}{
		{"exact", 11800, 11800, true},
		{"within margin", 11800, 11799, true},
		{"outside margin", 11800, 11798.99, false},
		{"overpaid", 11800, 12000, true},
		{"nothing paid", 11800, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSettled(tt.total, tt.settled, DefaultSettlementTolerance))
		})
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
