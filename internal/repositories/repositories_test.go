package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"invoicedesk/internal/models"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoriesTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	ownerID    uuid.UUID
	businessID uuid.UUID
	context    context.Context
}

func (suite *RepositoriesTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.ownerID = uuid.New()
	suite.businessID = uuid.New()
	suite.context = context.Background()
}

func (suite *RepositoriesTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRepositoriesTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoriesTestSuite))
}

var invoiceColumns = []string{"id", "owner_id", "business_id", "client_id", "invoice_number", "subtotal", "discount", "cgst", "sgst", "igst", "total", "invoice_date", "due_date", "payment_terms", "status", "advance_amount", "tds_amount", "is_advance_received", "notes", "created_at", "updated_at"}

func (suite *RepositoriesTestSuite) TestInvoiceGetByID_WithLineItems() {
	repo := NewInvoiceRepo(suite.mock)
	invoiceID := uuid.New()
	clientID := uuid.New()
	invoiceDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
	var notes *string

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM invoices`)).
		WithArgs(suite.ownerID, invoiceID).
		WillReturnRows(pgxmock.NewRows(invoiceColumns).AddRow(
			invoiceID, suite.ownerID, suite.businessID, &clientID, "INV-1", 10000.0, 0.0, 900.0, 900.0, 0.0, 11800.0,
			invoiceDate, dueDate, models.PaymentTermsNet30, models.InvoiceStatusUnpaid, 0.0, 0.0, false, notes, invoiceDate, invoiceDate))

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM line_items`)).
		WithArgs(invoiceID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "invoice_id", "position", "description", "quantity", "rate", "amount"}).
			AddRow(uuid.New(), invoiceID, 0, "Design", 2.0, 2500.0, 5000.0).
			AddRow(uuid.New(), invoiceID, 1, "Build", 1.0, 5000.0, 5000.0))

	inv, err := repo.GetByID(suite.context, suite.ownerID, invoiceID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 11800.0, inv.Total)
	assert.Equal(suite.T(), &clientID, inv.ClientID)
	require.Len(suite.T(), inv.LineItems, 2)
	assert.Equal(suite.T(), "Build", inv.LineItems[1].Description)
	assert.Equal(suite.T(), 5000.0, inv.LineItems[1].Amount)
}

func (suite *RepositoriesTestSuite) TestInvoiceGetByID_NotFound() {
	repo := NewInvoiceRepo(suite.mock)
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM invoices`)).
		WithArgs(suite.ownerID, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(suite.context, suite.ownerID, uuid.New())
	assert.ErrorIs(suite.T(), err, store.ErrNotFound)
}

func (suite *RepositoriesTestSuite) TestInvoiceListOverdueCandidates() {
	repo := NewInvoiceRepo(suite.mock)
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	suite.mock.ExpectQuery(`status IN \('Unpaid', 'Sent', 'PartiallyPaid'\) AND due_date < \$1`).
		WithArgs(asOf, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	ids, err := repo.ListOverdueCandidates(suite.context, asOf, 100)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uuid.UUID{id}, ids)
}

func (suite *RepositoriesTestSuite) TestGenerateInvoiceNumber() {
	repo := NewInvoiceRepo(suite.mock)
	businessID := uuid.MustParse("8f14e45f-ceea-467a-9af0-12ab34cd56ef")

	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO invoice_sequences`)).
		WithArgs(businessID, "2024-01").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(7))

	number, err := repo.GenerateInvoiceNumber(suite.context, businessID, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-34cd56ef-2024-01-000007", number)
}

func (suite *RepositoriesTestSuite) TestBusinessListPendingClaimByEmail_NormalizesEmail() {
	repo := NewBusinessRepo(suite.mock)
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	adminID := uuid.New()
	var none *string

	suite.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at, id`)).
		WithArgs(models.BusinessStatusPendingClaim, "owner@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "email", "gstin", "address", "phone", "status", "created_by", "created_at", "updated_at"}).
			AddRow(suite.businessID, &adminID, "Acme", "owner@example.com", none, none, none, models.BusinessStatusPendingClaim, models.CreatedByAdmin, older, older))

	businesses, err := repo.ListPendingClaimByEmail(suite.context, "  Owner@Example.COM ")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), businesses, 1)
	assert.Equal(suite.T(), suite.businessID, businesses[0].ID)
	assert.Equal(suite.T(), models.CreatedByAdmin, businesses[0].CreatedBy)
}

func (suite *RepositoriesTestSuite) TestBusinessCountOwnedBy() {
	repo := NewBusinessRepo(suite.mock)
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM businesses WHERE owner_id = $1`)).
		WithArgs(suite.ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOwnedBy(suite.context, suite.ownerID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func (suite *RepositoriesTestSuite) TestTDSList_AppliesFilters() {
	repo := NewTDSRepo(suite.mock)
	fy := "2024-2025"
	clientID := uuid.New()
	recorded := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	section := "194J"

	suite.mock.ExpectQuery(regexp.QuoteMeta(`WHERE business_id IN (SELECT id FROM businesses WHERE owner_id = $1) AND business_id = $2 AND fiscal_year = $3`)).
		WithArgs(suite.ownerID, suite.businessID, fy, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "business_id", "client_id", "invoice_id", "amount", "section", "fiscal_year", "recorded_on", "created_at"}).
			AddRow(uuid.New(), suite.ownerID, suite.businessID, &clientID, uuid.New(), 6800.0, &section, fy, recorded, recorded))

	entries, err := repo.List(suite.context, models.TDSFilter{
		OwnerID:    suite.ownerID,
		BusinessID: &suite.businessID,
		FiscalYear: &fy,
		Limit:      50,
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), 6800.0, entries[0].Amount)
	assert.Equal(suite.T(), "194J", *entries[0].Section)
}

func (suite *RepositoriesTestSuite) TestTDSList_IncludesEntriesRecordedBeforeClaim() {
	repo := NewTDSRepo(suite.mock)
	adminID := uuid.New()
	recorded := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	var none *uuid.UUID
	var noSection *string

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM tds_entries WHERE business_id IN (SELECT id FROM businesses WHERE owner_id = $1) ORDER BY`)).
		WithArgs(suite.ownerID, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "business_id", "client_id", "invoice_id", "amount", "section", "fiscal_year", "recorded_on", "created_at"}).
			AddRow(uuid.New(), adminID, suite.businessID, none, uuid.New(), 1200.0, noSection, "2024-2025", recorded, recorded))

	entries, err := repo.List(suite.context, models.TDSFilter{OwnerID: suite.ownerID, Limit: 20})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), suite.businessID, entries[0].BusinessID)
	assert.Equal(suite.T(), 1200.0, entries[0].Amount)
}

func (suite *RepositoriesTestSuite) TestAttachmentListByInvoice() {
	repo := NewAttachmentRepo(suite.mock)
	invoiceID := uuid.New()
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM attachments`)).
		WithArgs(invoiceID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "invoice_id", "object_key", "file_name", "content_type", "created_at"}).
			AddRow(uuid.New(), invoiceID, "invoices/x/classic.pdf", "Invoice_1.pdf", "application/pdf", created))

	attachments, err := repo.ListByInvoice(suite.context, invoiceID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), attachments, 1)
	assert.Equal(suite.T(), "invoices/x/classic.pdf", attachments[0].ObjectKey)
}
