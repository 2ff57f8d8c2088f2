package handlers

import (
	"context"
	"time"

	"invoicedesk/internal/claiming"
	"invoicedesk/internal/models"
	"invoicedesk/internal/services"
	"invoicedesk/internal/session"
	"invoicedesk/internal/settlement"
	"invoicedesk/internal/snapshot"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, state *session.State, input services.CreateInvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, state, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, ownerID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) DeleteInvoice(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, ownerID, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceService) RecordPayment(ctx context.Context, ownerID, invoiceID uuid.UUID, payment settlement.Payment) (*services.PaymentOutcome, error) {
	args := m.Called(ctx, ownerID, invoiceID, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentOutcome), args.Error(1)
}

func (m *MockInvoiceService) ComputeDueDate(ctx context.Context, ownerID uuid.UUID, input services.DueDateInput) (time.Time, error) {
	args := m.Called(ctx, ownerID, input)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockInvoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	args := m.Called(ctx, asOf, batchSize)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceService) CalculateGSTComponents(amount float64, gstRate float64, gstType services.GSTType) (float64, float64, float64) {
	args := m.Called(amount, gstRate, gstType)
	return args.Get(0).(float64), args.Get(1).(float64), args.Get(2).(float64)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Snapshot(ctx context.Context, ownerID, invoiceID uuid.UUID) (snapshot.Snapshot, error) {
	args := m.Called(ctx, ownerID, invoiceID)
	return args.Get(0).(snapshot.Snapshot), args.Error(1)
}

func (m *MockDocumentService) Render(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*snapshot.Document, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.Document), args.Error(1)
}

func (m *MockDocumentService) Archive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*services.ArchivedDocument, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ArchivedDocument), args.Error(1)
}

func (m *MockDocumentService) RequestArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) DocumentLink(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	return args.String(0), args.Error(1)
}

type MockTDSService struct {
	mock.Mock
}

func (m *MockTDSService) ListEntries(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TDSEntry), args.Error(1)
}

type MockClaimEvaluator struct {
	mock.Mock
}

func (m *MockClaimEvaluator) Evaluate(ctx context.Context, identity models.Identity) (claiming.Result, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(claiming.Result), args.Error(1)
}

func (m *MockClaimEvaluator) Watch(ctx context.Context, identity models.Identity, feed store.Subscriber) (claiming.Result, error) {
	args := m.Called(ctx, identity, feed)
	return args.Get(0).(claiming.Result), args.Error(1)
}

type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) CreateBusiness(ctx context.Context, state *session.State, input services.CreateBusinessInput) (*models.Business, error) {
	args := m.Called(ctx, state, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

type stubFeed struct{}

func (stubFeed) Subscribe(ctx context.Context, kinds ...store.EntityKind) (<-chan store.ChangeEvent, func(), error) {
	return make(chan store.ChangeEvent), func() {}, nil
}
