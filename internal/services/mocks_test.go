package services

import (
	"context"
	"io"
	"time"

	"invoicedesk/internal/models"
	"invoicedesk/internal/snapshot"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, businessID uuid.UUID, invoiceDate time.Time) (string, error) {
	args := m.Called(ctx, businessID, invoiceDate)
	return args.String(0), args.Error(1)
}

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockBusinessRepository) ListPendingClaimByEmail(ctx context.Context, email string) ([]*models.Business, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Business), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.Attachment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attachment), args.Error(1)
}

type MockTDSRepository struct {
	mock.Mock
}

func (m *MockTDSRepository) List(ctx context.Context, filter models.TDSFilter) ([]*models.TDSEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TDSEntry), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, ops ...store.Operation) error {
	args := m.Called(ctx, ops)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) Remove(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template string) (string, error) {
	args := m.Called(ctx, invoiceID, template)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) SetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template, url string, ttl time.Duration) error {
	args := m.Called(ctx, invoiceID, template, url, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

type MockArchiveEnqueuer struct {
	mock.Mock
}

func (m *MockArchiveEnqueuer) EnqueueArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	return args.String(0), args.Error(1)
}
