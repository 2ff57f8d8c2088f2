package claiming

import (
	"context"

	"invoicedesk/internal/caching"
	"invoicedesk/internal/models"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, ops ...store.Operation) error {
	args := m.Called(ctx, ops)
	return args.Error(0)
}

type MockClaimLocker struct {
	mock.Mock
}

func (m *MockClaimLocker) TryAcquire(ctx context.Context, key string) (caching.ClaimToken, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(caching.ClaimToken), args.Bool(1), args.Error(2)
}

type MockClaimToken struct {
	mock.Mock
}

func (m *MockClaimToken) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fakeFeed struct {
	events chan store.ChangeEvent
}

func (f *fakeFeed) Subscribe(ctx context.Context, kinds ...store.EntityKind) (<-chan store.ChangeEvent, func(), error) {
	return f.events, func() {}, nil
}
