package services

import (
	"context"
	"testing"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTDSService_ListEntriesNormalizesFilter(t *testing.T) {
	repo := new(MockTDSRepository)
	svc := NewTDSService(repo)
	ctx := context.Background()
	ownerID := uuid.New()

	fy := " 2023-2024 "
	want := "2023-2024"
	repo.On("List", ctx, models.TDSFilter{OwnerID: ownerID, FiscalYear: &want, Limit: 50}).
		Return([]*models.TDSEntry{{ID: uuid.New(), Amount: 1000, FiscalYear: want}}, nil).Once()

	entries, err := svc.ListEntries(ctx, models.TDSFilter{OwnerID: ownerID, FiscalYear: &fy})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestTDSService_ListEntriesEmpty(t *testing.T) {
	repo := new(MockTDSRepository)
	svc := NewTDSService(repo)
	ctx := context.Background()

	repo.On("List", ctx, models.TDSFilter{Limit: 50}).Return(nil, nil).Once()

	entries, err := svc.ListEntries(ctx, models.TDSFilter{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestTDSService_ListEntriesRejectsBadFiscalYear(t *testing.T) {
	svc := NewTDSService(new(MockTDSRepository))
	fy := "2023-2025"

	_, err := svc.ListEntries(context.Background(), models.TDSFilter{FiscalYear: &fy})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "fiscal_year", verr.Field)
}
