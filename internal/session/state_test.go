package session

import (
	"context"
	"testing"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLifecycle(t *testing.T) {
	identity := models.Identity{ID: uuid.New(), Email: "owner@example.com"}
	s := New(identity)

	_, ok := s.ActiveBusiness()
	assert.False(t, ok)

	businessID := uuid.New()
	s.SelectBusiness(businessID)
	active, ok := s.ActiveBusiness()
	require.True(t, ok)
	assert.Equal(t, businessID, active)
	assert.Equal(t, identity.ID, s.OwnerID())

	var order []int
	s.OnClose(func() { order = append(order, 1) })
	s.OnClose(func() { order = append(order, 2) })
	s.Close()
	s.Close()

	assert.Equal(t, []int{2, 1}, order)
	_, ok = s.ActiveBusiness()
	assert.False(t, ok)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := New(models.Identity{ID: uuid.New()})
	got, ok := FromContext(WithState(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
