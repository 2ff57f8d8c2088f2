// Package session carries the per-request application state: who is calling
// and which of their businesses they are working in.
package session

import (
	"context"
	"sync"

	"invoicedesk/internal/models"

	"github.com/google/uuid"
)

type contextKey struct{}

// State is created when a request is authenticated and closed when it ends.
// Nothing in it outlives the request.
type State struct {
	mu             sync.Mutex
	identity       models.Identity
	activeBusiness *uuid.UUID
	closed         bool
	teardown       []func()
}

// New starts a session for identity
func New(identity models.Identity) *State {
	return &State{identity: identity}
}

// Identity returns the authenticated caller
func (s *State) Identity() models.Identity {
	return s.identity
}

// OwnerID is the identity id, the owner of every record the caller creates
func (s *State) OwnerID() uuid.UUID {
	return s.identity.ID
}

// SelectBusiness makes id the business new records are filed under
func (s *State) SelectBusiness(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeBusiness = &id
}

// ActiveBusiness returns the selected business, if any
func (s *State) ActiveBusiness() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBusiness == nil {
		return uuid.Nil, false
	}
	return *s.activeBusiness, true
}

// OnClose registers fn to run when the session closes
func (s *State) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown = append(s.teardown, fn)
}

// Close runs teardown hooks in reverse order. Calling it twice is a no-op.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.teardown
	s.teardown = nil
	s.activeBusiness = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// WithState attaches s to ctx
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to ctx
func FromContext(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(contextKey{}).(*State)
	return s, ok && s != nil
}
