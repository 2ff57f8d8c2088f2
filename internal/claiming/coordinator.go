// Package claiming moves an administrator-provisioned business, and every
// record hanging off it, to the end user whose email it was provisioned for.
package claiming

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"invoicedesk/internal/caching"
	"invoicedesk/internal/models"
	"invoicedesk/internal/repositories"
	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the claim workflow position of one identity
type State int

const (
	StateIdle State = iota
	StateClaiming
	StateClaimed
)

func (s State) String() string {
	switch s {
	case StateClaiming:
		return "claiming"
	case StateClaimed:
		return "claimed"
	}
	return "idle"
}

// Outcome describes what an evaluation did
type Outcome string

const (
	// OutcomeClaimed means this evaluation committed the transfer
	OutcomeClaimed Outcome = "claimed"
	// OutcomeAlreadyClaimed means the transfer had already happened, here or elsewhere
	OutcomeAlreadyClaimed Outcome = "already_claimed"
	// OutcomeNotEligible means the identity owns a business or nothing matches its email
	OutcomeNotEligible Outcome = "not_eligible"
	// OutcomeInProgress means another evaluation for the same identity or email holds the claim
	OutcomeInProgress Outcome = "in_progress"
)

// Result is returned by Evaluate
type Result struct {
	Outcome    Outcome   `json:"outcome"`
	BusinessID uuid.UUID `json:"business_id,omitempty"`
	Relinked   int       `json:"relinked"`
}

// Coordinator runs the claim workflow. Only identities that are claiming or
// have claimed are tracked; the Redis token extends the guard across
// processes and the store's compare-and-set is the last line.
type Coordinator struct {
	businesses repositories.BusinessRepository
	submitter  store.Submitter
	locker     caching.ClaimLocker
	logger     zerolog.Logger

	mu     sync.Mutex
	states map[uuid.UUID]State
}

// NewCoordinator wires a coordinator. locker may be nil for single-process use.
func NewCoordinator(
	businesses repositories.BusinessRepository,
	submitter store.Submitter,
	locker caching.ClaimLocker,
	logger zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		businesses: businesses,
		submitter:  submitter,
		locker:     locker,
		logger:     logger.With().Str("component", "claiming").Logger(),
		states:     make(map[uuid.UUID]State),
	}
}

// State returns the workflow state for an identity
func (c *Coordinator) State(identityID uuid.UUID) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[identityID]
}

func (c *Coordinator) enter(identityID uuid.UUID) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.states[identityID]
	if current != StateIdle {
		return current, false
	}
	c.states[identityID] = StateClaiming
	return StateClaiming, true
}

// leave records the state an evaluation ended in. Idle is the zero value, so
// idle identities are dropped rather than stored.
func (c *Coordinator) leave(identityID uuid.UUID, next State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next == StateIdle {
		delete(c.states, identityID)
		return
	}
	c.states[identityID] = next
}

// Evaluate checks the claim trigger for identity and, when it holds, commits
// the ownership transfer in one transaction. Repeated or concurrent calls for
// the same identity never submit a second transfer.
func (c *Coordinator) Evaluate(ctx context.Context, identity models.Identity) (Result, error) {
	state, entered := c.enter(identity.ID)
	if !entered {
		if state == StateClaimed {
			return Result{Outcome: OutcomeAlreadyClaimed}, nil
		}
		return Result{Outcome: OutcomeInProgress}, nil
	}

	next := StateIdle
	defer func() { c.leave(identity.ID, next) }()

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return Result{Outcome: OutcomeNotEligible}, nil
	}

	owned, err := c.businesses.CountOwnedBy(ctx, identity.ID)
	if err != nil {
		return Result{}, fmt.Errorf("count owned businesses: %w", err)
	}
	if owned > 0 {
		next = StateClaimed
		return Result{Outcome: OutcomeNotEligible}, nil
	}

	candidates, err := c.businesses.ListPendingClaimByEmail(ctx, email)
	if err != nil {
		return Result{}, fmt.Errorf("find pending businesses: %w", err)
	}
	if len(candidates) == 0 {
		return Result{Outcome: OutcomeNotEligible}, nil
	}
	if len(candidates) > 1 {
		c.logger.Warn().Str("identity_id", identity.ID.String()).Int("matches", len(candidates)).
			Msg("multiple pending businesses match, claiming the oldest")
	}
	business := candidates[0]

	if c.locker != nil {
		token, acquired, err := c.locker.TryAcquire(ctx, caching.ClaimKey(email))
		if err != nil {
			return Result{}, err
		}
		if !acquired {
			return Result{Outcome: OutcomeInProgress, BusinessID: business.ID}, nil
		}
		defer func() {
			if err := token.Release(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn().Err(err).Msg("failed to release claim token")
			}
		}()
	}

	plan := Plan(business.ID, identity.ID)
	if err := c.submitter.Submit(ctx, plan.Operations()...); err != nil {
		if errors.Is(err, store.ErrClaimConflict) {
			c.logger.Info().Str("business_id", business.ID.String()).Msg("business claimed concurrently")
			return Result{Outcome: OutcomeAlreadyClaimed, BusinessID: business.ID}, nil
		}
		return Result{}, err
	}

	next = StateClaimed
	relinked := plan.Relinked()
	c.logger.Info().
		Str("business_id", business.ID.String()).
		Str("identity_id", identity.ID.String()).
		Int("relinked", relinked).
		Msg("business claimed")
	return Result{Outcome: OutcomeClaimed, BusinessID: business.ID, Relinked: relinked}, nil
}

// ClaimPlan is the claim transaction for one business: the compare-and-set
// first, then set-based owner links for everything reachable from it. The
// links select their rows inside the transaction, so records attached to the
// business while the claim is being decided are still moved.
type ClaimPlan struct {
	Claim      store.ClaimBusiness
	Clients    *store.LinkClientOwner
	Invoices   *store.LinkInvoiceOwner
	Dependents []*store.LinkDependentOwner
}

// Plan builds the claim transaction moving businessID to ownerID
func Plan(businessID, ownerID uuid.UUID) *ClaimPlan {
	plan := &ClaimPlan{
		Claim:    store.ClaimBusiness{BusinessID: businessID, OwnerID: ownerID},
		Clients:  &store.LinkClientOwner{BusinessID: businessID, OwnerID: ownerID},
		Invoices: &store.LinkInvoiceOwner{BusinessID: businessID, OwnerID: ownerID},
	}
	for _, kind := range store.DependentKinds {
		plan.Dependents = append(plan.Dependents, &store.LinkDependentOwner{Kind: kind, BusinessID: businessID, OwnerID: ownerID})
	}
	return plan
}

// Operations returns the plan in submission order
func (p *ClaimPlan) Operations() []store.Operation {
	ops := []store.Operation{p.Claim, p.Clients, p.Invoices}
	for _, op := range p.Dependents {
		ops = append(ops, op)
	}
	return ops
}

// Relinked counts the records moved by a committed plan
func (p *ClaimPlan) Relinked() int {
	n := len(p.Clients.Linked) + len(p.Invoices.Linked)
	for _, op := range p.Dependents {
		n += len(op.Linked)
	}
	return n
}
