// Package store submits typed operations to Postgres as one atomic unit and
// announces committed changes on a change feed.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when an operation targets a row that does not exist
var ErrNotFound = errors.New("record not found")

// ChangeAction describes what happened to an entity
type ChangeAction string

const (
	ActionCreated  ChangeAction = "created"
	ActionUpdated  ChangeAction = "updated"
	ActionDeleted  ChangeAction = "deleted"
	ActionClaimed  ChangeAction = "claimed"
	ActionRelinked ChangeAction = "relinked"
)

// ChangeEvent is published for every row an operation touched, after its
// transaction commits
type ChangeEvent struct {
	Kind   EntityKind   `json:"kind"`
	ID     uuid.UUID    `json:"id"`
	Action ChangeAction `json:"action"`
}

// SubmitError wraps a failed submission. Nothing was committed when it is
// returned, so the caller may retry with fresh state.
type SubmitError struct {
	Stage     string
	Err       error
	Retryable bool
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit failed during %s: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a submission failure worth retrying
func IsRetryable(err error) bool {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Retryable
	}
	return errors.Is(err, ErrStaleInvoice)
}

// TxBeginner is satisfied by *pgxpool.Pool and pgxmock pools
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Publisher receives change events after commit
type Publisher interface {
	Publish(ctx context.Context, events ...ChangeEvent) error
}

// Subscriber streams change events of the given kinds until cancel is called
// or ctx ends. No kinds means every kind.
type Subscriber interface {
	Subscribe(ctx context.Context, kinds ...EntityKind) (events <-chan ChangeEvent, cancel func(), err error)
}

// Submitter applies a list of operations atomically
type Submitter interface {
	Submit(ctx context.Context, ops ...Operation) error
}

// Store is the Postgres backed Submitter
type Store struct {
	db        TxBeginner
	publisher Publisher
	logger    zerolog.Logger
}

// New creates a store. publisher may be nil.
func New(db TxBeginner, publisher Publisher, logger zerolog.Logger) *Store {
	return &Store{
		db:        db,
		publisher: publisher,
		logger:    logger.With().Str("component", "store").Logger(),
	}
}

// Submit runs ops in a single transaction and waits for the commit. On any
// failure the transaction is rolled back and nothing is published.
func (s *Store) Submit(ctx context.Context, ops ...Operation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &SubmitError{Stage: "begin", Err: err, Retryable: true}
	}

	var events []ChangeEvent
	for _, op := range ops {
		changed, err := op.apply(ctx, tx)
		if err != nil {
			s.rollback(ctx, tx)
			if errors.Is(err, ErrClaimConflict) || errors.Is(err, ErrStaleInvoice) || errors.Is(err, ErrNotFound) {
				return err
			}
			return &SubmitError{Stage: "apply", Err: err, Retryable: true}
		}
		events = append(events, changed...)
	}

	if err := tx.Commit(ctx); err != nil {
		return &SubmitError{Stage: "commit", Err: err, Retryable: true}
	}

	s.logger.Debug().Int("operations", len(ops)).Int("changes", len(events)).Msg("transaction committed")
	s.publish(ctx, events)
	return nil
}

func (s *Store) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Warn().Err(err).Msg("rollback failed")
	}
}

// publish is best effort: the data is already committed, subscribers only
// lose a notification.
func (s *Store) publish(ctx context.Context, events []ChangeEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn().Err(err).Int("events", len(events)).Msg("failed to publish change events")
	}
}
