package claiming

import (
	"context"
	"errors"

	"invoicedesk/internal/models"
	"invoicedesk/internal/store"
)

// ErrFeedClosed is returned by Watch when the change feed ends before ctx
var ErrFeedClosed = errors.New("change feed closed")

// Watch evaluates the claim for identity now and again after every business
// change, until the identity reaches StateClaimed or ctx ends.
func (c *Coordinator) Watch(ctx context.Context, identity models.Identity, feed store.Subscriber) (Result, error) {
	events, cancel, err := feed.Subscribe(ctx, store.KindBusiness)
	if err != nil {
		return Result{}, err
	}
	defer cancel()

	result, err := c.Evaluate(ctx, identity)
	if err != nil {
		c.logger.Warn().Err(err).Str("identity_id", identity.ID.String()).Msg("claim evaluation failed")
	}
	if c.State(identity.ID) == StateClaimed {
		return result, err
	}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case _, ok := <-events:
			if !ok {
				return result, ErrFeedClosed
			}
			result, err = c.Evaluate(ctx, identity)
			if err != nil {
				c.logger.Warn().Err(err).Str("identity_id", identity.ID.String()).Msg("claim evaluation failed")
				continue
			}
			if c.State(identity.ID) == StateClaimed {
				return result, nil
			}
		}
	}
}
