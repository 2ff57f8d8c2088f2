package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"invoicedesk/internal/claiming"
	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
	"invoicedesk/internal/session"
	"invoicedesk/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// MaxClaimWait bounds how long POST /claims?wait= holds a request open
const MaxClaimWait = time.Minute

// ClaimEvaluator runs the ownership claim for an identity
type ClaimEvaluator interface {
	Evaluate(ctx context.Context, identity models.Identity) (claiming.Result, error)
}

// ClaimWatcher also keeps evaluating as businesses change
type ClaimWatcher interface {
	ClaimEvaluator
	Watch(ctx context.Context, identity models.Identity, feed store.Subscriber) (claiming.Result, error)
}

// ClaimHandlers exposes the business claim workflow
type ClaimHandlers struct {
	claims ClaimWatcher
	feed   store.Subscriber
}

// NewClaimHandlers creates a new claim handlers instance. Without a feed the
// wait parameter is ignored.
func NewClaimHandlers(claims ClaimWatcher, feed store.Subscriber) *ClaimHandlers {
	return &ClaimHandlers{claims: claims, feed: feed}
}

// Evaluate handles POST /claims. Claiming is idempotent; repeating the call
// after a transfer reports already_claimed. With ?wait=30s the request stays
// open until a matching business is provisioned and claimed or the wait ends.
func (h *ClaimHandlers) Evaluate(c echo.Context) error {
	state, ok := requireSession(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var wait time.Duration
	if raw := c.QueryParam("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return common.SendValidationError(c, "wait", "wait must be a non-negative duration such as 30s")
		}
		wait = min(d, MaxClaimWait)
	}

	ctx := c.Request().Context()
	var (
		result claiming.Result
		err    error
	)
	if wait > 0 && h.feed != nil {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		result, err = h.claims.Watch(waitCtx, state.Identity(), h.feed)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, claiming.ErrFeedClosed) {
			err = nil
		}
	} else {
		result, err = h.claims.Evaluate(ctx, state.Identity())
	}
	if err != nil {
		return respondError(c, err, "claim business")
	}

	if result.Outcome == claiming.OutcomeClaimed {
		state.SelectBusiness(result.BusinessID)
	}
	return c.JSON(http.StatusOK, result)
}

// AutoClaim evaluates the claim as soon as a session opens, so the first
// request from a matching identity already sees the transferred records.
// Failures are logged and the request proceeds.
func AutoClaim(claims ClaimEvaluator) func(c echo.Context, state *session.State) {
	return func(c echo.Context, state *session.State) {
		ctx := c.Request().Context()
		result, err := claims.Evaluate(ctx, state.Identity())
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("identity_id", state.OwnerID().String()).Msg("claim evaluation failed")
			return
		}
		if result.Outcome == claiming.OutcomeClaimed {
			if _, selected := state.ActiveBusiness(); !selected {
				state.SelectBusiness(result.BusinessID)
			}
			zerolog.Ctx(ctx).Info().
				Str("identity_id", state.OwnerID().String()).
				Str("business_id", result.BusinessID.String()).
				Int("relinked", result.Relinked).
				Msg("business claimed on sign-in")
		}
	}
}
