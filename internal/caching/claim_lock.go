package caching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// DefaultClaimTokenTTL bounds how long a crashed claimer can block others
const DefaultClaimTokenTTL = 30 * time.Second

// ClaimToken is a held claim guard
type ClaimToken interface {
	Release(ctx context.Context) error
}

// ClaimLocker hands out at most one claim token per key across processes
type ClaimLocker interface {
	TryAcquire(ctx context.Context, key string) (ClaimToken, bool, error)
}

type redisClaimLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

// NewClaimLocker creates a redsync backed locker. Zero ttl uses DefaultClaimTokenTTL.
func NewClaimLocker(client redis.UniversalClient, ttl time.Duration) ClaimLocker {
	if ttl <= 0 {
		ttl = DefaultClaimTokenTTL
	}
	return &redisClaimLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
	}
}

// ClaimKey names the token guarding claims for an email address
func ClaimKey(email string) string {
	return "invoicedesk:claim:" + email
}

// TryAcquire makes a single attempt. A held key returns false with no error.
func (l *redisClaimLocker) TryAcquire(ctx context.Context, key string) (ClaimToken, bool, error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(l.ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("acquire claim token %s: %w", key, err)
	}
	return &claimToken{mutex: mutex}, true, nil
}

type claimToken struct {
	mutex *redsync.Mutex
}

func (t *claimToken) Release(ctx context.Context) error {
	ok, err := t.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release claim token: %w", err)
	}
	if !ok {
		return errors.New("claim token expired before release")
	}
	return nil
}
