package caching

import (
	"context"
	"fmt"
	"time"

	"invoicedesk/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheService holds presigned links to archived invoice documents
type CacheService interface {
	// GetDocumentLink returns "" on a cache miss
	GetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template string) (string, error)
	SetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template, url string, ttl time.Duration) error
	InvalidateInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

type redisCacheService struct {
	client redis.UniversalClient
}

func NewRedisCacheService(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

func documentLinkKey(invoiceID uuid.UUID, template string) string {
	return fmt.Sprintf("invoicedesk:doclink:%s:%s", invoiceID.String(), template)
}

func (r *redisCacheService) GetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template string) (string, error) {
	val, err := r.client.Get(ctx, documentLinkKey(invoiceID, template)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) SetDocumentLink(ctx context.Context, invoiceID uuid.UUID, template, url string, ttl time.Duration) error {
	return r.client.Set(ctx, documentLinkKey(invoiceID, template), url, ttl).Err()
}

func (r *redisCacheService) InvalidateInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	pattern := fmt.Sprintf("invoicedesk:doclink:%s:*", invoiceID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

// RunInvalidator drops cached document links for every changed invoice until
// ctx ends.
func RunInvalidator(ctx context.Context, cache CacheService, feed store.Subscriber, logger zerolog.Logger) error {
	events, cancel, err := feed.Subscribe(ctx, store.KindInvoice)
	if err != nil {
		return err
	}
	defer cancel()

	for ev := range events {
		if err := cache.InvalidateInvoice(ctx, ev.ID); err != nil {
			logger.Warn().Err(err).Str("invoice_id", ev.ID.String()).Msg("failed to invalidate document links")
		}
	}
	return ctx.Err()
}
