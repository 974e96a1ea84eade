package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

const forwardResultKeyPrefix = "forward:result:"

// CachedForwardResult is the diagnostic record kept per ticket.
type CachedForwardResult struct {
	TicketID    string        `json:"ticket_id"`
	Target      domain.Target `json:"target"`
	Success     bool          `json:"success"`
	Detail      string        `json:"detail"`
	AttemptedAt time.Time     `json:"attempted_at"`
}

// ForwardResultCache stores the most recent dispatch outcome per ticket.
// Best-effort: callers ignore cache errors. Get returns nil, nil on a miss.
type ForwardResultCache interface {
	Put(ctx context.Context, result CachedForwardResult) error
	Get(ctx context.Context, ticketID string) (*CachedForwardResult, error)
}

type forwardResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewForwardResultCache builds a Redis backed cache.
func NewForwardResultCache(client *redis.Client, ttl time.Duration) ForwardResultCache {
	return &forwardResultCache{client: client, ttl: ttl}
}

func (c *forwardResultCache) Put(ctx context.Context, result CachedForwardResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, forwardResultKeyPrefix+result.TicketID, payload, c.ttl).Err()
}

func (c *forwardResultCache) Get(ctx context.Context, ticketID string) (*CachedForwardResult, error) {
	raw, err := c.client.Get(ctx, forwardResultKeyPrefix+ticketID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result CachedForwardResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
