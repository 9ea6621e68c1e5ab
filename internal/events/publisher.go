// Package events publishes kanban domain events for the Gateway to forward
// over SSE. Each event type is its own Redis channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

var (
	_ kanban.Publisher = (*RedisPublisher)(nil)
	_ kanban.Publisher = (*LogPublisher)(nil)
)

// RedisPublisher publishes events as JSON on the channel named by the event type.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher wraps a connected client.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends evt on channel evt.Type.
func (p *RedisPublisher) Publish(ctx context.Context, evt kanban.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", evt.Type, err)
	}
	if err := p.rdb.Publish(ctx, evt.Type, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// LogPublisher only logs events. Used when no Redis is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher logs to logger, or slog.Default() when nil.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs evt at INFO.
func (p *LogPublisher) Publish(ctx context.Context, evt kanban.Event) error {
	p.logger.InfoContext(ctx, "event",
		"type", evt.Type,
		"applicationId", evt.ApplicationID,
		"userId", evt.UserID,
		"from", evt.From,
		"to", evt.To,
	)
	return nil
}
