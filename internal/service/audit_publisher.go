package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AuditPublisher emits audit events for external collection. Implementations
// are fire-and-log: a publish failure must never fail the caller's request.
type AuditPublisher interface {
	Emit(ctx context.Context, ev model.AuditEvent)
}

// RedisAuditPublisher queues audit events to Redis for the audit worker to
// drain into the audit_logs table.
type RedisAuditPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisAuditPublisher creates a RedisAuditPublisher.
func NewRedisAuditPublisher(rdb *redis.Client, log zerolog.Logger) *RedisAuditPublisher {
	return &RedisAuditPublisher{
		rdb: rdb,
		log: log.With().Str("component", "audit_publisher").Logger(),
	}
}

// Emit queues one audit event. Errors are logged and swallowed.
func (p *RedisAuditPublisher) Emit(ctx context.Context, ev model.AuditEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("action", ev.Action).Msg("Encode audit event failed")
		return
	}

	if err := p.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, payload).Err(); err != nil {
		p.log.Error().Err(err).Str("action", ev.Action).Msg("Queue audit event failed")
	}
}
