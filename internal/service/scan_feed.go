package service

import (
	"context"
	"encoding/json"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FeedPublisher broadcasts scan verdicts to live session dashboards.
// Best-effort: a dropped feed message never fails the scan.
type FeedPublisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, ev websocket.ScanFeedEvent)
}

// RedisScanFeed publishes scan verdicts to a per-session PubSub channel,
// fanned out to WebSocket subscribers by the feed handler.
type RedisScanFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisScanFeed creates a RedisScanFeed.
func NewRedisScanFeed(rdb *redis.Client, log zerolog.Logger) *RedisScanFeed {
	return &RedisScanFeed{
		rdb: rdb,
		log: log.With().Str("component", "scan_feed").Logger(),
	}
}

// Publish broadcasts one verdict. Errors are logged and swallowed.
func (f *RedisScanFeed) Publish(ctx context.Context, sessionID uuid.UUID, ev websocket.ScanFeedEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.Error().Err(err).Msg("Encode feed event failed")
		return
	}

	channel := config.CacheKey.ScanFeedChannel(sessionID.String())
	if err := f.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		f.log.Error().Err(err).Str("channel", channel).Msg("Publish feed event failed")
	}
}
