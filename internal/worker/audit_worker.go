package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains queued audit events from Redis into the audit_logs
// table in batches. Events stay queued across restarts; a drained batch
// that fails to insert is logged and dropped rather than retried, since
// audit rows are diagnostic, not transactional state.
type AuditWorker struct {
	audits *repository.AuditRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		audits: repository.NewAuditRepository(pool),
		rdb:    rdb,
		log:    log.With().Str("component", "audit_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]model.AuditEvent, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev model.AuditEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Str("raw", item[1]).Msg("Malformed audit event dropped")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

func (w *AuditWorker) flushSafe(ctx context.Context, batch []model.AuditEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.audits.InsertBatch(ctx, batch); err != nil {
		w.log.Error().Err(err).Int("count", len(batch)).Msg("Audit batch insert failed")
		return
	}

	w.log.Debug().Int("count", len(batch)).Msg("Audit batch flushed")
}
