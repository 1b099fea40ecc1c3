package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/store"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// CheatWorker drains the integrity-event queue into Postgres. Events are
// batched for COPY and fall back to row-by-row inserts with requeue when
// the database misbehaves.
type CheatWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewCheatWorker creates a new CheatWorker.
func NewCheatWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *CheatWorker {
	return &CheatWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "cheat_worker").Logger(),
	}
}

func (w *CheatWorker) Start(ctx context.Context) {
	w.log.Info().Msg("cheat worker started")

	buffer := make([]*store.CheatEnvelope, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistCheatsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty, loop back to check flush timer
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var env store.CheatEnvelope
		if err := json.Unmarshal([]byte(result[1]), &env); err != nil {
			// Malformed JSON can never succeed later. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("discarding malformed cheat envelope")
			continue
		}
		buffer = append(buffer, &env)
	}
}

func (w *CheatWorker) flushSafe(ctx context.Context, batch []*store.CheatEnvelope) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *CheatWorker) bulkInsert(ctx context.Context, batch []*store.CheatEnvelope) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, env := range batch {
		metadata, err := json.Marshal(env.Attempt.Metadata)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			env.SessionID, string(env.Attempt.Type), env.Attempt.Warning, metadata, env.Attempt.Timestamp,
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"cheating_attempts"},
		[]string{"session_id", "type", "warning", "metadata", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *CheatWorker) fallbackInsert(ctx context.Context, batch []*store.CheatEnvelope) {
	requeueList := make([]*store.CheatEnvelope, 0)

	for _, env := range batch {
		metadata, err := json.Marshal(env.Attempt.Metadata)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", env.SessionID.String()).Msg("dropping unmarshalable cheat event")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO cheating_attempts (session_id, type, warning, metadata, recorded_at)
			 VALUES ($1, $2, $3, $4::jsonb, $5)`,
			env.SessionID, string(env.Attempt.Type), env.Attempt.Warning, metadata, env.Attempt.Timestamp,
		)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", env.SessionID.String()).Msg("insert failed, requeueing")
			requeueList = append(requeueList, env)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *CheatWorker) requeue(ctx context.Context, items []*store.CheatEnvelope) {
	pipe := w.rdb.Pipeline()
	for _, env := range items {
		data, _ := json.Marshal(env)
		pipe.RPush(ctx, config.WorkerKey.PersistCheatsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: failed to requeue cheat events, data loss occurred")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("requeued failed cheat events")
	// Back off while the database recovers.
	time.Sleep(2 * time.Second)
}

func (w *CheatWorker) shutdown(buffer []*store.CheatEnvelope) {
	w.log.Info().Msg("cheat worker stopping, flushing remaining buffer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
