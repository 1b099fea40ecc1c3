package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

// SessionWorker drains the session-record queue into Postgres. Records
// are full-document upserts, so replays and reorderings are harmless as
// long as the last write wins per attempt.
type SessionWorker struct {
	sessions *repository.SessionRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewSessionWorker creates a new SessionWorker.
func NewSessionWorker(sessions *repository.SessionRepository, rdb *redis.Client, log zerolog.Logger) *SessionWorker {
	return &SessionWorker{
		sessions: sessions,
		rdb:      rdb,
		log:      log.With().Str("component", "session_worker").Logger(),
	}
}

func (w *SessionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("session worker started")

	buffer := make([]*model.TestSession, 0, BatchSize)
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

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistSessionsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
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

		var session model.TestSession
		if err := json.Unmarshal([]byte(result[1]), &session); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("discarding malformed session record")
			continue
		}
		buffer = append(buffer, &session)
	}
}

// flushSafe deduplicates the batch per session id (last write wins) and
// upserts; on batch failure it retries row by row and requeues leftovers.
func (w *SessionWorker) flushSafe(ctx context.Context, batch []*model.TestSession) {
	deduped := dedupe(batch)
	if err := w.sessions.UpsertBatch(ctx, deduped); err != nil {
		w.log.Warn().Err(err).Int("count", len(deduped)).Msg("batch upsert failed, attempting row-by-row recovery")
		w.fallbackUpsert(ctx, deduped)
	}
}

func dedupe(batch []*model.TestSession) []*model.TestSession {
	// Queue order is write order, so the later entry supersedes.
	seen := make(map[string]int, len(batch))
	out := make([]*model.TestSession, 0, len(batch))
	for _, s := range batch {
		if i, ok := seen[s.ID.String()]; ok {
			out[i] = s
			continue
		}
		seen[s.ID.String()] = len(out)
		out = append(out, s)
	}
	return out
}

func (w *SessionWorker) fallbackUpsert(ctx context.Context, batch []*model.TestSession) {
	requeueList := make([]*model.TestSession, 0)

	for _, s := range batch {
		if err := w.sessions.Upsert(ctx, s); err != nil {
			w.log.Error().Err(err).Str("session_id", s.ID.String()).Msg("upsert failed, requeueing")
			requeueList = append(requeueList, s)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *SessionWorker) requeue(ctx context.Context, items []*model.TestSession) {
	pipe := w.rdb.Pipeline()
	for _, s := range items {
		data, _ := json.Marshal(s)
		pipe.RPush(ctx, config.WorkerKey.PersistSessionsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: failed to requeue session records, data loss occurred")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("requeued failed session records")
	time.Sleep(2 * time.Second)
}

func (w *SessionWorker) shutdown(buffer []*model.TestSession) {
	w.log.Info().Msg("session worker stopping, flushing remaining buffer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
