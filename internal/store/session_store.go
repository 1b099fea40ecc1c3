// Package store implements the observable session store on Redis. Every
// write replaces the full session record, refreshes the candidate's
// current-session pointer and announces the change on a pub/sub channel,
// so reporting views can follow attempts live. A queue feeds the durable
// Postgres copy asynchronously.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/model"
)

var (
	// ErrNotFound means no session record exists for the given key.
	ErrNotFound = errors.New("session not found")
	// ErrFinalized refuses overwriting a record already in a terminal
	// state. Terminal records are immutable.
	ErrFinalized = errors.New("session already finalized")
)

// SessionEvent is the pub/sub announcement of one session write.
type SessionEvent struct {
	SessionID uuid.UUID           `json:"session_id"`
	QuizID    uuid.UUID           `json:"quiz_id"`
	Status    model.SessionStatus `json:"status"`
}

// CheatEnvelope is the queue payload carrying one integrity event to the
// persistence worker.
type CheatEnvelope struct {
	SessionID uuid.UUID             `json:"session_id"`
	Attempt   model.CheatingAttempt `json:"attempt"`
}

// SessionStore reads and writes session records in Redis.
type SessionStore struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewSessionStore(rdb *redis.Client, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		rdb: rdb,
		log: log.With().Str("component", "session_store").Logger(),
	}
}

// Save replaces the full record and maintains the candidate pointers. A
// record already terminal in the store is never overwritten. The write,
// the pointer updates, the announcement and the persistence enqueue go
// out in one pipeline.
func (s *SessionStore) Save(ctx context.Context, session *model.TestSession) error {
	existing, err := s.GetByID(ctx, session.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil && existing.Status.Terminal() {
		return ErrFinalized
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	event, err := json.Marshal(SessionEvent{
		SessionID: session.ID,
		QuizID:    session.QuizID,
		Status:    session.Status,
	})
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}

	id := session.ID.String()
	email := session.Candidate.Email

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, config.CacheKey.SessionsCollection(), id, payload)
	pipe.Set(ctx, config.CacheKey.SessionLookupKey(session.QuizID.String(), email), id, 0)
	if session.Status.Terminal() {
		// A finished attempt is no longer anyone's current session.
		pipe.Del(ctx, config.CacheKey.CurrentSessionKey(email))
	} else {
		pipe.Set(ctx, config.CacheKey.CurrentSessionKey(email), id, 0)
	}
	pipe.Publish(ctx, config.CacheKey.SessionEventsChannel(), event)
	pipe.RPush(ctx, config.WorkerKey.PersistSessionsQueue, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetByID fetches one record by session id.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	raw, err := s.rdb.HGet(ctx, config.CacheKey.SessionsCollection(), id.String()).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession([]byte(raw))
}

// GetCurrent follows the candidate's current-session pointer.
func (s *SessionStore) GetCurrent(ctx context.Context, email string) (*model.TestSession, error) {
	id, err := s.rdb.Get(ctx, config.CacheKey.CurrentSessionKey(email)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get current session pointer: %w", err)
	}
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse current session pointer: %w", err)
	}
	return s.GetByID(ctx, sid)
}

// FindByQuizAndEmail resolves the candidate's attempt at a given quiz,
// whatever its state. Used by the login replay guard.
func (s *SessionStore) FindByQuizAndEmail(ctx context.Context, quizID uuid.UUID, email string) (*model.TestSession, error) {
	id, err := s.rdb.Get(ctx, config.CacheKey.SessionLookupKey(quizID.String(), email)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session lookup: %w", err)
	}
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session lookup: %w", err)
	}
	return s.GetByID(ctx, sid)
}

// Discard removes a stale record and its pointers. Used when a session
// references a quiz that no longer resolves.
func (s *SessionStore) Discard(ctx context.Context, session *model.TestSession) error {
	email := session.Candidate.Email
	pipe := s.rdb.Pipeline()
	pipe.HDel(ctx, config.CacheKey.SessionsCollection(), session.ID.String())
	pipe.Del(ctx, config.CacheKey.CurrentSessionKey(email))
	pipe.Del(ctx, config.CacheKey.SessionLookupKey(session.QuizID.String(), email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	return nil
}

// List returns every stored record. Reporting and the live monitor read
// through this; order is unspecified.
func (s *SessionStore) List(ctx context.Context) ([]*model.TestSession, error) {
	raw, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionsCollection()).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]*model.TestSession, 0, len(raw))
	for id, doc := range raw {
		session, err := decodeSession([]byte(doc))
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("skipping undecodable session record")
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

// Subscribe opens the session-events channel for live monitoring.
func (s *SessionStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.SessionEventsChannel())
}

// EnqueueCheatEvent queues one integrity event for the persistence
// worker.
func (s *SessionStore) EnqueueCheatEvent(ctx context.Context, sessionID uuid.UUID, attempt model.CheatingAttempt) error {
	payload, err := json.Marshal(CheatEnvelope{SessionID: sessionID, Attempt: attempt})
	if err != nil {
		return fmt.Errorf("marshal cheat envelope: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistCheatsQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue cheat event: %w", err)
	}
	return nil
}

func decodeSession(raw []byte) (*model.TestSession, error) {
	var session model.TestSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
