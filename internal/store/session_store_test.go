package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/model"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb, zerolog.Nop()), mr
}

func testSession() *model.TestSession {
	return &model.TestSession{
		ID:     uuid.New(),
		QuizID: uuid.New(),
		Candidate: model.CandidateInfo{
			FirstName: "Marie",
			LastName:  "Curie",
			Email:     "marie@exemple.fr",
			Level:     model.LevelC2,
		},
		Status:    model.SessionStatusInProgress,
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Answers:   []int{0, model.NoAnswer},
	}
}

func TestSaveAndGetByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != session.ID || got.Status != session.Status {
		t.Fatalf("got %+v, want %+v", got, session)
	}
	if len(got.Answers) != 2 || got.Answers[1] != model.NoAnswer {
		t.Fatalf("answers = %v, want [0 -1]", got.Answers)
	}
}

func TestSaveMaintainsPointers(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current, err := s.GetCurrent(ctx, session.Candidate.Email)
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if current.ID != session.ID {
		t.Fatalf("current = %s, want %s", current.ID, session.ID)
	}

	found, err := s.FindByQuizAndEmail(ctx, session.QuizID, session.Candidate.Email)
	if err != nil {
		t.Fatalf("FindByQuizAndEmail: %v", err)
	}
	if found.ID != session.ID {
		t.Fatalf("lookup = %s, want %s", found.ID, session.ID)
	}

	// Finishing the attempt clears the current pointer but keeps the
	// record and the quiz lookup for the replay guard.
	now := time.Now()
	score := 67
	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
	session.Score = &score
	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("terminal Save: %v", err)
	}

	if _, err := s.GetCurrent(ctx, session.Candidate.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCurrent after completion = %v, want ErrNotFound", err)
	}
	found, err = s.FindByQuizAndEmail(ctx, session.QuizID, session.Candidate.Email)
	if err != nil {
		t.Fatalf("FindByQuizAndEmail after completion: %v", err)
	}
	if found.Status != model.SessionStatusCompleted {
		t.Fatalf("status = %s, want completed", found.Status)
	}
	if !mr.Exists(config.CacheKey.SessionsCollection()) {
		t.Fatal("record hash must survive completion")
	}
}

func TestSaveRefusesOverwritingTerminalRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	session := testSession()
	now := time.Now()
	session.Status = model.SessionStatusCancelled
	session.CompletedAt = &now

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	session.Status = model.SessionStatusInProgress
	session.CompletedAt = nil
	if err := s.Save(ctx, session); !errors.Is(err, ErrFinalized) {
		t.Fatalf("Save over terminal record = %v, want ErrFinalized", err)
	}
}

func TestSaveEnqueuesAndPublishes(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	sub := s.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var ev SessionEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.SessionID != session.ID || ev.Status != model.SessionStatusInProgress {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no session event published")
	}

	if n, _ := mr.List(config.WorkerKey.PersistSessionsQueue); len(n) != 1 {
		t.Fatalf("persist queue length = %d, want 1", len(n))
	}
}

func TestEnqueueCheatEvent(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	attempt := model.CheatingAttempt{
		Type:      model.SignalTabSwitch,
		Timestamp: time.Now().UTC(),
		Warning:   true,
		Metadata:  model.SignalContext{QuestionIndex: 2, TimeLeft: 14, Phase: "quiz"},
	}
	if err := s.EnqueueCheatEvent(ctx, sessionID, attempt); err != nil {
		t.Fatalf("EnqueueCheatEvent: %v", err)
	}

	items, err := mr.List(config.WorkerKey.PersistCheatsQueue)
	if err != nil || len(items) != 1 {
		t.Fatalf("queue = %v (%v), want one entry", items, err)
	}
	var env CheatEnvelope
	if err := json.Unmarshal([]byte(items[0]), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.SessionID != sessionID || env.Attempt.Type != model.SignalTabSwitch {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestDiscardRemovesEverything(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Discard(ctx, session); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	if _, err := s.GetByID(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID after discard = %v, want ErrNotFound", err)
	}
	if _, err := s.GetCurrent(ctx, session.Candidate.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCurrent after discard = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByQuizAndEmail(ctx, session.QuizID, session.Candidate.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup after discard = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		session := testSession()
		session.Candidate.Email = session.ID.String() + "@exemple.fr"
		if err := s.Save(ctx, session); err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
	}

	sessions, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("List returned %d sessions, want 3", len(sessions))
	}
}
