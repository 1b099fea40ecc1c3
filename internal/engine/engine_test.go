package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// manualClock never fires its tickers; tests drive Tick directly.
type manualClock struct{}

type manualTicker struct{ c chan time.Time }

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               {}

func (manualClock) Now() time.Time                 { return time.Unix(1700000000, 0) }
func (manualClock) NewTicker(time.Duration) Ticker { return &manualTicker{c: make(chan time.Time)} }

func newTestEngine(store *fakeStore) *Engine {
	return New(Options{
		Store:                 store,
		Clock:                 manualClock{},
		ClassificationSeconds: 10,
		ResultSeconds:         3,
		Logger:                zerolog.Nop(),
	})
}

func testAttachArgs() (*model.TestSession, *model.Quiz, []model.Question) {
	quiz := &model.Quiz{ID: uuid.New(), Name: "Quiz", SecondsPerQuestion: 2}
	session := &model.TestSession{
		ID:        uuid.New(),
		QuizID:    quiz.ID,
		Status:    model.SessionStatusInProgress,
		StartedAt: time.Now(),
	}
	return session, quiz, testQuestions(2)
}

func TestAttachRevivesAndJoins(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	session, quiz, questions := testAttachArgs()

	rt1, token1, err := e.Attach(session, quiz, questions, func(Event) {})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !e.Live(session.ID) {
		t.Fatal("runtime not registered as live")
	}

	// A second stream for the same session joins the live runtime.
	rt2, token2, err := e.Attach(session.Clone(), quiz, questions, func(Event) {})
	if err != nil {
		t.Fatalf("second Attach: %v", err)
	}
	if rt1 != rt2 {
		t.Fatal("second attach must join the live runtime, not build a new one")
	}
	if token1 == token2 {
		t.Fatal("attach tokens must differ")
	}

	// The superseded stream's detach is a no-op.
	e.Detach(session.ID, token1)
	if !e.Live(session.ID) {
		t.Fatal("stale detach must not suspend the attempt")
	}

	// The current stream's detach suspends and drops the runtime.
	e.Detach(session.ID, token2)
	if e.Live(session.ID) {
		t.Fatal("detach must drop the runtime")
	}
	if store.lastSave() == nil {
		t.Fatal("detach must persist the record")
	}
}

func TestAttachRefusesTerminalSession(t *testing.T) {
	e := newTestEngine(&fakeStore{})
	session, quiz, questions := testAttachArgs()
	session.Status = model.SessionStatusCompleted

	if _, _, err := e.Attach(session, quiz, questions, func(Event) {}); err != ErrAttemptTerminal {
		t.Fatalf("Attach on terminal session = %v, want ErrAttemptTerminal", err)
	}
}

func TestTerminalRuntimeLeavesLiveSet(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)
	session, quiz, questions := testAttachArgs()

	rt, _, err := e.Attach(session, quiz, questions, func(Event) {})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	rt.Signal(model.SignalTabSwitch, "")
	rt.Signal(model.SignalTabSwitch, "")

	if e.Live(session.ID) {
		t.Fatal("cancelled attempt must be removed from the live set")
	}
}

func TestShutdownSuspendsAll(t *testing.T) {
	store := &fakeStore{}
	e := newTestEngine(store)

	for i := 0; i < 3; i++ {
		session, quiz, questions := testAttachArgs()
		if _, _, err := e.Attach(session, quiz, questions, func(Event) {}); err != nil {
			t.Fatalf("Attach #%d: %v", i, err)
		}
	}

	e.Shutdown()
	store.mu.Lock()
	saves := len(store.saves)
	store.mu.Unlock()
	if saves != 3 {
		t.Fatalf("shutdown persisted %d records, want 3", saves)
	}
}
