package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
)

type fakeStore struct {
	mu     sync.Mutex
	saves  []*model.TestSession
	cheats []model.CheatingAttempt
}

func (f *fakeStore) Save(_ context.Context, s *model.TestSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, s)
	return nil
}

func (f *fakeStore) EnqueueCheatEvent(_ context.Context, _ uuid.UUID, a model.CheatingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cheats = append(f.cheats, a)
	return nil
}

func (f *fakeStore) lastSave() *model.TestSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

type fakeNotifier struct {
	done chan *model.TestSession
}

func (f *fakeNotifier) NotifyCompletion(s *model.TestSession, _ string, _ []bool) {
	f.done <- s
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) sink(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofType(t EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            uuid.New(),
			Prompt:        "Question",
			Choices:       []string{"A", "B", "C"},
			CorrectAnswer: 0,
		}
	}
	return qs
}

type runtimeFixture struct {
	rt       *Runtime
	store    *fakeStore
	notifier *fakeNotifier
	rec      *eventRecorder
}

func newFixture(t *testing.T, questions []model.Question, mutate func(*model.Quiz, *model.TestSession)) *runtimeFixture {
	t.Helper()

	quiz := &model.Quiz{
		ID:                 uuid.New(),
		Name:               "Test comptabilité",
		Status:             model.QuizStatusActive,
		SecondsPerQuestion: 2,
	}
	session := &model.TestSession{
		ID:        uuid.New(),
		QuizID:    quiz.ID,
		Candidate: model.CandidateInfo{FirstName: "Jean", LastName: "Dupont", Email: "jean@exemple.fr", Level: model.LevelC1},
		Status:    model.SessionStatusInProgress,
		StartedAt: time.Now(),
	}
	if mutate != nil {
		mutate(quiz, session)
	}

	store := &fakeStore{}
	notifier := &fakeNotifier{done: make(chan *model.TestSession, 1)}
	rec := &eventRecorder{}

	rt := NewRuntime(Params{
		Quiz:                  quiz,
		Questions:             questions,
		Session:               session,
		Store:                 store,
		Notifier:              notifier,
		Clock:                 RealClock(),
		ClassificationSeconds: 10,
		ResultSeconds:         3,
		Logger:                zerolog.Nop(),
	})
	rt.SetSink(rec.sink)
	// The loop is never started; tests drive Tick directly.
	return &runtimeFixture{rt: rt, store: store, notifier: notifier, rec: rec}
}

func (f *runtimeFixture) waitNotification(t *testing.T) *model.TestSession {
	t.Helper()
	select {
	case s := <-f.notifier.done:
		return s
	case <-time.After(time.Second):
		t.Fatal("completion notification never delivered")
		return nil
	}
}

func TestAutoAdvanceRecordsNoAnswer(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	f.rt.Tick()
	f.rt.Tick() // budget of 2s expires

	snap := f.rt.Snapshot()
	if snap.Question == nil || snap.Question.Index != 1 {
		t.Fatalf("expected advance to question 1, got %+v", snap.Question)
	}
	if snap.Answers[0] != model.NoAnswer {
		t.Fatalf("Answers[0] = %d, want %d", snap.Answers[0], model.NoAnswer)
	}
	if len(f.rec.ofType(EventQuestion)) != 1 {
		t.Fatal("expected one question event after auto-advance")
	}
	if snap.TimeLeft != 2 {
		t.Fatalf("new question budget = %d, want 2", snap.TimeLeft)
	}
}

func TestManualNextRequiresSelection(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	if err := f.rt.Next(0); err != ErrNoSelection {
		t.Fatalf("Next without selection = %v, want ErrNoSelection", err)
	}
	if err := f.rt.Select(0, 1); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := f.rt.Next(0); err != nil {
		t.Fatalf("Next: %v", err)
	}
	snap := f.rt.Snapshot()
	if snap.Question.Index != 1 {
		t.Fatalf("index = %d, want 1", snap.Question.Index)
	}
	if snap.Answers[0] != 1 {
		t.Fatalf("Answers[0] = %d, want 1", snap.Answers[0])
	}
}

func TestStaleNextIsDropped(t *testing.T) {
	f := newFixture(t, testQuestions(3), nil)

	f.rt.Select(0, 2)
	f.rt.Tick()
	f.rt.Tick() // countdown expires, auto-advance wins the race

	// The candidate's late click for question 0 arrives after.
	if err := f.rt.Next(0); err != nil {
		t.Fatalf("stale Next = %v, want nil no-op", err)
	}
	snap := f.rt.Snapshot()
	if snap.Question.Index != 1 {
		t.Fatalf("index = %d, want 1 (stale next must not double-advance)", snap.Question.Index)
	}
}

func TestSelectRejectsBadInput(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	if err := f.rt.Select(1, 0); err != ErrStaleQuestion {
		t.Fatalf("Select on wrong index = %v, want ErrStaleQuestion", err)
	}
	if err := f.rt.Select(0, 3); err != ErrBadAnswer {
		t.Fatalf("Select out of range = %v, want ErrBadAnswer", err)
	}
	if err := f.rt.Select(0, -1); err != ErrBadAnswer {
		t.Fatalf("Select negative = %v, want ErrBadAnswer", err)
	}
}

func TestFirstTabSwitchWarnsOnly(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	if err := f.rt.Signal(model.SignalTabSwitch, ""); err != nil {
		t.Fatalf("Signal: %v", err)
	}

	if len(f.rec.ofType(EventWarning)) != 1 {
		t.Fatal("expected one warning event")
	}
	if len(f.rec.ofType(EventCancelled)) != 0 {
		t.Fatal("single tab switch must never cancel")
	}
	s := f.rt.Session()
	if s.Status != model.SessionStatusInProgress {
		t.Fatalf("status = %s, want in_progress", s.Status)
	}
	if len(s.CheatingAttempts) != 1 || !s.CheatingAttempts[0].Warning {
		t.Fatalf("cheating attempts = %+v, want one warning entry", s.CheatingAttempts)
	}
}

func TestSecondTabSwitchCancels(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	f.rt.Signal(model.SignalTabSwitch, "")
	f.rt.Signal(model.SignalTabSwitch, "")

	s := f.rt.Session()
	if s.Status != model.SessionStatusCancelled {
		t.Fatalf("status = %s, want cancelled", s.Status)
	}
	if s.CompletedAt == nil {
		t.Fatal("cancellation must set completed_at")
	}
	if s.Score != nil {
		t.Fatal("a cancelled attempt must not carry a score")
	}
	if len(f.rec.ofType(EventCancelled)) != 1 {
		t.Fatal("expected one cancelled event")
	}

	// Everything is refused afterwards.
	if err := f.rt.Select(0, 0); err != ErrAttemptTerminal {
		t.Fatalf("Select after cancel = %v, want ErrAttemptTerminal", err)
	}
	if err := f.rt.Signal(model.SignalTabSwitch, ""); err != ErrAttemptTerminal {
		t.Fatalf("Signal after cancel = %v, want ErrAttemptTerminal", err)
	}
	saved := f.store.lastSave()
	if saved == nil || saved.Status != model.SessionStatusCancelled {
		t.Fatal("terminal record was not persisted")
	}
}

func TestPassiveSignalsAreEvidenceOnly(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	for _, sig := range []model.SignalType{
		model.SignalWindowBlur,
		model.SignalFocusRegain,
		model.SignalRightClick,
		model.SignalDevTools,
	} {
		if err := f.rt.Signal(sig, "x"); err != nil {
			t.Fatalf("Signal(%s): %v", sig, err)
		}
	}

	if len(f.rec.ofType(EventWarning))+len(f.rec.ofType(EventCancelled)) != 0 {
		t.Fatal("passive signals must not warn or cancel")
	}
	s := f.rt.Session()
	if len(s.CheatingAttempts) != 4 {
		t.Fatalf("logged %d attempts, want 4", len(s.CheatingAttempts))
	}
	f.store.mu.Lock()
	queued := len(f.store.cheats)
	f.store.mu.Unlock()
	if queued != 4 {
		t.Fatalf("enqueued %d cheat events, want 4", queued)
	}
}

func TestUnknownSignalRejected(t *testing.T) {
	f := newFixture(t, testQuestions(1), nil)
	if err := f.rt.Signal("screenshot", ""); err != ErrUnknownSignal {
		t.Fatalf("Signal(screenshot) = %v, want ErrUnknownSignal", err)
	}
}

func TestQuizCompletionWithoutClassification(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	f.rt.Select(0, 0)
	f.rt.Next(0)
	f.rt.Select(1, 1) // wrong
	f.rt.Next(1)

	s := f.rt.Session()
	if s.Status != model.SessionStatusCompleted {
		t.Fatalf("status = %s, want completed", s.Status)
	}
	if s.Score == nil || *s.Score != 50 {
		t.Fatalf("score = %v, want 50", s.Score)
	}
	if s.CompletedAt == nil {
		t.Fatal("completion must set completed_at")
	}
	if len(f.rec.ofType(EventCompleted)) != 1 {
		t.Fatal("expected one completed event")
	}

	notified := f.waitNotification(t)
	if notified.Score == nil || *notified.Score != 50 {
		t.Fatalf("notified score = %v, want 50", notified.Score)
	}
}

func TestCompletionTimeCountsInProgressOnly(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	f.rt.Tick()
	f.rt.Signal(model.SignalTabSwitch, "")
	f.rt.Signal(model.SignalTabSwitch, "")
	f.rt.Tick() // terminal, must not count

	s := f.rt.Session()
	if s.CompletionTime != 1 {
		t.Fatalf("completion_time = %d, want 1", s.CompletionTime)
	}
}

func TestClassificationPhaseFlow(t *testing.T) {
	f := newFixture(t, testQuestions(1), func(q *model.Quiz, _ *model.TestSession) {
		q.HasClassificationGame = true
	})

	f.rt.Select(0, 0)
	f.rt.Next(0)

	s := f.rt.Session()
	if s.Status != model.SessionStatusClassification {
		t.Fatalf("status = %s, want classification_game", s.Status)
	}
	if s.Score == nil || *s.Score != 100 {
		t.Fatalf("quiz score = %v, want 100 before the mini-game", s.Score)
	}
	// The webhook fires at quiz finish, before the mini-game.
	f.waitNotification(t)
	if len(f.rec.ofType(EventPhase)) != 1 {
		t.Fatal("expected one phase event")
	}

	// Manual validation is refused while the board is incomplete.
	if err := f.rt.Validate(); err != ErrBoardIncomplete {
		t.Fatalf("Validate on partial board = %v, want ErrBoardIncomplete", err)
	}

	for _, term := range model.ClassificationTerms() {
		if err := f.rt.Assign(term.ID, term.CorrectCategory); err != nil {
			t.Fatalf("Assign(%s): %v", term.ID, err)
		}
	}
	if err := f.rt.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	results := f.rec.ofType(EventClassificationResult)
	if len(results) != 1 {
		t.Fatal("expected one classification_result event")
	}
	data := results[0].Data.(ClassificationResultData)
	if data.Score != 100 {
		t.Fatalf("classification score = %d, want 100", data.Score)
	}

	// Still showing the result; three ticks later the attempt finalizes.
	if st := f.rt.Session().Status; st != model.SessionStatusClassification {
		t.Fatalf("status = %s, want classification_game during result pause", st)
	}
	f.rt.Tick()
	f.rt.Tick()
	f.rt.Tick()

	s = f.rt.Session()
	if s.Status != model.SessionStatusCompleted {
		t.Fatalf("status = %s, want completed after result pause", s.Status)
	}
	if s.ClassificationScore == nil || *s.ClassificationScore != 100 {
		t.Fatalf("classification_score = %v, want 100", s.ClassificationScore)
	}
}

func TestClassificationForcedValidation(t *testing.T) {
	f := newFixture(t, testQuestions(1), func(q *model.Quiz, _ *model.TestSession) {
		q.HasClassificationGame = true
	})
	// Shrink the phase budget for the test.
	f.rt.classificationSeconds = 2

	f.rt.Select(0, 0)
	f.rt.Next(0)
	f.waitNotification(t)

	terms := model.ClassificationTerms()
	for i := 0; i < 5; i++ {
		if err := f.rt.Assign(terms[i].ID, terms[i].CorrectCategory); err != nil {
			t.Fatalf("Assign: %v", err)
		}
	}

	// Run the phase countdown out.
	for f.rt.Session().Status == model.SessionStatusClassification && f.rt.phase.countdown.Remaining() > 0 {
		f.rt.Tick()
	}

	results := f.rec.ofType(EventClassificationResult)
	if len(results) != 1 {
		t.Fatal("expected forced validation to emit a result")
	}
	data := results[0].Data.(ClassificationResultData)
	if data.Score != 42 {
		t.Fatalf("forced score = %d, want 42 (5 of 12)", data.Score)
	}
	if err := f.rt.Assign(terms[6].ID, terms[6].CorrectCategory); err != ErrWrongPhase {
		t.Fatalf("Assign after validation = %v, want ErrWrongPhase", err)
	}
}

func TestResumePreservesAnswers(t *testing.T) {
	f := newFixture(t, testQuestions(3), func(_ *model.Quiz, s *model.TestSession) {
		s.Answers = []int{1}
		s.CompletionTime = 40
		s.CheatingAttempts = []model.CheatingAttempt{
			{Type: model.SignalTabSwitch, Timestamp: time.Now(), Warning: true},
		}
	})

	snap := f.rt.Snapshot()
	// Resume restarts at the first question with a fresh budget but keeps
	// the recorded selection and the standing warning.
	if snap.Question.Index != 0 {
		t.Fatalf("resume index = %d, want 0", snap.Question.Index)
	}
	if snap.Question.Selected != 1 {
		t.Fatalf("resume selection = %d, want 1", snap.Question.Selected)
	}
	if snap.TimeLeft != 2 {
		t.Fatalf("resume budget = %d, want full 2", snap.TimeLeft)
	}
	if !snap.WarningActive {
		t.Fatal("resume must keep the standing warning")
	}

	// The next tab switch is the second overall.
	f.rt.Signal(model.SignalTabSwitch, "")
	if st := f.rt.Session().Status; st != model.SessionStatusCancelled {
		t.Fatalf("status = %s, want cancelled", st)
	}
}

func TestSuspendPersistsWithoutFinalizing(t *testing.T) {
	f := newFixture(t, testQuestions(2), nil)

	f.rt.Select(0, 2)
	f.rt.Suspend()

	saved := f.store.lastSave()
	if saved == nil {
		t.Fatal("suspend must persist the record")
	}
	if saved.Status != model.SessionStatusInProgress {
		t.Fatalf("suspended status = %s, want in_progress", saved.Status)
	}
	if saved.Answers[0] != 2 {
		t.Fatalf("suspended Answers[0] = %d, want 2", saved.Answers[0])
	}
}

func TestPerQuestionTimeLimitOverride(t *testing.T) {
	qs := testQuestions(2)
	qs[1].TimeLimit = 5
	f := newFixture(t, qs, nil)

	f.rt.Select(0, 0)
	f.rt.Next(0)
	snap := f.rt.Snapshot()
	if snap.TimeLeft != 5 {
		t.Fatalf("override budget = %d, want 5", snap.TimeLeft)
	}
}
