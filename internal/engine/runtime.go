package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/scoring"
)

var (
	// ErrAttemptTerminal rejects any action on a completed or cancelled
	// attempt.
	ErrAttemptTerminal = errors.New("attempt already finalized")
	// ErrWrongPhase rejects an action that does not belong to the current
	// session status.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrStaleQuestion rejects a selection aimed at a question that is no
	// longer current.
	ErrStaleQuestion = errors.New("question already advanced")
	// ErrBadAnswer rejects an out-of-range choice index.
	ErrBadAnswer = errors.New("answer index out of range")
	// ErrNoSelection rejects a manual advance with no recorded answer.
	ErrNoSelection = errors.New("no answer selected")
	// ErrUnknownSignal rejects an unrecognized integrity signal type.
	ErrUnknownSignal = errors.New("unknown signal type")
)

const persistTimeout = 3 * time.Second

// SessionWriter is the persistence surface the runtime needs: full-record
// saves of the session plus append-only enqueueing of integrity events.
type SessionWriter interface {
	Save(ctx context.Context, session *model.TestSession) error
	EnqueueCheatEvent(ctx context.Context, sessionID uuid.UUID, attempt model.CheatingAttempt) error
}

// CompletionNotifier delivers the end-of-quiz notification. Failures must
// never affect the attempt; implementations log and swallow.
type CompletionNotifier interface {
	NotifyCompletion(session *model.TestSession, quizName string, corrections []bool)
}

// Params carries everything needed to build a Runtime for one attempt.
type Params struct {
	Quiz      *model.Quiz
	Questions []model.Question
	Session   *model.TestSession
	Store     SessionWriter
	Notifier  CompletionNotifier
	Policy    IntegrityPolicy
	Clock     Clock

	ClassificationSeconds int
	ResultSeconds         int

	Logger zerolog.Logger
}

// Runtime drives one live attempt: the question pacing, the integrity
// escalation and the classification phase. All state transitions are
// serialized behind one mutex so ticks and candidate actions can never
// interleave.
type Runtime struct {
	mu sync.Mutex

	quiz      *model.Quiz
	questions []model.Question
	session   *model.TestSession

	store    SessionWriter
	notifier CompletionNotifier
	clock    Clock
	log      zerolog.Logger

	classificationSeconds int
	resultSeconds         int

	index     int
	countdown *Countdown
	monitor   *integrityMonitor
	phase     *classificationPhase
	notified  bool

	sink    Sink
	sinkSeq uint64

	stopc      chan struct{}
	stopOnce   sync.Once
	onTerminal func(sessionID uuid.UUID)
}

// NewRuntime builds a runtime from a session record. A resumed attempt
// restarts at question zero with a fresh budget; previously recorded
// answers are preserved and pre-selected.
func NewRuntime(p Params) *Runtime {
	if p.Clock == nil {
		p.Clock = RealClock()
	}
	if p.Policy == nil {
		p.Policy = DefaultIntegrityPolicy()
	}

	r := &Runtime{
		quiz:                  p.Quiz,
		questions:             p.Questions,
		session:               p.Session,
		store:                 p.Store,
		notifier:              p.Notifier,
		clock:                 p.Clock,
		log:                   p.Logger.With().Str("component", "engine").Str("session_id", p.Session.ID.String()).Logger(),
		classificationSeconds: p.ClassificationSeconds,
		resultSeconds:         p.ResultSeconds,
		monitor:               newIntegrityMonitor(p.Policy, p.Session.CheatingAttempts),
		stopc:                 make(chan struct{}),
	}

	// Answers are index-aligned with the question order for the whole
	// quiz; unseen questions hold the NoAnswer sentinel.
	answers := make([]int, len(p.Questions))
	for i := range answers {
		answers[i] = model.NoAnswer
	}
	copy(answers, p.Session.Answers)
	r.session.Answers = answers

	switch r.session.Status {
	case model.SessionStatusClassification:
		// Board placements are not persisted; a resumed mini-game starts
		// over with the full phase budget.
		r.phase = newClassificationPhase(r.classificationSeconds)
		r.notified = r.session.Score != nil
	default:
		r.countdown = NewCountdown(r.budget(0))
	}

	return r
}

// Start launches the 1 Hz loop. Tests drive Tick directly instead.
func (r *Runtime) Start() {
	go r.run()
}

func (r *Runtime) run() {
	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			r.Tick()
		case <-r.stopc:
			return
		}
	}
}

// SetSink attaches an event sink and returns a token identifying this
// attachment. A later attach invalidates earlier tokens.
func (r *Runtime) SetSink(s Sink) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinkSeq++
	r.sink = s
	return r.sinkSeq
}

// DetachSink clears the sink if token still identifies the current
// attachment. Returns false when a newer attach superseded it.
func (r *Runtime) DetachSink(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.sinkSeq {
		return false
	}
	r.sink = nil
	return true
}

// Suspend persists the attempt and halts the loop without finalizing.
// Called when the candidate disconnects mid-attempt.
func (r *Runtime) Suspend() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session.Status.Terminal() {
		return
	}
	r.persist()
	r.halt()
}

// Session returns a deep copy of the current record.
func (r *Runtime) Session() *model.TestSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Clone()
}

// Snapshot builds the full state event sent on attach.
func (r *Runtime) Snapshot() StateData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Runtime) snapshotLocked() StateData {
	sd := StateData{
		SessionID:         r.session.ID.String(),
		Status:            r.session.Status,
		QuizName:          r.quiz.Name,
		Answers:           append([]int(nil), r.session.Answers...),
		WarningActive:     r.monitor.Warned(),
		SuppressedSignals: SuppressedSignals(),
	}
	switch r.session.Status {
	case model.SessionStatusInProgress:
		q := r.questionData(r.index)
		sd.Question = &q
		sd.TimeLeft = r.countdown.Remaining()
	case model.SessionStatusClassification:
		pd := r.phaseData()
		sd.Classification = &pd
		sd.TimeLeft = r.phase.countdown.Remaining()
	}
	return sd
}

// Tick advances all countdowns by one second. Driven by the run loop in
// production and called directly by tests.
func (r *Runtime) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.session.Status {
	case model.SessionStatusInProgress:
		r.session.CompletionTime++
		remaining, expired := r.countdown.Tick()
		r.emit(Event{Type: EventTick, Data: TickData{Phase: PhaseQuiz, TimeLeft: remaining}})
		if expired {
			r.advance()
		}
	case model.SessionStatusClassification:
		if r.phase.validated {
			if _, expired := r.phase.resultWait.Tick(); expired {
				r.complete()
			}
			return
		}
		remaining, expired := r.phase.countdown.Tick()
		r.emit(Event{Type: EventTick, Data: TickData{Phase: PhaseClassification, TimeLeft: remaining}})
		if expired {
			r.validatePhase(true)
		}
	}
}

// Select records the candidate's choice for the current question. The
// questionIndex guards against a stale click racing an auto-advance.
func (r *Runtime) Select(questionIndex, answer int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Status.Terminal() {
		return ErrAttemptTerminal
	}
	if r.session.Status != model.SessionStatusInProgress {
		return ErrWrongPhase
	}
	if questionIndex != r.index {
		return ErrStaleQuestion
	}
	if answer < 0 || answer >= len(r.questions[r.index].Choices) {
		return ErrBadAnswer
	}
	r.session.Answers[r.index] = answer
	return nil
}

// Next advances past the current question on the candidate's request. A
// questionIndex that no longer matches means the countdown advanced
// first; the duplicate is dropped without error.
func (r *Runtime) Next(questionIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Status.Terminal() {
		return ErrAttemptTerminal
	}
	if r.session.Status != model.SessionStatusInProgress {
		return ErrWrongPhase
	}
	if questionIndex != r.index {
		r.log.Debug().Int("got", questionIndex).Int("current", r.index).Msg("dropping stale next")
		return nil
	}
	if r.session.Answers[r.index] == model.NoAnswer {
		return ErrNoSelection
	}
	r.advance()
	return nil
}

// Signal records one integrity signal and applies the escalation policy.
func (r *Runtime) Signal(signalType model.SignalType, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !model.KnownSignal(signalType) {
		return ErrUnknownSignal
	}
	if r.session.Status.Terminal() {
		return ErrAttemptTerminal
	}

	verdict := r.monitor.Observe(signalType)
	attempt := model.CheatingAttempt{
		Type:      signalType,
		Timestamp: r.clock.Now(),
		Warning:   verdict == VerdictWarned,
		Metadata: model.SignalContext{
			QuestionIndex: r.index,
			TimeLeft:      r.timeLeft(),
			Phase:         r.phaseName(),
			Detail:        detail,
		},
	}
	r.session.CheatingAttempts = append(r.session.CheatingAttempts, attempt)
	r.enqueueCheat(attempt)
	r.persist()

	switch verdict {
	case VerdictWarned:
		r.emit(Event{Type: EventWarning, Data: WarningData{
			Message: "Changement d'onglet détecté. Au prochain changement, votre test sera annulé.",
		}})
	case VerdictCancelled:
		r.cancel()
	}
	return nil
}

// Assign places a term on a category during the classification phase.
func (r *Runtime) Assign(termID string, category model.ClassificationCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Status.Terminal() {
		return ErrAttemptTerminal
	}
	if r.session.Status != model.SessionStatusClassification || r.phase.validated {
		return ErrWrongPhase
	}
	return r.phase.Assign(termID, category)
}

// Validate grades the board on the candidate's request. Requires every
// term to be placed; the phase countdown forces validation otherwise.
func (r *Runtime) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Status.Terminal() {
		return ErrAttemptTerminal
	}
	if r.session.Status != model.SessionStatusClassification || r.phase.validated {
		return ErrWrongPhase
	}
	if !r.phase.Complete() {
		return ErrBoardIncomplete
	}
	r.validatePhase(false)
	return nil
}

// advance records the current question as done and moves on, finishing
// the quiz after the last one. An unanswered question keeps NoAnswer.
func (r *Runtime) advance() {
	r.persist()
	if r.index+1 < len(r.questions) {
		r.index++
		r.countdown.Reset(r.budget(r.index))
		q := r.questionData(r.index)
		r.emit(Event{Type: EventQuestion, Data: q})
		return
	}
	r.finishQuiz()
}

func (r *Runtime) finishQuiz() {
	correct := r.correctIndexes()
	score := scoring.QuizScore(r.session.Answers, correct)
	r.session.Score = &score

	if !r.notified {
		r.notified = true
		if r.notifier != nil {
			corrections := scoring.Corrections(r.session.Answers, correct)
			go r.notifier.NotifyCompletion(r.session.Clone(), r.quiz.Name, corrections)
		}
	}

	if r.quiz.HasClassificationGame {
		r.session.Status = model.SessionStatusClassification
		r.phase = newClassificationPhase(r.classificationSeconds)
		r.persist()
		pd := r.phaseData()
		r.emit(Event{Type: EventPhase, Data: pd})
		return
	}
	r.complete()
}

func (r *Runtime) validatePhase(forced bool) {
	result, err := r.phase.Validate(forced, r.resultSeconds)
	if err != nil {
		// Unreachable for forced validation.
		r.log.Error().Err(err).Msg("classification validation failed")
		return
	}
	result.CompletedAt = r.clock.Now()
	r.session.ClassificationScore = &result.Score
	r.persist()
	r.emit(Event{Type: EventClassificationResult, Data: ClassificationResultData{
		Score:      result.Score,
		PerTerm:    result.PerTerm,
		RedirectIn: r.resultSeconds,
	}})
	if r.resultSeconds <= 0 {
		r.complete()
	}
}

func (r *Runtime) complete() {
	now := r.clock.Now()
	r.session.Status = model.SessionStatusCompleted
	r.session.CompletedAt = &now
	r.persist()
	r.emit(Event{Type: EventCompleted, Data: CompletedData{
		Score:               r.session.Score,
		ClassificationScore: r.session.ClassificationScore,
		CompletionTime:      r.session.CompletionTime,
	}})
	r.terminate()
}

func (r *Runtime) cancel() {
	now := r.clock.Now()
	r.session.Status = model.SessionStatusCancelled
	r.session.CompletedAt = &now
	r.persist()
	r.emit(Event{Type: EventCancelled, Data: CancelledData{
		Message:     "Test annulé suite à un second changement d'onglet.",
		CompletedAt: now,
	}})
	r.terminate()
}

func (r *Runtime) terminate() {
	r.halt()
	if r.onTerminal != nil {
		r.onTerminal(r.session.ID)
	}
}

func (r *Runtime) halt() {
	r.stopOnce.Do(func() { close(r.stopc) })
}

func (r *Runtime) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := r.store.Save(ctx, r.session.Clone()); err != nil {
		r.log.Error().Err(err).Msg("failed to persist session")
	}
}

func (r *Runtime) enqueueCheat(attempt model.CheatingAttempt) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := r.store.EnqueueCheatEvent(ctx, r.session.ID, attempt); err != nil {
		r.log.Error().Err(err).Msg("failed to enqueue cheat event")
	}
}

func (r *Runtime) emit(ev Event) {
	if r.sink != nil {
		r.sink(ev)
	}
}

func (r *Runtime) budget(i int) int {
	return r.questions[i].EffectiveTimeLimit(r.quiz.SecondsPerQuestion)
}

func (r *Runtime) correctIndexes() []int {
	out := make([]int, len(r.questions))
	for i, q := range r.questions {
		out[i] = q.CorrectAnswer
	}
	return out
}

func (r *Runtime) questionData(i int) QuestionData {
	q := r.questions[i]
	return QuestionData{
		Index:     i,
		Total:     len(r.questions),
		Prompt:    q.Prompt,
		Choices:   append([]string(nil), q.Choices...),
		TimeLimit: r.budget(i),
		Selected:  r.session.Answers[i],
	}
}

func (r *Runtime) phaseData() PhaseData {
	assignments := make(map[string]model.ClassificationCategory, len(r.phase.assignments))
	for id, c := range r.phase.assignments {
		assignments[id] = c
	}
	return PhaseData{
		Terms: model.ClassificationTerms(),
		Categories: []model.ClassificationCategory{
			model.CategoryBalanceAsset,
			model.CategoryBalanceLiability,
			model.CategoryIncomeRevenue,
			model.CategoryIncomeExpense,
		},
		Assignments: assignments,
		TimeLeft:    r.phase.countdown.Remaining(),
	}
}

func (r *Runtime) timeLeft() int {
	switch r.session.Status {
	case model.SessionStatusInProgress:
		return r.countdown.Remaining()
	case model.SessionStatusClassification:
		return r.phase.countdown.Remaining()
	}
	return 0
}

func (r *Runtime) phaseName() string {
	if r.session.Status == model.SessionStatusClassification {
		return PhaseClassification
	}
	return PhaseQuiz
}
