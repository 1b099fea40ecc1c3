package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// Options configures the engine for all attempts it manages.
type Options struct {
	Store    SessionWriter
	Notifier CompletionNotifier
	Policy   IntegrityPolicy
	Clock    Clock

	ClassificationSeconds int
	ResultSeconds         int

	Logger zerolog.Logger
}

// Engine owns the live runtimes, one per open attempt. Attaching a
// stream to a session either joins its live runtime or revives one from
// the persisted record.
type Engine struct {
	mu       sync.Mutex
	runtimes map[uuid.UUID]*Runtime
	opts     Options
	log      zerolog.Logger
}

// New builds an engine with no live attempts.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Policy == nil {
		opts.Policy = DefaultIntegrityPolicy()
	}
	return &Engine{
		runtimes: make(map[uuid.UUID]*Runtime),
		opts:     opts,
		log:      opts.Logger.With().Str("component", "engine").Logger(),
	}
}

// Attach binds an event sink to the session's runtime, starting one from
// the record if none is live, and returns the runtime plus the sink
// token needed to detach. The session must not be terminal.
func (e *Engine) Attach(session *model.TestSession, quiz *model.Quiz, questions []model.Question, sink Sink) (*Runtime, uint64, error) {
	if session.Status.Terminal() {
		return nil, 0, ErrAttemptTerminal
	}

	e.mu.Lock()
	rt, live := e.runtimes[session.ID]
	if !live {
		rt = NewRuntime(Params{
			Quiz:                  quiz,
			Questions:             questions,
			Session:               session,
			Store:                 e.opts.Store,
			Notifier:              e.opts.Notifier,
			Policy:                e.opts.Policy,
			Clock:                 e.opts.Clock,
			ClassificationSeconds: e.opts.ClassificationSeconds,
			ResultSeconds:         e.opts.ResultSeconds,
			Logger:                e.opts.Logger,
		})
		rt.onTerminal = e.remove
		e.runtimes[session.ID] = rt
	}
	e.mu.Unlock()

	token := rt.SetSink(sink)
	if !live {
		rt.Start()
	}
	return rt, token, nil
}

// Detach releases a sink attachment. When the token is still current the
// attempt is suspended: persisted, halted and dropped from the live set
// so a later resume restarts its pacing from the record.
func (e *Engine) Detach(sessionID uuid.UUID, token uint64) {
	e.mu.Lock()
	rt, ok := e.runtimes[sessionID]
	e.mu.Unlock()
	if !ok {
		return
	}
	if !rt.DetachSink(token) {
		// A newer stream took over this attempt.
		return
	}
	rt.Suspend()
	e.remove(sessionID)
}

// Live reports whether the session currently has a live runtime.
func (e *Engine) Live(sessionID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.runtimes[sessionID]
	return ok
}

// Shutdown suspends every live attempt, persisting their records.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	rts := make([]*Runtime, 0, len(e.runtimes))
	for _, rt := range e.runtimes {
		rts = append(rts, rt)
	}
	e.runtimes = make(map[uuid.UUID]*Runtime)
	e.mu.Unlock()

	for _, rt := range rts {
		rt.Suspend()
	}
	e.log.Info().Int("count", len(rts)).Msg("suspended live attempts")
}

func (e *Engine) remove(sessionID uuid.UUID) {
	e.mu.Lock()
	delete(e.runtimes, sessionID)
	e.mu.Unlock()
}
