package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/engine"
	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/response"
	"github.com/alexpaac/testrh-backend/internal/service"
	ws "github.com/alexpaac/testrh-backend/internal/websocket"
)

// outgoingBuffer bounds the per-connection event queue. A consumer that
// cannot keep up with 1 Hz ticks loses events rather than stalling the
// runtime.
const outgoingBuffer = 64

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty origins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams one attempt over a WebSocket: the server pushes
// state, questions, ticks and sanctions; the client sends selections,
// advances and integrity signals.
type WSHandler struct {
	portal   *service.PortalService
	engine   *engine.Engine
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(portal *service.PortalService, eng *engine.Engine, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		portal:   portal,
		engine:   eng,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/test/sessions/:session_id/stream
func (h *WSHandler) AttemptStream(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	actx, err := h.portal.ResolveAttempt(c.Request.Context(), sessionID)
	if err != nil {
		code := response.ErrInternal
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			code = response.ErrSessionNotFound
		case errors.Is(err, service.ErrSessionFinalized):
			code = response.ErrSessionFinalized
		case errors.Is(err, service.ErrQuizUnresolvable):
			code = response.ErrQuizUnresolvable
		}
		ws.WriteError(conn, string(code), response.GetMessage(code))
		return
	}

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()

	outgoing := make(chan engine.Event, outgoingBuffer)
	sink := func(ev engine.Event) {
		select {
		case outgoing <- ev:
		default:
			// Slow consumer; the next state snapshot resyncs it.
		}
	}

	rt, token, err := h.engine.Attach(actx.Session, actx.Quiz, actx.Questions, sink)
	if err != nil {
		ws.WriteError(conn, string(response.ErrSessionFinalized), response.GetMessage(response.ErrSessionFinalized))
		return
	}
	wsLog.Info().Msg("candidate connected")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range outgoing {
			if err := ws.WriteEvent(conn, ev); err != nil {
				wsLog.Debug().Err(err).Msg("write failed, dropping connection")
				conn.Close()
				return
			}
		}
	}()

	// Full snapshot first so the client can render before any tick.
	sink(engine.Event{Type: engine.EventState, Data: rt.Snapshot()})

	h.readLoop(conn, rt, sink, wsLog)

	// Detach clears the sink under the runtime lock, so nothing emits
	// into outgoing after this returns.
	h.engine.Detach(sessionID, token)
	close(outgoing)
	<-writerDone
	wsLog.Info().Msg("candidate disconnected")
}

func (h *WSHandler) readLoop(conn *websocket.Conn, rt *engine.Runtime, sink engine.Sink, wsLog zerolog.Logger) {
	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("unexpected close")
			} else {
				wsLog.Debug().Msg("connection closed")
			}
			return
		}

		var actErr error
		switch msg.Action {
		case ws.ActionSelect:
			if msg.Answer == nil {
				sink(errorEvent(response.ErrInvalidPayload))
				continue
			}
			actErr = rt.Select(msg.QuestionIndex, *msg.Answer)
		case ws.ActionNext:
			actErr = rt.Next(msg.QuestionIndex)
		case ws.ActionSignal:
			actErr = rt.Signal(model.SignalType(msg.Signal), msg.Detail)
		case ws.ActionAssign:
			actErr = rt.Assign(msg.TermID, model.ClassificationCategory(msg.Category))
		case ws.ActionValidate:
			actErr = rt.Validate()
		case ws.ActionPing:
			sink(engine.Event{Type: engine.EventPong})
			continue
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("unknown action")
			sink(errorEvent(response.ErrInvalidPayload))
			continue
		}

		if actErr != nil {
			if errors.Is(actErr, engine.ErrAttemptTerminal) {
				// Terminal event already pushed; the client should close.
				return
			}
			sink(engine.Event{Type: engine.EventError, Data: engine.ErrorData{
				Code:    actionErrorCode(actErr),
				Message: actErr.Error(),
			}})
		}
	}
}

func errorEvent(code response.ErrCode) engine.Event {
	return engine.Event{Type: engine.EventError, Data: engine.ErrorData{
		Code:    string(code),
		Message: response.GetMessage(code),
	}}
}

func actionErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrStaleQuestion):
		return "STALE_QUESTION"
	case errors.Is(err, engine.ErrBadAnswer):
		return "BAD_ANSWER"
	case errors.Is(err, engine.ErrNoSelection):
		return "NO_SELECTION"
	case errors.Is(err, engine.ErrUnknownSignal):
		return "UNKNOWN_SIGNAL"
	case errors.Is(err, engine.ErrWrongPhase):
		return string(response.ErrClassificationState)
	case errors.Is(err, engine.ErrUnknownTerm):
		return "UNKNOWN_TERM"
	case errors.Is(err, engine.ErrUnknownCategory):
		return "UNKNOWN_CATEGORY"
	case errors.Is(err, engine.ErrBoardIncomplete):
		return "BOARD_INCOMPLETE"
	default:
		return string(response.ErrInternal)
	}
}
