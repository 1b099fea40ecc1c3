package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionSelect records an answer choice for the current question.
	ActionSelect Action = "select"
	// ActionNext asks to advance past the current question.
	ActionNext Action = "next"
	// ActionSignal reports an integrity signal from the portal.
	ActionSignal Action = "signal"
	// ActionAssign places a classification term on a category.
	ActionAssign Action = "assign"
	// ActionValidate asks to grade the classification board.
	ActionValidate Action = "validate"
	ActionPing     Action = "ping"
)

// RequestPayload is the flat client message. Which fields matter depends
// on the action.
type RequestPayload struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
	Answer        *int   `json:"answer,omitempty"`
	Signal        string `json:"signal,omitempty"`
	Detail        string `json:"detail,omitempty"`
	TermID        string `json:"term_id,omitempty"`
	Category      string `json:"category,omitempty"`
}
