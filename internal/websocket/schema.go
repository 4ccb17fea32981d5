package websocket

import "github.com/Juenzo/CloudComputing-Project/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// Request is any client message. QuestionID and ChoiceID are only read for
// ActionSelect.
type Request struct {
	Action     Action `json:"action"`
	QuestionID int64  `json:"question_id,omitempty"`
	ChoiceID   int64  `json:"choice_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStarted  Event = "started"
	EventSelected Event = "selected"
	EventGraded   Event = "graded"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// StartedResponse opens every attempt stream.
type StartedResponse struct {
	Event     Event             `json:"event"`
	AttemptID string            `json:"attempt_id"`
	Quiz      *model.PublicQuiz `json:"quiz"`
}

type SelectedResponse struct {
	Event      Event `json:"event"`
	QuestionID int64 `json:"question_id"`
	ChoiceID   int64 `json:"choice_id"`
}

// GradedResponse is the last message of an attempt; the server closes the
// stream after sending it.
type GradedResponse struct {
	Event  Event              `json:"event"`
	Result *model.GradeResult `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
