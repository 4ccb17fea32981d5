package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
	ws "github.com/Juenzo/CloudComputing-Project/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams live quiz attempts.
type WSHandler struct {
	attempts AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// QuizAttemptStream godoc
// WS /ws/quiz/:id/attempt
// Opens a live attempt: the learner view is pushed on connect, selections are
// kept server-side until "submit" grades them and ends the stream.
func (h *WSHandler) QuizAttemptStream(c *gin.Context) {
	quizID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	attemptID, pub, err := h.attempts.StartAttempt(ctx, quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
			return
		}
		failWith(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int64("quiz_id", quizID).
		Str("attempt_id", attemptID).
		Logger()
	wsLog.Info().Msg("Attempt started")

	submitted := false
	defer func() {
		if !submitted {
			h.attempts.AbandonAttempt(context.WithoutCancel(ctx), quizID, attemptID)
		}
	}()

	if err := ws.WriteTyped(conn, ws.StartedResponse{Event: ws.EventStarted, AttemptID: attemptID, Quiz: pub}); err != nil {
		wsLog.Warn().Err(err).Msg("Failed to send attempt")
		return
	}

	valid := choiceSet(pub)
	for {
		var msg ws.Request
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSelect:
			h.handleSelect(ctx, conn, wsLog, quizID, attemptID, valid, &msg)
		case ws.ActionSubmit:
			if h.handleSubmit(ctx, conn, wsLog, quizID, attemptID) {
				submitted = true
				ws.Close(conn, "graded")
				return
			}
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, response.GetMessage(response.ErrUnknownAction)+" "+string(msg.Action))
		}
	}
}

// handleSelect records one selection. Pairs that are not part of the quiz
// are refused so the attempt hash only holds real references.
func (h *WSHandler) handleSelect(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, quizID int64, attemptID string, valid map[int64]map[int64]bool, msg *ws.Request) {
	if !valid[msg.QuestionID][msg.ChoiceID] {
		ws.WriteError(conn, "question_id and choice_id must reference a choice of this quiz")
		return
	}

	if err := h.attempts.Select(ctx, quizID, attemptID, msg.QuestionID, msg.ChoiceID); err != nil {
		wsLog.Error().Err(err).Msg("Failed to save selection")
		ws.WriteError(conn, "save failed")
		return
	}
	ws.WriteTyped(conn, ws.SelectedResponse{Event: ws.EventSelected, QuestionID: msg.QuestionID, ChoiceID: msg.ChoiceID})
}

// handleSubmit grades the attempt's selections. Reports whether the attempt
// is over.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, quizID int64, attemptID string) bool {
	result, err := h.attempts.SubmitAttempt(ctx, quizID, attemptID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Grading failed")
		ws.WriteError(conn, "grading failed")
		return false
	}

	wsLog.Info().
		Int("score", result.Score).
		Int("total_points", result.TotalPoints).
		Bool("passed", result.Passed).
		Msg("Attempt graded")

	ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Result: result})
	return true
}

// choiceSet indexes the choices of each question.
func choiceSet(q *model.PublicQuiz) map[int64]map[int64]bool {
	set := make(map[int64]map[int64]bool, len(q.Questions))
	for _, question := range q.Questions {
		choices := make(map[int64]bool, len(question.Choices))
		for _, choice := range question.Choices {
			choices[choice.ID] = true
		}
		set[question.ID] = choices
	}
	return set
}
