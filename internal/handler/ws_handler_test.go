package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Juenzo/CloudComputing-Project/internal/service"
	ws "github.com/Juenzo/CloudComputing-Project/internal/websocket"
)

func attemptServer(t *testing.T, s AttemptService) string {
	t.Helper()
	h := NewWSHandler(s, nop, nil)
	r := gin.New()
	r.GET("/ws/quiz/:id/attempt", h.QuizAttemptStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestAttemptStream(t *testing.T) {
	s := &stubQuizzes{quiz: sampleQuiz()}
	conn := dial(t, attemptServer(t, s)+"/ws/quiz/3/attempt")

	var started ws.StartedResponse
	if err := conn.ReadJSON(&started); err != nil {
		t.Fatalf("read started: %v", err)
	}
	if started.Event != ws.EventStarted || started.AttemptID != "attempt-1" || len(started.Quiz.Questions) != 2 {
		t.Fatalf("unexpected start: %+v", started)
	}

	conn.WriteJSON(ws.Request{Action: ws.ActionSelect, QuestionID: 10, ChoiceID: 21})
	var bad ws.ErrorResponse
	if err := conn.ReadJSON(&bad); err != nil || bad.Event != ws.EventError {
		t.Fatalf("choice of another question must be refused: %+v %v", bad, err)
	}

	conn.WriteJSON(ws.Request{Action: ws.ActionSelect, QuestionID: 10, ChoiceID: 11})
	var selected ws.SelectedResponse
	if err := conn.ReadJSON(&selected); err != nil || selected.Event != ws.EventSelected || selected.ChoiceID != 11 {
		t.Fatalf("unexpected select reply: %+v %v", selected, err)
	}

	conn.WriteJSON(ws.Request{Action: ws.ActionPing})
	var pong ws.PongResponse
	if err := conn.ReadJSON(&pong); err != nil || pong.Event != ws.EventPong {
		t.Fatalf("unexpected ping reply: %+v %v", pong, err)
	}

	conn.WriteJSON(ws.Request{Action: "cheat"})
	var unknown ws.ErrorResponse
	if err := conn.ReadJSON(&unknown); err != nil || unknown.Event != ws.EventError {
		t.Fatalf("unknown action must be reported: %+v %v", unknown, err)
	}

	conn.WriteJSON(ws.Request{Action: ws.ActionSubmit})
	var graded ws.GradedResponse
	if err := conn.ReadJSON(&graded); err != nil || graded.Event != ws.EventGraded {
		t.Fatalf("unexpected submit reply: %+v %v", graded, err)
	}
	if graded.Result.Score != 1 || !graded.Result.Passed {
		t.Fatalf("unexpected result: %+v", graded.Result)
	}

	var after ws.Request
	if err := conn.ReadJSON(&after); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("stream should close after grading, got %v", err)
	}
	if submitted, abandoned := s.counts(); submitted != 1 || abandoned != 0 {
		t.Fatalf("submitted=%d abandoned=%d", submitted, abandoned)
	}
}

func TestAttemptStreamAbandoned(t *testing.T) {
	s := &stubQuizzes{quiz: sampleQuiz()}
	conn := dial(t, attemptServer(t, s)+"/ws/quiz/3/attempt")

	var started ws.StartedResponse
	if err := conn.ReadJSON(&started); err != nil {
		t.Fatalf("read started: %v", err)
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, abandoned := s.counts(); abandoned == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("attempt selections not dropped after disconnect")
}

func TestAttemptStreamUnknownQuiz(t *testing.T) {
	s := &stubQuizzes{err: service.ErrQuizNotFound}
	_, resp, err := websocket.DefaultDialer.Dial(attemptServer(t, s)+"/ws/quiz/3/attempt", nil)
	if err == nil {
		t.Fatalf("dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 got %v", resp)
	}
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }
	queue := func(context.Context) (int64, error) { return 4, nil }

	cases := []struct {
		name   string
		checks map[string]Check
		status int
	}{
		{"all up", map[string]Check{"postgres": ok, "redis": ok}, http.StatusOK},
		{"redis down", map[string]Check{"postgres": ok, "redis": down}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tc.checks, queue, nop).Health)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tc.status {
				t.Fatalf("status: want=%d got=%d body=%s", tc.status, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"warm_queue":4`) {
				t.Fatalf("queue length missing: %s", w.Body.String())
			}
		})
	}
}
