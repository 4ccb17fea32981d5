package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
	"github.com/Juenzo/CloudComputing-Project/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var nop = zerolog.Nop()

// envelope mirrors response.Response with a raw data field.
type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
		}
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
	return v
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, env envelope, status int, code response.ErrCode) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status: want=%d got=%d body=%s", status, w.Code, w.Body.String())
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error code: want=%s got=%+v", code, env.Error)
	}
}

// ─── stubs ─────────────────────────────────────────────────────────────────

type stubCourses struct {
	created *model.CreateCourseRequest
	err     error
}

func (s *stubCourses) List(context.Context) ([]model.Course, error) { return nil, s.err }

func (s *stubCourses) Get(_ context.Context, id int64) (*model.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Course{ID: id, Title: "Go", Slug: "go", Level: model.CourseLevelBeginner}, nil
}

func (s *stubCourses) Create(_ context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.Course{ID: 1, Title: req.Title, Slug: model.Slugify(req.Title), Level: model.CourseLevelBeginner}, nil
}

func (s *stubCourses) Update(_ context.Context, id int64, _ *model.UpdateCourseRequest) (*model.Course, error) {
	return s.Get(context.Background(), id)
}

func (s *stubCourses) Delete(context.Context, int64) error { return s.err }

type stubLessons struct {
	req      *model.CreateLessonRequest
	upload   *service.Upload
	uploaded string
	err      error
}

func (s *stubLessons) ListByCourse(context.Context, int64) ([]model.Lesson, error) { return nil, s.err }

func (s *stubLessons) Get(_ context.Context, id int64) (*model.Lesson, error) {
	return &model.Lesson{ID: id}, s.err
}

func (s *stubLessons) Create(_ context.Context, req *model.CreateLessonRequest, up *service.Upload) (*model.Lesson, error) {
	s.req, s.upload = req, up
	if up != nil {
		data, _ := io.ReadAll(up.Body)
		s.uploaded = string(data)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &model.Lesson{ID: 7, CourseID: req.CourseID, Title: req.Title, ContentType: model.ContentType(req.ContentType)}, nil
}

func (s *stubLessons) Update(_ context.Context, id int64, _ *model.UpdateLessonRequest) (*model.Lesson, error) {
	return &model.Lesson{ID: id}, s.err
}

func (s *stubLessons) Reorder(_ context.Context, _ int64, lessonID int64, newIndex int) ([]model.Lesson, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.Lesson{{ID: lessonID, Order: newIndex}}, nil
}

func (s *stubLessons) Delete(context.Context, int64) error { return s.err }

type stubQuizzes struct {
	mu        sync.Mutex
	payload   *model.QuizPayload
	answers   []model.AnswerSubmission
	err       error
	quiz      model.Quiz
	selected  map[int64]int64
	abandoned int
	submitted int
}

func (s *stubQuizzes) ListByCourse(context.Context, int64) ([]model.QuizSummary, error) {
	return []model.QuizSummary{{ID: s.quiz.ID, Title: s.quiz.Title}}, s.err
}

func (s *stubQuizzes) Definition(context.Context, int64) (*model.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	q := s.quiz
	return &q, nil
}

func (s *stubQuizzes) Public(ctx context.Context, id int64) (*model.PublicQuiz, error) {
	q, err := s.Definition(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := q.Public()
	return &pub, nil
}

func (s *stubQuizzes) save(courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	s.payload = p
	if s.err != nil {
		return nil, s.err
	}
	return &model.Quiz{ID: 3, CourseID: courseID, Title: p.Title}, nil
}

func (s *stubQuizzes) Create(_ context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	return s.save(courseID, p)
}

func (s *stubQuizzes) Save(_ context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	return s.save(courseID, p)
}

func (s *stubQuizzes) DeleteByCourse(context.Context, int64) error { return s.err }

func (s *stubQuizzes) Grade(_ context.Context, _ int64, answers []model.AnswerSubmission) (*model.GradeResult, error) {
	s.answers = answers
	if s.err != nil {
		return nil, s.err
	}
	return &model.GradeResult{Score: len(answers), TotalPoints: 2, Passed: len(answers) > 0}, nil
}

func (s *stubQuizzes) StartAttempt(ctx context.Context, id int64) (string, *model.PublicQuiz, error) {
	pub, err := s.Public(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return "attempt-1", pub, nil
}

func (s *stubQuizzes) Select(_ context.Context, _ int64, _ string, questionID, choiceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		s.selected = map[int64]int64{}
	}
	s.selected[questionID] = choiceID
	return nil
}

func (s *stubQuizzes) SubmitAttempt(context.Context, int64, string) (*model.GradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted++
	return &model.GradeResult{Score: len(s.selected), TotalPoints: 2, Passed: true}, nil
}

func (s *stubQuizzes) AbandonAttempt(context.Context, int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandoned++
}

func (s *stubQuizzes) counts() (submitted, abandoned int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted, s.abandoned
}

func sampleQuiz() model.Quiz {
	return model.Quiz{
		ID:    3,
		Title: "Basics",
		Questions: []model.Question{
			{ID: 10, Text: "2+2", Points: 1, Choices: []model.Choice{{ID: 11, Text: "4", IsCorrect: true}, {ID: 12, Text: "5"}}},
			{ID: 20, Text: "3+3", Points: 1, Choices: []model.Choice{{ID: 21, Text: "5"}, {ID: 22, Text: "6", IsCorrect: true}}},
		},
	}
}
