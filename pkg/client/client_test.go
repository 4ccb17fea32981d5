package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response.Response{Data: data})
}

func writeFail(w http.ResponseWriter, status int, code response.ErrCode, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response.Response{
		Error: &response.ErrorBody{Code: code, Message: response.GetMessage(code), Fields: fields},
	})
}

// newServer starts a server for mux and counts the requests it receives.
func newServer(t *testing.T, mux *http.ServeMux) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), &hits
}

func sampleQuiz() model.Quiz {
	return model.Quiz{
		ID: 5, CourseID: 1, Title: "Basics",
		Questions: []model.Question{
			{ID: 10, Text: "2+2?", Points: 1, Choices: []model.Choice{
				{ID: 11, Text: "4", IsCorrect: true}, {ID: 12, Text: "5"},
			}},
		},
	}
}

func TestCreateCourse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/courses", func(w http.ResponseWriter, r *http.Request) {
		var req model.CreateCourseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeData(w, http.StatusCreated, model.Course{ID: 3, Title: req.Title, Slug: model.Slugify(req.Title), Level: model.CourseLevelBeginner})
	})
	c, _ := newServer(t, mux)

	course, err := c.CreateCourse(context.Background(), model.CreateCourseRequest{Title: "Intro to Go"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.ID != 3 || course.Slug != "intro-to-go" {
		t.Fatalf("course = %+v", course)
	}
}

func TestServerErrorIsSurfacedVerbatim(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/courses", func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusConflict, response.ErrSlugExists, nil)
	})
	c, _ := newServer(t, mux)

	_, err := c.CreateCourse(context.Background(), model.CreateCourseRequest{Title: "Dup"})
	if !errors.Is(err, ErrTransportFailed) {
		t.Fatalf("want ErrTransportFailed, got %v", err)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("a well-formed error envelope is not malformed: %v", err)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want *TransportError, got %T", err)
	}
	if te.StatusCode != http.StatusConflict || te.Code != response.ErrSlugExists {
		t.Fatalf("te = %+v", te)
	}
	if got, want := UserMessage(err), response.GetMessage(response.ErrSlugExists); got != want {
		t.Fatalf("UserMessage = %q, want %q", got, want)
	}
}

func TestMalformedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data": {"id": "not a number"`)
	})
	mux.HandleFunc("GET /api/courses/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"metadata": {}}`)
	})
	c, _ := newServer(t, mux)

	for _, id := range []int64{1, 2} {
		_, err := c.GetCourse(context.Background(), id)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("course %d: want ErrMalformedResponse, got %v", id, err)
		}
		if !errors.Is(err, ErrTransportFailed) {
			t.Fatalf("course %d: malformed must also be a transport failure", id)
		}
		if got := UserMessage(err); got != msgMalformed {
			t.Fatalf("UserMessage = %q", got)
		}
	}
}

func TestNonEnvelopeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	c, _ := newServer(t, mux)

	_, err := c.ListCourses(context.Background())
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusBadGateway {
		t.Fatalf("want 502 TransportError, got %v", err)
	}
	if got, want := UserMessage(err), response.GetMessage(response.ErrInternal); got != want {
		t.Fatalf("UserMessage = %q, want %q", got, want)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListCourses(context.Background())
	if !errors.Is(err, ErrTransportFailed) {
		t.Fatalf("want ErrTransportFailed, got %v", err)
	}
	if got := UserMessage(err); got != msgUnreachable {
		t.Fatalf("UserMessage = %q", got)
	}
}

func TestDeleteNoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/courses/4", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newServer(t, mux)

	if err := c.DeleteCourse(context.Background(), 4); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
}

func TestCreateLessonValidatesLocally(t *testing.T) {
	c, hits := newServer(t, http.NewServeMux())

	cases := []struct {
		name   string
		req    model.CreateLessonRequest
		reason lesson.Reason
	}{
		{"text without body", model.CreateLessonRequest{Title: "a", CourseID: 1, ContentType: "text", ContentText: "  "}, lesson.ReasonMissingText},
		{"link without scheme", model.CreateLessonRequest{Title: "a", CourseID: 1, ContentType: "link", ContentURL: "example.com"}, lesson.ReasonInvalidURL},
		{"pdf without resource", model.CreateLessonRequest{Title: "a", CourseID: 1, ContentType: "pdf"}, lesson.ReasonMissingResource},
		{"unknown type", model.CreateLessonRequest{Title: "a", CourseID: 1, ContentType: "audio"}, lesson.ReasonUnknownContentType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CreateLesson(context.Background(), tc.req)
			var ce *lesson.ContentError
			if !errors.As(err, &ce) || ce.Reason != tc.reason {
				t.Fatalf("want reason %s, got %v", tc.reason, err)
			}
			if !errors.Is(err, model.ErrValidationFailed) {
				t.Fatalf("want ErrValidationFailed")
			}
			if got, want := UserMessage(err), response.GetMessage(response.ErrInvalidContent); got != want {
				t.Fatalf("UserMessage = %q, want %q", got, want)
			}
		})
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("validation failures reached the server %d times", n)
	}
}

func TestCreateLessonWithFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lessons", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			writeFail(w, http.StatusBadRequest, response.ErrFileRequired, nil)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4" || header.Filename != "notes.pdf" {
			t.Errorf("file = %q %q", header.Filename, data)
		}
		if r.FormValue("course_id") != "7" || r.FormValue("content_type") != "pdf" || r.FormValue("order") != "2" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		ref := "abc.pdf"
		writeData(w, http.StatusCreated, model.Lesson{ID: 9, CourseID: 7, ContentType: model.ContentTypePDF, ContentURL: &ref, Order: 2})
	})
	c, _ := newServer(t, mux)

	order := 2
	req := model.CreateLessonRequest{Title: "Notes", CourseID: 7, ContentType: "pdf", Order: &order}
	l, err := c.CreateLessonWithFile(context.Background(), req, "notes.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("CreateLessonWithFile: %v", err)
	}
	if l.ID != 9 || l.ContentURL == nil || *l.ContentURL != "abc.pdf" {
		t.Fatalf("lesson = %+v", l)
	}
}

func TestReorderLesson(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/courses/1/lessons/reorder", func(w http.ResponseWriter, r *http.Request) {
		var req model.ReorderLessonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewIndex == nil {
			t.Errorf("body: %v %+v", err, req)
			return
		}
		if req.LessonID != 3 || *req.NewIndex != 0 {
			t.Errorf("req = %d %d", req.LessonID, *req.NewIndex)
		}
		writeData(w, http.StatusOK, []model.Lesson{{ID: 3, Order: 0}, {ID: 1, Order: 1}, {ID: 2, Order: 2}})
	})
	c, _ := newServer(t, mux)

	lessons, err := c.ReorderLesson(context.Background(), 1, 3, 0)
	if err != nil {
		t.Fatalf("ReorderLesson: %v", err)
	}
	if len(lessons) != 3 || lessons[0].ID != 3 {
		t.Fatalf("lessons = %+v", lessons)
	}
}

func TestSaveQuizChoosesMethod(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/courses/1/quiz", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		var p model.QuizPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		q := quiz.FromPayload(&p)
		q.ID, q.CourseID = 5, 1
		for i := range q.Questions {
			q.Questions[i].ID = int64(10 * (i + 1))
			for j := range q.Questions[i].Choices {
				q.Questions[i].Choices[j].ID = q.Questions[i].ID + int64(j+1)
			}
		}
		status := http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
		}
		writeData(w, status, q)
	})
	c, _ := newServer(t, mux)
	ctx := context.Background()

	d := quiz.NewDraft(1).SetTitle("Basics")
	d, qk := d.AddQuestion()
	d, _ = d.EditQuestionText(qk, "2+2?")
	first, _ := d.ChoiceKey(0, 0)
	second, _ := d.ChoiceKey(0, 1)
	d, _ = d.EditChoiceText(qk, first, "4")
	d, _ = d.EditChoiceText(qk, second, "5")
	for {
		extra, ok := d.ChoiceKey(0, 2)
		if !ok {
			break
		}
		d, _ = d.RemoveChoice(qk, extra)
	}

	saved, err := c.SaveQuiz(ctx, d)
	if err != nil {
		t.Fatalf("SaveQuiz new: %v", err)
	}
	if !saved.Persisted() || saved.ID() != 5 {
		t.Fatalf("saved draft id = %d", saved.ID())
	}
	if _, err := c.SaveQuiz(ctx, saved.SetTitle("Basics v2")); err != nil {
		t.Fatalf("SaveQuiz existing: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(methods) != 2 || methods[0] != http.MethodPost || methods[1] != http.MethodPut {
		t.Fatalf("methods = %v, want [POST PUT]", methods)
	}
}

func TestSaveQuizRejectsInvalidDraft(t *testing.T) {
	c, hits := newServer(t, http.NewServeMux())

	d, _ := quiz.NewDraft(1).AddQuestion()
	_, err := c.SaveQuiz(context.Background(), d)
	var ve *quiz.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *quiz.ValidationError, got %v", err)
	}
	if errors.Is(err, ErrTransportFailed) {
		t.Fatalf("local validation must not look like a transport failure")
	}
	if got, want := UserMessage(err), response.GetMessage(response.ErrInvalidQuiz); got != want {
		t.Fatalf("UserMessage = %q, want %q", got, want)
	}
	if hits.Load() != 0 {
		t.Fatalf("invalid draft reached the server")
	}
}

func TestEditCourseQuiz(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses/1/quiz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []model.QuizSummary{{ID: 5, Title: "Basics"}})
	})
	mux.HandleFunc("GET /api/courses/2/quiz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []model.QuizSummary{})
	})
	mux.HandleFunc("GET /api/quiz/5/full", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, sampleQuiz())
	})
	c, _ := newServer(t, mux)
	ctx := context.Background()

	d, err := c.EditCourseQuiz(ctx, 1)
	if err != nil {
		t.Fatalf("EditCourseQuiz(1): %v", err)
	}
	if d.ID() != 5 || d.Len() != 1 || d.Title() != "Basics" {
		t.Fatalf("draft = id %d len %d title %q", d.ID(), d.Len(), d.Title())
	}

	d, err = c.EditCourseQuiz(ctx, 2)
	if err != nil {
		t.Fatalf("EditCourseQuiz(2): %v", err)
	}
	if d.Persisted() || d.CourseID() != 2 {
		t.Fatalf("want a new draft for course 2, got id %d course %d", d.ID(), d.CourseID())
	}
}

func TestSubmitQuiz(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/quiz/5/submit", func(w http.ResponseWriter, r *http.Request) {
		var answers []model.AnswerSubmission
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			t.Errorf("decode: %v", err)
		}
		q := sampleQuiz()
		policy, _ := quiz.NewPassPolicy(0.5)
		result := quiz.Grade(&q, answers, policy)
		writeData(w, http.StatusOK, result)
	})
	c, _ := newServer(t, mux)

	result, err := c.SubmitQuiz(context.Background(), 5, map[int64]int64{10: 11})
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if result.Score != 1 || result.TotalPoints != 1 || !result.Passed {
		t.Fatalf("result = %+v", result)
	}
}

func TestUserMessageNil(t *testing.T) {
	if got := UserMessage(nil); got != "" {
		t.Fatalf("UserMessage(nil) = %q", got)
	}
}
