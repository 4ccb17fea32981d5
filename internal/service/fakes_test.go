package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
	"github.com/Juenzo/CloudComputing-Project/internal/repository"
	"github.com/Juenzo/CloudComputing-Project/internal/storage"
)

// ─── courses ───────────────────────────────────────────────────────────────

type fakeCourses struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]model.Course
	// lessons of a deleted course go with it, like ON DELETE CASCADE.
	lessons *fakeLessons
}

func newFakeCourses() *fakeCourses { return &fakeCourses{rows: map[int64]model.Course{}} }

func (f *fakeCourses) List(context.Context) ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Course{}
	for _, c := range f.rows {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b model.Course) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeCourses) GetByID(_ context.Context, id int64) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (f *fakeCourses) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeCourses) slugTaken(slug string, except int64) bool {
	for id, c := range f.rows {
		if c.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken(c.Slug, 0) {
		return repository.ErrDuplicateSlug
	}
	f.seq++
	c.ID = f.seq
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	if f.slugTaken(c.Slug, c.ID) {
		return repository.ErrDuplicateSlug
	}
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	if f.lessons != nil {
		f.lessons.deleteCourse(id)
	}
	return nil
}

// ─── lessons ───────────────────────────────────────────────────────────────

type fakeLessons struct {
	mu   sync.Mutex
	seq  int64
	rows []model.Lesson
}

func (f *fakeLessons) ListByCourse(_ context.Context, courseID int64) ([]model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Lesson{}
	for _, l := range f.rows {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessons) GetByID(_ context.Context, id int64) (*model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.rows {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLessons) Create(_ context.Context, l *model.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	l.ID = f.seq
	f.rows = append(f.rows, *l)
	return nil
}

func (f *fakeLessons) Update(_ context.Context, l *model.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == l.ID {
			f.rows[i] = *l
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeLessons) UpdateOrders(_ context.Context, courseID int64, lessons []model.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range lessons {
		for i := range f.rows {
			if f.rows[i].ID == l.ID && f.rows[i].CourseID == courseID {
				f.rows[i].Order = l.Order
			}
		}
	}
	return nil
}

func (f *fakeLessons) Delete(_ context.Context, id int64) (*model.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.rows {
		if l.ID == id {
			f.rows = slices.Delete(f.rows, i, i+1)
			return &l, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLessons) CountFileRefs(_ context.Context, ref string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.rows {
		if l.ContentType.IsFile() && l.ContentURL != nil && *l.ContentURL == ref {
			n++
		}
	}
	return n, nil
}

func (f *fakeLessons) deleteCourse(courseID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = slices.DeleteFunc(f.rows, func(l model.Lesson) bool { return l.CourseID == courseID })
}

// ─── quizzes ───────────────────────────────────────────────────────────────

type fakeQuizzes struct {
	mu     sync.Mutex
	seq    int64
	reads  int
	rows   map[int64]model.Quiz
	choice int64
	// afterRead runs once, after a GetByID has read its row.
	afterRead func()
}

func newFakeQuizzes() *fakeQuizzes { return &fakeQuizzes{rows: map[int64]model.Quiz{}} }

func (f *fakeQuizzes) ListByCourse(_ context.Context, courseID int64) ([]model.QuizSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.QuizSummary{}
	for _, q := range f.rows {
		if q.CourseID == courseID {
			out = append(out, model.QuizSummary{ID: q.ID, Title: q.Title})
		}
	}
	return out, nil
}

func (f *fakeQuizzes) GetByID(_ context.Context, id int64) (*model.Quiz, error) {
	f.mu.Lock()
	f.reads++
	q, ok := f.rows[id]
	hook := f.afterRead
	f.afterRead = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (f *fakeQuizzes) GetIDByCourse(_ context.Context, courseID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.rows {
		if q.CourseID == courseID {
			return q.ID, nil
		}
	}
	return 0, pgx.ErrNoRows
}

func (f *fakeQuizzes) ListIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := range f.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeQuizzes) assignIDs(q *model.Quiz) {
	for i := range q.Questions {
		f.choice++
		q.Questions[i].ID = f.choice
		for j := range q.Questions[i].Choices {
			f.choice++
			q.Questions[i].Choices[j].ID = f.choice
		}
	}
}

func (f *fakeQuizzes) Create(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.CourseID == q.CourseID {
			return repository.ErrQuizExists
		}
	}
	f.seq++
	q.ID = f.seq
	f.assignIDs(q)
	f.rows[q.ID] = *q
	return nil
}

func (f *fakeQuizzes) Upsert(_ context.Context, q *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = 0
	for _, existing := range f.rows {
		if existing.CourseID == q.CourseID {
			q.ID = existing.ID
		}
	}
	if q.ID == 0 {
		f.seq++
		q.ID = f.seq
	}
	f.assignIDs(q)
	f.rows[q.ID] = *q
	return nil
}

func (f *fakeQuizzes) DeleteByCourse(_ context.Context, courseID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, q := range f.rows {
		if q.CourseID == courseID {
			delete(f.rows, id)
			return id, nil
		}
	}
	return 0, pgx.ErrNoRows
}

// ─── cache ─────────────────────────────────────────────────────────────────

type memoryCache struct {
	mu         sync.Mutex
	failSet    bool
	quizzes    map[int64]model.Quiz
	selections map[string]map[int64]int64
	queued     []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{quizzes: map[int64]model.Quiz{}, selections: map[string]map[int64]int64{}}
}

func (m *memoryCache) GetQuiz(_ context.Context, id int64) (*model.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &q, nil
}

func (m *memoryCache) SetQuiz(_ context.Context, q *model.Quiz, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("cache unavailable")
	}
	m.quizzes[q.ID] = *q
	return nil
}

func (m *memoryCache) FillQuiz(_ context.Context, q *model.Quiz, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[q.ID]; ok {
		return false, nil
	}
	m.quizzes[q.ID] = *q
	return true, nil
}

func (m *memoryCache) DeleteQuiz(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quizzes, id)
	return nil
}

func (m *memoryCache) EnqueueWarm(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, id)
	return nil
}

func attemptKey(quizID int64, attemptID string) string {
	return fmt.Sprintf("%d:%s", quizID, attemptID)
}

func (m *memoryCache) SaveSelection(_ context.Context, quizID int64, attemptID string, questionID, choiceID int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attemptKey(quizID, attemptID)
	if m.selections[key] == nil {
		m.selections[key] = map[int64]int64{}
	}
	m.selections[key][questionID] = choiceID
	return nil
}

func (m *memoryCache) Selections(_ context.Context, quizID int64, attemptID string) (map[int64]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySelections(m.selections[attemptKey(quizID, attemptID)]), nil
}

func (m *memoryCache) ClearAttempt(_ context.Context, quizID int64, attemptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.selections, attemptKey(quizID, attemptID))
	return nil
}

func copySelections(in map[int64]int64) map[int64]int64 {
	out := make(map[int64]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ─── wiring ────────────────────────────────────────────────────────────────

type fixture struct {
	courses *fakeCourses
	lessons *fakeLessons
	quizzes *fakeQuizzes
	cache   *memoryCache
	dir     string

	courseSvc *CourseService
	lessonSvc *LessonService
	quizSvc   *QuizService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	lessons := &fakeLessons{}
	courses := newFakeCourses()
	courses.lessons = lessons
	f := &fixture{
		courses: courses,
		lessons: lessons,
		quizzes: newFakeQuizzes(),
		cache:   newMemoryCache(),
		dir:     dir,
	}
	media := NewMediaService(store, 1024, time.Hour, log)
	f.quizSvc = NewQuizService(f.quizzes, f.courses, f.cache, QuizOptions{
		Policy:     quiz.PassPolicy{Threshold: 0.5},
		CacheTTL:   time.Minute,
		AttemptTTL: time.Minute,
	}, log)
	f.lessonSvc = NewLessonService(f.lessons, f.courses, media, log)
	f.courseSvc = NewCourseService(f.courses, f.lessons, f.quizSvc, media, log)
	return f
}

func (f *fixture) course(t *testing.T, title string) *model.Course {
	t.Helper()
	c, err := f.courseSvc.Create(context.Background(), &model.CreateCourseRequest{Title: title})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}
