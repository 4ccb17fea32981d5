package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
	"github.com/Juenzo/CloudComputing-Project/internal/repository"
)

var tracer = otel.Tracer("github.com/Juenzo/CloudComputing-Project/internal/service")

// QuizService owns the one quiz of each course: saving, caching and grading.
type QuizService struct {
	quizzes    QuizStore
	courses    CourseStore
	cache      QuizCache
	policy     quiz.PassPolicy
	cacheTTL   time.Duration
	attemptTTL time.Duration
	log        zerolog.Logger
}

// QuizOptions configures a QuizService.
type QuizOptions struct {
	Policy     quiz.PassPolicy
	CacheTTL   time.Duration
	AttemptTTL time.Duration
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes QuizStore, courses CourseStore, cache QuizCache, opts QuizOptions, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:    quizzes,
		courses:    courses,
		cache:      cache,
		policy:     opts.Policy,
		cacheTTL:   opts.CacheTTL,
		attemptTTL: opts.AttemptTTL,
		log:        log.With().Str("component", "quiz_service").Logger(),
	}
}

// ListByCourse returns the course's quiz as a zero-or-one element list.
func (s *QuizService) ListByCourse(ctx context.Context, courseID int64) ([]model.QuizSummary, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.quizzes.ListByCourse(ctx, courseID)
}

// Definition returns the full quiz, answer key included. The cache is tried
// first and filled on a miss, unless a save cached a newer version meanwhile.
func (s *QuizService) Definition(ctx context.Context, quizID int64) (*model.Quiz, error) {
	q, err := s.cache.GetQuiz(ctx, quizID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Quiz cache read failed, falling back to database")
	}

	q, err = s.quizzes.GetByID(ctx, quizID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if _, err := s.cache.FillQuiz(ctx, q, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Failed to cache quiz")
	}
	return q, nil
}

// Public returns the learner view of a quiz, without the answer key.
func (s *QuizService) Public(ctx context.Context, quizID int64) (*model.PublicQuiz, error) {
	q, err := s.Definition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	pub := q.Public()
	return &pub, nil
}

// Create saves the first quiz of a course. ErrQuizExists when the course
// already has one.
func (s *QuizService) Create(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	q, err := s.prepare(ctx, courseID, p)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		if errors.Is(err, repository.ErrQuizExists) {
			return nil, ErrQuizExists
		}
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.saved(ctx, q, "Quiz created")
	return q, nil
}

// Save writes the course's quiz whether or not one exists yet.
func (s *QuizService) Save(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	q, err := s.prepare(ctx, courseID, p)
	if err != nil {
		return nil, err
	}
	if err := s.quizzes.Upsert(ctx, q); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	s.saved(ctx, q, "Quiz saved")
	return q, nil
}

// DeleteByCourse removes the course's quiz.
func (s *QuizService) DeleteByCourse(ctx context.Context, courseID int64) error {
	quizID, err := s.quizzes.DeleteByCourse(ctx, courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQuizNotFound
	}
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.forget(ctx, quizID)
	s.log.Info().Int64("course_id", courseID).Int64("quiz_id", quizID).Msg("Quiz deleted")
	return nil
}

// Grade scores a submission against the quiz's answer key.
func (s *QuizService) Grade(ctx context.Context, quizID int64, submission []model.AnswerSubmission) (*model.GradeResult, error) {
	ctx, span := tracer.Start(ctx, "quiz.grade")
	defer span.End()
	span.SetAttributes(attribute.Int64("quiz.id", quizID), attribute.Int("quiz.answers", len(submission)))

	q, err := s.Definition(ctx, quizID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := quiz.Grade(q, submission, s.policy)
	span.SetAttributes(
		attribute.Int("quiz.score", result.Score),
		attribute.Int("quiz.total_points", result.TotalPoints),
		attribute.Bool("quiz.passed", result.Passed),
	)
	return &result, nil
}

// ─── Live attempts ─────────────────────────────────────────────────────────

// StartAttempt opens a live attempt on a quiz and returns its id along with
// the learner view.
func (s *QuizService) StartAttempt(ctx context.Context, quizID int64) (string, *model.PublicQuiz, error) {
	pub, err := s.Public(ctx, quizID)
	if err != nil {
		return "", nil, err
	}
	return uuid.NewString(), pub, nil
}

// Select records the learner's current choice for a question. Later
// selections for the same question replace earlier ones.
func (s *QuizService) Select(ctx context.Context, quizID int64, attemptID string, questionID, choiceID int64) error {
	return s.cache.SaveSelection(ctx, quizID, attemptID, questionID, choiceID, s.attemptTTL)
}

// SubmitAttempt grades the selections of a live attempt and discards them.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID int64, attemptID string) (*model.GradeResult, error) {
	selected, err := s.cache.Selections(ctx, quizID, attemptID)
	if err != nil {
		return nil, err
	}
	result, err := s.Grade(ctx, quizID, quiz.ToSubmission(selected))
	if err != nil {
		return nil, err
	}
	s.AbandonAttempt(ctx, quizID, attemptID)
	return result, nil
}

// AbandonAttempt drops an attempt's selections.
func (s *QuizService) AbandonAttempt(ctx context.Context, quizID int64, attemptID string) {
	if err := s.cache.ClearAttempt(ctx, quizID, attemptID); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID).Msg("Failed to clear attempt")
	}
}

// ─── Cache warming ─────────────────────────────────────────────────────────

// WarmCache loads one quiz from the database into the cache when it is not
// cached already.
func (s *QuizService) WarmCache(ctx context.Context, quizID int64) error {
	q, err := s.quizzes.GetByID(ctx, quizID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Deleted since it was queued.
		return s.cache.DeleteQuiz(ctx, quizID)
	}
	if err != nil {
		return fmt.Errorf("get quiz: %w", err)
	}
	if _, err := s.cache.FillQuiz(ctx, q, s.cacheTTL); err != nil {
		return fmt.Errorf("cache quiz: %w", err)
	}
	s.log.Debug().Int64("quiz_id", quizID).Int("questions", len(q.Questions)).Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads every quiz into the cache on startup.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	ids, err := s.quizzes.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}
	if len(ids) == 0 {
		s.log.Info().Msg("No quizzes to prewarm")
		return nil
	}

	warmed := 0
	for _, id := range ids {
		if err := s.WarmCache(ctx, id); err != nil {
			s.log.Warn().Err(err).Int64("quiz_id", id).Msg("Failed to warm quiz, skipping")
			continue
		}
		warmed++
	}
	s.log.Info().Int("warmed", warmed).Int("total", len(ids)).Msg("Prewarming complete")
	return nil
}

// ─── internal helpers ──────────────────────────────────────────────────────

func (s *QuizService) prepare(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error) {
	if p.CourseID != 0 && p.CourseID != courseID {
		return nil, ErrCourseMismatch
	}
	p.CourseID = courseID
	if err := quiz.CheckPayload(p); err != nil {
		return nil, err
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return quiz.FromPayload(p), nil
}

// saved caches the definition that was just written. Read-through fills only
// write into an empty slot, so they cannot bring the previous answer key
// back. If the cache write fails the entry is dropped and a reload queued.
func (s *QuizService) saved(ctx context.Context, q *model.Quiz, msg string) {
	if err := s.cache.SetQuiz(ctx, q, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Int64("quiz_id", q.ID).Msg("Failed to cache saved quiz")
		s.forget(ctx, q.ID)
		if err := s.cache.EnqueueWarm(ctx, q.ID); err != nil {
			s.log.Warn().Err(err).Int64("quiz_id", q.ID).Msg("Failed to queue cache warm")
		}
	}
	s.log.Info().Int64("quiz_id", q.ID).Int64("course_id", q.CourseID).Int("questions", len(q.Questions)).Msg(msg)
}

func (s *QuizService) forget(ctx context.Context, quizID int64) {
	if err := s.cache.DeleteQuiz(ctx, quizID); err != nil {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Failed to evict cached quiz")
	}
}

func (s *QuizService) requireCourse(ctx context.Context, courseID int64) error {
	ok, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("check course: %w", err)
	}
	if !ok {
		return ErrCourseNotFound
	}
	return nil
}
