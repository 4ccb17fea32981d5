package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/repository"
)

// CourseService handles course business logic.
type CourseService struct {
	courses CourseStore
	lessons LessonStore
	quizzes *QuizService
	media   *MediaService
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, lessons LessonStore, quizzes *QuizService, media *MediaService, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		lessons: lessons,
		quizzes: quizzes,
		media:   media,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

func (s *CourseService) Get(ctx context.Context, id int64) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	return c, err
}

// Create stores a new course. The slug defaults to the slugified title; the
// level defaults to beginner.
func (s *CourseService) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	slug := model.Slugify(req.Slug)
	if slug == "" {
		slug = model.Slugify(req.Title)
	}
	if slug == "" {
		return nil, ErrEmptySlug
	}

	level := model.CourseLevelBeginner
	if req.Level != "" {
		// Already checked by the course_level binding tag.
		level, _ = model.ParseCourseLevel(req.Level)
	}

	c := &model.Course{
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Level:       level,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info().Int64("course_id", c.ID).Str("slug", c.Slug).Msg("Course created")
	return c, nil
}

// Update applies the non-nil fields of req.
func (s *CourseService) Update(ctx context.Context, id int64, req *model.UpdateCourseRequest) (*model.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Category != nil {
		c.Category = req.Category
	}
	if req.Level != nil {
		if lvl, ok := model.ParseCourseLevel(*req.Level); ok {
			c.Level = lvl
		}
	}
	if req.Slug != nil {
		slug := model.Slugify(*req.Slug)
		if slug == "" {
			return nil, ErrEmptySlug
		}
		c.Slug = slug
	}

	if err := s.courses.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSlug):
			return nil, ErrSlugExists
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course: %w", err)
	}
	return c, nil
}

// Delete removes a course together with its lessons and its quiz. Lesson
// files go too unless a lesson of another course still refers to them.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	lessons, err := s.lessons.ListByCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("list lessons: %w", err)
	}
	quizID, err := s.quizzes.quizzes.GetIDByCourse(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("find quiz: %w", err)
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}

	if quizID != 0 {
		s.quizzes.forget(ctx, quizID)
	}
	released := make(map[string]bool)
	for i := range lessons {
		ref := fileRef(&lessons[i])
		if ref == "" || released[ref] {
			continue
		}
		released[ref] = true
		releaseFile(ctx, s.lessons, s.media, s.log, ref)
	}

	s.log.Info().Int64("course_id", id).Int("lessons", len(lessons)).Msg("Course deleted")
	return nil
}
