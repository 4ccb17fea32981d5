package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// LessonService handles lesson business logic. Content is validated through
// the lesson content variants before anything is written.
type LessonService struct {
	lessons LessonStore
	courses CourseStore
	media   *MediaService
	log     zerolog.Logger
}

// NewLessonService creates a new LessonService.
func NewLessonService(lessons LessonStore, courses CourseStore, media *MediaService, log zerolog.Logger) *LessonService {
	return &LessonService{
		lessons: lessons,
		courses: courses,
		media:   media,
		log:     log.With().Str("component", "lesson_service").Logger(),
	}
}

// ListByCourse returns a course's lessons in display order.
func (s *LessonService) ListByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	sorted := lesson.Sort(lessons)
	for i := range sorted {
		s.sign(ctx, &sorted[i])
	}
	return sorted, nil
}

func (s *LessonService) Get(ctx context.Context, id int64) (*model.Lesson, error) {
	l, err := s.lessons.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	s.sign(ctx, l)
	return l, nil
}

// Create stores a lesson. When up is given the file is stored first and the
// lesson refers to it; the lesson record is only written once the upload
// has completed, and the file is removed again if the record cannot be.
func (s *LessonService) Create(ctx context.Context, req *model.CreateLessonRequest, up *Upload) (*model.Lesson, error) {
	t, ok := lesson.ParseContentType(req.ContentType)
	if !ok {
		return nil, &lesson.ContentError{ContentType: model.ContentType(req.ContentType), Reason: lesson.ReasonUnknownContentType}
	}
	fields := lesson.Fields{ContentText: req.ContentText, ContentURL: req.ContentURL, PendingUpload: up != nil && t.IsFile()}
	if err := lesson.Validate(t, fields); err != nil {
		return nil, err
	}
	if err := s.requireCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	var uploaded string
	if fields.PendingUpload {
		res, err := s.media.Save(ctx, *up, t)
		if err != nil {
			return nil, err
		}
		uploaded = res.Filename
		fields.ContentURL = uploaded
		fields.PendingUpload = false
	}

	content, err := lesson.NewContent(t, fields)
	if err != nil {
		s.media.Delete(ctx, uploaded)
		return nil, err
	}

	l := &model.Lesson{
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	if req.Order != nil {
		l.Order = *req.Order
	}
	lesson.Apply(l, content)

	if err := s.lessons.Create(ctx, l); err != nil {
		s.media.Delete(ctx, uploaded)
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.log.Info().Int64("lesson_id", l.ID).Int64("course_id", l.CourseID).Str("content_type", string(l.ContentType)).Msg("Lesson created")
	s.sign(ctx, l)
	return l, nil
}

// Update applies the non-nil fields of req. Changing the content type needs
// the content field of the new type; editing a content field alone is checked
// against the current type.
func (s *LessonService) Update(ctx context.Context, id int64, req *model.UpdateLessonRequest) (*model.Lesson, error) {
	l, err := s.lessons.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	previousRef := fileRef(l)

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		l.Description = req.Description
	}
	if req.Order != nil {
		l.Order = *req.Order
	}

	if req.ContentType != nil || req.ContentText != nil || req.ContentURL != nil {
		t := l.ContentType
		var fields lesson.Fields
		if req.ContentType != nil {
			parsed, ok := lesson.ParseContentType(*req.ContentType)
			if !ok {
				return nil, &lesson.ContentError{ContentType: model.ContentType(*req.ContentType), Reason: lesson.ReasonUnknownContentType}
			}
			t = parsed
		} else {
			// Unchanged type: start from the stored content.
			if l.ContentText != nil {
				fields.ContentText = *l.ContentText
			}
			if l.ContentURL != nil {
				fields.ContentURL = *l.ContentURL
			}
		}
		if req.ContentText != nil {
			fields.ContentText = *req.ContentText
		}
		if req.ContentURL != nil {
			fields.ContentURL = *req.ContentURL
		}
		content, err := lesson.NewContent(t, fields)
		if err != nil {
			return nil, err
		}
		lesson.Apply(l, content)
	}

	if err := s.lessons.Update(ctx, l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	if previousRef != fileRef(l) {
		releaseFile(ctx, s.lessons, s.media, s.log, previousRef)
	}

	s.sign(ctx, l)
	return l, nil
}

// Reorder moves a lesson to newIndex in its course's display order and
// persists dense orders 0..n-1. The reordered list is returned.
func (s *LessonService) Reorder(ctx context.Context, courseID, lessonID int64, newIndex int) ([]model.Lesson, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	reordered, err := lesson.Reorder(lessons, lessonID, newIndex)
	if err != nil {
		return nil, err
	}
	if err := s.lessons.UpdateOrders(ctx, courseID, reordered); err != nil {
		return nil, fmt.Errorf("update orders: %w", err)
	}
	for i := range reordered {
		s.sign(ctx, &reordered[i])
	}
	return reordered, nil
}

// Delete removes a lesson, and its uploaded file once no other lesson
// refers to it.
func (s *LessonService) Delete(ctx context.Context, id int64) error {
	l, err := s.lessons.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLessonNotFound
	}
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	releaseFile(ctx, s.lessons, s.media, s.log, fileRef(l))
	return nil
}

func (s *LessonService) requireCourse(ctx context.Context, courseID int64) error {
	ok, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("check course: %w", err)
	}
	if !ok {
		return ErrCourseNotFound
	}
	return nil
}

func (s *LessonService) sign(ctx context.Context, l *model.Lesson) {
	if ref := fileRef(l); ref != "" {
		l.ContentURLSigned = s.media.SignedURL(ctx, ref)
	}
}

// fileRef returns the storage reference of a file lesson, or "".
func fileRef(l *model.Lesson) string {
	if !l.ContentType.IsFile() || l.ContentURL == nil {
		return ""
	}
	return *l.ContentURL
}

// releaseFile removes a stored object once no lesson refers to it. The
// object is kept while any reference remains or the count cannot be read.
func releaseFile(ctx context.Context, lessons LessonStore, media *MediaService, log zerolog.Logger, ref string) {
	if ref == "" {
		return
	}
	n, err := lessons.CountFileRefs(ctx, ref)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("Keeping file, reference count failed")
		return
	}
	if n > 0 {
		log.Debug().Str("ref", ref).Int("refs", n).Msg("File still referenced")
		return
	}
	media.Delete(ctx, ref)
}
