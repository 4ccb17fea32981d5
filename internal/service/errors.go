package service

import "errors"

// Domain Errors
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrSlugExists     = errors.New("slug already exists")
	ErrQuizExists     = errors.New("course already has a quiz")
	// ErrCourseMismatch is returned when a body names a different course than
	// the URL it was sent to.
	ErrCourseMismatch = errors.New("course_id does not match the course in the path")
	ErrEmptySlug      = errors.New("slug cannot be derived from the title")
)
