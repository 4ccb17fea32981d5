package model

import (
	"strings"
	"time"
)

// CourseLevel enumerates the difficulty levels a course can target.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// ParseCourseLevel normalizes a level string case-insensitively.
// Reports false for anything outside the enum.
func ParseCourseLevel(raw string) (CourseLevel, bool) {
	switch lvl := CourseLevel(strings.ToLower(strings.TrimSpace(raw))); lvl {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return lvl, true
	default:
		return "", false
	}
}

// Course represents a course entity. Lessons and the quiz are owned by it.
type Course struct {
	ID          int64       `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Level       CourseLevel `json:"level"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title       string  `json:"title" form:"title" binding:"required,min=1,max=255"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=5000"`
	Category    *string `json:"category" form:"category" binding:"omitempty,max=100"`
	Level       string  `json:"level" form:"level" binding:"omitempty,course_level"`
	Slug        string  `json:"slug" form:"slug" binding:"omitempty,max=255"`
}

// UpdateCourseRequest is the payload for a partial course update.
type UpdateCourseRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Level       *string `json:"level" binding:"omitempty,course_level"`
	Slug        *string `json:"slug" binding:"omitempty,min=1,max=255"`
}

// Slugify derives a URL slug from a course title: lowercased, trimmed,
// whitespace runs collapsed into a single dash.
func Slugify(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}
