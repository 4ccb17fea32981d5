package model

import "time"

// ContentType is the variant tag of a lesson's content.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeVideo ContentType = "video"
	ContentTypeWord  ContentType = "word"
	ContentTypeLink  ContentType = "link"
)

// IsFile reports whether the content type refers to an uploaded resource.
func (t ContentType) IsFile() bool {
	return t == ContentTypePDF || t == ContentTypeVideo || t == ContentTypeWord
}

// Lesson represents a lesson as stored and as sent over the wire.
// Exactly one of ContentText / ContentURL is populated, matching ContentType.
type Lesson struct {
	ID          int64       `json:"id"`
	CourseID    int64       `json:"course_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	ContentType ContentType `json:"content_type"`
	ContentText *string     `json:"content_text,omitempty"`
	ContentURL  *string     `json:"content_url,omitempty"`
	// ContentURLSigned is a display-only read URL. Never persisted.
	ContentURLSigned string    `json:"content_url_signed,omitempty"`
	Order            int       `json:"order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateLessonRequest is the payload for POST /lessons. It binds from JSON or
// from multipart form fields; in the multipart case an optional "file" part
// carries the resource for pdf/video/word lessons.
type CreateLessonRequest struct {
	Title       string  `json:"title" form:"title" binding:"required,min=1,max=255"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=5000"`
	ContentType string  `json:"content_type" form:"content_type" binding:"required,content_type"`
	Order       *int    `json:"order" form:"order" binding:"omitempty,min=0,max=2147483647"`
	CourseID    int64   `json:"course_id" form:"course_id" binding:"required,min=1"`
	ContentText string  `json:"content_text" form:"content_text"`
	ContentURL  string  `json:"content_url" form:"content_url"`
}

// UpdateLessonRequest is the payload for a partial lesson update. When
// ContentType is given the matching content field must be given too.
type UpdateLessonRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	ContentType *string `json:"content_type" binding:"omitempty,content_type"`
	Order       *int    `json:"order" binding:"omitempty,min=0,max=2147483647"`
	ContentText *string `json:"content_text"`
	ContentURL  *string `json:"content_url"`
}

// ReorderLessonRequest moves one lesson to a new position in its course.
type ReorderLessonRequest struct {
	LessonID int64 `json:"lesson_id" binding:"required,min=1"`
	NewIndex *int  `json:"new_index" binding:"required,min=0,max=2147483647"`
}

// UploadResult is returned by the upload endpoint.
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
}
