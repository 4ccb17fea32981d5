// Package lesson holds the lesson content model and the ordering policy of a
// course's lesson list.
package lesson

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// Reason identifies why a content payload was rejected.
type Reason string

const (
	ReasonUnknownContentType Reason = "UnknownContentType"
	ReasonMissingText        Reason = "MissingText"
	ReasonMissingResource    Reason = "MissingResource"
	ReasonInvalidURL         Reason = "InvalidUrl"
)

// ContentError is returned when a payload is not well-formed for its type.
// It matches model.ErrValidationFailed.
type ContentError struct {
	ContentType model.ContentType
	Reason      Reason
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("invalid %q content: %s", e.ContentType, e.Reason)
}

func (e *ContentError) Is(target error) bool {
	return target == model.ErrValidationFailed
}

// Fields are the candidate content fields of a lesson submission.
type Fields struct {
	ContentText string
	ContentURL  string
	// PendingUpload marks a staged file that the upload collaborator has not
	// yet turned into a ContentURL.
	PendingUpload bool
}

// ParseContentType reports whether raw is one of the five content types.
func ParseContentType(raw string) (model.ContentType, bool) {
	switch t := model.ContentType(raw); t {
	case model.ContentTypeText, model.ContentTypePDF, model.ContentTypeVideo,
		model.ContentTypeWord, model.ContentTypeLink:
		return t, true
	default:
		return "", false
	}
}

// Validate decides whether fields form a well-formed payload for t.
// Fields that do not belong to t are ignored.
func Validate(t model.ContentType, f Fields) error {
	switch {
	case t == model.ContentTypeText:
		if strings.TrimSpace(f.ContentText) == "" {
			return &ContentError{ContentType: t, Reason: ReasonMissingText}
		}
	case t.IsFile():
		if strings.TrimSpace(f.ContentURL) == "" && !f.PendingUpload {
			return &ContentError{ContentType: t, Reason: ReasonMissingResource}
		}
	case t == model.ContentTypeLink:
		if !IsAbsoluteURL(f.ContentURL) {
			return &ContentError{ContentType: t, Reason: ReasonInvalidURL}
		}
	default:
		return &ContentError{ContentType: t, Reason: ReasonUnknownContentType}
	}
	return nil
}

// IsAbsoluteURL reports whether raw parses as a URL with a scheme and a host.
func IsAbsoluteURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Content is the tagged union of lesson content. Each variant only carries
// the fields valid for its type.
type Content interface {
	Type() model.ContentType
	isContent()
}

// Text is inline lesson content.
type Text struct {
	Body string
}

// File references an uploaded pdf, video or word resource.
type File struct {
	Kind model.ContentType
	// Ref is the storage reference returned by the upload collaborator.
	Ref string
}

// Link is an external resource.
type Link struct {
	URL string
}

func (Text) Type() model.ContentType   { return model.ContentTypeText }
func (f File) Type() model.ContentType { return f.Kind }
func (Link) Type() model.ContentType   { return model.ContentTypeLink }

func (Text) isContent() {}
func (File) isContent() {}
func (Link) isContent() {}

// NewContent validates fields and builds the matching variant. A pending
// upload is not enough here: the upload must have resolved to a ContentURL
// before a lesson can be built.
func NewContent(t model.ContentType, f Fields) (Content, error) {
	if err := Validate(t, f); err != nil {
		return nil, err
	}
	switch {
	case t == model.ContentTypeText:
		return Text{Body: f.ContentText}, nil
	case t.IsFile():
		ref := strings.TrimSpace(f.ContentURL)
		if ref == "" {
			return nil, &ContentError{ContentType: t, Reason: ReasonMissingResource}
		}
		return File{Kind: t, Ref: ref}, nil
	default:
		return Link{URL: strings.TrimSpace(f.ContentURL)}, nil
	}
}

// FromLesson rebuilds the content variant of a stored lesson.
func FromLesson(l *model.Lesson) (Content, error) {
	var f Fields
	if l.ContentText != nil {
		f.ContentText = *l.ContentText
	}
	if l.ContentURL != nil {
		f.ContentURL = *l.ContentURL
	}
	return NewContent(l.ContentType, f)
}

// Apply writes c into l, clearing the content field that does not belong to
// the variant.
func Apply(l *model.Lesson, c Content) {
	l.ContentType = c.Type()
	l.ContentText = nil
	l.ContentURL = nil
	switch v := c.(type) {
	case Text:
		body := v.Body
		l.ContentText = &body
	case File:
		ref := v.Ref
		l.ContentURL = &ref
	case Link:
		u := v.URL
		l.ContentURL = &u
	}
}
