package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// Lookup errors. These indicate a caller addressing something that is not in
// the draft; they are not validation failures.
var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownChoice   = errors.New("unknown choice")
)

// Reason identifies a single rule a draft breaks.
type Reason string

const (
	ReasonEmptyTitle         Reason = "EmptyTitle"
	ReasonNoQuestions        Reason = "NoQuestions"
	ReasonEmptyQuestionText  Reason = "EmptyQuestionText"
	ReasonInvalidPoints      Reason = "InvalidPoints"
	ReasonNotEnoughChoices   Reason = "NotEnoughChoices"
	ReasonEmptyChoiceText    Reason = "EmptyChoiceText"
	ReasonCorrectChoiceCount Reason = "CorrectChoiceCount"
)

// Issue locates a broken rule. Path uses positional indexes, e.g.
// "questions[1].choices[2].text", so it can be shown next to the field.
type Issue struct {
	Path   string
	Reason Reason
}

// ValidationError lists everything that blocks a draft from being submitted.
// It matches model.ErrValidationFailed.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = fmt.Sprintf("%s: %s", is.Path, is.Reason)
	}
	return "quiz validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == model.ErrValidationFailed
}

// Fields renders the issues as a path → reason map, the shape the HTTP layer
// reports field errors in.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Issues))
	for _, is := range e.Issues {
		fields[is.Path] = string(is.Reason)
	}
	return fields
}

func invalid(path string, reason Reason) *ValidationError {
	return &ValidationError{Issues: []Issue{{Path: path, Reason: reason}}}
}
