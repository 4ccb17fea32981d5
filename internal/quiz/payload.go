package quiz

import (
	"fmt"
	"strings"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// CheckPayload applies the draft rules to a save payload received from a
// client. Unlike Load it does not repair anything: a payload with zero or
// several correct choices for a question is rejected.
func CheckPayload(p *model.QuizPayload) error {
	var issues []Issue
	if strings.TrimSpace(p.Title) == "" {
		issues = append(issues, Issue{Path: "title", Reason: ReasonEmptyTitle})
	}
	if len(p.Questions) == 0 {
		issues = append(issues, Issue{Path: "questions", Reason: ReasonNoQuestions})
	}
	for i, question := range p.Questions {
		qp := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(question.Text) == "" {
			issues = append(issues, Issue{Path: qp + ".text", Reason: ReasonEmptyQuestionText})
		}
		if question.Points < 0 {
			issues = append(issues, Issue{Path: qp + ".points", Reason: ReasonInvalidPoints})
		}
		if len(question.Choices) < MinChoices {
			issues = append(issues, Issue{Path: qp + ".choices", Reason: ReasonNotEnoughChoices})
		}
		correct := 0
		for j, choice := range question.Choices {
			if strings.TrimSpace(choice.Text) == "" {
				issues = append(issues, Issue{Path: fmt.Sprintf("%s.choices[%d].text", qp, j), Reason: ReasonEmptyChoiceText})
			}
			if choice.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			issues = append(issues, Issue{Path: qp + ".choices", Reason: ReasonCorrectChoiceCount})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// FromPayload builds the quiz a checked payload describes. Omitted points
// default to model.DefaultQuestionPoints.
func FromPayload(p *model.QuizPayload) *model.Quiz {
	q := &model.Quiz{
		CourseID:    p.CourseID,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Order:       p.Order,
		Questions:   make([]model.Question, len(p.Questions)),
	}
	for i, question := range p.Questions {
		points := question.Points
		if points < 1 {
			points = model.DefaultQuestionPoints
		}
		choices := make([]model.Choice, len(question.Choices))
		for j, choice := range question.Choices {
			choices[j] = model.Choice{Text: choice.Text, IsCorrect: choice.IsCorrect}
		}
		q.Questions[i] = model.Question{Text: question.Text, Points: points, Choices: choices}
	}
	return q
}
