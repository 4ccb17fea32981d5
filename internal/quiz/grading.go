package quiz

import (
	"fmt"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// PassPolicy decides the pass/fail outcome of a score. Threshold is the
// fraction of total points a learner needs, in [0, 1]. Its value belongs to
// whoever deploys the grader.
type PassPolicy struct {
	Threshold float64
}

// NewPassPolicy validates a threshold.
func NewPassPolicy(threshold float64) (PassPolicy, error) {
	if threshold < 0 || threshold > 1 {
		return PassPolicy{}, fmt.Errorf("pass threshold %v out of range [0, 1]", threshold)
	}
	return PassPolicy{Threshold: threshold}, nil
}

// Passed reports whether score out of total meets the threshold. A quiz
// worth nothing is never passed.
func (p PassPolicy) Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score) >= p.Threshold*float64(total)
}

// Grade scores a submission against a quiz definition.
//
// Every question's points count towards TotalPoints; a question earns its
// points when the submitted choice is marked correct. Entries that do not
// resolve to a real (question, choice) pair of this quiz are ignored. When a
// question is answered more than once the last resolvable entry counts.
// Grade is a pure function of its inputs.
func Grade(q *model.Quiz, submission []model.AnswerSubmission, policy PassPolicy) model.GradeResult {
	questionIndex := make(map[int64]int, len(q.Questions))
	for i, question := range q.Questions {
		questionIndex[question.ID] = i
	}

	// question index → choice index
	selected := make(map[int]int, len(submission))
	for _, answer := range submission {
		qi, ok := questionIndex[answer.QuestionID]
		if !ok {
			continue
		}
		for ci, choice := range q.Questions[qi].Choices {
			if choice.ID == answer.ChoiceID {
				selected[qi] = ci
				break
			}
		}
	}

	result := model.GradeResult{Details: make([]model.GradeDetail, len(q.Questions))}
	for i, question := range q.Questions {
		points := question.Points
		if points < 1 {
			points = model.DefaultQuestionPoints
		}
		result.TotalPoints += points

		detail := model.GradeDetail{QuestionID: question.ID, Points: points}
		if ci, ok := selected[i]; ok {
			choice := question.Choices[ci]
			choiceID := choice.ID
			detail.ChoiceID = &choiceID
			if choice.IsCorrect {
				detail.Correct = true
				detail.PointsAwarded = points
				result.Score += points
			}
		}
		result.Details[i] = detail
	}

	result.Passed = policy.Passed(result.Score, result.TotalPoints)
	return result
}
