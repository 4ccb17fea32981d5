package quiz

import (
	"slices"
	"strconv"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// ToSubmission maps learner selections (question id → choice id) to the
// grading wire format. Only answered questions produce an entry. Entries are
// sorted by question id so equal selections always serialize identically.
func ToSubmission(selected map[int64]int64) []model.AnswerSubmission {
	out := make([]model.AnswerSubmission, 0, len(selected))
	for questionID, choiceID := range selected {
		out = append(out, model.AnswerSubmission{QuestionID: questionID, ChoiceID: choiceID})
	}
	slices.SortFunc(out, func(a, b model.AnswerSubmission) int {
		switch {
		case a.QuestionID < b.QuestionID:
			return -1
		case a.QuestionID > b.QuestionID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// ParseSelections converts string-keyed selections, as kept in a redis hash,
// to ids. Pairs that are not integers are dropped.
func ParseSelections(raw map[string]string) map[int64]int64 {
	out := make(map[int64]int64, len(raw))
	for k, v := range raw {
		questionID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		choiceID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[questionID] = choiceID
	}
	return out
}
