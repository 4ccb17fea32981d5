// Package quiz holds the quiz authoring draft, the learner submission mapper
// and the grading engine.
package quiz

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

const (
	// DefaultChoiceCount is the number of choices a new question starts with.
	DefaultChoiceCount = 4
	// MinChoices is the smallest choice set a question may have.
	MinChoices = 2
	// DefaultTitle is used for drafts created without a title.
	DefaultTitle = "Quiz"
)

// Key addresses a question or choice inside a draft. Keys are stable across
// edits, reorders and removals of siblings.
type Key string

// Choice is a draft choice. ID is zero until the choice has been persisted.
type Choice struct {
	Key       Key
	ID        int64
	Text      string
	IsCorrect bool
}

// Question is a draft question. ID is zero until persisted.
type Question struct {
	Key     Key
	ID      int64
	Text    string
	Points  int
	Choices []Choice
}

// Draft is an editable quiz. Every method returns a new Draft and leaves the
// receiver untouched; every question of every Draft has exactly one correct
// choice.
type Draft struct {
	id          int64
	courseID    int64
	title       string
	description *string
	order       int
	questions   []Question
	seq         int
}

// NewDraft starts an empty, not yet persisted quiz for a course.
func NewDraft(courseID int64) Draft {
	return Draft{courseID: courseID, title: DefaultTitle}
}

// Load hydrates a draft from a persisted quiz. Each question keeps its actual
// choice count. Stored data that breaks the correctness rule is normalized:
// the first correct choice wins, or the first choice when none is marked.
// Questions with fewer than MinChoices choices are padded with empty ones,
// which keeps the draft unsubmittable until the author fills them in.
func Load(q *model.Quiz) Draft {
	d := Draft{
		id:          q.ID,
		courseID:    q.CourseID,
		title:       q.Title,
		description: q.Description,
		order:       q.Order,
		questions:   make([]Question, 0, len(q.Questions)),
	}
	for _, mq := range q.Questions {
		question := Question{
			Key:     d.nextKey("q"),
			ID:      mq.ID,
			Text:    mq.Text,
			Points:  mq.Points,
			Choices: make([]Choice, 0, max(len(mq.Choices), MinChoices)),
		}
		if question.Points < 1 {
			question.Points = model.DefaultQuestionPoints
		}
		correct := -1
		for i, mc := range mq.Choices {
			if mc.IsCorrect && correct < 0 {
				correct = i
			}
			question.Choices = append(question.Choices, Choice{
				Key:  d.nextKey("c"),
				ID:   mc.ID,
				Text: mc.Text,
			})
		}
		for len(question.Choices) < MinChoices {
			question.Choices = append(question.Choices, Choice{Key: d.nextKey("c")})
		}
		if correct < 0 {
			correct = 0
		}
		question.Choices[correct].IsCorrect = true
		d.questions = append(d.questions, question)
	}
	return d
}

// ID returns the persisted quiz id, or zero.
func (d Draft) ID() int64 { return d.id }

// CourseID returns the owning course.
func (d Draft) CourseID() int64 { return d.courseID }

// Persisted reports whether the draft was loaded from a saved quiz. Saving a
// persisted draft updates the course's quiz; saving a fresh one creates it.
func (d Draft) Persisted() bool { return d.id != 0 }

// Title returns the quiz title.
func (d Draft) Title() string { return d.title }

// Len returns the number of questions.
func (d Draft) Len() int { return len(d.questions) }

// Questions returns a copy of the questions in order.
func (d Draft) Questions() []Question {
	return d.clone().questions
}

// Question looks up a question by key.
func (d Draft) Question(q Key) (Question, bool) {
	i := d.indexOf(q)
	if i < 0 {
		return Question{}, false
	}
	return cloneQuestion(d.questions[i]), true
}

// QuestionKey returns the key of the question at a position.
func (d Draft) QuestionKey(qIndex int) (Key, bool) {
	if qIndex < 0 || qIndex >= len(d.questions) {
		return "", false
	}
	return d.questions[qIndex].Key, true
}

// ChoiceKey returns the key of the choice at a position.
func (d Draft) ChoiceKey(qIndex, cIndex int) (Key, bool) {
	if qIndex < 0 || qIndex >= len(d.questions) {
		return "", false
	}
	choices := d.questions[qIndex].Choices
	if cIndex < 0 || cIndex >= len(choices) {
		return "", false
	}
	return choices[cIndex].Key, true
}

// SetTitle replaces the quiz title.
func (d Draft) SetTitle(title string) Draft {
	out := d.clone()
	out.title = title
	return out
}

// SetDescription replaces the quiz description.
func (d Draft) SetDescription(description *string) Draft {
	out := d.clone()
	out.description = description
	return out
}

// AddQuestion appends a question with DefaultChoiceCount empty choices, the
// first one marked correct.
func (d Draft) AddQuestion() (Draft, Key) {
	out := d.clone()
	question := Question{
		Key:     out.nextKey("q"),
		Points:  model.DefaultQuestionPoints,
		Choices: make([]Choice, DefaultChoiceCount),
	}
	for i := range question.Choices {
		question.Choices[i] = Choice{Key: out.nextKey("c"), IsCorrect: i == 0}
	}
	out.questions = append(out.questions, question)
	return out, question.Key
}

// RemoveQuestion drops a question.
func (d Draft) RemoveQuestion(q Key) (Draft, error) {
	i := d.indexOf(q)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrUnknownQuestion, q)
	}
	out := d.clone()
	out.questions = slices.Delete(out.questions, i, i+1)
	return out, nil
}

// MoveQuestion moves a question to newIndex, clamped to the list bounds.
func (d Draft) MoveQuestion(q Key, newIndex int) (Draft, error) {
	i := d.indexOf(q)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrUnknownQuestion, q)
	}
	out := d.clone()
	moved := out.questions[i]
	out.questions = slices.Delete(out.questions, i, i+1)
	newIndex = max(0, min(newIndex, len(out.questions)))
	out.questions = slices.Insert(out.questions, newIndex, moved)
	return out, nil
}

// EditQuestionText replaces a question's text.
func (d Draft) EditQuestionText(q Key, text string) (Draft, error) {
	return d.updateQuestion(q, func(question *Question) error {
		question.Text = text
		return nil
	})
}

// SetPoints replaces a question's points. Points must be positive.
func (d Draft) SetPoints(q Key, points int) (Draft, error) {
	return d.updateQuestion(q, func(question *Question) error {
		if points < 1 {
			return invalid(d.path(q)+".points", ReasonInvalidPoints)
		}
		question.Points = points
		return nil
	})
}

// AddChoice appends an empty, incorrect choice to a question.
func (d Draft) AddChoice(q Key) (Draft, Key, error) {
	i := d.indexOf(q)
	if i < 0 {
		return d, "", fmt.Errorf("%w: %s", ErrUnknownQuestion, q)
	}
	out := d.clone()
	key := out.nextKey("c")
	out.questions[i].Choices = append(out.questions[i].Choices, Choice{Key: key})
	return out, key, nil
}

// RemoveChoice drops a choice. A question never goes below MinChoices; when
// the correct choice is removed the first remaining choice becomes correct.
func (d Draft) RemoveChoice(q, c Key) (Draft, error) {
	return d.updateQuestion(q, func(question *Question) error {
		j := choiceIndex(question, c)
		if j < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownChoice, c)
		}
		if len(question.Choices) <= MinChoices {
			return invalid(d.path(q)+".choices", ReasonNotEnoughChoices)
		}
		wasCorrect := question.Choices[j].IsCorrect
		question.Choices = slices.Delete(question.Choices, j, j+1)
		if wasCorrect {
			question.Choices[0].IsCorrect = true
		}
		return nil
	})
}

// EditChoiceText replaces a choice's text.
func (d Draft) EditChoiceText(q, c Key, text string) (Draft, error) {
	return d.updateQuestion(q, func(question *Question) error {
		j := choiceIndex(question, c)
		if j < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownChoice, c)
		}
		question.Choices[j].Text = text
		return nil
	})
}

// SetCorrectChoice marks c as the correct choice of q and every sibling as
// incorrect, in one step. It is the only way to change the answer key.
func (d Draft) SetCorrectChoice(q, c Key) (Draft, error) {
	return d.updateQuestion(q, func(question *Question) error {
		j := choiceIndex(question, c)
		if j < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownChoice, c)
		}
		for k := range question.Choices {
			question.Choices[k].IsCorrect = k == j
		}
		return nil
	})
}

// Validate reports every rule that blocks submission.
func (d Draft) Validate() error {
	var issues []Issue
	if strings.TrimSpace(d.title) == "" {
		issues = append(issues, Issue{Path: "title", Reason: ReasonEmptyTitle})
	}
	if len(d.questions) == 0 {
		issues = append(issues, Issue{Path: "questions", Reason: ReasonNoQuestions})
	}
	for i, question := range d.questions {
		qp := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(question.Text) == "" {
			issues = append(issues, Issue{Path: qp + ".text", Reason: ReasonEmptyQuestionText})
		}
		if question.Points < 1 {
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

// Serialize validates the draft and maps it to the save payload.
func (d Draft) Serialize() (model.QuizPayload, error) {
	if err := d.Validate(); err != nil {
		return model.QuizPayload{}, err
	}
	payload := model.QuizPayload{
		Title:       d.title,
		Description: d.description,
		Order:       d.order,
		CourseID:    d.courseID,
		Questions:   make([]model.QuestionPayload, len(d.questions)),
	}
	for i, question := range d.questions {
		choices := make([]model.ChoicePayload, len(question.Choices))
		for j, choice := range question.Choices {
			choices[j] = model.ChoicePayload{Text: choice.Text, IsCorrect: choice.IsCorrect}
		}
		payload.Questions[i] = model.QuestionPayload{
			Text:    question.Text,
			Points:  question.Points,
			Choices: choices,
		}
	}
	return payload, nil
}

// ─── internal helpers ──────────────────────────────────────────────────────

func (d *Draft) nextKey(prefix string) Key {
	d.seq++
	return Key(prefix + strconv.Itoa(d.seq))
}

func (d Draft) indexOf(q Key) int {
	return slices.IndexFunc(d.questions, func(question Question) bool { return question.Key == q })
}

func (d Draft) path(q Key) string {
	return fmt.Sprintf("questions[%d]", d.indexOf(q))
}

// updateQuestion applies fn to a copy of question q. The receiver is returned
// unchanged when fn fails.
func (d Draft) updateQuestion(q Key, fn func(*Question) error) (Draft, error) {
	i := d.indexOf(q)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrUnknownQuestion, q)
	}
	out := d.clone()
	if err := fn(&out.questions[i]); err != nil {
		return d, err
	}
	return out, nil
}

func (d Draft) clone() Draft {
	out := d
	out.questions = make([]Question, len(d.questions))
	for i, question := range d.questions {
		out.questions[i] = cloneQuestion(question)
	}
	return out
}

func cloneQuestion(q Question) Question {
	q.Choices = slices.Clone(q.Choices)
	return q
}

func choiceIndex(q *Question, c Key) int {
	return slices.IndexFunc(q.Choices, func(choice Choice) bool { return choice.Key == c })
}
