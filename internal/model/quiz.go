package model

import "time"

// DefaultQuestionPoints is applied when a question is saved without points.
const DefaultQuestionPoints = 1

// Choice is one selectable option of a question.
type Choice struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a multiple-choice question with its ordered choices.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Points  int      `json:"points"`
	Choices []Choice `json:"choices"`
}

// Quiz is the author view of a course's quiz, answer key included.
type Quiz struct {
	ID          int64      `json:"id"`
	CourseID    int64      `json:"course_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Order       int        `json:"order"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// QuizSummary is an element of GET /courses/{id}/quiz.
type QuizSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// PublicChoice is a choice sent to learners (no answer key).
type PublicChoice struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion is a question sent to learners.
type PublicQuestion struct {
	ID      int64          `json:"id"`
	Text    string         `json:"text"`
	Points  int            `json:"points"`
	Choices []PublicChoice `json:"choices"`
}

// PublicQuiz is the learner view of a quiz.
type PublicQuiz struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Questions   []PublicQuestion `json:"questions"`
}

// Public strips the answer key.
func (q *Quiz) Public() PublicQuiz {
	questions := make([]PublicQuestion, len(q.Questions))
	for i, qq := range q.Questions {
		choices := make([]PublicChoice, len(qq.Choices))
		for j, c := range qq.Choices {
			choices[j] = PublicChoice{ID: c.ID, Text: c.Text}
		}
		questions[i] = PublicQuestion{ID: qq.ID, Text: qq.Text, Points: qq.Points, Choices: choices}
	}
	return PublicQuiz{ID: q.ID, Title: q.Title, Description: q.Description, Questions: questions}
}

// ChoicePayload is a choice as sent when saving a quiz.
type ChoicePayload struct {
	Text      string `json:"text" yaml:"text" binding:"required,max=1000"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

// QuestionPayload is a question as sent when saving a quiz.
type QuestionPayload struct {
	Text    string          `json:"text" yaml:"text" binding:"required,max=2000"`
	Points  int             `json:"points" yaml:"points" binding:"omitempty,min=1,max=2147483647"`
	Choices []ChoicePayload `json:"choices" yaml:"choices" binding:"required,min=2,dive"`
}

// QuizPayload is the body of POST/PUT /courses/{id}/quiz.
type QuizPayload struct {
	Title       string            `json:"title" yaml:"title" binding:"required,min=1,max=255"`
	Description *string           `json:"description" yaml:"description"`
	Order       int               `json:"order" yaml:"order" binding:"min=0,max=2147483647"`
	CourseID    int64             `json:"course_id" yaml:"course_id"`
	Questions   []QuestionPayload `json:"questions" yaml:"questions" binding:"required,min=1,dive"`
}

// AnswerSubmission is one learner answer sent to POST /quiz/{id}/submit.
type AnswerSubmission struct {
	QuestionID int64 `json:"question_id"`
	ChoiceID   int64 `json:"choice_id"`
}

// GradeDetail reports the outcome of a single question.
type GradeDetail struct {
	QuestionID    int64  `json:"question_id"`
	ChoiceID      *int64 `json:"choice_id,omitempty"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	Points        int    `json:"points"`
}

// GradeResult is the outcome of grading one attempt.
type GradeResult struct {
	Score       int           `json:"score"`
	TotalPoints int           `json:"total_points"`
	Passed      bool          `json:"passed"`
	Details     []GradeDetail `json:"details,omitempty"`
}
