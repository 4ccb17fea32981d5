package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
)

// CourseQuiz returns the summary of the course's quiz. ok is false when the
// course has none yet.
func (c *Client) CourseQuiz(ctx context.Context, courseID int64) (summary model.QuizSummary, ok bool, err error) {
	var list []model.QuizSummary
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/quiz", courseID), nil, &list); err != nil {
		return model.QuizSummary{}, false, err
	}
	if len(list) == 0 {
		return model.QuizSummary{}, false, nil
	}
	return list[0], true, nil
}

// LoadQuiz fetches the author view of a quiz into an editable draft.
func (c *Client) LoadQuiz(ctx context.Context, quizID int64) (quiz.Draft, error) {
	var q model.Quiz
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/quiz/%d/full", quizID), nil, &q); err != nil {
		return quiz.Draft{}, err
	}
	return quiz.Load(&q), nil
}

// EditCourseQuiz opens the course's quiz for editing, or an empty draft when
// there is none.
func (c *Client) EditCourseQuiz(ctx context.Context, courseID int64) (quiz.Draft, error) {
	summary, ok, err := c.CourseQuiz(ctx, courseID)
	if err != nil {
		return quiz.Draft{}, err
	}
	if !ok {
		return quiz.NewDraft(courseID), nil
	}
	return c.LoadQuiz(ctx, summary.ID)
}

// SaveQuiz submits a draft. A draft that breaks a quiz rule is rejected
// before any request is made. Drafts loaded from the server are updated,
// new drafts are created; either way the saved quiz comes back as a draft.
func (c *Client) SaveQuiz(ctx context.Context, d quiz.Draft) (quiz.Draft, error) {
	payload, err := d.Serialize()
	if err != nil {
		return d, err
	}
	method := http.MethodPost
	if d.Persisted() {
		method = http.MethodPut
	}
	var saved model.Quiz
	if err := c.doJSON(ctx, method, fmt.Sprintf("/courses/%d/quiz", d.CourseID()), payload, &saved); err != nil {
		return d, err
	}
	return quiz.Load(&saved), nil
}

func (c *Client) DeleteCourseQuiz(ctx context.Context, courseID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/quiz", courseID), nil, nil)
}

// PublicQuiz fetches the learner view, without the answer key.
func (c *Client) PublicQuiz(ctx context.Context, quizID int64) (*model.PublicQuiz, error) {
	var q model.PublicQuiz
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/quiz/%d", quizID), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// SubmitQuiz grades the learner's selections (question id → choice id).
// Unanswered questions are simply left out.
func (c *Client) SubmitQuiz(ctx context.Context, quizID int64, selected map[int64]int64) (*model.GradeResult, error) {
	var result model.GradeResult
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/quiz/%d/submit", quizID), quiz.ToSubmission(selected), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
