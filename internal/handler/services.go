package handler

import (
	"context"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
)

// The handlers depend on these narrow views of the service layer; the
// concrete services in internal/service satisfy them.

type CourseService interface {
	List(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, id int64) (*model.Course, error)
	Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error)
	Update(ctx context.Context, id int64, req *model.UpdateCourseRequest) (*model.Course, error)
	Delete(ctx context.Context, id int64) error
}

type LessonService interface {
	ListByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error)
	Get(ctx context.Context, id int64) (*model.Lesson, error)
	Create(ctx context.Context, req *model.CreateLessonRequest, up *service.Upload) (*model.Lesson, error)
	Update(ctx context.Context, id int64, req *model.UpdateLessonRequest) (*model.Lesson, error)
	Reorder(ctx context.Context, courseID, lessonID int64, newIndex int) ([]model.Lesson, error)
	Delete(ctx context.Context, id int64) error
}

type MediaService interface {
	Save(ctx context.Context, up service.Upload, kind model.ContentType) (model.UploadResult, error)
}

type QuizService interface {
	ListByCourse(ctx context.Context, courseID int64) ([]model.QuizSummary, error)
	Definition(ctx context.Context, quizID int64) (*model.Quiz, error)
	Public(ctx context.Context, quizID int64) (*model.PublicQuiz, error)
	Create(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error)
	Save(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error)
	DeleteByCourse(ctx context.Context, courseID int64) error
	Grade(ctx context.Context, quizID int64, submission []model.AnswerSubmission) (*model.GradeResult, error)
}

// AttemptService runs live quiz attempts over the WebSocket stream.
type AttemptService interface {
	StartAttempt(ctx context.Context, quizID int64) (string, *model.PublicQuiz, error)
	Select(ctx context.Context, quizID int64, attemptID string, questionID, choiceID int64) error
	SubmitAttempt(ctx context.Context, quizID int64, attemptID string) (*model.GradeResult, error)
	AbandonAttempt(ctx context.Context, quizID int64, attemptID string)
}

var (
	_ CourseService  = (*service.CourseService)(nil)
	_ LessonService  = (*service.LessonService)(nil)
	_ MediaService   = (*service.MediaService)(nil)
	_ QuizService    = (*service.QuizService)(nil)
	_ AttemptService = (*service.QuizService)(nil)
)
