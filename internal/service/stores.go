package service

import (
	"context"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// Persistence contracts of the services. The repository package implements
// them on PostgreSQL; lookups of missing rows return pgx.ErrNoRows.

type CourseStore interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id int64) error
}

type LessonStore interface {
	ListByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error)
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	Create(ctx context.Context, l *model.Lesson) error
	Update(ctx context.Context, l *model.Lesson) error
	UpdateOrders(ctx context.Context, courseID int64, lessons []model.Lesson) error
	Delete(ctx context.Context, id int64) (*model.Lesson, error)
	CountFileRefs(ctx context.Context, ref string) (int, error)
}

type QuizStore interface {
	ListByCourse(ctx context.Context, courseID int64) ([]model.QuizSummary, error)
	GetByID(ctx context.Context, id int64) (*model.Quiz, error)
	GetIDByCourse(ctx context.Context, courseID int64) (int64, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Create(ctx context.Context, q *model.Quiz) error
	Upsert(ctx context.Context, q *model.Quiz) error
	DeleteByCourse(ctx context.Context, courseID int64) (int64, error)
}
