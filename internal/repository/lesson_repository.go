package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// LessonRepository handles lesson data access.
type LessonRepository struct {
	pool *pgxpool.Pool
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

const lessonColumns = `id, course_id, title, description, content_type, content_text, content_url, sort_order, created_at, updated_at`

func scanLesson(row pgx.Row, l *model.Lesson) error {
	return row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.ContentType,
		&l.ContentText, &l.ContentURL, &l.Order, &l.CreatedAt, &l.UpdatedAt)
}

// ListByCourse returns a course's lessons in insertion order (by id). Display
// ordering is applied by the caller.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = $1 ORDER BY id ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		var l model.Lesson
		if err := scanLesson(rows, &l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// GetByID returns pgx.ErrNoRows when the lesson does not exist.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	l := &model.Lesson{}
	if err := scanLesson(r.pool.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id), l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lessons (course_id, title, description, content_type, content_text, content_url, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		l.CourseID, l.Title, l.Description, l.ContentType, l.ContentText, l.ContentURL, l.Order,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LessonRepository) Update(ctx context.Context, l *model.Lesson) error {
	return r.pool.QueryRow(ctx,
		`UPDATE lessons
		 SET title = $1, description = $2, content_type = $3, content_text = $4,
		     content_url = $5, sort_order = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		l.Title, l.Description, l.ContentType, l.ContentText, l.ContentURL, l.Order, l.ID,
	).Scan(&l.UpdatedAt)
}

// UpdateOrders writes the order of every given lesson of a course in one
// statement.
func (r *LessonRepository) UpdateOrders(ctx context.Context, courseID int64, lessons []model.Lesson) error {
	ids := make([]int64, len(lessons))
	orders := make([]int32, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
		orders[i] = int32(l.Order)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE lessons AS l
		 SET sort_order = u.sort_order, updated_at = NOW()
		 FROM UNNEST($1::bigint[], $2::int[]) AS u (id, sort_order)
		 WHERE l.id = u.id AND l.course_id = $3`,
		ids, orders, courseID,
	)
	return err
}

// CountFileRefs returns how many file lessons point at the stored object ref.
func (r *LessonRepository) CountFileRefs(ctx context.Context, ref string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons
		 WHERE content_url = $1 AND content_type IN ('pdf', 'video', 'word')`, ref,
	).Scan(&n)
	return n, err
}

// Delete returns the removed lesson so the caller can clean up its file.
// pgx.ErrNoRows is returned when nothing matched.
func (r *LessonRepository) Delete(ctx context.Context, id int64) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := scanLesson(r.pool.QueryRow(ctx, `DELETE FROM lessons WHERE id = $1 RETURNING `+lessonColumns, id), l)
	if err != nil {
		return nil, err
	}
	return l, nil
}
