package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, slug, title, description, category, level, created_at, updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.Category, &c.Level, &c.CreatedAt, &c.UpdatedAt)
}

// List returns every course ordered by id.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByID returns pgx.ErrNoRows when the course does not exist.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id), c); err != nil {
		return nil, err
	}
	return c, nil
}

// Exists reports whether a course id is known.
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// Create inserts a course. A taken slug yields ErrDuplicateSlug.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (slug, title, description, category, level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Slug, c.Title, c.Description, c.Category, c.Level,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err, "courses_slug_key") {
		return ErrDuplicateSlug
	}
	return err
}

// Update writes every mutable column of c.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE courses
		 SET slug = $1, title = $2, description = $3, category = $4, level = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		c.Slug, c.Title, c.Description, c.Category, c.Level, c.ID,
	).Scan(&c.UpdatedAt)
	if isUniqueViolation(err, "courses_slug_key") {
		return ErrDuplicateSlug
	}
	return err
}

// Delete removes a course with its lessons and quiz. It returns
// pgx.ErrNoRows when nothing was deleted.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
