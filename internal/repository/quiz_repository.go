package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// QuizRepository persists quizzes with their questions and choices.
// Questions and choices are owned by the quiz and always rewritten together.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// ListByCourse returns the course's quiz as a zero-or-one element list.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID int64) ([]model.QuizSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title FROM quizzes WHERE course_id = $1 ORDER BY id ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.QuizSummary{}
	for rows.Next() {
		var s model.QuizSummary
		if err := rows.Scan(&s.ID, &s.Title); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID loads a full quiz definition. pgx.ErrNoRows when missing.
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, description, sort_order, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.Order, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadQuestions(ctx, r.pool, q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetIDByCourse returns the id of the course's quiz. pgx.ErrNoRows when the
// course has none.
func (r *QuizRepository) GetIDByCourse(ctx context.Context, courseID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM quizzes WHERE course_id = $1`, courseID).Scan(&id)
	return id, err
}

// ListIDs returns every quiz id, used to prewarm caches.
func (r *QuizRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *QuizRepository) loadQuestions(ctx context.Context, db querier, q *model.Quiz) error {
	rows, err := db.Query(ctx,
		`SELECT id, text, points FROM quiz_questions WHERE quiz_id = $1 ORDER BY position ASC, id ASC`, q.ID)
	if err != nil {
		return err
	}
	q.Questions = []model.Question{}
	index := make(map[int64]int)
	for rows.Next() {
		var qu model.Question
		if err := rows.Scan(&qu.ID, &qu.Text, &qu.Points); err != nil {
			rows.Close()
			return err
		}
		qu.Choices = []model.Choice{}
		index[qu.ID] = len(q.Questions)
		q.Questions = append(q.Questions, qu)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query(ctx,
		`SELECT c.id, c.question_id, c.text, c.is_correct
		 FROM quiz_choices c
		 JOIN quiz_questions qq ON qq.id = c.question_id
		 WHERE qq.quiz_id = $1
		 ORDER BY c.question_id, c.position ASC, c.id ASC`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c          model.Choice
			questionID int64
		)
		if err := rows.Scan(&c.ID, &questionID, &c.Text, &c.IsCorrect); err != nil {
			return err
		}
		if i, ok := index[questionID]; ok {
			q.Questions[i].Choices = append(q.Questions[i].Choices, c)
		}
	}
	return rows.Err()
}

// Create inserts the course's first quiz. ErrQuizExists when the course
// already has one.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO quizzes (course_id, title, description, sort_order)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at, updated_at`,
			q.CourseID, q.Title, q.Description, q.Order,
		).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
		if isUniqueViolation(err, "quizzes_course_id_key") {
			return ErrQuizExists
		}
		if err != nil {
			return err
		}
		return r.writeQuestions(ctx, tx, q)
	})
}

// Upsert creates or replaces the course's quiz in one transaction. The quiz
// keeps its id; questions and choices are replaced wholesale.
func (r *QuizRepository) Upsert(ctx context.Context, q *model.Quiz) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO quizzes (course_id, title, description, sort_order)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (course_id) DO UPDATE
			 SET title = EXCLUDED.title, description = EXCLUDED.description,
			     sort_order = EXCLUDED.sort_order, updated_at = NOW()
			 RETURNING id, created_at, updated_at`,
			q.CourseID, q.Title, q.Description, q.Order,
		).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id = $1`, q.ID); err != nil {
			return err
		}
		return r.writeQuestions(ctx, tx, q)
	})
}

// writeQuestions inserts q.Questions, filling in generated ids.
func (r *QuizRepository) writeQuestions(ctx context.Context, tx pgx.Tx, q *model.Quiz) error {
	batch := &pgx.Batch{}
	for i, qu := range q.Questions {
		batch.Queue(
			`INSERT INTO quiz_questions (quiz_id, text, points, position) VALUES ($1, $2, $3, $4) RETURNING id`,
			q.ID, qu.Text, qu.Points, i,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range q.Questions {
		if err := br.QueryRow().Scan(&q.Questions[i].ID); err != nil {
			br.Close()
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	batch = &pgx.Batch{}
	for _, qu := range q.Questions {
		for j, c := range qu.Choices {
			batch.Queue(
				`INSERT INTO quiz_choices (question_id, text, is_correct, position) VALUES ($1, $2, $3, $4) RETURNING id`,
				qu.ID, c.Text, c.IsCorrect, j,
			)
		}
	}
	br = tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := range q.Questions {
		for j := range q.Questions[i].Choices {
			if err := br.QueryRow().Scan(&q.Questions[i].Choices[j].ID); err != nil {
				return fmt.Errorf("insert choice %d of question %d: %w", j, i, err)
			}
		}
	}
	return br.Close()
}

// DeleteByCourse removes the course's quiz. pgx.ErrNoRows when there is none.
func (r *QuizRepository) DeleteByCourse(ctx context.Context, courseID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `DELETE FROM quizzes WHERE course_id = $1 RETURNING id`, courseID).Scan(&id)
	return id, err
}
