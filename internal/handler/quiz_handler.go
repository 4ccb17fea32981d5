package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/validator"
)

// QuizHandler serves quiz authoring and grading. A course has at most one
// quiz: POST creates it, PUT creates or replaces it.
type QuizHandler struct {
	quizService QuizService
	log         zerolog.Logger
}

func NewQuizHandler(quizService QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// ListByCourse godoc
// GET /api/courses/:id/quiz
// Returns a zero-or-one element list.
func (h *QuizHandler) ListByCourse(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if quizzes == nil {
		quizzes = []model.QuizSummary{}
	}
	response.Success(c, http.StatusOK, quizzes)
}

// Create godoc
// POST /api/courses/:id/quiz
func (h *QuizHandler) Create(c *gin.Context) {
	h.write(c, http.StatusCreated, h.quizService.Create)
}

// Save godoc
// PUT /api/courses/:id/quiz
func (h *QuizHandler) Save(c *gin.Context) {
	h.write(c, http.StatusOK, h.quizService.Save)
}

type quizWriter func(ctx context.Context, courseID int64, p *model.QuizPayload) (*model.Quiz, error)

func (h *QuizHandler) write(c *gin.Context, status int, save quizWriter) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.QuizPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := save(c.Request.Context(), courseID, &req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, status, q)
}

// Delete godoc
// DELETE /api/courses/:id/quiz
func (h *QuizHandler) Delete(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.DeleteByCourse(c.Request.Context(), courseID); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// GET /api/quiz/:id
// Learner view: choices carry no is_correct flag.
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := h.quizService.Public(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// GetFull godoc
// GET /api/quiz/:id/full
// Author view, answer key included.
func (h *QuizHandler) GetFull(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := h.quizService.Definition(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Submit godoc
// POST /api/quiz/:id/submit
// Body is a list of {question_id, choice_id}. Unknown references are ignored.
func (h *QuizHandler) Submit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var answers []model.AnswerSubmission
	if fields := validator.Bind(c, &answers); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizService.Grade(c.Request.Context(), id, answers)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
