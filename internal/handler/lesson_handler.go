package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
	"github.com/Juenzo/CloudComputing-Project/internal/validator"
)

type LessonHandler struct {
	lessonService LessonService
	log           zerolog.Logger
}

func NewLessonHandler(lessonService LessonService, log zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		log:           log.With().Str("component", "lesson_handler").Logger(),
	}
}

// ListByCourse godoc
// GET /api/courses/:id/lessons
func (h *LessonHandler) ListByCourse(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	lessons, err := h.lessonService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	response.Success(c, http.StatusOK, lessons)
}

// Get godoc
// GET /api/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	l, err := h.lessonService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Create godoc
// POST /api/lessons
// Accepts JSON, or multipart form fields with an optional "file" part for
// pdf/video/word lessons. The file is stored before the lesson is.
func (h *LessonHandler) Create(c *gin.Context) {
	var req model.CreateLessonRequest
	if fields := validator.BindAny(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var up *service.Upload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// Resource given as content_url, or not a file lesson.
		case err != nil:
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		default:
			file, err := header.Open()
			if err != nil {
				failWith(c, h.log, err)
				return
			}
			defer file.Close()
			up = &service.Upload{Filename: header.Filename, Size: header.Size, Body: file}
		}
	}

	l, err := h.lessonService.Create(c.Request.Context(), &req, up)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, l)
}

// Update godoc
// PUT /api/lessons/:id
func (h *LessonHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.lessonService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Reorder godoc
// POST /api/courses/:id/lessons/reorder
// Moves one lesson and returns the course's lessons in their new order.
func (h *LessonHandler) Reorder(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ReorderLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lessons, err := h.lessonService.Reorder(c.Request.Context(), courseID, req.LessonID, *req.NewIndex)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, lessons)
}

// Delete godoc
// DELETE /api/lessons/:id
func (h *LessonHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.lessonService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.NoContent(c)
}
