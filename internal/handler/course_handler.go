package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/validator"
)

type CourseHandler struct {
	courseService CourseService
	log           zerolog.Logger
}

func NewCourseHandler(courseService CourseService, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		log:           log.With().Str("component", "course_handler").Logger(),
	}
}

// List godoc
// GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, courses)
}

// Get godoc
// GET /api/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// Create godoc
// POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), &req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// Update godoc
// PUT /api/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// Delete godoc
// DELETE /api/courses/:id
// Removes the course with its lessons, their files and its quiz.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.NoContent(c)
}
