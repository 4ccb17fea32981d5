package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
)

// failWith maps a service error onto the response envelope. Anything it does
// not recognise is logged and reported as an internal error.
func failWith(c *gin.Context, log zerolog.Logger, err error) {
	var quizErr *quiz.ValidationError
	var contentErr *lesson.ContentError

	switch {
	case errors.As(err, &quizErr):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidQuiz, quizErr.Fields())
	case errors.As(err, &contentErr):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidContent, contentFields(contentErr))

	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
	case errors.Is(err, service.ErrLessonNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLessonNotFound)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)

	case errors.Is(err, service.ErrSlugExists):
		response.Fail(c, http.StatusConflict, response.ErrSlugExists)
	case errors.Is(err, service.ErrQuizExists):
		response.Fail(c, http.StatusConflict, response.ErrQuizExists)

	case errors.Is(err, service.ErrCourseMismatch):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"course_id": err.Error()})
	case errors.Is(err, service.ErrEmptySlug):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"slug": err.Error()})
	case errors.Is(err, lesson.ErrLessonNotInCourse):
		response.Fail(c, http.StatusBadRequest, response.ErrLessonNotInCourse)

	case errors.Is(err, service.ErrUnsupportedFileType):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrUnsupportedFile, map[string]string{"file": err.Error()})
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrUploadFailed):
		log.Error().Err(err).Msg("Upload failed")
		response.Fail(c, http.StatusBadGateway, response.ErrUploadFailed)

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// contentFields points a content error at the request field that caused it.
func contentFields(err *lesson.ContentError) map[string]string {
	field := "content_type"
	switch err.Reason {
	case lesson.ReasonMissingText:
		field = "content_text"
	case lesson.ReasonMissingResource:
		field = "file"
	case lesson.ReasonInvalidURL:
		field = "content_url"
	}
	return map[string]string{field: string(err.Reason)}
}

// paramID parses a positive int64 path parameter. On failure it has already
// answered the request.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
