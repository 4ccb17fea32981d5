package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService MediaService
	log          zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService MediaService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		log:          log.With().Str("component", "media_handler").Logger(),
	}
}

// Upload godoc
// POST /api/upload
// Stores a lesson file and returns the object name to put in content_url.
// An optional "content_type" form field restricts the accepted extensions.
func (h *MediaHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	var kind model.ContentType
	if raw := c.PostForm("content_type"); raw != "" {
		kind = model.ContentType(raw)
		if !kind.IsFile() {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"content_type": "content_type must be one of pdf, video, word"})
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	defer file.Close()

	res, err := h.mediaService.Save(c.Request.Context(), service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}, kind)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}
