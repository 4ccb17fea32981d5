package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/storage"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadFailed        = errors.New("upload failed")
)

// Accepted extensions per file content type, with the MIME type objects are
// stored under.
var allowedExtensions = map[model.ContentType]map[string]string{
	model.ContentTypePDF: {
		".pdf": "application/pdf",
	},
	model.ContentTypeVideo: {
		".mp4":  "video/mp4",
		".m4v":  "video/mp4",
		".webm": "video/webm",
		".mov":  "video/quicktime",
	},
	model.ContentTypeWord: {
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".odt":  "application/vnd.oasis.opendocument.text",
	},
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// MediaService stores lesson files and signs read URLs for them.
type MediaService struct {
	store     storage.Store
	maxBytes  int64
	signedTTL time.Duration
	log       zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(store storage.Store, maxBytes int64, signedTTL time.Duration, log zerolog.Logger) *MediaService {
	return &MediaService{
		store:     store,
		maxBytes:  maxBytes,
		signedTTL: signedTTL,
		log:       log.With().Str("component", "media_service").Str("backend", store.Backend()).Logger(),
	}
}

// Save stores an upload under a random name and returns that name. When kind
// is a file content type the extension must belong to it; an empty kind
// accepts any lesson file type.
func (s *MediaService) Save(ctx context.Context, up Upload, kind model.ContentType) (model.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	mime, ok := mimeFor(kind, ext)
	if !ok {
		return model.UploadResult{}, fmt.Errorf("%w: %q (allowed: %s)",
			ErrUnsupportedFileType, ext, strings.Join(allowedFor(kind), ", "))
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return model.UploadResult{}, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, s.maxBytes)
	}

	name := uuid.NewString() + ext
	body := up.Body
	if s.maxBytes > 0 {
		// Size comes from the client; never trust it for the actual copy.
		body = io.LimitReader(body, s.maxBytes+1)
	}
	counter := &countingReader{r: body}
	if err := s.store.Put(ctx, name, mime, counter); err != nil {
		return model.UploadResult{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if s.maxBytes > 0 && counter.n > s.maxBytes {
		s.Delete(ctx, name)
		return model.UploadResult{}, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	s.log.Info().Str("object", name).Str("original_name", up.Filename).Int64("bytes", counter.n).Msg("Upload stored")
	return model.UploadResult{Filename: name, OriginalName: up.Filename}, nil
}

// SignedURL returns a display URL for a stored object, or "" when ref is not
// an uploaded object (e.g. an external link) or cannot be signed.
func (s *MediaService) SignedURL(ctx context.Context, ref string) string {
	if !storage.IsObjectName(ref) {
		return ""
	}
	u, err := s.store.SignedURL(ctx, ref, s.signedTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("object", ref).Msg("Failed to sign object URL")
		return ""
	}
	return u
}

// Delete removes a stored object. Failures are logged, not returned: an
// orphaned file is harmless.
func (s *MediaService) Delete(ctx context.Context, ref string) {
	if !storage.IsObjectName(ref) {
		return
	}
	if err := s.store.Delete(ctx, ref); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Warn().Err(err).Str("object", ref).Msg("Failed to delete object")
	}
}

func mimeFor(kind model.ContentType, ext string) (string, bool) {
	if kind != "" {
		mime, ok := allowedExtensions[kind][ext]
		return mime, ok
	}
	for _, exts := range allowedExtensions {
		if mime, ok := exts[ext]; ok {
			return mime, true
		}
	}
	return "", false
}

func allowedFor(kind model.ContentType) []string {
	var out []string
	for k, exts := range allowedExtensions {
		if kind != "" && k != kind {
			continue
		}
		for ext := range exts {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return out
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
