package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

// ListLessons returns a course's lessons in display order.
func (c *Client) ListLessons(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/lessons", courseID), nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (c *Client) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	var l model.Lesson
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/lessons/%d", id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLesson creates a text or link lesson, or a file lesson whose resource
// was uploaded beforehand and is referenced by ContentURL.
func (c *Client) CreateLesson(ctx context.Context, req model.CreateLessonRequest) (*model.Lesson, error) {
	if err := checkContent(req, false); err != nil {
		return nil, err
	}
	var l model.Lesson
	if err := c.doJSON(ctx, http.MethodPost, "/lessons", req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLessonWithFile sends the lesson and its resource in one multipart
// request. The server stores the file before it creates the lesson.
func (c *Client) CreateLessonWithFile(ctx context.Context, req model.CreateLessonRequest, filename string, file io.Reader) (*model.Lesson, error) {
	if err := checkContent(req, true); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"title":        req.Title,
		"content_type": req.ContentType,
		"course_id":    strconv.FormatInt(req.CourseID, 10),
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Order != nil {
		fields["order"] = strconv.Itoa(*req.Order)
	}

	body, contentType, err := multipartBody(fields, filename, file)
	if err != nil {
		return nil, err
	}
	var l model.Lesson
	if err := c.do(ctx, http.MethodPost, "/lessons", body, contentType, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) UpdateLesson(ctx context.Context, id int64, req model.UpdateLessonRequest) (*model.Lesson, error) {
	if req.ContentType != nil {
		t, ok := lesson.ParseContentType(*req.ContentType)
		if !ok {
			return nil, &lesson.ContentError{ContentType: model.ContentType(*req.ContentType), Reason: lesson.ReasonUnknownContentType}
		}
		var f lesson.Fields
		if req.ContentText != nil {
			f.ContentText = *req.ContentText
		}
		if req.ContentURL != nil {
			f.ContentURL = *req.ContentURL
		}
		if err := lesson.Validate(t, f); err != nil {
			return nil, err
		}
	}
	var l model.Lesson
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/lessons/%d", id), req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ReorderLesson moves a lesson to newIndex and returns the renumbered list.
func (c *Client) ReorderLesson(ctx context.Context, courseID, lessonID int64, newIndex int) ([]model.Lesson, error) {
	req := model.ReorderLessonRequest{LessonID: lessonID, NewIndex: &newIndex}
	var lessons []model.Lesson
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/lessons/reorder", courseID), req, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (c *Client) DeleteLesson(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/lessons/%d", id), nil, nil)
}

// Upload stores a file on its own. kind may be empty or one of the file
// content types; the returned filename is what a lesson's content_url takes.
func (c *Client) Upload(ctx context.Context, kind model.ContentType, filename string, file io.Reader) (*model.UploadResult, error) {
	fields := map[string]string{}
	if kind != "" {
		fields["content_type"] = string(kind)
	}
	body, contentType, err := multipartBody(fields, filename, file)
	if err != nil {
		return nil, err
	}
	var res model.UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload", body, contentType, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// checkContent runs the content rules on a create request. pending reports
// that a file travels with the request.
func checkContent(req model.CreateLessonRequest, pending bool) error {
	t, ok := lesson.ParseContentType(req.ContentType)
	if !ok {
		return &lesson.ContentError{ContentType: model.ContentType(req.ContentType), Reason: lesson.ReasonUnknownContentType}
	}
	return lesson.Validate(t, lesson.Fields{
		ContentText:   req.ContentText,
		ContentURL:    req.ContentURL,
		PendingUpload: pending && t.IsFile(),
	})
}

func multipartBody(fields map[string]string, filename string, file io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
