package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Juenzo/CloudComputing-Project/internal/model"
)

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.doJSON(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	var course model.Course
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	var course model.Course
	if err := c.doJSON(ctx, http.MethodPost, "/courses", req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, id int64, req model.UpdateCourseRequest) (*model.Course, error) {
	var course model.Course
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/courses/%d", id), req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes the course with its lessons and quiz.
func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d", id), nil, nil)
}
