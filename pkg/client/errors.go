package client

import (
	"errors"
	"fmt"

	"github.com/Juenzo/CloudComputing-Project/internal/lesson"
	"github.com/Juenzo/CloudComputing-Project/internal/model"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
)

var (
	// ErrTransportFailed matches every failure that happened on the way to
	// or from the server: network errors and non-2xx answers alike.
	ErrTransportFailed = errors.New("transport failed")

	// ErrMalformedResponse marks a body that could not be decoded. It also
	// matches ErrTransportFailed.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrTransportFailed)

	errMissingData = errors.New("envelope has no data field")
)

// TransportError describes a failed call. StatusCode is zero when no
// response was received.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Code       response.ErrCode
	Message    string
	Fields     map[string]string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.StatusCode)
	}
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailed
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	msgUnreachable = "The server could not be reached. Please try again."
	msgMalformed   = "The server sent an unexpected response. Please try again."
)

// UserMessage turns an error returned by the client into text that can be
// shown to the author or learner. Server messages are returned verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var te *TransportError
	switch {
	case errors.Is(err, model.ErrValidationFailed):
		return validationMessage(err)
	case errors.Is(err, ErrMalformedResponse):
		return msgMalformed
	case errors.As(err, &te):
		if te.Message != "" {
			return te.Message
		}
		if te.StatusCode == 0 {
			return msgUnreachable
		}
		return response.GetMessage(response.ErrInternal)
	default:
		return response.GetMessage(response.ErrInternal)
	}
}

func validationMessage(err error) string {
	var ce *lesson.ContentError
	if errors.As(err, &ce) {
		return response.GetMessage(response.ErrInvalidContent)
	}
	return response.GetMessage(response.ErrInvalidQuiz)
}
