package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFailEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		FailWithFields(c, http.StatusUnprocessableEntity, ErrInvalidContent, map[string]string{"content_text": "MissingText"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=422 got=%d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != ErrInvalidContent || body.Error.Message != GetMessage(ErrInvalidContent) {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
	if body.Error.Fields["content_text"] != "MissingText" {
		t.Fatalf("fields not forwarded: %+v", body.Error.Fields)
	}
	if body.Metadata.RequestID != "req-1" || w.Header().Get(HeaderRequestID) != "req-1" {
		t.Fatalf("request id not propagated: %q", body.Metadata.RequestID)
	}
}

func TestSuccessGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"id": 1}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body struct {
		Data     map[string]int `json:"data"`
		Error    *ErrorBody     `json:"error"`
		Metadata Metadata       `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["id"] != 1 || body.Error != nil {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if body.Metadata.RequestID == "" || body.Metadata.RequestID != w.Header().Get(HeaderRequestID) {
		t.Fatalf("request id mismatch: body=%q header=%q", body.Metadata.RequestID, w.Header().Get(HeaderRequestID))
	}
}
