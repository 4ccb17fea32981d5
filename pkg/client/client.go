// Package client is a typed Go client of the course platform API. It runs
// the local validation rules before anything is sent, so a rejected lesson or
// quiz never reaches the network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/response"
)

const (
	apiPrefix      = "/api"
	defaultTimeout = 30 * time.Second
	// Bodies beyond this are not read when decoding an error envelope.
	maxErrorBody = 1 << 20
)

// Client talks to one server.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger transport failures are reported to.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "client").Logger() }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

// doJSON sends in (when non-nil) as a JSON body and decodes the envelope's
// data into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(&TransportError{Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(failure(method, path, resp))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return c.fail(malformed(method, path, resp.StatusCode, err))
	}
	if len(env.Data) == 0 {
		return c.fail(malformed(method, path, resp.StatusCode, errMissingData))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return c.fail(malformed(method, path, resp.StatusCode, err))
	}
	return nil
}

// failure builds the error of a non-2xx answer, keeping the server's code and
// message when the body is an error envelope.
func failure(method, path string, resp *http.Response) *TransportError {
	te := &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&env); err != nil || env.Error == nil {
		te.Err = fmt.Errorf("unexpected status %s", resp.Status)
		return te
	}
	te.Code = env.Error.Code
	te.Message = env.Error.Message
	te.Fields = env.Error.Fields
	return te
}

func malformed(method, path string, status int, err error) *TransportError {
	return &TransportError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, err),
	}
}

func (c *Client) fail(te *TransportError) error {
	c.log.Warn().
		Str("method", te.Method).
		Str("path", te.Path).
		Int("status", te.StatusCode).
		Str("code", string(te.Code)).
		AnErr("cause", te.Err).
		Msg("Request failed")
	return te
}
