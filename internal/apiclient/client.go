package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnreachable means the request never produced an HTTP response.
	ErrUnreachable = errors.New("api unreachable")
	// ErrDecode means the response body was not the record the caller asked for.
	ErrDecode = errors.New("decode api response")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api responded %d", e.StatusCode)
	}
	return fmt.Sprintf("api responded %d: %s", e.StatusCode, e.Message)
}

func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsClientError(err error) bool {
	code := StatusCode(err)
	return code >= 400 && code < 500
}

func DecodeError(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, what, err)
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}
}

// URL joins path onto the base URL, adding the leading slash when it is missing.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Bearer string
	Body   interface{}
}

// Do sends req and decodes a successful JSON body into out, which may be nil.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	target := c.URL(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrUnreachable, req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return DecodeError(req.Method+" "+req.Path, err)
	}
	return nil
}

// errorMessage pulls the human readable reason out of an error body; the API uses both keys.
func errorMessage(data []byte) string {
	var reply struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return ""
	}
	if reply.Message != "" {
		return reply.Message
	}
	return reply.Error
}
