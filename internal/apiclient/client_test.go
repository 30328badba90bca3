package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_URL(t *testing.T) {
	c := New("http://localhost:5000/", time.Second)
	assert.Equal(t, "http://localhost:5000/api/events", c.URL("/api/events"))
	assert.Equal(t, "http://localhost:5000/api/events", c.URL("api/events"))
}

func TestClient_Do_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("dry"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"o1"}`))
	}))
	defer srv.Close()

	var out struct {
		ID string `json:"_id"`
	}
	err := New(srv.URL, time.Second).Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/orders",
		Query:  url.Values{"dry": {"true"}},
		Bearer: "secret",
		Body:   map[string]string{"a": "b"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "o1", out.ID)
}

func TestClient_Do_APIError(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{name: "message key", body: `{"message":"Token invalide"}`, message: "Token invalide"},
		{name: "error key", body: `{"error":"Upload failed"}`, message: "Upload failed"},
		{name: "no body", body: ``, message: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := New(srv.URL, time.Second).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.True(t, IsClientError(err))
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestClient_Do_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := New(srv.URL, time.Second).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, &out)

	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_Do_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := New(addr, time.Second).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, 0, StatusCode(err))
}
