// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package http

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
)

type testType struct {
	String string  `json:"string"`
	Int    int     `json:"int"`
	Float  float64 `json:"float"`
	Bool   bool    `json:"bool"`
}

const testJSON = `{"string":"test","int":123,"float":123.456,"bool":true}`

type mockRoundTripper struct {
	fn func(req *stdhttp.Request) (*stdhttp.Response, error)
}

func (m mockRoundTripper) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	return m.fn(req)
}

func jsonResponse(body string) func(req *stdhttp.Request) (*stdhttp.Response, error) {
	return func(req *stdhttp.Request) (*stdhttp.Response, error) {
		return &stdhttp.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(stdhttp.Header),
		}, nil
	}
}

func TestNew(t *testing.T) {
	client := New(logger.New(slog.LevelInfo))
	if client == nil {
		t.Fatal("expected client to be non-nil")
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("getting and serializing JSON should work", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		client.Transport = mockRoundTripper{fn: jsonResponse(testJSON)}
		query := url.Values{}
		query.Add("key", "value")
		headers := map[string]string{"X-Custom-Header": "custom-value"}

		target := new(testType)
		response, err := client.Get(t.Context(), "https://example.com", target, query, headers)
		if err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}

		if response != 200 {
			t.Errorf("expected status code 200, got %d", response)
		}
		if target.String != "test" {
			t.Errorf("expected target string to be 'test', got %s", target.String)
		}
		if target.Int != 123 {
			t.Errorf("expected target int to be 123, got %d", target.Int)
		}
		if !target.Bool {
			t.Error("expected target bool to be true")
		}
	})
	t.Run("unmarshalling into non-pointer should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		var target testType
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %s", ErrNonPointerTarget, err)
		}
	})
	t.Run("parsing an invalid url should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		target := new(testType)
		_, err := client.Get(t.Context(), "http://example.com/xyz%", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse URL") {
			t.Errorf("expected error to contain 'failed to parse URL', got %s", err)
		}
	})
	t.Run("get request fails", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		client.Transport = mockRoundTripper{fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}}

		target := new(testType)
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
	})
}

func TestClient_Post(t *testing.T) {
	t.Run("post request succeeds", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		client.Transport = mockRoundTripper{fn: jsonResponse(testJSON)}

		target := new(testType)
		_, err := client.Post(t.Context(), "https://example.com", target, strings.NewReader("{}"), nil)
		if err != nil {
			t.Fatalf("post request failed: %s", err)
		}
	})
	t.Run("unmarshalling into non-pointer should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		var target testType
		_, err := client.Post(t.Context(), "https://example.com", target, nil, nil)
		if err == nil {
			t.Fatal("expected post to fail")
		}
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %s", ErrNonPointerTarget, err)
		}
	})
}

func TestClient_PostWithTimeout(t *testing.T) {
	t.Run("post request times out", func(t *testing.T) {
		client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
		client.Transport = mockRoundTripper{fn: func(req *stdhttp.Request) (*stdhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}}

		target := new(testType)
		_, err := client.PostWithTimeout(t.Context(), "https://example.com", target, nil, nil, time.Millisecond)
		if err == nil {
			t.Fatal("expected post request to time out")
		}
	})
}
