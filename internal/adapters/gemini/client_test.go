package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xyd945/travel-ai-agent/internal/adapters/gemini"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

func newClient(t *testing.T, h http.HandlerFunc) *gemini.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c, err := gemini.New(context.Background(), gemini.Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: ts.URL + "/",
		HTTP:    ts.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestComplete_ReturnsText(t *testing.T) {
	var body map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header not sent")
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"location\":\"Lisbon, Portugal\",\"placesOfInterest\":[]}"}]}}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := c.Complete(ctx, "best cheap eats in Lisbon")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != `{"location":"Lisbon, Portugal","placesOfInterest":[]}` {
		t.Fatalf("unexpected text: %q", got)
	}

	gc, _ := body["generationConfig"].(map[string]any)
	if gc == nil || gc["maxOutputTokens"] != float64(2048) || gc["topK"] != float64(40) {
		t.Fatalf("generation config not sent: %+v", body["generationConfig"])
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	var hits int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := c.Complete(context.Background(), "hi")
	var up *domain.UpstreamError
	if !errors.As(err, &up) || up.Status != http.StatusBadRequest {
		t.Fatalf("want UpstreamError 400, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected exactly one call, got %d", hits)
	}
}

func TestComplete_EmptyCandidates(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Complete(context.Background(), "hi")
	var up *domain.UpstreamError
	if !errors.As(err, &up) || up.Status != http.StatusBadGateway {
		t.Fatalf("want UpstreamError 502, got %v", err)
	}
}

func TestComplete_MissingKey(t *testing.T) {
	c, err := gemini.New(context.Background(), gemini.Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Complete(context.Background(), "hi"); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("want ErrMissingCredential, got %v", err)
	}
}
