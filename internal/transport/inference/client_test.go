package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:       srv.URL,
		Model:         "market-v1",
		Timeout:       time.Second,
		MaxRetries:    retries,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{Model: "m"}, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestScore_PostsInstancesAndParsesPrediction(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"predictions":[91.234]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/", Model: "market-v1", APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	s, err := c.Score(context.Background(), map[string]any{"follower_growth_rate": 0.1})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if gotPath != "/v1/models/market-v1:predict" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(gotBody.Instances) != 1 || gotBody.Instances[0]["follower_growth_rate"] != 0.1 {
		t.Errorf("instances = %v", gotBody.Instances)
	}
	if s.Value() != 91.23 || s.Tier() != score.TierAList {
		t.Errorf("score = %v %v", s.Value(), s.Tier())
	}
}

func TestScore_ClampsPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[250]}`))
	}))
	defer srv.Close()

	s, err := newTestClient(t, srv, 0).Score(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if s.Value() != score.Max {
		t.Errorf("expected clamp to %v, got %v", score.Max, s.Value())
	}
}

func TestScore_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"predictions":[50]}`))
	}))
	defer srv.Close()

	s, err := newTestClient(t, srv, 3).Score(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if s.Value() != 50 {
		t.Errorf("score = %v", s.Value())
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestScore_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 3).Score(context.Background(), map[string]any{})
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

func TestScore_ExhaustedRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 2).Score(context.Background(), map[string]any{})
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestScore_BadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"predictions":`},
		{"empty predictions", `{"predictions":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv, 0).Score(context.Background(), map[string]any{})
			if !errors.Is(err, domain.ErrScoringUnavailable) {
				t.Fatalf("expected ErrScoringUnavailable, got %v", err)
			}
		})
	}
}

func TestScore_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[10]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv, 0).Score(ctx, map[string]any{})
	if !errors.Is(err, domain.ErrScoringUnavailable) {
		t.Fatalf("expected ErrScoringUnavailable, got %v", err)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   bool
	}{
		{0, errors.New("dial"), true},
		{http.StatusOK, nil, false},
		{http.StatusBadRequest, nil, false},
		{http.StatusTooManyRequests, nil, true},
		{http.StatusInternalServerError, nil, true},
		{http.StatusGatewayTimeout, nil, true},
		{http.StatusNotImplemented, nil, false},
	}
	for _, tt := range tests {
		if got := shouldRetry(reply{status: tt.status}, tt.err); got != tt.want {
			t.Errorf("shouldRetry(%d, %v) = %v, want %v", tt.status, tt.err, got, tt.want)
		}
	}
}
