// Package inference is an HTTP client for a hosted market-score model.
// It implements scoring.Scorer.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/influencersphere/internal/domain"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

const maxResponseBytes = 1 << 20

// Config holds the inference endpoint settings.
type Config struct {
	BaseURL       string
	Model         string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	RatePerSecond float64
	Burst         int
}

func (c Config) normalize() Config {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 100 * time.Millisecond
	}
	if c.MaxRetryDelay < c.RetryDelay {
		c.MaxRetryDelay = c.RetryDelay
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}

// reply is a fully read response, so retried attempts never leak bodies.
type reply struct {
	status int
	body   []byte
}

type predictRequest struct {
	Instances []map[string]any `json:"instances"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Client scores features through a remote predict endpoint.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	executor failsafe.Executor[reply]
	breaker  circuitbreaker.CircuitBreaker[reply]
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewClient builds a client with retry, circuit breaker and rate limiting.
// A zero RatePerSecond disables the limiter.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg = cfg.normalize()
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("inference: base url and model are required: %w", domain.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	endpoint := base + "/v1/models/" + url.PathEscape(cfg.Model) + ":predict"

	retry := retrypolicy.NewBuilder[reply]().
		WithBackoff(cfg.RetryDelay, cfg.MaxRetryDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(shouldRetry).
		Build()

	breaker := circuitbreaker.NewBuilder[reply]().
		WithFailureThresholdRatio(5, 10).
		WithDelay(15 * time.Second).
		WithSuccessThreshold(1).
		HandleIf(func(r reply, err error) bool {
			return err != nil || r.status >= http.StatusInternalServerError
		}).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			logger.Warn("Inference circuit breaker state change",
				zap.String("from", stateName(event.OldState)),
				zap.String("to", stateName(event.NewState)),
			)
		}).
		Build()

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		executor: failsafe.With[reply](retry, breaker),
		breaker:  breaker,
		limiter:  limiter,
		logger:   logger,
	}, nil
}

// Score posts features as a single instance and returns the first prediction.
func (c *Client) Score(ctx context.Context, features map[string]any) (score.Score, error) {
	payload, err := json.Marshal(predictRequest{Instances: []map[string]any{features}})
	if err != nil {
		return score.Score{}, fmt.Errorf("inference: encode: %w: %w", domain.ErrScoringUnavailable, err)
	}

	r, err := c.executor.WithContext(ctx).Get(func() (reply, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return score.Score{}, fmt.Errorf("inference: %w: %w", domain.ErrScoringUnavailable, err)
	}
	if r.status != http.StatusOK {
		return score.Score{}, fmt.Errorf("inference: status %d: %w", r.status, domain.ErrScoringUnavailable)
	}

	var resp predictResponse
	if err := json.Unmarshal(r.body, &resp); err != nil {
		return score.Score{}, fmt.Errorf("inference: decode: %w: %w", domain.ErrScoringUnavailable, err)
	}
	if len(resp.Predictions) == 0 {
		return score.Score{}, fmt.Errorf("inference: empty predictions: %w", domain.ErrScoringUnavailable)
	}
	return score.New(resp.Predictions[0]), nil
}

// BreakerOpen reports whether the circuit breaker is currently rejecting calls.
func (c *Client) BreakerOpen() bool {
	return c.breaker.IsOpen()
}

func (c *Client) post(ctx context.Context, payload []byte) (reply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return reply{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return reply{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return reply{}, fmt.Errorf("read body: %w", err)
	}
	return reply{status: resp.StatusCode, body: body}, nil
}

// shouldRetry retries network errors, 5xx gateway failures and 429.
func shouldRetry(r reply, err error) bool {
	if err != nil {
		return true
	}
	switch r.status {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func stateName(s circuitbreaker.State) string {
	switch s {
	case circuitbreaker.ClosedState:
		return "closed"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	case circuitbreaker.OpenState:
		return "open"
	default:
		return "unknown"
	}
}
