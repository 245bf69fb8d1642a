package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/jonathan/content-agent/internal/logger"
	"google.golang.org/api/googleapi"
)

// RetryConfig controls how transient provider errors are retried.
type RetryConfig struct {
	Attempts     int
	ExpBase      float64
	InitialDelay time.Duration
	MaxDelay     time.Duration
	StatusCodes  []int
}

// DefaultRetryConfig retries rate limits and server errors five times.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     5,
		ExpBase:      7,
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		StatusCodes:  []int{429, 500, 503, 504},
	}
}

// Validate reports nonsensical retry settings.
func (c RetryConfig) Validate() error {
	if c.Attempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	if c.ExpBase < 1 {
		return fmt.Errorf("retry exp base must be at least 1")
	}
	if c.InitialDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	return nil
}

// Delay is the wait before retry n (1-based): InitialDelay * ExpBase^(n-1), capped at MaxDelay.
func (c RetryConfig) Delay(n int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.ExpBase, float64(n-1)))
	if c.MaxDelay > 0 && (d > c.MaxDelay || d < 0) {
		return c.MaxDelay
	}
	return d
}

// Retryable reports whether err carries one of the configured HTTP status codes.
func (c RetryConfig) Retryable(err error) bool {
	code := StatusCode(err)
	return code != 0 && slices.Contains(c.StatusCodes, code)
}

// StatusCode extracts an HTTP status from a provider error, or 0.
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return coded.HTTPCode()
	}
	return 0
}

// RetryingOracle retries another Oracle on transient provider errors.
type RetryingOracle struct {
	next  Oracle
	cfg   RetryConfig
	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryingOracle wraps next. A nil log discards retry messages.
func NewRetryingOracle(next Oracle, cfg RetryConfig, log *logger.Logger) *RetryingOracle {
	if log == nil {
		log = logger.Nop()
	}
	return &RetryingOracle{next: next, cfg: cfg, log: log, sleep: sleepCtx}
}

// Respond implements Oracle.
func (r *RetryingOracle) Respond(ctx context.Context, req Request) (*Response, error) {
	attempts := r.cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.next.Respond(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !r.cfg.Retryable(err) || attempt == attempts {
			break
		}

		delay := r.cfg.Delay(attempt)
		r.log.Warn("retrying model call",
			"stage", req.Stage,
			"attempt", attempt,
			"status", StatusCode(err),
			"delay", delay.String(),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
