package advisor

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 3 * time.Second
	defaultBackoffFactor  = 2.0
)

// Outcome classifies an oracle call failure so callers can branch on a tag
// instead of matching substrings in error messages.
type Outcome int

const (
	// OutcomeFatal marks errors that no amount of retrying will fix
	// (bad request, cancelled context, malformed parameters).
	OutcomeFatal Outcome = iota
	// OutcomeRateLimited marks upstream throttling. Retried with backoff;
	// once exhausted, callers degrade to a technical-only result.
	OutcomeRateLimited
	// OutcomeInvalidKey marks authentication failures. Never retried.
	OutcomeInvalidKey
	// OutcomeRetryable marks transient upstream or transport failures.
	OutcomeRetryable
)

// Classify maps an error to its retry outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeFatal
	}

	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeFatal
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return OutcomeRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return OutcomeInvalidKey
		case http.StatusRequestTimeout,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return OutcomeRetryable
		default:
			return OutcomeFatal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Temporary() {
		return OutcomeRetryable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeRetryable
	}

	return OutcomeFatal
}

// RetryConfig encapsulates exponential backoff settings.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// RetryHandler executes retryable operations with backoff.
type RetryHandler struct {
	cfg RetryConfig
}

// NewRetryHandler constructs a handler with sane defaults.
func NewRetryHandler(cfg RetryConfig) *RetryHandler {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultBackoffFactor
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RetryHandler{cfg: cfg}
}

// Do executes fn with retries until it succeeds or exhausts attempts.
func (r *RetryHandler) Do(ctx context.Context, fn func() error) error {
	var attempt int
	backoff := r.cfg.InitialBackoff

	for {
		err := fn()
		if err == nil {
			return nil
		}

		outcome := Classify(err)
		if outcome != OutcomeRateLimited && outcome != OutcomeRetryable {
			return err
		}
		if attempt >= r.cfg.MaxRetries {
			return err
		}
		attempt++

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(math.Min(
			float64(r.cfg.MaxBackoff),
			float64(backoff)*r.cfg.Multiplier,
		))
	}
}
