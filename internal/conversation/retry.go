package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/carefront/frontdesk-ai/pkg/logging"
)

// RetryPolicy describes how completion calls are retried. Only errors the
// predicate accepts are retried; everything else fails immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries rate-limit style errors with bounded
// exponential backoff: 3 attempts, 2s base delay capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Retryable:   IsRateLimitError,
	}
}

// IsRateLimitError reports whether an error looks like a provider rate limit
// or quota exhaustion.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource exhausted")
}

// RetryingClient wraps an LLMClient with a RetryPolicy.
type RetryingClient struct {
	inner  LLMClient
	policy RetryPolicy
	logger *logging.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewRetryingClient wraps the given client with the retry policy.
func NewRetryingClient(inner LLMClient, policy RetryPolicy, logger *logging.Logger) *RetryingClient {
	if inner == nil {
		panic("conversation: retry inner client required")
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRateLimitError
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RetryingClient{
		inner:  inner,
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Complete issues the request, retrying retryable failures with exponential
// backoff until the policy's attempts are exhausted.
func (c *RetryingClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	delay := c.policy.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		resp, err := c.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !c.policy.Retryable(err) || attempt == c.policy.MaxAttempts {
			break
		}
		c.logger.Warn("completion failed, retrying",
			"attempt", attempt,
			"delay", delay.String(),
			"error", err.Error(),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return LLMResponse{}, err
		}
		delay *= 2
		if c.policy.MaxDelay > 0 && delay > c.policy.MaxDelay {
			delay = c.policy.MaxDelay
		}
	}
	return LLMResponse{}, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
