package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func fastPolicy(maxRetries int) *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}
}

func TestBackoffRetryer_Success(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return nil // 第一次就成功
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount, "应该只调用一次")
}

func TestBackoffRetryer_RetryAndSuccess(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	testErr := errors.New("temporary error")

	err := retryer.Do(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return testErr // 前两次失败
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount, "应该调用三次")
}

func TestBackoffRetryer_MaxRetriesExceeded(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(2), zap.NewNop())

	callCount := 0
	testErr := errors.New("persistent error")

	err := retryer.Do(context.Background(), func() error {
		callCount++
		return testErr // 始终失败
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, testErr)
	assert.Equal(t, 3, callCount, "初始调用 + 2 次重试")
}

func TestBackoffRetryer_ContextCanceled(t *testing.T) {
	policy := &RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
	retryer := NewBackoffRetryer(policy, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	callCount := 0
	err := retryer.Do(ctx, func() error {
		callCount++
		return errors.New("error")
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, callCount, 1, "至少调用一次")
}

func TestBackoffRetryer_RetryableErrors(t *testing.T) {
	retryableErr := errors.New("retryable error")
	nonRetryableErr := errors.New("non-retryable error")

	policy := fastPolicy(3)
	policy.RetryableErrors = []error{retryableErr}
	retryer := NewBackoffRetryer(policy, zap.NewNop())
	ctx := context.Background()

	t.Run("retryable error", func(t *testing.T) {
		callCount := 0
		err := retryer.Do(ctx, func() error {
			callCount++
			if callCount < 3 {
				return retryableErr
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, callCount)
	})

	t.Run("non-retryable error", func(t *testing.T) {
		callCount := 0
		err := retryer.Do(ctx, func() error {
			callCount++
			return nonRetryableErr
		})

		assert.Error(t, err)
		assert.Equal(t, 1, callCount, "不应该重试")
	})
}

func TestBackoffRetryer_DelayCalculation(t *testing.T) {
	policy := &RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}
	retryer := NewBackoffRetryer(policy, zap.NewNop()).(*backoffRetryer)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond}, // 初始延迟
		{2, 200 * time.Millisecond}, // 100 * 2^1
		{3, 400 * time.Millisecond}, // 100 * 2^2
		{4, 800 * time.Millisecond}, // 100 * 2^3
		{5, 1 * time.Second},        // 达到最大延迟
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, retryer.calculateDelay(tt.attempt))
	}
}

func TestBackoffRetryer_OnRetryCallback(t *testing.T) {
	callbackCount := 0
	var lastAttempt int
	var lastErr error
	var lastDelay time.Duration

	policy := fastPolicy(2)
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		callbackCount++
		lastAttempt = attempt
		lastErr = err
		lastDelay = delay
	}

	retryer := NewBackoffRetryer(policy, zap.NewNop())

	testErr := errors.New("test error")
	callCount := 0
	_ = retryer.Do(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return testErr
		}
		return nil
	})

	assert.Equal(t, 2, callbackCount, "回调应该被调用两次")
	assert.Equal(t, 2, lastAttempt)
	assert.Equal(t, testErr, lastErr)
	assert.Greater(t, lastDelay, time.Duration(0))
}

func TestDoWithResultTyped(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	val, err := DoWithResultTyped[string](r, context.Background(), func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("not yet")
		}
		return "done", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "done", val)
	assert.Equal(t, 3, callCount)
}

func TestDoWithResultTyped_Error(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(0), zap.NewNop())

	val, err := DoWithResultTyped[int](r, context.Background(), func() (int, error) {
		return 0, errors.New("fail")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, val)
}
