package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okBatch = json.RawMessage(`{"problems":[]}`)

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func invalid() MockResponse {
	return MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
}

func TestRetry_Attempts(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		calls     int
	}{
		{"first attempt", []MockResponse{{Content: okBatch}}, false, 1},
		{"transient then success", []MockResponse{unavailable(), {Content: okBatch}}, false, 2},
		{"all attempts fail", []MockResponse{unavailable(), unavailable(), unavailable()}, true, 3},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, {Content: okBatch}}, true, 1},
		{"invalid response retried once", []MockResponse{invalid(), invalid(), {Content: okBatch}}, true, 2},
		{"invalid then success", []MockResponse{invalid(), {Content: okBatch}}, false, 2},
		{
			"rate limit waits RetryAfter",
			[]MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, {Content: okBatch}},
			false, 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, string(okBatch), string(resp.Content))
			}
			assert.Equal(t, tt.calls, mock.CallCount())
		})
	}
}

func TestRetry_KeepsTypedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{}`)}})
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})

	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable())
	_, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), MockResponse{Content: okBatch})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, retryConfig()).Generate(ctx, Request{})
	assert.Error(t, err)
	assert.Less(t, mock.CallCount(), 3)
}

func TestRetry_Backoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}

	assert.InDelta(t, float64(100*time.Millisecond), float64(r.backoff(0, errors.New("x"))), float64(20*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(r.backoff(1, errors.New("x"))), float64(40*time.Millisecond))
	assert.LessOrEqual(t, r.backoff(5, errors.New("x")), 360*time.Millisecond)
	assert.Equal(t, 7*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), retryConfig()).ModelID())
}
