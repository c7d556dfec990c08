// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", errors.New("connection reset"), true},
		{"server error", &StatusError{StatusCode: http.StatusInternalServerError}, true},
		{"request timeout", &StatusError{StatusCode: http.StatusRequestTimeout}, true},
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"unauthorized", &StatusError{StatusCode: http.StatusUnauthorized}, false},
		{"wrapped bad request", fmt.Errorf("call: %w", &StatusError{StatusCode: http.StatusBadRequest}), false},
		{"invalid request", fmt.Errorf("%w: no messages", ErrInvalidRequest), false},
		{"cancelled", context.Canceled, false},
		{"empty completion", ErrEmptyCompletion, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestWithRetry_StopsAfterMaxTries(t *testing.T) {
	calls := 0
	var notified []int
	_, err := withRetry(context.Background(), 2, zeroBackOff(), func(attempt int) (string, error) {
		calls++
		return "", errors.New("boom")
	}, func(attempt int, _ error, _ time.Duration) {
		notified = append(notified, attempt)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), 5, zeroBackOff(), func(int) (string, error) {
		calls++
		return "", &StatusError{Provider: "yandex", StatusCode: http.StatusForbidden}
	}, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_Success(t *testing.T) {
	v, err := withRetry(context.Background(), 1, zeroBackOff(), func(attempt int) (int, error) {
		if attempt == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestComplete_InvalidRequestSkipsNetwork(t *testing.T) {
	c, err := NewClient(yandexConfig("http://127.0.0.1:1/unused"), WithBackOff(zeroBackOff))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleSystem, Text: "only system"}}})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Complete(context.Background(), Request{Messages: []Message{{Role: "tool", Text: "x"}}})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
