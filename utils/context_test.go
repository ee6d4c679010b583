package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClientDisconnect(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"direct context.Canceled", context.Canceled, true},
		{"wrapped context.Canceled", fmt.Errorf("wrapped: %w", context.Canceled), true},
		{"minio stream", errors.New("failed to stream object 'photos/a.jpg': context canceled"), true},
		{"broken pipe", errors.New("write tcp 127.0.0.1:5000: broken pipe"), true},
		{"deadline is not a disconnect", context.DeadlineExceeded, false},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsClientDisconnect(tt.err))
		})
	}
}
