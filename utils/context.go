package utils

import (
	"context"
	"errors"
	"strings"
)

// IsClientDisconnect reports errors caused by the client going away
// mid-response, which are not worth logging
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
