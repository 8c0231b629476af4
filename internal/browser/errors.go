package browser

import (
	"context"
	"errors"
	"strings"
)

// IsClosed reports whether an error indicates the browser went away rather
// than the automation itself failing. Covers context cancellation and the
// usual chromedp disconnect messages.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	closedPatterns := []string{
		"context canceled",
		"context deadline exceeded",
		"websocket: close",
		"target closed",
		"browser: not connected",
		"session closed",
		"page closed",
		"connection refused",
		"broken pipe",
	}
	for _, pattern := range closedPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
