package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClosed(t *testing.T) {
	assert.False(t, IsClosed(nil))
	assert.False(t, IsClosed(errors.New("element not found before deadline")))

	assert.True(t, IsClosed(context.Canceled))
	assert.True(t, IsClosed(context.DeadlineExceeded))
	assert.True(t, IsClosed(fmt.Errorf("run: %w", context.Canceled)))
	assert.True(t, IsClosed(errors.New("websocket: close 1006 (abnormal closure)")))
	assert.True(t, IsClosed(errors.New("Target closed")))
	assert.True(t, IsClosed(errors.New("dial tcp 127.0.0.1:9222: connection refused")))
}
