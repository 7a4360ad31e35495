package safe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"mmbot.com/pkg/logger"
)

func TestGoCtx_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	done := make(chan struct{})
	GoCtx(context.Background(), "admin-http", func(context.Context) {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}

	require.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	entry := logs.All()[0]
	assert.Equal(t, "goroutine panic recovered", entry.Message)
	assert.Equal(t, "admin-http", entry.ContextMap()["goroutine"])
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
}
