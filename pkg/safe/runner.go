package safe

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"mmbot.com/pkg/logger"
)

// GoCtx 安全启动携带 context 的协程，panic 会被记录而不会带崩整个进程
func GoCtx(ctx context.Context, name string, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer Recover(ctx, name)
		fn(ctx)
	}()
}

// Recover must be deferred directly. It logs the panic value and stack of
// the current goroutine.
func Recover(ctx context.Context, name string) {
	r := recover()
	if r == nil {
		return
	}
	stack := string(debug.Stack())

	// logger 未初始化时打印到标准输出
	if logger.Log != nil {
		logger.Error(ctx, "goroutine panic recovered",
			zap.String("goroutine", name),
			zap.Any("panic", r),
			zap.String("stack", stack),
		)
		return
	}
	fmt.Printf("goroutine %s panic: %v\nStack: %s\n", name, r, stack)
}
