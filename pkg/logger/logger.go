package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIdKey 没有 span 时从 context 里取的 trace id（例如每个 tick 生成的 uuid）
const TraceIdKey = "trace_id"

// 全局 Logger 实例
var Log *zap.Logger

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init 初始化日志组件
// serviceName: 当前服务名称 (例如 "mmbot")
// level: 日志级别 (debug, info, warn, error)
func Init(serviceName string, lvl string) {
	InitWithFile(serviceName, lvl, "")
}

// InitWithFile 初始化日志组件，支持指定日志文件路径
// logFile 为空时使用默认路径 logs/{serviceName}.log
func InitWithFile(serviceName string, lvl string, logFile string) {
	SetLevel(lvl)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "msg"

	writeSyncers := []zapcore.WriteSyncer{
		zapcore.AddSync(os.Stdout),
	}

	if logFile == "" {
		logFile = filepath.Join("logs", serviceName+".log")
	}

	// 目录或文件打不开时只输出到控制台，不中断程序
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			writeSyncers = append(writeSyncers, zapcore.AddSync(file))
		}
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(writeSyncers...),
		level,
	)

	// AddCallerSkip(1): 跳过本包的封装函数
	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", serviceName))
}

// SetLevel changes the level of the logger built by Init at runtime. Unknown
// levels fall back to info.
func SetLevel(lvl string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(lvl)); err != nil {
		zapLevel = zap.InfoLevel
	}
	level.SetLevel(zapLevel)
}

// Named returns a child of the global logger without the wrapper caller skip,
// for components that take a *zap.Logger directly. Before Init it writes
// JSON to stdout.
func Named(name string) *zap.Logger {
	if Log == nil {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
		return zap.New(core).Named(name)
	}
	return Log.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// Info 打印 Info 级别日志
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	logger().Info(msg, WithTrace(ctx, fields)...)
}

// Error 打印 Error 级别日志
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	logger().Error(msg, WithTrace(ctx, fields)...)
}

// Warn 打印 Warn 级别日志
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	logger().Warn(msg, WithTrace(ctx, fields)...)
}

// Debug 打印 Debug 级别日志
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	logger().Debug(msg, WithTrace(ctx, fields)...)
}

// Fatal 打印 Fatal 级别日志 (会调用 os.Exit)
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	logger().Fatal(msg, WithTrace(ctx, fields)...)
}

// WithTrace appends the trace id carried by ctx to fields. An active span
// wins over a TraceIdKey value.
func WithTrace(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	if traceID, ok := ctx.Value(TraceIdKey).(string); ok && traceID != "" {
		return append(fields, zap.String("trace_id", traceID))
	}
	return fields
}

func logger() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}

// Sync 刷新缓冲区 (建议在 main 函数 defer 中调用)
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
