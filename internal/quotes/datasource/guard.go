package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/metrics"
	"mmbot.com/pkg/ratelimit"
	"mmbot.com/pkg/xerr"
)

var tracer = otel.Tracer("mmbot/quotes/datasource")

// Guard 包住一次上游请求：本地限流 -> 超时 -> 熔断，外加 span 和耗时指标。
// 各字段为零值时对应能力关闭。
type Guard struct {
	Limiter  *ratelimit.Store   // 按 symbol 限流
	Breakers *ratelimit.Manager // 按源熔断
	Timeout  time.Duration
}

func (g Guard) Do(ctx context.Context, source, symbol string, fn func(ctx context.Context) (model.Snapshot, error)) (snap model.Snapshot, err error) {
	ctx, span := tracer.Start(ctx, source+".fetch")
	span.SetAttributes(attribute.String("source", source), attribute.String("symbol", symbol))
	start := time.Now()
	defer func() {
		metrics.FeedFetchDuration.WithLabelValues(source, StatusLabel(err)).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if g.Limiter != nil && !g.Limiter.Allow(symbol) {
		metrics.RateLimitBlockTotal.WithLabelValues(source, symbol, "local").Inc()
		return model.Snapshot{}, xerr.NewErrCode(xerr.FeedRateLimited)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	if g.Breakers == nil {
		return fn(ctx)
	}

	cb := g.Breakers.Get(source)
	_, err = cb.Execute(func() (struct{}, error) {
		var callErr error
		snap, callErr = fn(ctx)
		return struct{}{}, callErr
	})
	// 熔断器拒绝：直接 fail-fast，不打上游
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CBRejectTotal.WithLabelValues(source, symbol, "open").Inc()
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedCircuitOpen, "circuit breaker open")
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// StatusLabel is the metrics label for a fetch result.
func StatusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch xerr.CodeOf(err) {
	case xerr.FeedBadStatus:
		return "bad_status"
	case xerr.FeedInvalidPayload:
		return "invalid_payload"
	case xerr.FeedRateLimited:
		return "rate_limited"
	case xerr.FeedCircuitOpen:
		return "circuit_open"
	default:
		return "unavailable"
	}
}
