package datasource

import (
	"context"

	"mmbot.com/internal/quotes/datasource/model"
)

// Source：一个可插拔的行情源。
// Fetch 只做一次请求；失败返回 FeedError（xerr feed 码），不重试，由调用方跳过本次 tick。
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (model.Snapshot, error)
}

// Func adapts a plain function to Source, mostly for tests and replays.
type Func func(ctx context.Context, symbol string) (model.Snapshot, error)

func (f Func) Name() string { return "func" }

func (f Func) Fetch(ctx context.Context, symbol string) (model.Snapshot, error) {
	return f(ctx, symbol)
}

// Static always returns the same snapshot.
func Static(s model.Snapshot) Source {
	return Func(func(context.Context, string) (model.Snapshot, error) { return s, nil })
}
