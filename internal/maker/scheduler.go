package maker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"mmbot.com/pkg/safe"
)

// Run starts the market and balance loops and blocks until ctx is done.
// The first market tick runs immediately. Tick errors are logged inside the
// tick and never returned.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("market-making bot started",
		zap.String("symbol", b.cfg.Symbol),
		zap.String("source", b.src.Name()),
		zap.Duration("market_interval", b.cfg.MarketInterval),
		zap.Duration("balance_interval", b.cfg.BalanceInterval),
	)

	b.runTick(ctx, "market", func(ctx context.Context) { _ = b.MarketTick(ctx) })

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.every(ctx, b.cfg.MarketInterval, DefaultMarketInterval, "market", func(ctx context.Context) {
			_ = b.MarketTick(ctx)
		})
		return nil
	})
	g.Go(func() error {
		b.every(ctx, b.cfg.BalanceInterval, DefaultBalanceInterval, "balance", func(ctx context.Context) {
			b.ReportBalance(ctx)
		})
		return nil
	})
	err := g.Wait()
	b.log.Info("market-making bot stopped", zap.String("symbol", b.cfg.Symbol))
	return err
}

func (b *Bot) every(ctx context.Context, d, fallback time.Duration, name string, fn func(context.Context)) {
	if d <= 0 {
		d = fallback
	}
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.runTick(ctx, name, fn)
		}
	}
}

// runTick 单个 tick panic 不影响后续调度
func (b *Bot) runTick(ctx context.Context, name string, fn func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	defer safe.Recover(ctx, "maker."+name+"_tick")
	fn(ctx)
}
