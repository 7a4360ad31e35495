package maker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"mmbot.com/internal/quotes/datasource"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/logger"
	"mmbot.com/pkg/metrics"
	"mmbot.com/pkg/xerr"
)

const tracerName = "mmbot/maker"

// Bot 模拟做市：拉行情 -> 撮合挂单 -> 补单 -> 打日志
//
// 两把锁：
//   - tickMu 串行化所有 tick（含网络请求），保证撮合时看到的是一致的 book/余额
//   - mu 保护 book/ledger/ids，Balance()/Orders() 只拿读锁，不会被行情请求卡住
type Bot struct {
	cfg    Config
	src    datasource.Source
	log    *zap.Logger
	pub    Publisher
	quoter *Quoter
	tracer trace.Tracer
	now    func() time.Time

	tickMu sync.Mutex

	mu     sync.RWMutex
	book   *Book
	ledger *Ledger
	ids    IDSeq
}

type Option func(*Bot)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.log = l
		}
	}
}

// WithRand injects the quoting random source.
func WithRand(r RandFunc) Option {
	return func(b *Bot) {
		if r != nil {
			b.quoter.rand = r
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(b *Bot) {
		if p != nil {
			b.pub = p
		}
	}
}

func New(cfg Config, src datasource.Source, opts ...Option) *Bot {
	if cfg.Quote.TargetDepth <= 0 {
		cfg.Quote.TargetDepth = DefaultTargetDepth
	}
	b := &Bot{
		cfg:    cfg,
		src:    src,
		log:    logger.Named("maker"),
		pub:    nopPublisher{},
		quoter: NewQuoter(cfg.Quote, rand.Float64),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		book:   NewBook(cfg.Quote.TargetDepth),
		ledger: NewLedger(cfg.InitialBalance),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) Config() Config { return b.cfg }

// Balance returns a snapshot copy of the ledger.
func (b *Bot) Balance() Balance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Balance()
}

// Orders returns a snapshot copy of the resting orders in insertion order.
func (b *Bot) Orders() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.book.Orders()
}

// AddOrder seeds the book directly, bypassing the quoter. A zero ID takes the
// next id from the sequence; explicit ids move the sequence past them and
// must not exceed MaxOrderID.
func (b *Bot) AddOrder(o Order) (Order, error) {
	if o.ID > MaxOrderID {
		return Order{}, xerr.New(xerr.RequestParamsError, "order id out of range")
	}
	if !o.Side.Valid() {
		return Order{}, xerr.New(xerr.RequestParamsError, "invalid order side")
	}
	if !finitePositive(o.Price) {
		return Order{}, xerr.New(xerr.RequestParamsError, "order price must be positive")
	}
	if o.Amount < 0 || !finite(o.Amount) {
		return Order{}, xerr.New(xerr.RequestParamsError, "order amount must not be negative")
	}

	b.mu.Lock()
	if o.ID == 0 {
		o.ID = b.ids.Next()
	}
	if err := b.book.Add(o); err != nil {
		b.mu.Unlock()
		return Order{}, xerr.Wrap(err, xerr.RequestParamsError, "duplicate order id")
	}
	b.ids.Observe(o.ID)
	open := b.book.Len()
	b.mu.Unlock()

	metrics.OpenOrders.WithLabelValues(b.cfg.Symbol).Set(float64(open))
	return o, nil
}

// CheckFills runs the fill pass against an explicit snapshot and returns the
// filled orders.
func (b *Bot) CheckFills(ctx context.Context, snap model.Snapshot) []Order {
	b.tickMu.Lock()
	defer b.tickMu.Unlock()
	return b.checkFills(ctx, snap)
}

// Replenish runs the quoting pass against an explicit snapshot and returns
// the placed orders.
func (b *Bot) Replenish(ctx context.Context, snap model.Snapshot) []Order {
	b.tickMu.Lock()
	defer b.tickMu.Unlock()
	return b.replenish(ctx, snap)
}

// MarketTick fetches a snapshot, matches and tops the book up. A feed error
// abandons the tick before anything is mutated.
func (b *Bot) MarketTick(ctx context.Context) error {
	b.tickMu.Lock()
	defer b.tickMu.Unlock()

	ctx, span := b.startTick(ctx, "market")
	defer span.End()

	snap, err := b.fetch(ctx)
	if err != nil {
		metrics.TicksTotal.WithLabelValues("market", "feed_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed error")
		b.log.Error("error fetching market data", logger.WithTrace(ctx, []zap.Field{
			zap.String("symbol", b.cfg.Symbol),
			zap.Int("code", xerr.CodeOf(err)),
			zap.Error(err),
		})...)
		return err
	}

	b.log.Info("market update", logger.WithTrace(ctx, []zap.Field{
		zap.String("symbol", b.cfg.Symbol),
		zap.String("price", fixed(snap.CurrentPrice, priceDP)),
		zap.String("high_24h", fixed(snap.High24h, priceDP)),
		zap.String("low_24h", fixed(snap.Low24h, priceDP)),
	})...)

	filled := b.checkFills(ctx, snap)
	placed := b.replenish(ctx, snap)

	b.mu.RLock()
	open := b.book.Len()
	b.mu.RUnlock()
	b.log.Info("open orders", logger.WithTrace(ctx, []zap.Field{zap.Int("count", open)})...)

	span.SetAttributes(
		attribute.Int("fills", len(filled)),
		attribute.Int("placed", len(placed)),
		attribute.Int("open_orders", open),
	)
	metrics.TicksTotal.WithLabelValues("market", "ok").Inc()
	return nil
}

// ReportBalance logs, exports and publishes the current balance.
func (b *Bot) ReportBalance(ctx context.Context) Balance {
	b.tickMu.Lock()
	defer b.tickMu.Unlock()

	ctx, span := b.startTick(ctx, "balance")
	defer span.End()

	bal := b.Balance()
	b.log.Info("current balance", logger.WithTrace(ctx, []zap.Field{
		zap.String(b.cfg.BaseAsset, fixed(bal.Base, amountDP)),
		zap.String(b.cfg.QuoteAsset, fixed(bal.Quote, priceDP)),
	})...)
	b.exportBalance(bal)
	b.publish(ctx, Event{Kind: EventBalance, Balance: &bal})
	metrics.TicksTotal.WithLabelValues("balance", "ok").Inc()
	return bal
}

func (b *Bot) checkFills(ctx context.Context, snap model.Snapshot) []Order {
	b.mu.Lock()
	filled := MatchFills(b.book, b.ledger, snap.CurrentPrice)
	bal := b.ledger.Balance()
	open := b.book.Len()
	b.mu.Unlock()

	for i := range filled {
		o := filled[i]
		delta := Balance{}.Apply(o)
		b.log.Info("FILLED", logger.WithTrace(ctx, []zap.Field{
			zap.Uint64("id", o.ID),
			zap.String("side", o.Side.String()),
			zap.String("price", fixed(o.Price, priceDP)),
			zap.String("amount", fixed(o.Amount, amountDP)),
			zap.String("base", signed(delta.Base, amountDP)),
			zap.String("quote", signed(delta.Quote, priceDP)),
		})...)
		metrics.FillsTotal.WithLabelValues(b.cfg.Symbol, o.Side.String()).Inc()
		b.publish(ctx, Event{Kind: EventFilled, Order: &o, Price: snap.CurrentPrice})
	}
	if len(filled) > 0 {
		b.exportBalance(bal)
	}
	metrics.OpenOrders.WithLabelValues(b.cfg.Symbol).Set(float64(open))
	return filled
}

func (b *Bot) replenish(ctx context.Context, snap model.Snapshot) []Order {
	b.mu.Lock()
	placed := b.quoter.Replenish(b.book, snap, b.ledger.Balance(), &b.ids)
	open := b.book.Len()
	b.mu.Unlock()

	for i := range placed {
		o := placed[i]
		b.log.Info("PLACE", logger.WithTrace(ctx, []zap.Field{
			zap.Uint64("id", o.ID),
			zap.String("side", o.Side.String()),
			zap.String("price", fixed(o.Price, priceDP)),
			zap.String("amount", fixed(o.Amount, amountDP)),
		})...)
		metrics.OrdersPlacedTotal.WithLabelValues(b.cfg.Symbol, o.Side.String()).Inc()
		b.publish(ctx, Event{Kind: EventPlaced, Order: &o})
	}
	metrics.OpenOrders.WithLabelValues(b.cfg.Symbol).Set(float64(open))
	return placed
}

func (b *Bot) fetch(ctx context.Context) (model.Snapshot, error) {
	if b.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.FetchTimeout)
		defer cancel()
	}
	snap, err := b.src.Fetch(ctx, b.cfg.Symbol)
	if err != nil {
		if !xerr.IsFeed(err) {
			err = xerr.Wrap(err, xerr.FeedUnavailable, "fetch market data")
		}
		return model.Snapshot{}, err
	}
	if !snap.Valid() {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "snapshot prices out of range")
	}
	return snap, nil
}

// startTick 有 tracer 时用 span 的 trace id，否则给本次 tick 生成一个 uuid
func (b *Bot) startTick(ctx context.Context, kind string) (context.Context, trace.Span) {
	ctx, span := b.tracer.Start(ctx, "maker."+kind+"_tick",
		trace.WithAttributes(attribute.String("symbol", b.cfg.Symbol)))
	if !span.SpanContext().IsValid() {
		ctx = context.WithValue(ctx, logger.TraceIdKey, uuid.NewString())
	}
	return ctx, span
}

func (b *Bot) publish(ctx context.Context, ev Event) {
	ev.TsMs = b.now().UnixMilli()
	if err := b.pub.Publish(ctx, ev.Kind, ev); err != nil {
		metrics.EventPublishErrors.WithLabelValues(ev.Kind).Inc()
		b.log.Warn("publish event failed", logger.WithTrace(ctx, []zap.Field{
			zap.String("kind", ev.Kind),
			zap.Error(err),
		})...)
	}
}

func (b *Bot) exportBalance(bal Balance) {
	metrics.Balance.WithLabelValues(b.cfg.Symbol, b.cfg.BaseAsset).Set(bal.Base)
	metrics.Balance.WithLabelValues(b.cfg.Symbol, b.cfg.QuoteAsset).Set(bal.Quote)
}
