package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	adminhttp "mmbot.com/internal/admin/http"
	"mmbot.com/internal/maker"
	"mmbot.com/internal/quotes/datasource"
	"mmbot.com/internal/quotes/datasource/binance"
	"mmbot.com/internal/quotes/datasource/coingecko"
	"mmbot.com/internal/quotes/gateway"
	"mmbot.com/pkg/config"
	"mmbot.com/pkg/logger"
	"mmbot.com/pkg/metrics"
	"mmbot.com/pkg/ratelimit"
	"mmbot.com/pkg/safe"
	"mmbot.com/pkg/trace"
)

const serviceName = "mmbot"

var configDir = flag.String("f", "", "config directory (looks for mmbot.yaml)")

// 构建启动项目
func main() {
	flag.Parse()

	// ========= 0) 全局上下文 & 优雅退出 =========
	// 收到 SIGINT/SIGTERM 时自动取消，bot 和 admin 都挂在这个 ctx 上
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========= 1) 配置 & 日志 =========
	var cfg = &maker.Cfg{}
	_, err := config.LoadAndWatchDir(serviceName, *configDir, cfg, func() {
		// 只有日志级别支持热更新，其余配置重启生效
		logger.SetLevel(cfg.LogLevel)
	})
	if err != nil {
		panic(fmt.Sprintf("初始化配置出错%+v", err))
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	logger.InitWithFile(cfg.Name, cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()
	logger.Info(ctx, "服务开始启动", zap.String("symbol", cfg.Symbol))

	// ========= 2) OpenTelemetry =========
	if cfg.OTel.Enabled {
		shutdownTracer, err := trace.InitTrace(cfg.Name, cfg.OTel.Exporter, cfg.OTel.Addr)
		if err != nil {
			logger.Fatal(ctx, "init tracer error", zap.Error(err))
		}
		defer func() {
			// 最多给 5 秒时间 flush trace
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(c); err != nil {
				logger.Error(ctx, "shutdown tracer error", zap.Error(err))
			}
		}()
	}

	// ========= 3) 监控 =========
	metrics.MustRegister()

	// ========= 4) 行情源：限流 + 熔断 =========
	feed, err := newFeed(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "init feed error", zap.Error(err))
	}

	// ========= 5) 事件总线 =========
	broker, err := gateway.NewBroker(cfg.Events.Driver, cfg.Events.URL)
	if err != nil {
		logger.Fatal(ctx, "init broker error", zap.Error(err))
	}
	gw := gateway.NewGateway(broker, serviceName+":"+cfg.Symbol)
	defer func() { _ = gw.Close() }()

	// ========= 6) bot =========
	bot := maker.New(cfg.Runtime(), feed,
		maker.WithLogger(logger.Named("maker")),
		maker.WithPublisher(gw),
	)

	// ========= 7) admin（可选） =========
	var srv *http.Server
	if cfg.Admin.Enabled {
		srv = adminhttp.NewServer(ctx, adminhttp.Options{
			Service: cfg.Name,
			Addr:    cfg.Admin.Addr,
			Rate:    cfg.Admin.Rate,
			Burst:   cfg.Admin.Burst,
		}, bot)
		safe.GoCtx(ctx, "admin-http", func(ctx context.Context) {
			logger.Info(ctx, "admin listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "admin listen error", zap.Error(err))
				stop()
			}
		})
	}

	// ========= 8) 运行直到收到退出信号 =========
	_ = bot.Run(ctx)

	// 优雅关闭：先停接入再等 in-flight 完成
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "admin shutdown error", zap.Error(err))
		}
	}
	logger.Info(context.Background(), "service stopped")
}

func newFeed(ctx context.Context, cfg *maker.Cfg) (datasource.Source, error) {
	var limiter *ratelimit.Store
	if cfg.Feed.Rate > 0 {
		burst := cfg.Feed.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = ratelimit.NewStore(rate.Limit(cfg.Feed.Rate), burst, 30*time.Minute)
		limiter.StartJanitor(ctx, 5*time.Minute)
	}

	breakers := ratelimit.NewManager(cfg.Feed.Breaker, nil)
	breakers.OnStateChange(func(name string, from, to gobreaker.State) {
		logger.Warn(ctx, "feed breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetBreakerState(serviceName, name, breakerStateLabel(to))
	})

	switch cfg.Feed.Provider {
	case "", "coingecko":
		src := coingecko.NewSource(cfg.Feed.BaseURL, cfg.Feed.APIKey)
		if cfg.Feed.Timeout > 0 {
			src.Timeout = cfg.Feed.Timeout
		}
		src.Limiter, src.Breakers = limiter, breakers
		return src, nil
	case "binance":
		src := binance.NewSource(cfg.Feed.BaseURL)
		if cfg.Feed.Timeout > 0 {
			src.Timeout = cfg.Feed.Timeout
		}
		src.Limiter, src.Breakers = limiter, breakers
		// 交易对自带资产名，没配就从 symbol 拆
		if base, quote, ok := binance.SplitSymbol(cfg.Symbol); ok {
			if cfg.Bot.BaseAsset == "" {
				cfg.Bot.BaseAsset = base
			}
			if cfg.Bot.QuoteAsset == "" {
				cfg.Bot.QuoteAsset = quote
			}
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
	}
}

func breakerStateLabel(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
