package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
	"mmbot.com/internal/admin/handler"
	"mmbot.com/internal/admin/http/router"
	"mmbot.com/pkg/middleware"
	"mmbot.com/pkg/ratelimit"
)

type Options struct {
	Service string
	Addr    string
	Rate    float64 // 每个 ip+route 每秒请求数，<=0 不限流
	Burst   int
}

// NewRouter 挂好中间件与 /api、/metrics 路由。ctx 结束时限流 janitor 退出
func NewRouter(ctx context.Context, opt Options, m handler.Maker) *gin.Engine {
	var store *ratelimit.Store
	if opt.Rate > 0 {
		burst := opt.Burst
		if burst <= 0 {
			burst = int(opt.Rate) * 2
		}
		store = ratelimit.NewStore(rate.Limit(opt.Rate), burst, 10*time.Minute)
		store.StartJanitor(ctx, time.Minute)
	}

	r := gin.New()
	// 监控
	p := ginprom.NewPrometheus(opt.Service)
	p.Use(r)
	r.Use(
		otelgin.Middleware(opt.Service),
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
		middleware.RateLimit(opt.Service, store),
	)
	api := r.Group("/api")
	router.Maker(api, m)
	return r
}

func NewServer(ctx context.Context, opt Options, m handler.Maker) *http.Server {
	return &http.Server{
		Addr:           opt.Addr,
		Handler:        NewRouter(ctx, opt, m),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
