package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"mmbot.com/pkg/common"
	"mmbot.com/pkg/logger"
	"mmbot.com/pkg/metrics"
	"mmbot.com/pkg/ratelimit"
	"mmbot.com/pkg/xerr"
)

// RateLimit 按 ip+route 限流；store 为 nil 时不限流
func RateLimit(service string, store *ratelimit.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := c.ClientIP() + ":" + route

		if !store.Allow(key) {
			// 限流属于“可控拒绝”，不要打堆栈（压测会炸日志）
			logger.Warn(c, "http rate limited",
				zap.String("request_id", common.RequestIDFromGin(c)),
				zap.String("ip", c.ClientIP()),
				zap.String("route", route),
			)
			metrics.RateLimitBlockTotal.WithLabelValues(service, route, "http").Inc()
			common.Fail(c, http.StatusTooManyRequests, xerr.FeedRateLimited, "请求过于频繁")
			c.Abort()
			return
		}
		c.Next()
	}
}
