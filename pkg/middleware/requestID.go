package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"mmbot.com/pkg/common"
	"mmbot.com/pkg/logger"
)

func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.HeaderRequestID)
		if !common.ValidRequestID(rid) {
			rid = common.NewRequestID()
		}
		c.Set(common.CtxKeyRequestID, rid)
		c.Header(common.HeaderRequestID, rid)
		// 没有 span 时日志用 request id 当 trace id
		ctx := context.WithValue(c.Request.Context(), common.CtxKeyRequestID, rid)
		ctx = context.WithValue(ctx, logger.TraceIdKey, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
