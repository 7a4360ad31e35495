package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"mmbot.com/pkg/logger"
	"mmbot.com/pkg/xerr"
)

// 定义http返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailFromErr 对外只回 code + message（data=null），日志里记完整 err
func FailFromErr(c *gin.Context, err error) {
	code := xerr.CodeOf(err)
	httpStatus := httpStatusOf(code)

	msg := xerr.MapErrMsg(code)
	var ce *xerr.CodeError
	if errors.As(err, &ce) && ce.Msg != "" && httpStatus < http.StatusInternalServerError {
		msg = ce.Msg
	}

	logger.Warn(c, "http error",
		zap.String("request_id", RequestIDFromGin(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("biz_code", code),
		zap.Error(err),
	)
	Fail(c, httpStatus, code, msg)
}

func httpStatusOf(code int) int {
	switch code {
	case xerr.RequestParamsError:
		return http.StatusBadRequest
	case xerr.RecordNotFound:
		return http.StatusNotFound
	case xerr.FeedRateLimited:
		return http.StatusTooManyRequests
	case xerr.FeedUnavailable, xerr.FeedBadStatus, xerr.FeedInvalidPayload, xerr.FeedCircuitOpen:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
