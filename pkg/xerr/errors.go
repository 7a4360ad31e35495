package xerr

import (
	"errors"
	"fmt"
)

// 常用错误码定义
const (
	OK                 = 200
	ServerCommonError  = 500
	RequestParamsError = 400
	RecordNotFound     = 404
)

// 行情源错误码：统一归为 FeedError，整个 tick 放弃，下个 tick 再来
const (
	FeedUnavailable    = 1001 // 网络/传输失败
	FeedBadStatus      = 1002 // 非 2xx
	FeedInvalidPayload = 1003 // 结构校验失败
	FeedRateLimited    = 1004
	FeedCircuitOpen    = 1005
)

type CodeError struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Cause error  `json:"-"`
}

func (e *CodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ErrCode:%d, Msg:%s, Cause:%v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) Unwrap() error { return e.Cause }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

// Wrap keeps err reachable through errors.Is / errors.As.
func Wrap(err error, code int, msg string) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Msg: msg, Cause: err}
}

// CodeOf returns the code of the outermost CodeError in the chain, or
// ServerCommonError when there is none.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ServerCommonError
}

// IsFeed reports whether err is a FeedError.
func IsFeed(err error) bool {
	code := CodeOf(err)
	return code >= FeedUnavailable && code <= FeedCircuitOpen
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "服务器开小差了"
	case RequestParamsError:
		return "参数错误"
	case RecordNotFound:
		return "记录不存在"
	case FeedUnavailable:
		return "feed unavailable"
	case FeedBadStatus:
		return "feed returned non-2xx status"
	case FeedInvalidPayload:
		return "invalid response structure from feed"
	case FeedRateLimited:
		return "feed rate limited"
	case FeedCircuitOpen:
		return "feed circuit breaker open"
	default:
		return "未知错误"
	}
}
