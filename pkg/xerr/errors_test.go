package xerr

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, FeedUnavailable, "get coin")

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, FeedUnavailable, CodeOf(err))
	assert.True(t, IsFeed(err))
	assert.Nil(t, Wrap(nil, FeedUnavailable, "noop"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, ServerCommonError, CodeOf(errors.New("plain")))
	assert.Equal(t, RequestParamsError, CodeOf(NewErrCode(RequestParamsError)))

	// 外层普通包装不影响取码
	wrapped := errors.Join(New(FeedCircuitOpen, "open"))
	assert.Equal(t, FeedCircuitOpen, CodeOf(wrapped))
}

func TestIsFeed(t *testing.T) {
	for _, code := range []int{FeedUnavailable, FeedBadStatus, FeedInvalidPayload, FeedRateLimited, FeedCircuitOpen} {
		assert.True(t, IsFeed(NewErrCode(code)), "code %d", code)
	}
	assert.False(t, IsFeed(NewErrCode(RequestParamsError)))
	assert.False(t, IsFeed(errors.New("x")))
}
