package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmbot.com/pkg/xerr"
)

func TestStore_AllowBurstPerKey(t *testing.T) {
	s := NewStore(0, 2, time.Minute)

	assert.True(t, s.Allow("ethereum"))
	assert.True(t, s.Allow("ethereum"))
	assert.False(t, s.Allow("ethereum"), "burst exhausted with zero refill rate")

	assert.True(t, s.Allow("bitcoin"), "keys have independent buckets")
}

func TestStore_Cleanup(t *testing.T) {
	s := NewStore(1, 1, time.Nanosecond)
	s.Allow("k")
	time.Sleep(time.Millisecond)
	s.cleanup()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.entries)
}

func TestManager_TripsOnTransportErrors(t *testing.T) {
	var transitions []gobreaker.State
	m := NewManager(Rule{TripConsecutiveFailures: 2, Timeout: time.Hour}, nil)
	m.OnStateChange(func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) })

	cb := m.Get("coingecko")
	require.Same(t, cb, m.Get("coingecko"))

	down := xerr.Wrap(errors.New("dial tcp: refused"), xerr.FeedUnavailable, "get")
	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (struct{}, error) { return struct{}{}, down })
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	_, err := cb.Execute(func() (struct{}, error) { return struct{}{}, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestManager_PayloadErrorsDoNotTrip(t *testing.T) {
	m := NewManager(Rule{TripConsecutiveFailures: 1}, nil)
	cb := m.Get("coingecko")

	bad := xerr.NewErrCode(xerr.FeedInvalidPayload)
	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (struct{}, error) { return struct{}{}, bad })
		assert.Equal(t, xerr.FeedInvalidPayload, xerr.CodeOf(err))
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
