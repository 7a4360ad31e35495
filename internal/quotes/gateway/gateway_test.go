package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewGateway(NewMemBroker(), "mmbot:ethereum")
	ch, err := g.Subscribe(ctx, "filled")
	require.NoError(t, err)

	require.NoError(t, g.Publish(ctx, "placed", map[string]int{"id": 1}))
	require.NoError(t, g.Publish(ctx, "filled", map[string]int{"id": 2}))

	select {
	case m := <-ch:
		assert.Equal(t, "mmbot:ethereum:filled", m.Topic)
		var got map[string]int
		require.NoError(t, json.Unmarshal(m.Payload, &got))
		assert.Equal(t, 2, got["id"])
	case <-time.After(time.Second):
		t.Fatal("no message")
	}

	select {
	case m := <-ch:
		t.Fatalf("unexpected message on %s", m.Topic)
	default:
	}
}

func TestMemBroker_UnsubscribeOnCancel(t *testing.T) {
	b := NewMemBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, []string{"a"})
	require.NoError(t, err)
	cancel()

	_, open := <-ch
	assert.False(t, open)

	b.mu.RLock()
	defer b.mu.RUnlock()
	assert.Empty(t, b.subs)
}

func TestMemBroker_Closed(t *testing.T) {
	b := NewMemBroker()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Publish(context.Background(), "a", nil), ErrBrokerClosed)
}

func TestNewBroker(t *testing.T) {
	b, err := NewBroker("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemBroker{}, b)

	_, err = NewBroker("kafka", "")
	assert.Error(t, err)
}

type fakeConn struct {
	subjects []string
	payloads [][]byte
	pubErr   error
	drainErr error
	drains   int
	closes   int
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.pubErr != nil {
		return c.pubErr
	}
	c.subjects = append(c.subjects, subj)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) Drain() error { c.drains++; return c.drainErr }
func (c *fakeConn) Close()       { c.closes++ }

func TestNatsBroker_PublishSubject(t *testing.T) {
	conn := &fakeConn{}
	g := NewGateway(&NatsBroker{conn: conn}, "mmbot:ethereum")

	require.NoError(t, g.Publish(context.Background(), "filled", map[string]int{"id": 3}))
	require.Equal(t, []string{"mmbot.ethereum.filled"}, conn.subjects)
	assert.JSONEq(t, `{"id":3}`, string(conn.payloads[0]))

	// 只发不收
	_, err := g.Subscribe(context.Background(), "filled")
	assert.ErrorIs(t, err, ErrSubscribeUnsupported)
}

func TestNatsBroker_PublishErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &fakeConn{}
	b := &NatsBroker{conn: conn}
	assert.ErrorIs(t, b.Publish(ctx, "a", nil), context.Canceled)
	assert.Empty(t, conn.subjects)

	for _, err := range []error{nats.ErrConnectionClosed, nats.ErrConnectionDraining} {
		b := &NatsBroker{conn: &fakeConn{pubErr: err}}
		assert.ErrorIs(t, b.Publish(context.Background(), "a", nil), ErrBrokerClosed)
	}
	b = &NatsBroker{conn: &fakeConn{pubErr: nats.ErrMaxPayload}}
	assert.ErrorIs(t, b.Publish(context.Background(), "a", nil), nats.ErrMaxPayload)
}

func TestNatsBroker_Close(t *testing.T) {
	conn := &fakeConn{}
	b := &NatsBroker{conn: conn}
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 1, conn.drains)
	assert.Zero(t, conn.closes)

	// drain 失败时直接关
	conn = &fakeConn{drainErr: nats.ErrConnectionClosed}
	b = &NatsBroker{conn: conn}
	assert.ErrorIs(t, b.Close(), nats.ErrConnectionClosed)
	assert.Equal(t, 1, conn.closes)
}

func TestNewNatsBroker_Unreachable(t *testing.T) {
	_, err := NewBroker(DriverNats, "nats://127.0.0.1:1")
	assert.Error(t, err)
}

func TestTopicToSubject(t *testing.T) {
	assert.Equal(t, "mmbot.ethereum.filled", topicToSubject("mmbot:ethereum:filled"))
}
