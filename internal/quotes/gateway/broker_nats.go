package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
)

// natsConn 是 NatsBroker 用到的那部分 *nats.Conn
type natsConn interface {
	Publish(subj string, data []byte) error
	Drain() error
	Close()
}

// NatsBroker 把事件发到 NATS，topic 里的 ":" 换成 subject 分隔符 "."。
// 只发不收，订阅方是外部服务。
type NatsBroker struct {
	conn natsConn

	once sync.Once
}

func NewNatsBroker(url string, opts ...nats.Option) (*NatsBroker, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, append([]nats.Option{nats.Name("mmbot")}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &NatsBroker{conn: nc}, nil
}

func (b *NatsBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.conn.Publish(topicToSubject(topic), payload)
	if err == nats.ErrConnectionClosed || err == nats.ErrConnectionDraining {
		return ErrBrokerClosed
	}
	return err
}

// Close drains pending publishes before closing. Safe to call twice.
func (b *NatsBroker) Close() error {
	var err error
	b.once.Do(func() {
		if err = b.conn.Drain(); err != nil {
			b.conn.Close()
		}
	})
	return err
}

// mmbot:ethereum:filled -> mmbot.ethereum.filled
func topicToSubject(topic string) string { return strings.ReplaceAll(topic, ":", ".") }
