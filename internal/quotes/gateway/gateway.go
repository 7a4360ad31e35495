package gateway

import (
	"context"
	"errors"

	"github.com/segmentio/encoding/json"
)

var ErrBrokerClosed = errors.New("gateway: broker closed")

// Gateway 把领域事件编码成 JSON 发到 broker（单机=内存，多机=NATS）
type Gateway struct {
	broker Broker
	prefix string
}

// NewGateway publishes under topics "<prefix>:<kind>", e.g. "mmbot:ethereum:filled".
func NewGateway(broker Broker, prefix string) *Gateway {
	return &Gateway{broker: broker, prefix: prefix}
}

func (g *Gateway) Topic(kind string) string {
	if g.prefix == "" {
		return kind
	}
	return g.prefix + ":" + kind
}

// Publish marshals v and sends it to the topic for kind.
func (g *Gateway) Publish(ctx context.Context, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return g.broker.Publish(ctx, g.Topic(kind), payload)
}

// Subscribe returns the raw stream for the given kinds. Only brokers that
// implement Subscriber can be read back.
func (g *Gateway) Subscribe(ctx context.Context, kinds ...string) (<-chan Message, error) {
	sub, ok := g.broker.(Subscriber)
	if !ok {
		return nil, ErrSubscribeUnsupported
	}
	topics := make([]string, 0, len(kinds))
	for _, k := range kinds {
		topics = append(topics, g.Topic(k))
	}
	return sub.Subscribe(ctx, topics)
}

func (g *Gateway) Close() error { return g.broker.Close() }
