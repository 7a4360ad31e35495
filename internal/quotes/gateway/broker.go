package gateway

import (
	"context"
	"errors"
)

type Message struct {
	Topic   string
	Payload []byte
}

// Broker 只负责把事件发出去；bot 进程自己不消费
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Subscriber 由进程内 broker 实现，测试和本地调试用来读回事件
type Subscriber interface {
	Subscribe(ctx context.Context, topics []string) (<-chan Message, error)
}

var ErrSubscribeUnsupported = errors.New("gateway: broker does not support subscribe")

const (
	DriverMem  = "mem"
	DriverNats = "nats"
)

// NewBroker builds the broker named by driver. An empty driver means mem.
func NewBroker(driver, url string) (Broker, error) {
	switch driver {
	case DriverMem, "":
		return NewMemBroker(), nil
	case DriverNats:
		return NewNatsBroker(url)
	default:
		return nil, &unknownDriverError{driver: driver}
	}
}

type unknownDriverError struct{ driver string }

func (e *unknownDriverError) Error() string { return "gateway: unknown broker driver " + e.driver }
