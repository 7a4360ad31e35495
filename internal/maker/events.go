package maker

import "context"

const (
	EventPlaced  = "placed"
	EventFilled  = "filled"
	EventBalance = "balance"
)

// Event 推送给下游（行情网关 / NATS）的 JSON 负载
type Event struct {
	Kind    string   `json:"kind"`
	Order   *Order   `json:"order,omitempty"`
	Balance *Balance `json:"balance,omitempty"`
	Price   float64  `json:"price,omitempty"`
	TsMs    int64    `json:"ts_ms"`
}

// Publisher is satisfied by *gateway.Gateway.
type Publisher interface {
	Publish(ctx context.Context, kind string, v any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }
