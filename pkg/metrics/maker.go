package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mmbot_ticks_total",
		Help: "Scheduler ticks by kind and result",
	}, []string{"kind", "result"}) // kind: market/balance, result: ok/feed_error

	FillsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mmbot_fills_total",
		Help: "Filled orders",
	}, []string{"symbol", "side"})

	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mmbot_orders_placed_total",
		Help: "Orders placed by the quoting strategy",
	}, []string{"symbol", "side"})

	OpenOrders = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mmbot_open_orders",
		Help: "Resting orders in the book",
	}, []string{"symbol"})

	Balance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mmbot_balance",
		Help: "Ledger balance per asset",
	}, []string{"symbol", "asset"})

	FeedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mmbot_feed_fetch_duration_seconds",
		Help:    "Market data fetch latency",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms ~ 20s
	}, []string{"source", "status"})

	EventPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mmbot_event_publish_errors_total",
		Help: "Order/balance events that failed to publish",
	}, []string{"kind"})
)
