package ratelimit

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"mmbot.com/pkg/xerr"
)

type Rule struct {
	// Half-Open 状态允许通过的探测请求数
	MaxRequests uint32 `mapstructure:"max_requests"`

	// Closed 状态计数窗口
	Interval time.Duration `mapstructure:"interval"`

	// Rolling window 每个 bucket 周期（>0 启用 rolling window；<=0 用 fixed window）
	BucketPeriod time.Duration `mapstructure:"bucket_period"`

	// Open 状态持续时间，到期进入 Half-Open
	Timeout time.Duration `mapstructure:"timeout"`

	// 触发熔断条件（两种之一即可）
	TripConsecutiveFailures uint32  `mapstructure:"trip_consecutive_failures"`
	TripFailureRate         float64 `mapstructure:"trip_failure_rate"`
	TripMinRequests         uint32  `mapstructure:"trip_min_requests"`
}

// StateListener is told about every breaker transition.
type StateListener func(name string, from, to gobreaker.State)

type Manager struct {
	mu sync.RWMutex
	m  map[string]*gobreaker.CircuitBreaker[struct{}]

	defaultRule Rule
	rules       map[string]Rule
	onChange    StateListener
}

func NewManager(defaultRule Rule, perKey map[string]Rule) *Manager {
	if defaultRule.MaxRequests == 0 {
		defaultRule.MaxRequests = 1
	}
	if defaultRule.Timeout <= 0 {
		defaultRule.Timeout = 30 * time.Second
	}
	if defaultRule.Interval <= 0 {
		defaultRule.Interval = time.Minute
	}
	if defaultRule.TripConsecutiveFailures == 0 && defaultRule.TripFailureRate == 0 {
		defaultRule.TripConsecutiveFailures = 5
	}
	if defaultRule.TripMinRequests == 0 {
		defaultRule.TripMinRequests = 10
	}

	return &Manager{
		m:           make(map[string]*gobreaker.CircuitBreaker[struct{}], 8),
		defaultRule: defaultRule,
		rules:       perKey,
	}
}

// OnStateChange must be set before the first Get.
func (m *Manager) OnStateChange(fn StateListener) { m.onChange = fn }

func (m *Manager) Get(key string) *gobreaker.CircuitBreaker[struct{}] {
	// 快路径：读锁
	m.mu.RLock()
	cb := m.m[key]
	m.mu.RUnlock()
	if cb != nil {
		return cb
	}

	// 慢路径：创建
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb = m.m[key]; cb != nil {
		return cb
	}

	rule, ok := m.rules[key]
	if !ok {
		rule = m.defaultRule
	}
	st := gobreaker.Settings{
		Name:         key,
		MaxRequests:  rule.MaxRequests,
		Interval:     rule.Interval,
		BucketPeriod: rule.BucketPeriod,
		Timeout:      rule.Timeout,

		ReadyToTrip: func(c gobreaker.Counts) bool {
			if rule.TripConsecutiveFailures > 0 && c.ConsecutiveFailures >= rule.TripConsecutiveFailures {
				return true
			}
			if rule.TripFailureRate > 0 && c.Requests >= rule.TripMinRequests {
				failRate := float64(c.TotalFailures) / float64(c.Requests)
				return failRate >= rule.TripFailureRate
			}
			return false
		},

		IsSuccessful: isSuccessfulForBreaker,
	}
	if m.onChange != nil {
		listener := m.onChange
		st.OnStateChange = func(name string, from, to gobreaker.State) { listener(name, from, to) }
	}

	cb = gobreaker.NewCircuitBreaker[struct{}](st)
	m.m[key] = cb
	return cb
}

// 只有代表上游不健康的错误计入熔断失败；结构校验失败说明上游是通的
func isSuccessfulForBreaker(err error) bool {
	if err == nil {
		return true
	}
	switch xerr.CodeOf(err) {
	case xerr.FeedInvalidPayload, xerr.FeedRateLimited, xerr.RequestParamsError:
		return true
	default:
		return false
	}
}
