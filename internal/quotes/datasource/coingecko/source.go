package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mmbot.com/internal/quotes/datasource"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/ratelimit"
	"mmbot.com/pkg/xerr"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	APIKeyHeader   = "x-cg-demo-api-key"

	maxBodyBytes = 4 << 20
)

type Source struct {
	BaseURL string // e.g. https://api.coingecko.com/api/v3
	APIKey  string

	// 每次请求的超时；原始行为没有超时，挂住的请求会卡住整个 tick
	Timeout time.Duration
	Client  *http.Client

	// 可选：按 symbol 限流、按源熔断；nil 表示不启用
	Limiter  *ratelimit.Store
	Breakers *ratelimit.Manager
}

func NewSource(baseURL, apiKey string) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
		Client:  &http.Client{},
	}
}

func (s *Source) Name() string { return "coingecko" }

// Fetch: 一次 GET /coins/{symbol}。任何失败都是 FeedError，不重试。
func (s *Source) Fetch(ctx context.Context, symbol string) (model.Snapshot, error) {
	g := datasource.Guard{Limiter: s.Limiter, Breakers: s.Breakers, Timeout: s.Timeout}
	return g.Do(ctx, s.Name(), symbol, func(ctx context.Context) (model.Snapshot, error) {
		return s.get(ctx, symbol)
	})
}

func (s *Source) get(ctx context.Context, symbol string) (model.Snapshot, error) {
	endpoint := s.BaseURL + "/coins/" + url.PathEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set(APIKeyHeader, s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "get "+endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return model.Snapshot{}, xerr.New(xerr.FeedBadStatus, fmt.Sprintf("get %s: status %d", endpoint, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "read body")
	}
	return ParseCoin(body)
}

var _ datasource.Source = (*Source)(nil)
