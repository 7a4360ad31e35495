package binance

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
	DefaultBaseURL = "https://api.binance.com"

	maxBodyBytes = 1 << 20
)

// Source 拉 Binance 现货 24h ticker，symbol 形如 ETHUSDT
type Source struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client

	Limiter  *ratelimit.Store
	Breakers *ratelimit.Manager
}

func NewSource(baseURL string) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Source{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: 10 * time.Second,
		Client:  &http.Client{},
	}
}

func (s *Source) Name() string { return "binance" }

func (s *Source) Fetch(ctx context.Context, symbol string) (model.Snapshot, error) {
	g := datasource.Guard{Limiter: s.Limiter, Breakers: s.Breakers, Timeout: s.Timeout}
	return g.Do(ctx, s.Name(), symbol, func(ctx context.Context) (model.Snapshot, error) {
		return s.get(ctx, strings.ToUpper(symbol))
	})
}

func (s *Source) get(ctx context.Context, symbol string) (model.Snapshot, error) {
	endpoint := s.BaseURL + "/api/v3/ticker/24hr?symbol=" + url.QueryEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "get "+endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedUnavailable, "read body")
	}
	// 429/418 是 Binance 的限流/封禁
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Snapshot{}, xerr.New(xerr.FeedBadStatus, fmt.Sprintf("get %s: status %d: %.200s", endpoint, resp.StatusCode, body))
	}
	return ParseTicker24h(body)
}

var _ datasource.Source = (*Source)(nil)
