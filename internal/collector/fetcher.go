package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CandleSentinel/internal/model"
)

var (
	// ErrNoData is returned when a provider answers without any candles.
	ErrNoData = errors.New("no market data returned")
	// ErrRateLimited is returned when a provider throttles the request.
	ErrRateLimited = errors.New("market data provider rate limit reached")
)

// Fetcher defines the interface for fetching market data. Returned series are
// sorted ascending by time.
type Fetcher interface {
	FetchIntraday(ctx context.Context, symbol, interval string) (model.Series, error)
	FetchDaily(ctx context.Context, symbol string) (model.Series, error)
	Name() string
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
