package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"CandleSentinel/internal/model"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage time series API.
type AlphaVantageFetcher struct {
	BaseURL    string
	APIKey     string
	OutputSize string // "compact" or "full"
	Client     *http.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL:    alphaVantageURL,
		APIKey:     apiKey,
		OutputSize: "compact",
		Client:     newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (f *AlphaVantageFetcher) FetchIntraday(ctx context.Context, symbol, interval string) (model.Series, error) {
	if interval == "" {
		interval = "1min"
	}
	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", NormalizeSymbol(symbol))
	q.Set("interval", interval)
	q.Set("outputsize", f.OutputSize)
	return f.query(ctx, q, "2006-01-02 15:04:05")
}

func (f *AlphaVantageFetcher) FetchDaily(ctx context.Context, symbol string) (model.Series, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", NormalizeSymbol(symbol))
	q.Set("outputsize", f.OutputSize)
	return f.query(ctx, q, "2006-01-02")
}

func (f *AlphaVantageFetcher) query(ctx context.Context, q url.Values, layout string) (model.Series, error) {
	q.Set("apikey", f.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseAlphaVantage(body, layout)
}

func parseAlphaVantage(body []byte, layout string) (model.Series, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := payload[key]; ok {
			return nil, fmt.Errorf("alphavantage: %s: %w", unquote(msg), ErrRateLimited)
		}
	}
	if msg, ok := payload["Error Message"]; ok {
		return nil, fmt.Errorf("alphavantage api error: %s", unquote(msg))
	}

	loc := exchangeLocation(payload["Meta Data"])
	var bars map[string]avBar
	for key, raw := range payload {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		if err := json.Unmarshal(raw, &bars); err != nil {
			return nil, fmt.Errorf("alphavantage decode %q: %w", key, err)
		}
		break
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alphavantage: %w", ErrNoData)
	}

	series := make(model.Series, 0, len(bars))
	for stamp, bar := range bars {
		ts, err := time.ParseInLocation(layout, stamp, loc)
		if err != nil {
			return nil, fmt.Errorf("alphavantage timestamp %q: %w", stamp, err)
		}
		c, err := bar.candle(ts)
		if err != nil {
			return nil, fmt.Errorf("alphavantage bar %s: %w", stamp, err)
		}
		series = append(series, c)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

func (b avBar) candle(ts time.Time) (model.Candle, error) {
	c := model.Candle{Time: ts}
	var err error
	if c.Open, err = strconv.ParseFloat(b.Open, 64); err != nil {
		return c, fmt.Errorf("open: %w", err)
	}
	if c.High, err = strconv.ParseFloat(b.High, 64); err != nil {
		return c, fmt.Errorf("high: %w", err)
	}
	if c.Low, err = strconv.ParseFloat(b.Low, 64); err != nil {
		return c, fmt.Errorf("low: %w", err)
	}
	if c.Close, err = strconv.ParseFloat(b.Close, 64); err != nil {
		return c, fmt.Errorf("close: %w", err)
	}
	if b.Volume != "" {
		if c.Volume, err = strconv.ParseInt(b.Volume, 10, 64); err != nil {
			return c, fmt.Errorf("volume: %w", err)
		}
	}
	return c, nil
}

// exchangeLocation reads "6. Time Zone" (or "5. Time Zone" for daily series)
// from the metadata block, defaulting to New York.
func exchangeLocation(meta json.RawMessage) *time.Location {
	var m map[string]string
	_ = json.Unmarshal(meta, &m)
	for key, v := range m {
		if strings.HasSuffix(key, "Time Zone") {
			if loc, err := time.LoadLocation(v); err == nil {
				return loc
			}
		}
	}
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.UTC
}

func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
