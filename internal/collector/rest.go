package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TrendEdge/internal/model"
)

// errNotFound marks an endpoint the provider does not serve.
var errNotFound = errors.New("endpoint not found")

// RESTFetcher implements Fetcher against a plain JSON bars endpoint:
//
//	GET {base}/api/v1/bars?symbol=SPY&interval=1d&period=6mo
//
// returning [{"timestamp":..., "open":..., ...}].
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars requests bars at the given interval. When the provider has no weekly
// endpoint, daily bars are fetched and aggregated instead.
func (f *RESTFetcher) FetchBars(ctx context.Context, req model.BarRequest) ([]model.OHLCV, error) {
	bars, err := f.fetchBars(ctx, f.endpoint(req))
	if errors.Is(err, errNotFound) && req.Interval == model.Interval1wk {
		daily := req
		daily.Interval = model.Interval1d
		dailyBars, dailyErr := f.fetchBars(ctx, f.endpoint(daily))
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return aggregateDailyToWeekly(dailyBars), nil
	}
	return bars, err
}

func (f *RESTFetcher) endpoint(req model.BarRequest) string {
	q := url.Values{}
	q.Set("symbol", req.Symbol)
	q.Set("interval", req.Interval)
	if req.HasRange() {
		q.Set("start", req.Start.Format(time.RFC3339))
		if !req.End.IsZero() {
			q.Set("end", req.End.Format(time.RFC3339))
		}
	} else {
		q.Set("period", req.Period)
	}
	return fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())
}

func (f *RESTFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.OHLCV, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch bars: %w", errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	return bars, nil
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars.
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.OHLCV
	week := daily[0]
	wy, ww := week.Time.ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Time.ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
