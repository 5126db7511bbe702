package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"TrendEdge/internal/cache"
	"TrendEdge/internal/model"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

type countingFetcher struct {
	calls atomic.Int32
	bars  []model.OHLCV
	err   error
	delay time.Duration
}

func (f *countingFetcher) Name() string { return "counting" }

func (f *countingFetcher) FetchBars(_ context.Context, _ model.BarRequest) ([]model.OHLCV, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.bars, f.err
}

func TestNormalize(t *testing.T) {
	bars := []model.OHLCV{
		{Time: day(2), Close: 12},
		{Time: day(0), Close: 10},
		{Time: day(1), Close: 11},
		{Time: day(1), Close: 11.5},
		{Time: day(3), Close: math.NaN()},
	}
	got := Normalize(bars)
	if len(got) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(got))
	}
	if !got[0].Time.Equal(day(0)) || !got[2].Time.Equal(day(2)) {
		t.Errorf("bars not sorted: %v", got)
	}
	if got[1].Close != 11.5 {
		t.Errorf("duplicate timestamp should keep last bar, got close %v", got[1].Close)
	}
}

func TestLoaderUsesCache(t *testing.T) {
	f := &countingFetcher{bars: GenerateMockBars(100, 30)}
	l := NewLoader(f, cache.NewMemory(time.Minute, 10), 0, nil)
	req := model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1d"}

	for i := 0; i < 3; i++ {
		bars, err := l.Load(context.Background(), req)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(bars) != 30 {
			t.Fatalf("expected 30 bars, got %d", len(bars))
		}
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("expected 1 provider call, got %d", n)
	}

	req.Interval = "1wk"
	if _, err := l.Load(context.Background(), req); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("different interval must miss the cache, calls=%d", n)
	}
}

func TestLoaderDedupesConcurrentLoads(t *testing.T) {
	f := &countingFetcher{bars: GenerateMockBars(100, 30), delay: 50 * time.Millisecond}
	l := NewLoader(f, nil, 0, nil)
	req := model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1d"}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(context.Background(), req); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := f.calls.Load(); n != 1 {
		t.Errorf("expected concurrent loads to share one call, got %d", n)
	}
}

func TestLoaderErrors(t *testing.T) {
	req := model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1d"}
	tests := []struct {
		name    string
		fetcher *countingFetcher
		timeout time.Duration
	}{
		{"provider error", &countingFetcher{err: errors.New("boom")}, 0},
		{"empty response", &countingFetcher{}, 0},
		{"only null closes", &countingFetcher{bars: []model.OHLCV{{Time: day(0), Close: math.NaN()}}}, 0},
		{"timeout", &countingFetcher{bars: GenerateMockBars(100, 5), delay: 200 * time.Millisecond}, 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(tt.fetcher, cache.NewMemory(time.Minute, 10), tt.timeout, nil)
			_, err := l.Load(context.Background(), req)
			if !errors.Is(err, model.ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
		})
	}
}

// blockingFetcher honours its context and returns bars after delay.
type blockingFetcher struct {
	calls atomic.Int32
	bars  []model.OHLCV
	delay time.Duration
}

func (f *blockingFetcher) Name() string { return "blocking" }

func (f *blockingFetcher) FetchBars(ctx context.Context, _ model.BarRequest) ([]model.OHLCV, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
		return f.bars, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestLoaderCancelledCallerDoesNotFailOthers(t *testing.T) {
	f := &blockingFetcher{bars: GenerateMockBars(100, 30), delay: 100 * time.Millisecond}
	l := NewLoader(f, nil, time.Second, nil)
	req := model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1d"}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := l.Load(ctxA, req)
		errA <- err
	}()
	time.Sleep(10 * time.Millisecond)

	errB := make(chan error, 1)
	var barsB []model.OHLCV
	go func() {
		var err error
		barsB, err = l.Load(context.Background(), req)
		errB <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancelA()

	if err := <-errA; !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("cancelled caller: expected ErrDataUnavailable, got %v", err)
	}
	if err := <-errB; err != nil {
		t.Fatalf("live caller failed: %v", err)
	}
	if len(barsB) != 30 {
		t.Errorf("expected 30 bars, got %d", len(barsB))
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("expected one shared provider call, got %d", n)
	}
}

type panicFetcher struct{}

func (panicFetcher) Name() string { return "panic" }

func (panicFetcher) FetchBars(_ context.Context, _ model.BarRequest) ([]model.OHLCV, error) {
	var bars []model.OHLCV
	return bars[:1], nil
}

func TestLoaderRecoversProviderPanic(t *testing.T) {
	l := NewLoader(panicFetcher{}, nil, time.Second, nil)
	_, err := l.Load(context.Background(), model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1d"})
	if !errors.Is(err, model.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "provider panic") {
		t.Errorf("expected panic in reason, got %q", err)
	}
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{
		Data: map[string][]model.OHLCV{"AAA": GenerateMockBars(50, 10)},
		Errs: map[string]error{"BAD": errors.New("down")},
	}
	if bars, err := m.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA"}); err != nil || len(bars) != 10 {
		t.Errorf("AAA: bars=%d err=%v", len(bars), err)
	}
	if _, err := m.FetchBars(context.Background(), model.BarRequest{Symbol: "BAD"}); err == nil {
		t.Error("expected error for BAD")
	}
	if _, err := m.FetchBars(context.Background(), model.BarRequest{Symbol: "ZZZ"}); err == nil {
		t.Error("expected error for unknown symbol")
	}
}

const yahooBody = `{"chart":{"result":[{"timestamp":[1704153600,1704240000,1704326400],
"indicators":{"quote":[{"open":[10,11,null],"high":[11,12,null],"low":[9,10,null],"close":[10,12,null],"volume":[100,200,null]}],
"adjclose":[{"adjclose":[5,6,null]}]}}],"error":null}}`

func TestYahooFetcher(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if !strings.HasSuffix(r.URL.Path, "/v8/finance/chart/%5EGSPC") && !strings.HasSuffix(r.URL.Path, "/v8/finance/chart/^GSPC") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, yahooBody)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "SPX", Period: "6mo", Interval: "1h"})
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if bars[0].Close != 5 || bars[0].High != 5.5 {
		t.Errorf("adjclose ratio not applied: %+v", bars[0])
	}
	if !strings.Contains(gotQuery, "interval=60m") || !strings.Contains(gotQuery, "range=6mo") {
		t.Errorf("unexpected query %s", gotQuery)
	}
}

func TestYahooFetcherAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL
	if _, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "NOPE", Period: "1y", Interval: "1d"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRESTFetcherWeeklyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing auth header")
		}
		if r.URL.Query().Get("interval") == "1wk" {
			http.NotFound(w, r)
			return
		}
		// Mon 2024-01-01 .. Tue 2024-01-09: two ISO weeks.
		var rows []string
		for i := 0; i < 9; i++ {
			rows = append(rows, fmt.Sprintf(`{"timestamp":%d,"open":%d,"high":%d,"low":%d,"close":%d,"volume":10}`,
				day(i).Unix(), 10+i, 11+i, 9+i, 10+i))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(rows, ","))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", time.Second)
	bars, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA", Period: "1y", Interval: "1wk"})
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 weekly bars, got %d", len(bars))
	}
	w := bars[0]
	if w.Open != 10 || w.Close != 16 || w.High != 17 || w.Low != 9 || w.Volume != 70 {
		t.Errorf("unexpected first week: %+v", w)
	}
}

func TestRESTFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "", time.Second)
	if _, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA", Period: "1y", Interval: "1d"}); err == nil {
		t.Fatal("expected error")
	}
}

type fakeAlpaca struct {
	symbol string
	req    marketdata.GetBarsRequest
	bars   []marketdata.Bar
}

func (f *fakeAlpaca) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.symbol, f.req = symbol, req
	return f.bars, nil
}

func TestAlpacaFetcher(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeAlpaca{bars: []marketdata.Bar{
		{Timestamp: day(0), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 300},
	}}
	f := &AlpacaFetcher{client: client, now: func() time.Time { return now }}

	bars, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "1h"})
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 1.5 || bars[0].Volume != 300 {
		t.Errorf("unexpected bars %+v", bars)
	}
	if client.symbol != "AAA" || !client.req.Start.Equal(now.AddDate(0, -6, 0)) {
		t.Errorf("unexpected request %s %+v", client.symbol, client.req)
	}
	if client.req.TimeFrame != marketdata.NewTimeFrame(1, marketdata.Hour) {
		t.Errorf("unexpected timeframe %v", client.req.TimeFrame)
	}

	if _, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA", Period: "max", Interval: "1d"}); err != nil {
		t.Fatal(err)
	}
	if !client.req.Start.Equal(alpacaHistoryStart) {
		t.Errorf("max should start at %v, got %v", alpacaHistoryStart, client.req.Start)
	}
	if _, err := f.FetchBars(context.Background(), model.BarRequest{Symbol: "AAA", Period: "6mo", Interval: "2h"}); err == nil {
		t.Error("expected unsupported interval error")
	}
}
