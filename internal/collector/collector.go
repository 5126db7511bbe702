package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"TrendEdge/internal/cache"
	"TrendEdge/internal/metrics"
	"TrendEdge/internal/model"
)

// Loader fetches price series through a cache. Concurrent loads of the same
// key share one provider call.
type Loader struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Timeout time.Duration
	Metrics *metrics.Recorder

	group singleflight.Group
}

// NewLoader creates a Loader. c may be nil to disable caching.
func NewLoader(fetcher Fetcher, c cache.Cache, timeout time.Duration, m *metrics.Recorder) *Loader {
	return &Loader{Fetcher: fetcher, Cache: c, Timeout: timeout, Metrics: m}
}

// Load returns the normalised bars for req. Provider errors, timeouts and empty
// responses are reported as model.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, req model.BarRequest) ([]model.OHLCV, error) {
	key := cache.KeyFor(req)

	if l.Cache != nil {
		bars, ok, err := l.Cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("price cache read failed")
		}
		l.Metrics.RecordCacheLookup(ok)
		if ok {
			return bars, nil
		}
	}

	// The shared fetch outlives any single caller; each caller waits on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key.String(), func() (interface{}, error) {
		return l.fetch(shared, req)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %v: %w", l.Fetcher.Name(), ctx.Err(), model.ErrDataUnavailable)
	}
	if res.Err != nil {
		return nil, res.Err
	}
	bars := res.Val.([]model.OHLCV)

	if l.Cache != nil {
		if err := l.Cache.Set(ctx, key, bars); err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("price cache write failed")
		}
	}
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return out, nil
}

type fetchResult struct {
	bars []model.OHLCV
	err  error
}

// fetch runs the provider call under the loader timeout. Providers that ignore
// the context are abandoned when it expires.
func (l *Loader) fetch(ctx context.Context, req model.BarRequest) ([]model.OHLCV, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("symbol", req.Symbol).Str("source", l.Fetcher.Name()).Interface("panic", r).Msg("provider panicked")
				done <- fetchResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		bars, err := l.Fetcher.FetchBars(ctx, req)
		done <- fetchResult{bars: bars, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	l.Metrics.RecordFetch(l.Fetcher.Name(), time.Since(start), res.err)

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: timed out after %s: %w", l.Fetcher.Name(), l.Timeout, model.ErrDataUnavailable)
		}
		return nil, fmt.Errorf("%s: %v: %w", l.Fetcher.Name(), res.err, model.ErrDataUnavailable)
	}

	bars := Normalize(res.bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: no data returned: %w", l.Fetcher.Name(), model.ErrDataUnavailable)
	}
	log.Debug().Str("symbol", req.Symbol).Str("source", l.Fetcher.Name()).Int("bars", len(bars)).Msg("bars fetched")
	return bars, nil
}

// Normalize orders bars by time, keeps the last bar of duplicated timestamps
// and drops bars without a usable close.
func Normalize(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if model.Defined(b.Close) && b.Close > 0 && !b.Time.IsZero() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}
