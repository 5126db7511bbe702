package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"TrendEdge/internal/cache"
	"TrendEdge/internal/collector"
	"TrendEdge/internal/config"
	"TrendEdge/internal/metrics"
	"TrendEdge/internal/recorder"
	"TrendEdge/internal/scanner"
)

// app holds the wired components shared by the commands.
type app struct {
	scanner  *scanner.Scanner
	recorder recorder.Recorder
	metrics  *metrics.Recorder

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newFetcher(c *config.Config) collector.Fetcher {
	ds := c.DataSource
	switch ds.Provider {
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.AlpacaKey, ds.AlpacaSecret)
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, c.Proxy, ds.Timeout)
	case "mock":
		return &collector.MockFetcher{}
	}
	return collector.NewYahooFetcher(c.Proxy, ds.Timeout)
}

// newCache returns the configured price cache. With janitor set, expired
// memory entries are purged on the configured schedule.
func newCache(ctx context.Context, c *config.Config, janitor bool) (cache.Cache, func(), error) {
	noop := func() {}
	switch c.Cache.Backend {
	case "none":
		return nil, noop, nil
	case "redis":
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		}, c.Cache.TTL)
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { rc.Close() }, nil
	}

	mem := cache.NewMemory(c.Cache.TTL, c.Cache.MaxEntries)
	if !janitor || c.Cache.JanitorCron == "" {
		return mem, noop, nil
	}
	cr, err := cache.StartJanitor(mem, c.Cache.JanitorCron)
	if err != nil {
		return nil, noop, fmt.Errorf("start cache janitor: %w", err)
	}
	return mem, func() { <-cr.Stop().Done() }, nil
}

func newRecorder(c *config.Config) recorder.Recorder {
	if c.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newApp wires fetcher, cache, loader, recorder and scanner from cfg.
// m may be nil.
func newApp(ctx context.Context, c *config.Config, m *metrics.Recorder, janitor bool) (*app, error) {
	a := &app{metrics: m}

	fetcher := newFetcher(c)
	log.Info().Str("source", fetcher.Name()).Str("cache", c.Cache.Backend).Msg("data source ready")

	pc, closeCache, err := newCache(ctx, c, janitor)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeCache)

	a.recorder = newRecorder(c)
	a.closers = append(a.closers, func() { a.recorder.Close() })

	loader := collector.NewLoader(fetcher, pc, c.DataSource.Timeout, m)
	a.scanner = scanner.New(loader, m, a.recorder)
	return a, nil
}
