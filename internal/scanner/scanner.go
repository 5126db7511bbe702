// Package scanner runs the indicator engine and classifier over a set of
// symbols and assembles the ranked report.
package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"TrendEdge/internal/calculator"
	"TrendEdge/internal/metrics"
	"TrendEdge/internal/model"
	"TrendEdge/internal/recorder"
	"TrendEdge/internal/strategy"
)

// Loader supplies the price bars of one symbol.
type Loader interface {
	Load(ctx context.Context, req model.BarRequest) ([]model.OHLCV, error)
}

// Scanner orchestrates one scan per Run call. Metrics and Recorder are optional.
type Scanner struct {
	Loader   Loader
	Metrics  *metrics.Recorder
	Recorder recorder.Recorder

	now func() time.Time
}

// New creates a Scanner.
func New(loader Loader, m *metrics.Recorder, rec recorder.Recorder) *Scanner {
	return &Scanner{Loader: loader, Metrics: m, Recorder: rec, now: time.Now}
}

// outcome is what one worker produces for one target. Exactly one of result,
// failure or noSignal is set.
type outcome struct {
	result   *model.ScanResult
	failure  *model.Failure
	noSignal bool
}

// plan holds the values derived from Params once per run.
type plan struct {
	mode       strategy.Mode
	frame      calculator.FrameParams
	thresholds strategy.Thresholds
	required   []model.Column
	minBars    int
	keepFrames bool
}

// Run scans every target. Invalid requests fail before any symbol is loaded.
// Per-symbol problems are reported as failures and never abort the scan; a
// cancelled ctx abandons it.
func (s *Scanner) Run(ctx context.Context, req Request) (*model.ScanReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	mode, err := strategy.ParseMode(string(req.Params.Mode))
	if err != nil {
		return nil, err
	}
	p := plan{
		mode:       mode,
		frame:      req.Params.FrameParams(),
		thresholds: req.Params.Thresholds(),
		required:   mode.Required(),
		keepFrames: req.Params.KeepFrames,
	}
	p.minBars = p.frame.MinBars(p.required)

	started := s.clock()
	log.Info().Str("mode", string(mode)).Int("symbols", len(req.Targets)).
		Int("min_bars", p.minBars).Msg("scan started")

	outcomes := make([]outcome, len(req.Targets))
	var g errgroup.Group
	g.SetLimit(req.Params.Workers)
	for i, t := range req.Targets {
		g.Go(func() error {
			outcomes[i] = s.scanTarget(ctx, t, p)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan abandoned: %w", err)
	}

	report := merge(req.Targets, outcomes, mode)
	report.RunID = uuid.NewString()
	report.Mode = string(mode)
	report.StartedAt = started
	report.FinishedAt = s.clock()

	s.Metrics.RecordScan(string(mode), report.FinishedAt.Sub(started))
	log.Info().Str("run_id", report.RunID).Int("results", len(report.Results)).
		Int("failures", len(report.Failures)).Int("no_signal", len(report.NoSignal)).
		Dur("elapsed", report.FinishedAt.Sub(started)).Msg("scan finished")

	if s.Recorder != nil {
		if err := s.Recorder.RecordScan(report); err != nil {
			log.Warn().Err(err).Str("run_id", report.RunID).Msg("record scan failed")
		}
	}
	return report, nil
}

func (s *Scanner) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Scanner) scanTarget(ctx context.Context, t Target, p plan) outcome {
	fail := func(err error) outcome {
		kind := model.KindOf(err)
		s.Metrics.RecordSymbol(string(kind))
		log.Warn().Str("symbol", t.Symbol).Str("kind", string(kind)).Err(err).Msg("symbol skipped")
		return outcome{failure: &model.Failure{Symbol: t.Symbol, Kind: kind, Reason: err.Error()}}
	}

	bars, err := s.Loader.Load(ctx, t.BarRequest())
	if err != nil {
		return fail(err)
	}
	if len(bars) == 0 {
		return fail(fmt.Errorf("no data returned: %w", model.ErrDataUnavailable))
	}
	if len(bars) < p.minBars {
		return fail(fmt.Errorf("need %d bars, got %d: %w", p.minBars, len(bars), model.ErrInsufficientHistory))
	}

	frame, err := calculator.BuildFrame(t.Symbol, bars, p.frame)
	if err != nil {
		return fail(fmt.Errorf("build indicators: %v: %w", err, model.ErrInsufficientHistory))
	}
	snap, ok := frame.Latest(p.required)
	if !ok {
		return fail(fmt.Errorf("no fully defined indicator row: %w", model.ErrInsufficientHistory))
	}

	sig, ok := strategy.Classify(p.mode, snap, p.thresholds)
	if !ok {
		s.Metrics.RecordSymbol("no_signal")
		return outcome{noSignal: true}
	}
	s.Metrics.RecordSymbol("ok")
	s.Metrics.RecordVerdict(string(sig.Verdict))

	res := &model.ScanResult{
		Symbol:   t.Symbol,
		Interval: t.Interval,
		Snapshot: snap,
		Signal:   sig,
	}
	if p.keepFrames {
		res.Frame = frame
	}
	return outcome{result: res}
}

// merge collects worker outcomes in target order and sorts the results.
func merge(targets []Target, outcomes []outcome, mode strategy.Mode) *model.ScanReport {
	report := &model.ScanReport{}
	for i, o := range outcomes {
		switch {
		case o.result != nil:
			report.Results = append(report.Results, *o.result)
		case o.failure != nil:
			report.Failures = append(report.Failures, *o.failure)
		case o.noSignal:
			report.NoSignal = append(report.NoSignal, targets[i].Symbol)
		}
	}
	SortResults(report.Results, mode)
	return report
}

// SortResults orders results for display.
// Momentum: Bullish, Neutral, Bearish, then |MACD histogram| descending, then symbol.
// Breakout: BEARISH before BULLISH, then symbol. Symbols are unique within a run.
func SortResults(results []model.ScanResult, mode strategy.Mode) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if ra, rb := strategy.Rank(a.Verdict), strategy.Rank(b.Verdict); ra != rb {
			return ra < rb
		}
		if mode == strategy.ModeBreakout {
			return a.Symbol < b.Symbol
		}
		if ha, hb := math.Abs(a.Snapshot.MACDHist), math.Abs(b.Snapshot.MACDHist); ha != hb {
			return ha > hb
		}
		return a.Symbol < b.Symbol
	})
}
