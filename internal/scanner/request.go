package scanner

import (
	"fmt"
	"strings"
	"time"

	"TrendEdge/internal/model"
)

// Window is the history requested for every symbol: a relative period token,
// or an absolute Start/End range when Start is set.
type Window struct {
	Period string
	Start  time.Time
	End    time.Time
}

// Target is one symbol with its history window and bar interval.
type Target struct {
	Symbol   string
	Window   Window
	Interval string
}

// BarRequest converts t into a loader request.
func (t Target) BarRequest() model.BarRequest {
	return model.BarRequest{
		Symbol:   t.Symbol,
		Period:   t.Window.Period,
		Start:    t.Window.Start,
		End:      t.Window.End,
		Interval: t.Interval,
	}
}

func (t Target) validate() error {
	if t.Symbol == "" || strings.ContainsAny(t.Symbol, " \t\n,") {
		return fmt.Errorf("malformed symbol %q: %w", t.Symbol, model.ErrInvalidParameter)
	}
	if !model.ValidInterval(t.Interval) {
		return fmt.Errorf("%s: unsupported interval %q: %w", t.Symbol, t.Interval, model.ErrInvalidParameter)
	}
	w := t.Window
	if w.Start.IsZero() {
		if !model.ValidPeriod(w.Period) {
			return fmt.Errorf("%s: unsupported period %q: %w", t.Symbol, w.Period, model.ErrInvalidParameter)
		}
		return nil
	}
	if !w.End.IsZero() && !w.End.After(w.Start) {
		return fmt.Errorf("%s: end %s is not after start %s: %w",
			t.Symbol, w.End.Format("2006-01-02"), w.Start.Format("2006-01-02"), model.ErrInvalidParameter)
	}
	return nil
}

// Request is a fully specified scan.
type Request struct {
	Targets []Target
	Params  Params
}

// NewRequest builds a request that scans every symbol over the same window
// and interval. Symbols are trimmed, upper-cased and deduplicated, keeping the
// first occurrence.
func NewRequest(symbols []string, window Window, interval string, params Params) (Request, error) {
	syms := NormalizeSymbols(symbols)
	if len(syms) == 0 {
		return Request{}, fmt.Errorf("no symbols provided: %w", model.ErrInvalidParameter)
	}
	req := Request{Params: params, Targets: make([]Target, len(syms))}
	for i, s := range syms {
		req.Targets[i] = Target{Symbol: s, Window: window, Interval: interval}
	}
	return req, req.Validate()
}

// NormalizeSymbols splits comma-separated entries, trims and upper-cases each
// symbol and drops empties and duplicates.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, entry := range symbols {
		for _, s := range strings.Split(entry, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the targets and params.
func (r Request) Validate() error {
	if len(r.Targets) == 0 {
		return fmt.Errorf("no symbols provided: %w", model.ErrInvalidParameter)
	}
	seen := make(map[string]struct{}, len(r.Targets))
	for _, t := range r.Targets {
		if err := t.validate(); err != nil {
			return err
		}
		if _, dup := seen[t.Symbol]; dup {
			return fmt.Errorf("duplicate symbol %s: %w", t.Symbol, model.ErrInvalidParameter)
		}
		seen[t.Symbol] = struct{}{}
	}
	return r.Params.Validate()
}
