package model

import "time"

// Verdict is the categorical outcome of classifying a snapshot.
type Verdict string

const (
	VerdictBullish Verdict = "Bullish"
	VerdictNeutral Verdict = "Neutral"
	VerdictBearish Verdict = "Bearish"

	// Breakout-mode exhaustion signals.
	VerdictBreakoutBullish Verdict = "BULLISH"
	VerdictBreakoutBearish Verdict = "BEARISH"
)

// IsBreakout reports whether v is a breakout-mode signal.
func (v Verdict) IsBreakout() bool {
	return v == VerdictBreakoutBullish || v == VerdictBreakoutBearish
}

// Signal is the classifier output for one snapshot.
type Signal struct {
	Verdict Verdict
	Notes   string

	// Breakout only: exit reference (SMA fast) and the distance to it.
	Target      float64
	Distance    float64
	DistancePct float64
}

// ScanResult is one classified symbol.
type ScanResult struct {
	Symbol   string
	Interval string
	Snapshot Snapshot
	Signal

	// Frame is retained only when the caller asked for chart data.
	Frame *Frame
}

// Failure records a symbol that produced no usable snapshot.
type Failure struct {
	Symbol string      `json:"symbol"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// ScanReport is the final, read-only output of one scan.
type ScanReport struct {
	RunID      string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []ScanResult
	Failures   []Failure

	// NoSignal lists breakout-mode symbols that had data but no setup.
	NoSignal []string
}

// Empty reports whether the scan produced no results.
func (r *ScanReport) Empty() bool {
	return len(r.Results) == 0
}
