package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"TrendEdge/internal/model"
)

func sampleReport(id string, started time.Time) *model.ScanReport {
	return &model.ScanReport{
		RunID:      id,
		Mode:       "momentum",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Results: []model.ScanResult{
			{Symbol: "AAA", Snapshot: model.Snapshot{Time: started, Close: 10, RSI: 40, MACDHist: 1.2, SMATrend: 9},
				Signal: model.Signal{Verdict: model.VerdictBullish, Notes: "MACD ↑, Trend Up", Target: math.NaN()}},
			{Symbol: "BBB", Snapshot: model.Snapshot{Time: started, Close: 8, RSI: 75, MACDHist: -0.8, SMATrend: 9},
				Signal: model.Signal{Verdict: model.VerdictBearish}},
		},
		Failures: []model.Failure{{Symbol: "CCC", Kind: model.FailureDataUnavailable, Reason: "timeout"}},
	}
}

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "scans.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if err := r.RecordScan(sampleReport("run-old", t0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.RecordScan(sampleReport("run-new", t0.Add(time.Hour))); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.RecordScan(sampleReport("run-new", t0)); err == nil {
		t.Error("expected duplicate run id to be rejected")
	}

	runs, err := r.ListRuns(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	latest := runs[0]
	if latest.RunID != "run-new" || latest.Symbols != 3 || latest.Results != 2 || latest.Failures != 1 {
		t.Errorf("unexpected summary %+v", latest)
	}
	if len(latest.Top) != 2 || latest.Top[0] != "AAA" || latest.Top[1] != "BBB" {
		t.Errorf("unexpected top symbols %v", latest.Top)
	}
	if !latest.StartedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("unexpected start %v", latest.StartedAt)
	}

	runs, err = r.ListRuns(1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("limit not applied: %v %v", runs, err)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordScan(sampleReport("x", time.Now())); err != nil {
		t.Fatal(err)
	}
	if runs, err := r.ListRuns(5); err != nil || len(runs) != 0 {
		t.Fatalf("unexpected %v %v", runs, err)
	}
}
