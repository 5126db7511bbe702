package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"TrendEdge/internal/model"
)

var barTime = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

func breakoutReport() *model.ScanReport {
	return &model.ScanReport{
		RunID: "run-1",
		Mode:  "breakout",
		Results: []model.ScanResult{{
			Symbol:   "AAA",
			Interval: "1d",
			Snapshot: model.Snapshot{
				Time: barTime, Close: 103, SMAFast: 101, SMAMid: 100, SMASlow: 98,
				BBUpper: 102.5, BBLower: 95.123456, RSI: math.NaN(),
			},
			Signal: model.Signal{
				Verdict:     model.VerdictBreakoutBearish,
				Target:      101,
				Distance:    2,
				DistancePct: 2.0 / 103 * 100,
			},
		}},
		Failures: []model.Failure{{Symbol: "ZZZ", Kind: model.FailureDataUnavailable, Reason: "no data returned"}},
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456789, 4); got == nil || *got != 1.2346 {
		t.Errorf("Round: got %v", got)
	}
	if got := Round(math.NaN(), 4); got != nil {
		t.Errorf("NaN should round to nil, got %v", *got)
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, &model.ScanReport{Mode: "momentum"}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != MsgNoSetups {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteTable_Breakout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, breakoutReport()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	for _, want := range []string{"AAA", "BEARISH", "2024-03-08", "95.1235", "1.942"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, breakoutReport()); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0][0] != "symbol" || records[0][11] != "distance_to_target_pct" {
		t.Errorf("unexpected header %v", records[0])
	}
	want := []string{"AAA", "BEARISH", "2024-03-08", "103", "101", "100", "98", "102.5", "95.1235", "101", "2", "1.942"}
	for i, w := range want {
		if records[1][i] != w {
			t.Errorf("column %s: expected %q, got %q", records[0][i], w, records[1][i])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, breakoutReport(), true); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		RunID    string                   `json:"run_id"`
		Results  []map[string]interface{} `json:"results"`
		Failures []model.Failure          `json:"failures"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if doc.RunID != "run-1" || len(doc.Results) != 1 || len(doc.Failures) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	row := doc.Results[0]
	if row["distance_to_target_pct"] != 1.942 {
		t.Errorf("pct should round to 3 places, got %v", row["distance_to_target_pct"])
	}
	if _, ok := row["rsi"]; ok {
		t.Error("momentum columns should be omitted for breakout rows")
	}
}

func TestWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	WriteFailures(&buf, breakoutReport().Failures)
	if buf.String() != "[WARN] ZZZ: no data returned\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewChart(t *testing.T) {
	f := &model.Frame{
		Bars:    []model.OHLCV{{Time: barTime, Close: 1}, {Time: barTime.AddDate(0, 0, 1), Close: 2}},
		SMAFast: []float64{math.NaN(), 1.5},
	}
	c := NewChart(f)
	if len(c.Time) != 2 {
		t.Fatalf("expected 2 timestamps, got %d", len(c.Time))
	}
	sma := c.Columns["sma_fast"]
	if sma[0] != nil || sma[1] == nil || *sma[1] != 1.5 {
		t.Errorf("unexpected sma column %v", sma)
	}
	if _, ok := c.Columns["rsi"]; ok {
		t.Error("missing series should be skipped")
	}
}
