package recorder

import (
	"time"

	"TrendEdge/internal/model"
)

// RunSummary is one recorded scan as listed by ListRuns.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Symbols    int       `json:"symbols"`
	Results    int       `json:"results"`
	Failures   int       `json:"failures"`
	Top        []string  `json:"top,omitempty"`
}

// Recorder persists scan reports for later analysis.
type Recorder interface {
	RecordScan(report *model.ScanReport) error
	ListRuns(limit int) ([]RunSummary, error)
	Close() error
}
