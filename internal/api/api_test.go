package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendEdge/internal/metrics"
	"TrendEdge/internal/model"
	"TrendEdge/internal/recorder"
	"TrendEdge/internal/scanner"
	"TrendEdge/internal/strategy"
)

type fakeRunner struct {
	got scanner.Request
}

func (f *fakeRunner) Run(_ context.Context, req scanner.Request) (*model.ScanReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.got = req
	return &model.ScanReport{
		RunID: "run-1",
		Mode:  string(req.Params.Mode),
		Results: []model.ScanResult{{
			Symbol:   req.Targets[0].Symbol,
			Interval: req.Targets[0].Interval,
			Snapshot: model.Snapshot{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 110, RSI: 40, MACDHist: 1.2, SMATrend: 100},
			Signal:   model.Signal{Verdict: model.VerdictBullish, Notes: "MACD ↑, Trend Up"},
		}},
	}, nil
}

type fakeHistory struct {
	recorder.NoopRecorder
	limit int
}

func (f *fakeHistory) ListRuns(limit int) ([]recorder.RunSummary, error) {
	f.limit = limit
	return []recorder.RunSummary{{RunID: "run-1", Mode: "momentum", Results: 1}}, nil
}

func newTestServer(keys ...string) (*Server, *fakeRunner, *fakeHistory) {
	runner := &fakeRunner{}
	hist := &fakeHistory{}
	h := NewHandler(runner, hist, scanner.DefaultParams())
	return NewServer(h, metrics.New(), ServerConfig{Addr: ":0", APIKeys: keys}), runner, hist
}

func do(s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestCreateScan(t *testing.T) {
	s, runner, _ := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/scans",
		`{"symbols":["aaa","bbb","AAA"],"mode":"breakout","tolerance":0.5}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status int `json:"status"`
		Data   struct {
			RunID   string                   `json:"run_id"`
			Results []map[string]interface{} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Data.RunID)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "AAA", resp.Data.Results[0]["symbol"])

	require.Len(t, runner.got.Targets, 2)
	assert.Equal(t, "6mo", runner.got.Targets[0].Window.Period)
	assert.Equal(t, "1d", runner.got.Targets[0].Interval)
	assert.EqualValues(t, "breakout", runner.got.Params.Mode)
	assert.Equal(t, 0.5, runner.got.Params.Tolerance)
	assert.Equal(t, 26, runner.got.Params.MACDSlow)
}

func TestCreateScan_KeepsConfiguredMode(t *testing.T) {
	base := scanner.DefaultParams()
	base.Mode = strategy.ModeBreakout
	runner := &fakeRunner{}
	s := NewServer(NewHandler(runner, &fakeHistory{}, base), metrics.New(), ServerConfig{Addr: ":0"})

	rec := do(s, http.MethodPost, "/api/v1/scans", `{"symbols":["AAA"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, strategy.ModeBreakout, runner.got.Params.Mode)

	rec = do(s, http.MethodPost, "/api/v1/scans", `{"symbols":["AAA"],"mode":"momentum"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, strategy.ModeMomentum, runner.got.Params.Mode)
}

func TestCreateScan_DateRange(t *testing.T) {
	s, runner, _ := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/scans",
		`{"symbols":["AAA"],"start":"2024-01-01","end":"2024-06-30","interval":"1h"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	w := runner.got.Targets[0].Window
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), w.End)
}

func TestCreateScan_Invalid(t *testing.T) {
	s, _, _ := newTestServer()
	tests := []struct {
		name string
		body string
	}{
		{"no symbols", `{"symbols":[]}`},
		{"blank symbols", `{"symbols":[" "]}`},
		{"bad interval", `{"symbols":["AAA"],"interval":"2h"}`},
		{"bad mode", `{"symbols":["AAA"],"mode":"swing"}`},
		{"negative tolerance", `{"symbols":["AAA"],"tolerance":-1}`},
		{"bad date", `{"symbols":["AAA"],"start":"01/02/2024"}`},
		{"inverted range", `{"symbols":["AAA"],"start":"2024-02-01","end":"2024-01-01"}`},
		{"malformed json", `{"symbols":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/v1/scans", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestListScans(t *testing.T) {
	s, _, hist := newTestServer()
	rec := do(s, http.MethodGet, "/api/v1/scans?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, hist.limit)
	assert.Contains(t, rec.Body.String(), `"run_id":"run-1"`)

	rec = do(s, http.MethodGet, "/api/v1/scans?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	s, _, _ := newTestServer("secret")

	rec := do(s, http.MethodGet, "/api/v1/scans", "", nil)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code, "missing key")

	rec = do(s, http.MethodGet, "/api/v1/scans", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/scans", "", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health check must stay open")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer()
	rec := do(s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
