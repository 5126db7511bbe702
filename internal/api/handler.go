package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"TrendEdge/internal/model"
	"TrendEdge/internal/recorder"
	"TrendEdge/internal/report"
	"TrendEdge/internal/scanner"
	"TrendEdge/internal/strategy"
)

// Runner executes a scan.
type Runner interface {
	Run(ctx context.Context, req scanner.Request) (*model.ScanReport, error)
}

// ScanRequest is the body of POST /api/v1/scans.
type ScanRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,max=500"`
	Period    string   `json:"period" default:"6mo"`
	Start     string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End       string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Interval  string   `json:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 1d 1wk"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=momentum breakout"`
	Tolerance *float64 `json:"tolerance" validate:"omitempty,gte=0"`
	Charts    bool     `json:"charts"`
}

// Handler serves the scan endpoints.
type Handler struct {
	runner   Runner
	recorder recorder.Recorder
	base     scanner.Params
}

// NewHandler creates a Handler. base supplies every parameter the request
// does not override. rec may be nil.
func NewHandler(runner Runner, rec recorder.Recorder, base scanner.Params) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{runner: runner, recorder: rec, base: base}
}

// RegisterRoutes mounts the handler on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/scans", h.CreateScan)
	g.GET("/scans", h.ListScans)
}

// CreateScan runs a scan synchronously and returns its rows.
func (h *Handler) CreateScan(c echo.Context) error {
	var body ScanRequest
	if details := bindAndValidate(c, &body); details != nil {
		return badRequest(c, details)
	}

	window := scanner.Window{Period: body.Period}
	if body.Start != "" {
		window.Start, _ = time.Parse("2006-01-02", body.Start)
		if body.End != "" {
			window.End, _ = time.Parse("2006-01-02", body.End)
		}
	}

	params := h.base
	if body.Mode != "" {
		params.Mode = strategy.Mode(body.Mode)
	}
	params.KeepFrames = body.Charts
	if body.Tolerance != nil {
		params.Tolerance = *body.Tolerance
	}

	req, err := scanner.NewRequest(body.Symbols, window, body.Interval, params)
	if err != nil {
		return badRequest(c, []ErrorDetail{{Code: "ERR_INVALID_PARAMETER", Message: err.Error()}})
	}

	rep, err := h.runner.Run(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidParameter) {
			return badRequest(c, []ErrorDetail{{Code: "ERR_INVALID_PARAMETER", Message: err.Error()}})
		}
		log.Error().Err(err).Msg("scan failed")
		return dataResponse(c, http.StatusInternalServerError, []ErrorDetail{{Code: "ERR_SCAN", Message: err.Error()}})
	}
	return dataResponse(c, http.StatusOK, report.NewDocument(rep))
}

// ListScans returns recently recorded runs.
func (h *Handler) ListScans(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return badRequest(c, []ErrorDetail{{Code: "ERR_LIMIT", Field: "limit", Message: "limit must be between 1 and 500"}})
		}
		limit = n
	}
	runs, err := h.recorder.ListRuns(limit)
	if err != nil {
		log.Error().Err(err).Msg("list runs failed")
		return dataResponse(c, http.StatusInternalServerError, []ErrorDetail{{Code: "ERR_HISTORY", Message: err.Error()}})
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	return dataResponse(c, http.StatusOK, runs)
}
