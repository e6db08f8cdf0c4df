package api

import (
	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/types"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status        string   `json:"status"`
	ReportCount   int      `json:"report_count"`
	LatestReport  string   `json:"latest_report,omitempty"`
	LatestSpeedup *float64 `json:"latest_speedup,omitempty"`
}

// RegionResponse is one entry of GET /api/v1/regions.
type RegionResponse struct {
	Name   string        `json:"name"`
	Bounds mandel.Bounds `json:"bounds"`
}

// PointResponse is the payload for GET /api/v1/point.
type PointResponse struct {
	Re      float64 `json:"re"`
	Im      float64 `json:"im"`
	MaxIter int     `json:"max_iter"`
	Count   int     `json:"count"`
	InSet   bool    `json:"in_set"`
}

// GridResponse is the payload for GET /api/v1/grid. Rows[0] samples Ymin.
type GridResponse struct {
	Region    string        `json:"region,omitempty"`
	Bounds    mandel.Bounds `json:"bounds"`
	Method    string        `json:"method"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	MaxIter   int           `json:"max_iter"`
	InSet     int           `json:"in_set"`
	ElapsedMs float64       `json:"elapsed_ms"`
	Rows      [][]int       `json:"rows"`
}

// ReportResponse is one report in GET /api/v1/reports.
type ReportResponse struct {
	Report      *types.Report    `json:"report"`
	ReceivedAt  string           `json:"received_at"` // RFC3339
	Speedup     *float64         `json:"speedup,omitempty"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the data of
// every WebSocket broadcast.
type SnapshotResponse struct {
	Reports     []ReportResponse `json:"reports"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// SubmitResponse is the payload for POST /api/v1/reports.
type SubmitResponse struct {
	ID string `json:"id"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
