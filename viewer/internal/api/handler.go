package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/render"
	"github.com/mandelbench/mandelbench/pkg/report"
	"github.com/mandelbench/mandelbench/pkg/types"
	"github.com/mandelbench/mandelbench/viewer/internal/alerts"
	"github.com/mandelbench/mandelbench/viewer/internal/store"
)

// maxReportBytes caps the body of POST /api/v1/reports.
const maxReportBytes = 1 << 20

// metricsContentType is the Prometheus text exposition format.
const metricsContentType = "text/plain; version=0.0.4; charset=utf-8"

// Config bounds on-demand evaluation and wires optional hooks. Zero limits
// disable the corresponding check.
type Config struct {
	MaxPixels    int
	MaxIterLimit int

	// Auth wraps report submission. Nil leaves it open.
	Auth func(http.Handler) http.Handler

	// OnReport is called after a submitted report is stored.
	OnReport func(*types.Report)

	// Alerts backs GET /api/v1/alerts. Nil serves an empty list.
	Alerts *alerts.Engine
}

// Handler is the HTTP handler for the viewer API.
type Handler struct {
	store  *store.Store
	cfg    Config
	mux    *http.ServeMux
	submit http.Handler
	now    func() time.Time
}

// New creates a Handler wired to st and registers all routes.
func New(st *store.Store, cfg Config) http.Handler {
	h := &Handler{store: st, cfg: cfg, mux: http.NewServeMux(), now: time.Now}

	h.submit = http.HandlerFunc(h.postReport)
	if cfg.Auth != nil {
		h.submit = cfg.Auth(h.submit)
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/regions", h.regions)
	h.mux.HandleFunc("/api/v1/point", h.point)
	h.mux.HandleFunc("/api/v1/grid", h.grid)
	h.mux.HandleFunc("/api/v1/image.png", h.image)
	h.mux.HandleFunc("/api/v1/reports", h.reports)
	h.mux.HandleFunc("/api/v1/reports/", h.getReport) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	reps := h.store.Reports()
	resp := HealthResponse{Status: "ok", ReportCount: len(reps)}
	if len(reps) > 0 {
		resp.LatestReport = reps[0].ID
		if s, ok := reps[0].Speedup(); ok {
			resp.LatestSpeedup = &s
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// regions returns GET /api/v1/regions.
func (h *Handler) regions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	names := mandel.RegionNames()
	out := make([]RegionResponse, 0, len(names))
	for _, n := range names {
		b, _ := mandel.Region(n)
		out = append(out, RegionResponse{Name: n, Bounds: b})
	}
	jsonResp(w, http.StatusOK, out)
}

// point returns GET /api/v1/point.
func (h *Handler) point(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	c, maxIter, err := h.parsePoint(r.URL.Query())
	if err != nil {
		errResp(w, err)
		return
	}
	n, err := mandel.EscapeCount(c, maxIter)
	if err != nil {
		errResp(w, err)
		return
	}
	jsonResp(w, http.StatusOK, PointResponse{
		Re:      real(c),
		Im:      imag(c),
		MaxIter: maxIter,
		Count:   n,
		InSet:   n == maxIter,
	})
}

// grid returns GET /api/v1/grid.
func (h *Handler) grid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := h.parseGrid(r.URL.Query(), defaultGridSize)
	if err != nil {
		errResp(w, err)
		return
	}
	start := h.now()
	g, err := mandel.Evaluate(req.method, req.bounds, req.width, req.height, req.maxIter)
	if err != nil {
		errResp(w, err)
		return
	}
	elapsed := h.now().Sub(start)

	jsonResp(w, http.StatusOK, GridResponse{
		Region:    req.region,
		Bounds:    req.bounds,
		Method:    req.method.String(),
		Width:     g.Width,
		Height:    g.Height,
		MaxIter:   g.MaxIter,
		InSet:     g.InSet(),
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
		Rows:      g.Rows(),
	})
}

// image returns GET /api/v1/image.png.
func (h *Handler) image(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	req, err := h.parseGrid(q, defaultImageSize)
	if err != nil {
		errResp(w, err)
		return
	}
	name := q.Get("palette")
	if name == "" {
		name = defaultPalette
	}
	palette, err := render.ParsePalette(name)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := mandel.Evaluate(req.method, req.bounds, req.width, req.height, req.maxIter)
	if err != nil {
		errResp(w, err)
		return
	}
	// Encode fully before writing so a failure can still produce a 500.
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.Image(g, palette)); err != nil {
		slog.Error("api: encode png", "err", err)
		jsonErr(w, http.StatusInternalServerError, "encode image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// reports dispatches /api/v1/reports by method.
func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, BuildSnapshot(h.store).Reports)
	case http.MethodPost:
		h.submit.ServeHTTP(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// getReport returns GET /api/v1/reports/{id}.
func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if id == "" {
		h.reports(w, r)
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "report not found")
		return
	}
	jsonResp(w, http.StatusOK, toReportResponse(e))
}

// snapshot returns GET /api/v1/snapshot.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// listAlerts returns GET /api/v1/alerts, firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.cfg.Alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.cfg.Alerts.Active())
}

// postReport handles POST /api/v1/reports after authentication.
func (h *Handler) postReport(w http.ResponseWriter, r *http.Request) {
	var rep types.Report
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBytes)).Decode(&rep); err != nil {
		jsonErr(w, http.StatusBadRequest, "decode report: "+err.Error())
		return
	}
	if err := rep.Validate(); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	h.store.Put(&rep)
	slog.Debug("api: report stored", "id", rep.ID, "region", rep.Region, "results", len(rep.Results))
	if h.cfg.OnReport != nil {
		h.cfg.OnReport(&rep)
	}
	jsonResp(w, http.StatusAccepted, SubmitResponse{ID: rep.ID})
}

// metrics returns GET /metrics, the live reports in Prometheus text format.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var buf bytes.Buffer
	if err := report.WriteText(&buf, h.store.Reports()...); err != nil {
		slog.Error("api: encode metrics", "err", err)
		jsonErr(w, http.StatusInternalServerError, "encode metrics")
		return
	}
	w.Header().Set("Content-Type", metricsContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// errResp maps invalid-argument errors to 400 and everything else to 500.
func errResp(w http.ResponseWriter, err error) {
	if errors.Is(err, mandel.ErrInvalidArgument) {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("api: request failed", "err", err)
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

// BuildSnapshot converts the live reports in st, newest first.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	out := make([]ReportResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toReportResponse(e))
	}
	return SnapshotResponse{
		Reports:     out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func toReportResponse(e *store.Entry) ReportResponse {
	resp := ReportResponse{
		Report:      e.Report,
		ReceivedAt:  e.ReceivedAt.UTC().Format(time.RFC3339),
		Diagnostics: computeDiagnostics(e.Report),
	}
	if s, ok := e.Report.Speedup(); ok {
		resp.Speedup = &s
	}
	return resp
}
