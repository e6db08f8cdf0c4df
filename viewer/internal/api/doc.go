// Package api implements the HTTP REST API of the mandelbench viewer.
//
// New(store, cfg) returns an http.Handler that serves:
//
//	GET  /api/v1/health        liveness plus report count and latest speedup
//	GET  /api/v1/regions       named landmark windows and their bounds
//	GET  /api/v1/point         escape count of one point (re, im, max_iter)
//	GET  /api/v1/grid          escape-count grid as JSON rows
//	GET  /api/v1/image.png     colour-mapped PNG of a grid
//	GET  /api/v1/reports       live benchmark reports, newest first
//	GET  /api/v1/reports/{id}  one report; 404 if unknown or stale
//	POST /api/v1/reports       submit a report (wrapped by cfg.Auth)
//	GET  /api/v1/snapshot      live reports plus generated_at
//	GET  /api/v1/alerts        firing and recently resolved report alerts
//	GET  /metrics              live reports in Prometheus text format
//
// Grid and image requests select a window either by region=<name> or by all
// four of xmin, xmax, ymin, ymax, and are capped by cfg.MaxPixels and
// cfg.MaxIterLimit. Invalid arguments answer 400 with {"error": ...};
// wrong methods answer 405.
package api
