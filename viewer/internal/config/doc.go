// Package config loads the viewer configuration from the `viewer:` section
// of a YAML file (the `bench:` key is ignored by the viewer binary).
//
// Config fields:
//   - HTTPPort          : port for the REST API and WebSocket hub (default 8080)
//   - ReportTTL         : how long a shipped report stays live (default 1h)
//   - BroadcastInterval : WebSocket push cadence (default 5s)
//   - MaxPixels         : upper bound on width*height for grid and image requests
//   - MaxIterLimit      : upper bound on max_iter for on-demand evaluation
//   - Auth.Mode         : "apikey" or "none"
//   - Auth.KeyEnv       : environment variable holding the expected API key
//   - Auth.Header       : HTTP header name (default "X-API-Key")
//   - Alerts            : report rules and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
