// Package types defines the benchmark report shared by the driver and the
// viewer. It is the JSON shape shipped over HTTP and served by the viewer's
// API.
package types
