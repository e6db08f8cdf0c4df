// Package shipper delivers finished benchmark reports to the viewer.
//
// Ship is non-blocking: reports go into a bounded buffer and the oldest is
// evicted when it is full. Run drains the buffer in the background, POSTing
// each report as JSON to <endpoint>/api/v1/reports and retrying transient
// failures with truncated exponential backoff and ±25% jitter. Flush sends
// whatever is buffered once, for the one-shot driver that exits right after
// its benchmark.
//
// 4xx responses other than 408 and 429 are permanent: the report is logged and
// discarded instead of retried.
package shipper
