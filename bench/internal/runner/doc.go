// Package runner times the grid evaluators.
//
// Run evaluates the same grid once per configured method, Runs times each,
// sequentially, and summarises every method by the median of its samples.
// The clock is injectable so tests control elapsed times without sleeping.
//
// After the last run the grids produced by each method are compared cell by
// cell; a mismatch is recorded in the Report rather than returned as an error,
// so the timings are never lost.
//
// Print writes the human-readable table: per-run times, medians and a final
// summary block with the naive/batched speedup.
package runner
