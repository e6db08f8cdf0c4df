// Package report renders benchmark reports in the Prometheus text exposition
// format and reads them back.
//
// Each evaluator's timings become one summary series labelled by report,
// region and method, with the median exported as the 0.5 quantile. Gauges
// carry the cell count, iteration cap, in-set cells, speedup and whether the
// evaluators agreed.
//
// WriteFile produces a file suitable for the node_exporter textfile
// collector. The viewer's /metrics endpoint uses WriteText over every live
// report. PreviousMedians parses an earlier file so the driver can log how
// medians moved between runs.
package report
