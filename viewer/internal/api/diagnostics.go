package api

import (
	"fmt"
	"sort"

	"github.com/mandelbench/mandelbench/pkg/types"
)

// noisyRatio is the max/min sample ratio above which timings are flagged.
const noisyRatio = 1.5

// DiagnosticHint is one human-readable remark about a benchmark report.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives hints from rep, critical first.
func computeDiagnostics(rep *types.Report) []DiagnosticHint {
	var hints []DiagnosticHint

	if rep.Agree != nil && !*rep.Agree {
		hints = append(hints, DiagnosticHint{
			Key:   "methods_disagree",
			Level: "critical",
			Title: "Grids differ",
			Detail: "The naive and batched evaluators produced different escape counts " +
				"for the same window. The timings are not comparable until both agree cell for cell.",
		})
	}

	if s, ok := rep.Speedup(); ok {
		v := s
		if s < 1 {
			hints = append(hints, DiagnosticHint{
				Key:   "batched_slower",
				Level: "warning",
				Title: fmt.Sprintf("Batched %.2fx slower", 1/s),
				Detail: fmt.Sprintf(
					"The batched evaluator took %.2fx as long as the naive one. "+
						"It visits every cell on each of the %d passes, so windows that escape "+
						"quickly favour the naive loop.",
					1/s, rep.MaxIter,
				),
				Value: &v,
			})
		} else {
			hints = append(hints, DiagnosticHint{
				Key:    "speedup",
				Level:  "info",
				Title:  fmt.Sprintf("%.2fx speedup", s),
				Detail: fmt.Sprintf("Naive median divided by batched median is %.2f.", s),
				Value:  &v,
			})
		}
	}

	for _, res := range rep.Results {
		if res.Min <= 0 || len(res.Samples) < 2 {
			continue
		}
		ratio := float64(res.Max) / float64(res.Min)
		if ratio <= noisyRatio {
			continue
		}
		v := ratio
		hints = append(hints, DiagnosticHint{
			Key:   "noisy_" + res.Method,
			Level: "warning",
			Title: fmt.Sprintf("Noisy %s timings", res.Method),
			Detail: fmt.Sprintf(
				"The slowest %s run took %.2fx as long as the fastest. "+
					"Another process was probably competing for the CPU; consider more runs.",
				res.Method, ratio,
			),
			Value: &v,
		})
	}

	if rep.Runs == 1 {
		hints = append(hints, DiagnosticHint{
			Key:    "single_run",
			Level:  "info",
			Title:  "Single run",
			Detail: "Each method ran once, so the median is just that sample.",
		})
	}

	if len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "ok",
			Level:  "ok",
			Title:  "All clear",
			Detail: "Timings are stable.",
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}
