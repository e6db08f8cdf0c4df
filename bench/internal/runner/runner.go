package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/types"
)

// Spec describes one benchmark.
type Spec struct {
	Region  string
	Bounds  mandel.Bounds
	Width   int
	Height  int
	MaxIter int
	Runs    int
	Methods []mandel.Method
}

// evaluateFunc matches mandel.Evaluate; abstracted so tests can count calls.
type evaluateFunc func(m mandel.Method, b mandel.Bounds, width, height, maxIter int) (*mandel.Grid, error)

// Runner executes benchmarks. The zero value is not usable; call New.
type Runner struct {
	now      func() time.Time
	evaluate evaluateFunc
}

// New returns a Runner using the wall clock and mandel.Evaluate.
func New() *Runner {
	return &Runner{now: time.Now, evaluate: mandel.Evaluate}
}

// Run times every method in spec and returns the report together with the
// grid from the final run of the last method.
//
// Run checks ctx between invocations; a single evaluation is never
// interrupted.
func (r *Runner) Run(ctx context.Context, spec Spec) (*types.Report, *mandel.Grid, error) {
	if spec.Runs <= 0 {
		return nil, nil, fmt.Errorf("runner: runs must be positive, got %d", spec.Runs)
	}
	if len(spec.Methods) == 0 {
		return nil, nil, fmt.Errorf("runner: no methods to run")
	}

	started := r.now()
	rep := &types.Report{
		ID:        reportID(started, spec),
		StartedAt: started.UTC(),
		Region:    spec.Region,
		Bounds:    spec.Bounds,
		Width:     spec.Width,
		Height:    spec.Height,
		MaxIter:   spec.MaxIter,
		Runs:      spec.Runs,
	}

	var grids []*mandel.Grid
	for _, m := range spec.Methods {
		res := types.MethodResult{Method: m.String(), Samples: make([]time.Duration, 0, spec.Runs)}

		var last *mandel.Grid
		for i := 0; i < spec.Runs; i++ {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("runner: %s run %d: %w", m, i+1, err)
			}

			t0 := r.now()
			g, err := r.evaluate(m, spec.Bounds, spec.Width, spec.Height, spec.MaxIter)
			elapsed := r.now().Sub(t0)
			if err != nil {
				return nil, nil, fmt.Errorf("runner: %s: %w", m, err)
			}

			res.Samples = append(res.Samples, elapsed)
			last = g
			slog.Info("runner: run finished",
				"method", m.String(),
				"run", i+1,
				"elapsed_ms", ms(elapsed),
			)
		}

		res.Median = Median(res.Samples)
		res.Min, res.Max = minMax(res.Samples)
		res.InSet = last.InSet()
		rep.Results = append(rep.Results, res)
		grids = append(grids, last)

		slog.Info("runner: method finished", "method", m.String(), "median_ms", ms(res.Median))
	}

	if len(grids) > 1 {
		agree := true
		for _, g := range grids[1:] {
			if !g.Equal(grids[0]) {
				agree = false
				break
			}
		}
		rep.Agree = &agree
		if !agree {
			slog.Warn("runner: methods produced different grids", "id", rep.ID)
		}
	}

	return rep, grids[len(grids)-1], nil
}

// Median returns the middle sample, or the mean of the two middle samples
// for an even count. It returns 0 for no samples.
func Median(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func minMax(samples []time.Duration) (lo, hi time.Duration) {
	for i, s := range samples {
		if i == 0 || s < lo {
			lo = s
		}
		if i == 0 || s > hi {
			hi = s
		}
	}
	return lo, hi
}

func reportID(t time.Time, spec Spec) string {
	return fmt.Sprintf("%s-%dx%d-i%d", t.UTC().Format("20060102T150405.000Z"), spec.Width, spec.Height, spec.MaxIter)
}

// ms converts d to fractional milliseconds.
func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
