package types

import (
	"time"

	"github.com/mandelbench/mandelbench/pkg/mandel"
)

// MethodResult holds the timings of one evaluator.
type MethodResult struct {
	Method  string          `json:"method"`
	Samples []time.Duration `json:"samples_ns"`
	Median  time.Duration   `json:"median_ns"`
	Min     time.Duration   `json:"min_ns"`
	Max     time.Duration   `json:"max_ns"`

	// InSet is the number of cells that reached max_iter.
	InSet int `json:"in_set"`
}

// Report is the outcome of one benchmark run.
type Report struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	Region    string         `json:"region,omitempty"`
	Bounds    mandel.Bounds  `json:"bounds"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	MaxIter   int            `json:"max_iter"`
	Runs      int            `json:"runs"`
	Results   []MethodResult `json:"results"`

	// Agree is nil when fewer than two methods ran, otherwise whether every
	// method produced the same grid.
	Agree *bool `json:"agree,omitempty"`
}

// Result returns the entry for method, if it ran.
func (r *Report) Result(method mandel.Method) (MethodResult, bool) {
	for _, res := range r.Results {
		if res.Method == method.String() {
			return res, true
		}
	}
	return MethodResult{}, false
}

// Speedup is the naive median divided by the batched median. ok is false
// unless both methods ran and the batched median is non-zero.
func (r *Report) Speedup() (speedup float64, ok bool) {
	naive, ok1 := r.Result(mandel.MethodNaive)
	batched, ok2 := r.Result(mandel.MethodBatched)
	if !ok1 || !ok2 || batched.Median <= 0 {
		return 0, false
	}
	return float64(naive.Median) / float64(batched.Median), true
}

// Validate checks the fields a receiver relies on.
func (r *Report) Validate() error {
	if r.ID == "" {
		return errMissing("id")
	}
	if len(r.Results) == 0 {
		return errMissing("results")
	}
	for _, res := range r.Results {
		if _, err := mandel.ParseMethod(res.Method); err != nil {
			return err
		}
	}
	return nil
}
