package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mandelbench/mandelbench/pkg/mandel"
	"github.com/mandelbench/mandelbench/pkg/types"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock advances only when the fake evaluator says so.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

// scripted returns a Runner whose evaluations take the given durations per
// method, in order, and still compute real grids.
func scripted(t *testing.T, durs map[mandel.Method][]time.Duration) (*Runner, *int) {
	t.Helper()
	clk := &fakeClock{t: baseTime}
	calls := 0
	idx := map[mandel.Method]int{}
	r := &Runner{
		now: clk.now,
		evaluate: func(m mandel.Method, b mandel.Bounds, w, h, maxIter int) (*mandel.Grid, error) {
			calls++
			ds := durs[m]
			clk.t = clk.t.Add(ds[idx[m]%len(ds)])
			idx[m]++
			return mandel.Evaluate(m, b, w, h, maxIter)
		},
	}
	return r, &calls
}

func smallSpec(runs int, methods ...mandel.Method) Spec {
	return Spec{
		Region:  "classic",
		Bounds:  mandel.Classic,
		Width:   16,
		Height:  12,
		MaxIter: 30,
		Runs:    runs,
		Methods: methods,
	}
}

func TestRun_MedianOfThree(t *testing.T) {
	r, calls := scripted(t, map[mandel.Method][]time.Duration{
		mandel.MethodNaive:   {300 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond},
		mandel.MethodBatched: {40 * time.Millisecond, 60 * time.Millisecond, 50 * time.Millisecond},
	})

	rep, grid, err := r.Run(context.Background(), smallSpec(3, mandel.Methods...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *calls != 6 {
		t.Errorf("evaluate calls = %d, want 6", *calls)
	}
	if grid == nil || grid.Width != 16 || grid.Height != 12 {
		t.Fatalf("grid = %+v", grid)
	}

	naive, ok := rep.Result(mandel.MethodNaive)
	if !ok {
		t.Fatal("naive result missing")
	}
	if naive.Median != 200*time.Millisecond {
		t.Errorf("naive median = %v, want 200ms", naive.Median)
	}
	if naive.Min != 100*time.Millisecond || naive.Max != 300*time.Millisecond {
		t.Errorf("naive min/max = %v/%v", naive.Min, naive.Max)
	}
	if len(naive.Samples) != 3 || naive.Samples[0] != 300*time.Millisecond {
		t.Errorf("naive samples = %v, want run order preserved", naive.Samples)
	}

	batched, _ := rep.Result(mandel.MethodBatched)
	if batched.Median != 50*time.Millisecond {
		t.Errorf("batched median = %v, want 50ms", batched.Median)
	}

	s, ok := rep.Speedup()
	if !ok || s != 4 {
		t.Errorf("Speedup() = %v, %v; want 4, true", s, ok)
	}
	if rep.Agree == nil || !*rep.Agree {
		t.Errorf("Agree = %v, want true", rep.Agree)
	}
	if naive.InSet != batched.InSet || naive.InSet == 0 {
		t.Errorf("InSet naive=%d batched=%d", naive.InSet, batched.InSet)
	}
	if !rep.StartedAt.Equal(baseTime) {
		t.Errorf("StartedAt = %v", rep.StartedAt)
	}
	if !strings.HasPrefix(rep.ID, "20260101T000000.000Z-16x12-i30") {
		t.Errorf("ID = %q", rep.ID)
	}
}

func TestRun_SingleMethod_NoAgreementOrSpeedup(t *testing.T) {
	r, _ := scripted(t, map[mandel.Method][]time.Duration{
		mandel.MethodBatched: {time.Millisecond},
	})
	rep, _, err := r.Run(context.Background(), smallSpec(2, mandel.MethodBatched))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Agree != nil {
		t.Errorf("Agree = %v, want nil", *rep.Agree)
	}
	if _, ok := rep.Speedup(); ok {
		t.Error("Speedup ok with a single method")
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	r := New()
	if _, _, err := r.Run(context.Background(), smallSpec(0, mandel.MethodNaive)); err == nil {
		t.Error("expected error for zero runs")
	}
	if _, _, err := r.Run(context.Background(), smallSpec(1)); err == nil {
		t.Error("expected error for no methods")
	}

	spec := smallSpec(1, mandel.MethodNaive)
	spec.Width = 0
	_, _, err := r.Run(context.Background(), spec)
	if !errors.Is(err, mandel.ErrInvalidArgument) {
		t.Errorf("zero width err = %v, want ErrInvalidArgument", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New().Run(ctx, smallSpec(3, mandel.MethodNaive))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRun_RealClock(t *testing.T) {
	rep, _, err := New().Run(context.Background(), smallSpec(1, mandel.Methods...))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(rep.Results))
	}
	if rep.Agree == nil || !*rep.Agree {
		t.Error("naive and batched disagree")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Duration
		want time.Duration
	}{
		{"empty", nil, 0},
		{"one", []time.Duration{7}, 7},
		{"odd", []time.Duration{9, 1, 5}, 5},
		{"even", []time.Duration{4, 1, 3, 2}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := append([]time.Duration(nil), tc.in...)
			if got := Median(in); got != tc.want {
				t.Errorf("Median(%v) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range in {
				if in[i] != tc.in[i] {
					t.Fatal("Median modified its input")
				}
			}
		})
	}
}

func TestPrint(t *testing.T) {
	agree := true
	rep := &types.Report{
		Bounds:  mandel.Classic,
		Width:   1024,
		Height:  1024,
		MaxIter: 100,
		Results: []types.MethodResult{
			{Method: "naive", Samples: []time.Duration{2 * time.Second, 3 * time.Second, 1 * time.Second}, Median: 2 * time.Second},
			{Method: "batched", Samples: []time.Duration{500 * time.Millisecond}, Median: 500 * time.Millisecond},
		},
		Agree: &agree,
	}
	var buf bytes.Buffer
	if err := Print(&buf, rep); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Naive version:",
		"  Run 2: 3000.00 ms",
		"Median: 2000.00 ms",
		"Batched version:",
		"SUMMARY:",
		"Batched: 500.00 ms",
		"Speedup (naive/batched): 4.00x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Errorf("unexpected warning:\n%s", out)
	}
}
