package api

import (
	"testing"
	"time"

	"github.com/mandelbench/mandelbench/pkg/types"
)

func result(method string, samples ...time.Duration) types.MethodResult {
	lo, hi := samples[0], samples[0]
	for _, s := range samples {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return types.MethodResult{Method: method, Samples: samples, Median: samples[len(samples)/2], Min: lo, Max: hi}
}

func keys(hints []DiagnosticHint) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = h.Key
	}
	return out
}

func TestComputeDiagnostics(t *testing.T) {
	yes, no := true, false
	ms := time.Millisecond

	tests := []struct {
		name string
		rep  *types.Report
		want []string
	}{
		{
			name: "fast batched",
			rep: &types.Report{Runs: 3, Agree: &yes, Results: []types.MethodResult{
				result("naive", 300*ms, 300*ms, 300*ms),
				result("batched", 100*ms, 100*ms, 100*ms),
			}},
			want: []string{"speedup"},
		},
		{
			name: "disagreement first",
			rep: &types.Report{Runs: 3, Agree: &no, Results: []types.MethodResult{
				result("naive", 100*ms, 100*ms, 100*ms),
				result("batched", 200*ms, 200*ms, 200*ms),
			}},
			want: []string{"methods_disagree", "batched_slower"},
		},
		{
			name: "noisy single method",
			rep: &types.Report{Runs: 3, Results: []types.MethodResult{
				result("naive", 100*ms, 110*ms, 400*ms),
			}},
			want: []string{"noisy_naive"},
		},
		{
			name: "single run",
			rep: &types.Report{Runs: 1, Results: []types.MethodResult{
				result("batched", 100*ms),
			}},
			want: []string{"single_run"},
		},
		{
			name: "all clear",
			rep: &types.Report{Runs: 3, Results: []types.MethodResult{
				result("batched", 100*ms, 101*ms, 102*ms),
			}},
			want: []string{"ok"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := keys(computeDiagnostics(tc.rep))
			if len(got) != len(tc.want) {
				t.Fatalf("keys: got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("keys: got %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}
