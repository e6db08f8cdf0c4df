package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/mandelbench/mandelbench/pkg/types"
)

const rule = "========================================"

// Print writes per-run timings, medians and a summary block for rep.
func Print(w io.Writer, rep *types.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Grid %dx%d, max_iter %d, bounds (%g, %g, %g, %g)\n\n",
		rep.Width, rep.Height, rep.MaxIter,
		rep.Bounds.Xmin, rep.Bounds.Xmax, rep.Bounds.Ymin, rep.Bounds.Ymax)

	for _, res := range rep.Results {
		fmt.Fprintf(&b, "%s version:\n", title(res.Method))
		for i, s := range res.Samples {
			fmt.Fprintf(&b, "  Run %d: %.2f ms\n", i+1, ms(s))
		}
		fmt.Fprintf(&b, "Median: %.2f ms\n\n", ms(res.Median))
	}

	b.WriteString(rule + "\n")
	b.WriteString("SUMMARY:\n")
	for _, res := range rep.Results {
		fmt.Fprintf(&b, "%s: %.2f ms\n", title(res.Method), ms(res.Median))
	}
	if s, ok := rep.Speedup(); ok {
		fmt.Fprintf(&b, "Speedup (naive/batched): %.2fx\n", s)
	}
	if rep.Agree != nil && !*rep.Agree {
		b.WriteString("WARNING: methods disagree on escape counts\n")
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
