package mandel

import (
	"fmt"
	"math"
	"sort"
)

// Bounds is the rectangular sampling window on the complex plane.
// X is the real axis, Y the imaginary axis.
type Bounds struct {
	Xmin float64 `json:"xmin" yaml:"xmin"`
	Xmax float64 `json:"xmax" yaml:"xmax"`
	Ymin float64 `json:"ymin" yaml:"ymin"`
	Ymax float64 `json:"ymax" yaml:"ymax"`
}

// Validate checks that all four values are finite and that the window has a
// positive extent on both axes.
func (b Bounds) Validate() error {
	for _, v := range [...]float64{b.Xmin, b.Xmax, b.Ymin, b.Ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite, got %+v", ErrInvalidArgument, b)
		}
	}
	if b.Xmin >= b.Xmax {
		return fmt.Errorf("%w: xmin %g must be less than xmax %g", ErrInvalidArgument, b.Xmin, b.Xmax)
	}
	if b.Ymin >= b.Ymax {
		return fmt.Errorf("%w: ymin %g must be less than ymax %g", ErrInvalidArgument, b.Ymin, b.Ymax)
	}
	return nil
}

// Linspace returns n evenly spaced samples over [lo, hi], both ends included.
// A single sample is lo. The last sample is exactly hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Classic is the full view of the set used by the benchmark by default.
var Classic = Bounds{Xmin: -2, Xmax: 1, Ymin: -1.5, Ymax: 1.5}

// Landmark regions of the set, useful for rendering and for benchmarking
// windows where most points take many iterations to classify.
var (
	// Seahorse Valley: dense filaments and repeating curls.
	SeahorseValley = Bounds{Xmin: -0.8, Xmax: -0.7, Ymin: 0.05, Ymax: 0.15}

	// Elephant Valley: large bulb with trunk-like tendrils.
	ElephantValley = Bounds{Xmin: -1.85, Xmax: -1.75, Ymin: -0.10, Ymax: -0.02}

	// Spiral Minibrot: small copy of the set with tight spiral arms.
	SpiralMinibrot = Bounds{Xmin: -0.7435, Xmax: -0.7420, Ymin: 0.1310, Ymax: 0.1325}

	// Triple Spiral: threefold symmetric spirals.
	TripleSpiral = Bounds{Xmin: -0.7480, Xmax: -0.7450, Ymin: 0.0950, Ymax: 0.0980}

	ValleyOfTheDragon = Bounds{Xmin: -0.7400, Xmax: -0.7350, Ymin: 0.1800, Ymax: 0.1850}

	// Minibrot in a mini-spiral: self-similar copy inside a spiral arm.
	MinibrotInMiniSpiral = Bounds{Xmin: -1.7390, Xmax: -1.7375, Ymin: -0.0235, Ymax: -0.0220}
)

var regions = map[string]Bounds{
	"classic":                 Classic,
	"seahorse-valley":         SeahorseValley,
	"elephant-valley":         ElephantValley,
	"spiral-minibrot":         SpiralMinibrot,
	"triple-spiral":           TripleSpiral,
	"valley-of-the-dragon":    ValleyOfTheDragon,
	"minibrot-in-mini-spiral": MinibrotInMiniSpiral,
}

// Region looks up a named landmark region.
func Region(name string) (Bounds, bool) {
	b, ok := regions[name]
	return b, ok
}

// RegionNames returns the names accepted by Region, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
