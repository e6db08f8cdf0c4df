package mandel

import (
	"fmt"
	"math"
)

// Grid holds escape counts for a Height × Width sampling of a Bounds window.
// Counts is row-major: the cell for (row, col) is Counts[row*Width+col].
// Row 0 samples Ymin and the last row Ymax; column 0 samples Xmin and the last
// column Xmax.
type Grid struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	MaxIter int   `json:"max_iter"`
	Counts  []int `json:"counts"`
}

func newGrid(width, height, maxIter int) *Grid {
	return &Grid{
		Width:   width,
		Height:  height,
		MaxIter: maxIter,
		Counts:  make([]int, width*height),
	}
}

// At returns the escape count at (row, col). It panics if either index is
// out of range.
func (g *Grid) At(row, col int) int {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		panic(fmt.Sprintf("mandel: index (%d, %d) out of range for %dx%d grid", row, col, g.Height, g.Width))
	}
	return g.Counts[row*g.Width+col]
}

// Row returns the counts of one row. The slice aliases the grid.
func (g *Grid) Row(row int) []int {
	return g.Counts[row*g.Width : (row+1)*g.Width]
}

// Rows returns the grid as Height slices of Width counts each. The slices
// alias the grid.
func (g *Grid) Rows() [][]int {
	out := make([][]int, g.Height)
	for r := range out {
		out[r] = g.Row(r)
	}
	return out
}

// Equal reports whether both grids have the same shape, cap and counts.
func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height || g.MaxIter != o.MaxIter {
		return false
	}
	for i, v := range g.Counts {
		if o.Counts[i] != v {
			return false
		}
	}
	return true
}

// InSet returns the number of cells that never escaped.
func (g *Grid) InSet() int {
	var n int
	for _, v := range g.Counts {
		if v == g.MaxIter {
			n++
		}
	}
	return n
}

// Naive evaluates the grid one point at a time with EscapeCount.
func Naive(b Bounds, width, height, maxIter int) (*Grid, error) {
	if err := validate(b, width, height, maxIter); err != nil {
		return nil, err
	}
	xs := Linspace(b.Xmin, b.Xmax, width)
	ys := Linspace(b.Ymin, b.Ymax, height)

	g := newGrid(width, height, maxIter)
	for row, y := range ys {
		counts := g.Row(row)
		for col, x := range xs {
			counts[col] = escapeCount(complex(x, y), maxIter)
		}
	}
	return g, nil
}

// Batched evaluates the whole grid at once. Each of the maxIter passes builds
// a mask of the cells that have not escaped yet, gathers their indices, and
// advances only those cells. Escaped cells keep their state and count for the
// rest of the run, so every pass still scans the full grid.
func Batched(b Bounds, width, height, maxIter int) (*Grid, error) {
	if err := validate(b, width, height, maxIter); err != nil {
		return nil, err
	}
	c := plane(b, width, height)
	z := make([]complex128, len(c))
	mask := make([]bool, len(c))
	active := make([]int, 0, len(c))

	g := newGrid(width, height, maxIter)
	for pass := 0; pass < maxIter; pass++ {
		for i := range z {
			mask[i] = !Escaped(z[i])
		}

		active = active[:0]
		for i, live := range mask {
			if live {
				active = append(active, i)
			}
		}

		for _, i := range active {
			z[i] = Step(z[i], c[i])
			g.Counts[i]++
		}
	}
	return g, nil
}

// plane returns the row-major coordinate grid x_col + i·y_row.
func plane(b Bounds, width, height int) []complex128 {
	xs := Linspace(b.Xmin, b.Xmax, width)
	ys := Linspace(b.Ymin, b.Ymax, height)
	c := make([]complex128, 0, width*height)
	for _, y := range ys {
		for _, x := range xs {
			c = append(c, complex(x, y))
		}
	}
	return c
}

func validate(b Bounds, width, height, maxIter int) error {
	if width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidArgument, width)
	}
	if height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidArgument, height)
	}
	if width > math.MaxInt/height {
		return fmt.Errorf("%w: %dx%d grid is too large", ErrInvalidArgument, width, height)
	}
	if err := checkMaxIter(maxIter); err != nil {
		return err
	}
	return b.Validate()
}
