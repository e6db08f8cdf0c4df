package mandel

import (
	"errors"
	"math"
	"testing"
)

var evaluators = []struct {
	name string
	fn   func(Bounds, int, int, int) (*Grid, error)
}{
	{"naive", Naive},
	{"batched", Batched},
}

func TestNaiveAndBatched_BitIdentical(t *testing.T) {
	tests := []struct {
		name          string
		b             Bounds
		width, height int
		maxIter       int
	}{
		{"classic 10x10", Classic, 10, 10, 50},
		{"single cell", Classic, 1, 1, 20},
		{"single row", Classic, 17, 1, 30},
		{"single column", Classic, 1, 13, 30},
		{"wide", Classic, 40, 9, 80},
		{"seahorse valley", SeahorseValley, 32, 24, 200},
		{"spiral minibrot", SpiralMinibrot, 16, 16, 300},
		{"cap of one", Classic, 8, 8, 1},
		{"far outside", Bounds{Xmin: 10, Xmax: 20, Ymin: 10, Ymax: 20}, 5, 5, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			naive, err := Naive(tc.b, tc.width, tc.height, tc.maxIter)
			if err != nil {
				t.Fatalf("Naive: %v", err)
			}
			batched, err := Batched(tc.b, tc.width, tc.height, tc.maxIter)
			if err != nil {
				t.Fatalf("Batched: %v", err)
			}
			if !naive.Equal(batched) {
				for i := range naive.Counts {
					if naive.Counts[i] != batched.Counts[i] {
						t.Fatalf("cell (%d, %d): naive %d, batched %d",
							i/tc.width, i%tc.width, naive.Counts[i], batched.Counts[i])
					}
				}
				t.Fatal("grids differ in shape")
			}
		})
	}
}

// xs = -2, -0.5, 1 and ys = 0, 1.5; counts worked out by hand.
func TestGrid_Orientation(t *testing.T) {
	b := Bounds{Xmin: -2, Xmax: 1, Ymin: 0, Ymax: 1.5}
	want := [][]int{
		{20, 20, 3},
		{1, 2, 2},
	}
	for _, ev := range evaluators {
		t.Run(ev.name, func(t *testing.T) {
			g, err := ev.fn(b, 3, 2, 20)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			for r, row := range want {
				for c, v := range row {
					if got := g.At(r, c); got != v {
						t.Errorf("At(%d, %d) = %d, want %d", r, c, got, v)
					}
				}
			}
		})
	}
}

func TestGrid_Shape(t *testing.T) {
	for _, ev := range evaluators {
		for _, size := range [][2]int{{1, 1}, {3, 7}, {7, 3}, {64, 48}} {
			w, h := size[0], size[1]
			g, err := ev.fn(Classic, w, h, 10)
			if err != nil {
				t.Fatalf("%s %dx%d: %v", ev.name, w, h, err)
			}
			if g.Width != w || g.Height != h || len(g.Counts) != w*h {
				t.Errorf("%s: got %dx%d with %d counts, want %dx%d", ev.name, g.Width, g.Height, len(g.Counts), w, h)
			}
			rows := g.Rows()
			if len(rows) != h {
				t.Fatalf("%s: %d rows, want %d", ev.name, len(rows), h)
			}
			for r, row := range rows {
				if len(row) != w {
					t.Errorf("%s: row %d has %d columns, want %d", ev.name, r, len(row), w)
				}
			}
		}
	}
}

// Row r of a grid must hold the same counts as a one-row grid sampled at ys[r].
func TestGrid_RowsFollowImaginaryAxis(t *testing.T) {
	const w, h, maxIter = 9, 5, 40
	g, err := Naive(Classic, w, h, maxIter)
	if err != nil {
		t.Fatal(err)
	}
	ys := Linspace(Classic.Ymin, Classic.Ymax, h)
	for r, y := range ys {
		for c, x := range Linspace(Classic.Xmin, Classic.Xmax, w) {
			want, _ := EscapeCount(complex(x, y), maxIter)
			if got := g.At(r, c); got != want {
				t.Errorf("At(%d, %d) = %d, want %d", r, c, got, want)
			}
		}
	}
}

func TestGrid_CountsWithinRange(t *testing.T) {
	g, err := Batched(Classic, 30, 30, 25)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range g.Counts {
		if v < 0 || v > 25 {
			t.Fatalf("Counts[%d] = %d out of [0, 25]", i, v)
		}
	}
	if n := g.InSet(); n == 0 || n == len(g.Counts) {
		t.Errorf("InSet() = %d, expected some but not all cells", n)
	}
}

func TestGrid_InvalidArguments(t *testing.T) {
	tests := []struct {
		name          string
		b             Bounds
		width, height int
		maxIter       int
	}{
		{"zero width", Classic, 0, 10, 10},
		{"negative height", Classic, 10, -1, 10},
		{"zero max_iter", Classic, 10, 10, 0},
		{"flipped x", Bounds{Xmin: 1, Xmax: -2, Ymin: -1, Ymax: 1}, 10, 10, 10},
		{"flat y", Bounds{Xmin: -2, Xmax: 1, Ymin: 0, Ymax: 0}, 10, 10, 10},
		{"too large", Classic, math.MaxInt / 2, 3, 10},
	}
	for _, ev := range evaluators {
		for _, tc := range tests {
			t.Run(ev.name+"/"+tc.name, func(t *testing.T) {
				g, err := ev.fn(tc.b, tc.width, tc.height, tc.maxIter)
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("err = %v, want ErrInvalidArgument", err)
				}
				if g != nil {
					t.Errorf("grid = %+v, want nil", g)
				}
			})
		}
	}
}

func TestGrid_AtOutOfRangePanics(t *testing.T) {
	g, _ := Naive(Classic, 2, 2, 5)
	defer func() {
		if recover() == nil {
			t.Error("At(2, 0) did not panic")
		}
	}()
	g.At(2, 0)
}

func TestMethod_ParseRoundTrip(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMethod("vectorised"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseMethod(vectorised) err = %v", err)
	}
}

func TestEvaluate_Dispatch(t *testing.T) {
	naive, err := Evaluate(MethodNaive, Classic, 12, 12, 30)
	if err != nil {
		t.Fatal(err)
	}
	batched, err := Evaluate(MethodBatched, Classic, 12, 12, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !naive.Equal(batched) {
		t.Error("Evaluate results differ between methods")
	}
	if _, err := Evaluate(Method(9), Classic, 12, 12, 30); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Evaluate(Method(9)) err = %v", err)
	}
}
