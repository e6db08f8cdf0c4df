package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mandelbench/mandelbench/pkg/mandel"
)

func TestImage_OrientationAndInSet(t *testing.T) {
	// Row 0 (y = 0) is [20, 20, 3]; row 1 (y = 1.5) is [1, 2, 2].
	g, err := mandel.Naive(mandel.Bounds{Xmin: -2, Xmax: 1, Ymin: 0, Ymax: 1.5}, 3, 2, 20)
	if err != nil {
		t.Fatal(err)
	}
	img := Image(g, Gray)

	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	black := color.RGBA{A: 255}
	// Grid row 0 is the bottom image row.
	if got := img.RGBAAt(0, 1); got != black {
		t.Errorf("in-set cell = %v, want black", got)
	}
	if got := img.RGBAAt(2, 1); got != Gray(3, 20) {
		t.Errorf("cell (row 0, col 2) = %v, want %v", got, Gray(3, 20))
	}
	if got := img.RGBAAt(0, 0); got != Gray(1, 20) {
		t.Errorf("cell (row 1, col 0) = %v, want %v", got, Gray(1, 20))
	}
}

func TestPalettes_Opaque(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := ParsePalette(name)
		if err != nil {
			t.Fatal(err)
		}
		for n := 0; n < 100; n++ {
			if c := p(n, 100); c.A != 255 {
				t.Fatalf("%s(%d) alpha = %d", name, n, c.A)
			}
		}
	}
	if _, err := ParsePalette("viridis"); err == nil {
		t.Error("ParsePalette(viridis) succeeded")
	}
}

func TestFire_Ramp(t *testing.T) {
	if c := Fire(0, 100); c != (color.RGBA{A: 255}) {
		t.Errorf("Fire(0) = %v, want black", c)
	}
	if c := Fire(99, 100); c.R != 255 || c.G != 255 {
		t.Errorf("Fire(99) = %v, want near white", c)
	}
}

func TestWritePNG(t *testing.T) {
	g, err := mandel.Batched(mandel.Classic, 32, 24, 30)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "img", "mandel.png")
	if err := WritePNG(path, Image(g, HSV)); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("decoded bounds = %v", b)
	}
}
