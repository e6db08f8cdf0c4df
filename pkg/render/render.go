// Package render turns escape-count grids into colour-mapped images.
//
// Grid row 0 samples Ymin, so it is drawn as the bottom image row: the
// imaginary axis points up as on the complex plane. Cells that reached the
// iteration cap are black under every palette.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/mandelbench/mandelbench/pkg/mandel"
)

// Palette maps an escape count below maxIter to a colour.
type Palette func(count, maxIter int) color.RGBA

var palettes = map[string]Palette{
	"hsv":  HSV,
	"gray": Gray,
	"fire": Fire,
}

// ParsePalette looks up a palette by name.
func ParsePalette(name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown palette %q (known: %v)", name, PaletteNames())
	}
	return p, nil
}

// PaletteNames returns the names accepted by ParsePalette, sorted.
func PaletteNames() []string {
	out := make([]string, 0, len(palettes))
	for n := range palettes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var inSet = color.RGBA{A: 255}

// Image draws g with p.
func Image(g *mandel.Grid, p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for row := 0; row < g.Height; row++ {
		py := g.Height - 1 - row
		for col, n := range g.Row(row) {
			c := inSet
			if n < g.MaxIter {
				c = p(n, g.MaxIter)
			}
			img.SetRGBA(col, py, c)
		}
	}
	return img
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

// WritePNG writes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create file: %w", err)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render: close file: %w", err)
	}
	return nil
}

// HSV cycles the hue with the escape count.
func HSV(count, maxIter int) color.RGBA {
	return hsv(math.Mod(float64(count)*0.02, 1), 1, 1)
}

// Gray ramps from black (escaped at once) to white (escaped just before the
// cap) on a square-root curve so the slow-escaping boundary stays visible.
func Gray(count, maxIter int) color.RGBA {
	v := uint8(255 * math.Sqrt(float64(count)/float64(maxIter)))
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// Fire ramps black → red → yellow → white.
func Fire(count, maxIter int) color.RGBA {
	t := math.Sqrt(float64(count) / float64(maxIter))
	return color.RGBA{
		R: channel(3 * t),
		G: channel(3*t - 1),
		B: channel(3*t - 2),
		A: 255,
	}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
