// Package palette builds the color tables that turn iteration counts into pixels.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	mandel "github.com/marben/mandelzoom"
)

// Table is an immutable lookup from iteration count to color. Counts are taken modulo
// the table length, so a point that never escaped (count == maxIter) gets entry 0.
type Table struct {
	colors []color.RGBA
}

var _ mandel.Palette = (*Table)(nil)

// Color implements mandel.Palette.
func (t *Table) Color(iter int) color.RGBA {
	n := len(t.colors)
	i := iter % n
	if i < 0 {
		i += n
	}
	return t.colors[i]
}

func (t *Table) Len() int { return len(t.colors) }

// New builds a table of maxIter entries with gen. Entry 0 is always opaque black.
func New(maxIter int, gen func(i, maxIter int) color.RGBA) (*Table, error) {
	if maxIter <= 0 {
		return nil, fmt.Errorf("palette size must be positive, got %d", maxIter)
	}
	colors := make([]color.RGBA, maxIter)
	colors[0] = color.RGBA{A: 255}
	for i := 1; i < maxIter; i++ {
		colors[i] = gen(i, maxIter)
	}
	return &Table{colors: colors}, nil
}

// Classic wraps the channels through uint8 on purpose; the banding it produces is the look.
func Classic(i, _ int) color.RGBA {
	return color.RGBA{
		R: uint8(i + 32%i),
		G: uint8(i + 64%i),
		B: uint8(i + 96),
		A: 255,
	}
}

func Gray(i, maxIter int) color.RGBA {
	v := uint8(255 * i / maxIter)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// HSV cycles the hue with the iteration count at full saturation and value.
func HSV(i, _ int) color.RGBA {
	return hsv(math.Mod(float64(i)*0.02, 1.0), 1, 1)
}

var generators = map[string]func(i, maxIter int) color.RGBA{
	"classic": Classic,
	"gray":    Gray,
	"hsv":     HSV,
}

// ByName builds one of the named tables: "classic", "gray" or "hsv".
func ByName(name string, maxIter int) (*Table, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q, want one of %v", name, Names())
	}
	return New(maxIter, gen)
}

func Names() []string {
	names := make([]string, 0, len(generators))
	for n := range generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Simple HSV → RGB
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
