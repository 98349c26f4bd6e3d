package mandel

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidRegion = errors.New("invalid region")

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// RegionAround returns the region of diameter dx × dy centered on (cx, cy).
func RegionAround(cx, cy, dx, dy float64) Region {
	return Region{
		Xmin: cx - dx/2,
		Xmax: cx + dx/2,
		Ymin: cy - dy/2,
		Ymax: cy + dy/2,
	}
}

// Validate reports whether both axis intervals are non-empty.
func (r Region) Validate() error {
	// negated comparisons so that NaN bounds are rejected too
	if !(r.Xmin < r.Xmax) {
		return fmt.Errorf("%w: xmin %g is not below xmax %g", ErrInvalidRegion, r.Xmin, r.Xmax)
	}
	if !(r.Ymin < r.Ymax) {
		return fmt.Errorf("%w: ymin %g is not below ymax %g", ErrInvalidRegion, r.Ymin, r.Ymax)
	}
	return nil
}

func (r Region) Width() float64  { return r.Xmax - r.Xmin }
func (r Region) Height() float64 { return r.Ymax - r.Ymin }

// Center returns the midpoint of the region.
func (r Region) Center() (x, y float64) {
	return (r.Xmin + r.Xmax) / 2, (r.Ymin + r.Ymax) / 2
}

// PixelToPlane maps pixel (px, py) of a w × h grid linearly onto the region.
// Pixel (0, 0) lands exactly on (Xmin, Ymin) and pixel (w-1, h-1) on (Xmax, Ymax).
func (r Region) PixelToPlane(px, py, w, h int) (x, y float64) {
	x, y = r.Xmin, r.Ymin
	if w > 1 {
		x += float64(px) * (r.Xmax - r.Xmin) / float64(w-1)
	}
	if h > 1 {
		y += float64(py) * (r.Ymax - r.Ymin) / float64(h-1)
	}
	return x, y
}

func (r Region) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", r.Xmin, r.Xmax, r.Ymin, r.Ymax)
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Full view of the set, the default starting point of a zoom
	FullSet = RegionAround(-0.75, 0, 3.5, 2)

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var landmarks = map[string]Region{
	"full":          FullSet,
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
}

// Landmark looks up a named region, e.g. "seahorse".
func Landmark(name string) (Region, bool) {
	r, ok := landmarks[name]
	return r, ok
}

// LandmarkNames returns the known landmark names in sorted order.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
