// Package viewport produces the shrinking sequence of view bounds that drives a zoom.
package viewport

import (
	"errors"
	"fmt"

	mandel "github.com/marben/mandelzoom"
)

var ErrInvalidZoom = errors.New("zoom factor must be in (0, 1)")

// Progression is the zoom state machine. Every Advance narrows the current bounds
// toward their own center, so the sequence of returned regions is nested and shares
// a single midpoint.
//
// A Progression has exactly one owner. It is not safe for concurrent use: the render
// loop advances it and hands copies of the bounds to workers.
type Progression struct {
	current mandel.Region
	step    int
	zoom    float64
}

func New(start mandel.Region, zoom float64) (*Progression, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("start region: %w", err)
	}
	if !(zoom > 0 && zoom < 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidZoom, zoom)
	}
	return &Progression{current: start, zoom: zoom}, nil
}

// Advance shrinks every side of the bounds by zoom/2 of the axis length and returns
// the new bounds.
func (p *Progression) Advance() mandel.Region {
	r := p.current
	hx := (r.Xmax - r.Xmin) * p.zoom / 2
	hy := (r.Ymax - r.Ymin) * p.zoom / 2

	p.current = mandel.Region{
		Xmin: r.Xmin + hx,
		Xmax: r.Xmax - hx,
		Ymin: r.Ymin + hy,
		Ymax: r.Ymax - hy,
	}
	p.step++
	return p.current
}

func (p *Progression) Current() mandel.Region { return p.current }

// Step is the number of Advance calls so far.
func (p *Progression) Step() int { return p.step }

func (p *Progression) Zoom() float64 { return p.zoom }
