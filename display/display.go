// Package display holds the sinks that present finished frames: a terminal screen,
// a websocket feed for browsers, and helpers to discard or duplicate frames.
package display

import (
	"fmt"
	"image"
	"sync/atomic"

	mandel "github.com/marben/mandelzoom"
)

// Null discards frames and counts them.
type Null struct {
	frames atomic.Int64
}

var _ mandel.Display = (*Null)(nil)

func (n *Null) Present(*image.RGBA) error {
	n.frames.Add(1)
	return nil
}

func (n *Null) Frames() int64 { return n.frames.Load() }

// Tee presents every frame to all of its displays in order, stopping at the first failure.
type Tee []mandel.Display

func (t Tee) Present(frame *image.RGBA) error {
	for i, d := range t {
		if err := d.Present(frame); err != nil {
			return fmt.Errorf("display %d: %w", i, err)
		}
	}
	return nil
}
