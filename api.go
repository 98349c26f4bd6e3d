package mandel

import (
	"image"
	"image/color"
)

// Display presents finished frames. Present is only ever called from one goroutine;
// an error means the frame could not be shown and the animation must stop.
type Display interface {
	Present(frame *image.RGBA) error
}

// Palette maps an escape-time iteration count to a pixel color.
type Palette interface {
	Color(iter int) color.RGBA
}
