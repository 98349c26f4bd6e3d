package render

import (
	"context"

	mandel "github.com/marben/mandelzoom"
)

// Renderer fills grids with escape times for a region.
type Renderer struct {
	MaxIter int
}

// Render overwrites every cell of g with the escape time of its pixel mapped onto r.
// The context is checked once per row; on cancellation the grid is left partially written.
func (rr Renderer) Render(ctx context.Context, r mandel.Region, g *Grid) error {
	for py := 0; py < g.H; py++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := g.Iter[py*g.W : (py+1)*g.W]
		for px := range row {
			x0, y0 := r.PixelToPlane(px, py, g.W, g.H)
			row[px] = uint32(Escape(x0, y0, rr.MaxIter))
		}
	}
	return nil
}
