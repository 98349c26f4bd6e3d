package render

import "fmt"

// Grid holds one frame of iteration counts in row-major order.
type Grid struct {
	W, H int
	Iter []uint32
}

func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	return &Grid{W: w, H: h, Iter: make([]uint32, w*h)}, nil
}

func (g *Grid) At(x, y int) int {
	return int(g.Iter[y*g.W+x])
}

func (g *Grid) Set(x, y, iter int) {
	g.Iter[y*g.W+x] = uint32(iter)
}
