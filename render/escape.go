// Package render computes escape-time iteration counts for regions of the complex plane.
package render

// Escape returns the escape time of c = (x0, y0) under z ← z² + c, starting from z = 0.
//
// Iteration 0 tests the first iterate z₁ = c, so points with |c|² ≥ 4 return 0.
// The count is capped at maxIter. When an iterate is bit-identical to the previous one
// the orbit has reached a fixed point and maxIter is returned straight away.
//
// Escape has no shared state and can be called from any number of goroutines.
func Escape(x0, y0 float64, maxIter int) int {
	x, y := x0, y0
	for i := 0; i < maxIter; i++ {
		if x*x+y*y >= 4 {
			return i
		}

		xn := x*x - y*y + x0
		yn := 2*x*y + y0
		if xn == x && yn == y {
			return maxIter
		}
		x, y = xn, yn
	}
	return maxIter
}
