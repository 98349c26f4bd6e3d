package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassicTable(t *testing.T) {
	tab, err := ByName("classic", 512)
	require.NoError(t, err)
	require.Equal(t, 512, tab.Len())

	tests := []struct {
		iter int
		want color.RGBA
	}{
		{iter: 0, want: color.RGBA{A: 255}},
		{iter: 1, want: color.RGBA{R: 1, G: 1, B: 97, A: 255}},
		{iter: 5, want: color.RGBA{R: 7, G: 9, B: 101, A: 255}},
		{iter: 40, want: color.RGBA{R: 72, G: 64, B: 136, A: 255}},
		// wraps through uint8
		{iter: 200, want: color.RGBA{R: 232, G: 8, B: 40, A: 255}},
		{iter: 511, want: color.RGBA{R: 31, G: 63, B: 95, A: 255}},
		// points that never escaped share entry 0
		{iter: 512, want: color.RGBA{A: 255}},
		{iter: 513, want: color.RGBA{R: 1, G: 1, B: 97, A: 255}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tab.Color(tt.iter), "iter %d", tt.iter)
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		tab, err := ByName(name, 64)
		require.NoError(t, err, name)
		assert.Equal(t, color.RGBA{A: 255}, tab.Color(0), name)
		for i := range 64 {
			assert.Equal(t, uint8(255), tab.Color(i).A, "%s entry %d", name, i)
		}
	}

	_, err := ByName("sepia", 64)
	assert.Error(t, err)

	_, err = ByName("classic", 0)
	assert.Error(t, err)
}

func TestGrayIsMonotonic(t *testing.T) {
	tab, err := ByName("gray", 256)
	require.NoError(t, err)

	prev := tab.Color(1).R
	for i := 2; i < 256; i++ {
		c := tab.Color(i)
		assert.Equal(t, c.R, c.G)
		assert.Equal(t, c.R, c.B)
		assert.GreaterOrEqual(t, c.R, prev)
		prev = c.R
	}
}

func TestHSVPrimaries(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, hsv(0, 1, 1))
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, hsv(0.5, 1, 1))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, hsv(0.3, 1, 0))
}

func TestNegativeIterWraps(t *testing.T) {
	tab, err := ByName("classic", 8)
	require.NoError(t, err)
	assert.Equal(t, tab.Color(7), tab.Color(-1))
}
