package mandel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionAround(t *testing.T) {
	r := RegionAround(-0.75, 0, 3.5, 2)

	assert.Equal(t, Region{Xmin: -2.5, Xmax: 1, Ymin: -1, Ymax: 1}, r)
	assert.Equal(t, FullSet, r)

	cx, cy := r.Center()
	assert.Equal(t, -0.75, cx)
	assert.Equal(t, 0.0, cy)
	assert.Equal(t, 3.5, r.Width())
	assert.Equal(t, 2.0, r.Height())
}

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{name: "full set", region: FullSet},
		{name: "landmark", region: SeahorseValley},
		{name: "inverted x", region: Region{Xmin: 1, Xmax: -1, Ymin: -1, Ymax: 1}, wantErr: true},
		{name: "inverted y", region: Region{Xmin: -1, Xmax: 1, Ymin: 1, Ymax: -1}, wantErr: true},
		{name: "empty x", region: Region{Xmin: 0, Xmax: 0, Ymin: -1, Ymax: 1}, wantErr: true},
		{name: "nan", region: Region{Xmin: math.NaN(), Xmax: 1, Ymin: -1, Ymax: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRegion)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPixelToPlaneCorners(t *testing.T) {
	r := Region{Xmin: -2.465, Xmax: 0.965, Ymin: -0.98, Ymax: 0.98}

	x, y := r.PixelToPlane(0, 0, 800, 457)
	assert.Equal(t, r.Xmin, x)
	assert.Equal(t, r.Ymin, y)

	x, y = r.PixelToPlane(799, 456, 800, 457)
	assert.InDelta(t, r.Xmax, x, 1e-12)
	assert.InDelta(t, r.Ymax, y, 1e-12)

	// single pixel grids collapse onto the minimum corner
	x, y = r.PixelToPlane(0, 0, 1, 1)
	assert.Equal(t, r.Xmin, x)
	assert.Equal(t, r.Ymin, y)
}

func TestLandmarks(t *testing.T) {
	for _, name := range LandmarkNames() {
		r, ok := Landmark(name)
		require.True(t, ok, name)
		assert.NoError(t, r.Validate(), name)
	}

	_, ok := Landmark("nowhere")
	assert.False(t, ok)
}
