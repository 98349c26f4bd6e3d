package viewport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandelzoom"
)

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name    string
		start   mandel.Region
		zoom    float64
		wantErr error
	}{
		{name: "valid", start: mandel.FullSet, zoom: 0.02},
		{name: "zero zoom", start: mandel.FullSet, zoom: 0, wantErr: ErrInvalidZoom},
		{name: "full zoom", start: mandel.FullSet, zoom: 1, wantErr: ErrInvalidZoom},
		{name: "negative zoom", start: mandel.FullSet, zoom: -0.1, wantErr: ErrInvalidZoom},
		{name: "inverted start", start: mandel.Region{Xmin: 1, Xmax: 0, Ymin: 0, Ymax: 1}, zoom: 0.1, wantErr: mandel.ErrInvalidRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.start, tt.zoom)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Current())
			assert.Equal(t, 0, p.Step())
		})
	}
}

func TestAdvanceFirstStep(t *testing.T) {
	p, err := New(mandel.RegionAround(-0.75, 0, 3.5, 2), 0.02)
	require.NoError(t, err)

	got := p.Advance()
	want := mandel.Region{Xmin: -2.465, Xmax: 0.965, Ymin: -0.98, Ymax: 0.98}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("first advance mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, got, p.Current())
	assert.Equal(t, 1, p.Step())
}

func TestAdvanceNestedAndCentered(t *testing.T) {
	starts := []mandel.Region{
		mandel.FullSet,
		mandel.SeahorseValley,
		mandel.ElephantValley,
		{Xmin: 10, Xmax: 1000, Ymin: -1e-3, Ymax: 5},
	}
	zooms := []float64{0.001, 0.02, 0.05, 0.5, 0.99}

	for _, start := range starts {
		for _, zoom := range zooms {
			p, err := New(start, zoom)
			require.NoError(t, err)

			prev := p.Current()
			for range 50 {
				// stop before the bounds approach float64 resolution
				cx, cy := prev.Center()
				if prev.Width() < 1e-6*(1+abs(cx)) || prev.Height() < 1e-6*(1+abs(cy)) {
					break
				}
				next := p.Advance()

				require.Greater(t, next.Xmin, prev.Xmin)
				require.Less(t, next.Xmax, prev.Xmax)
				require.Greater(t, next.Ymin, prev.Ymin)
				require.Less(t, next.Ymax, prev.Ymax)

				pcx, pcy := prev.Center()
				ncx, ncy := next.Center()
				require.InDelta(t, pcx, ncx, 1e-9*(1+abs(pcx)))
				require.InDelta(t, pcy, ncy, 1e-9*(1+abs(pcy)))

				prev = next
			}
		}
	}
}

func TestAdvanceNeverInverts(t *testing.T) {
	p, err := New(mandel.FullSet, 0.05)
	require.NoError(t, err)

	for i := range 5000 {
		r := p.Advance()
		require.NoError(t, r.Validate(), "step %d", i+1)
	}
	assert.Equal(t, 5000, p.Step())
}

func TestAdvanceSequenceIsDeterministic(t *testing.T) {
	a, err := New(mandel.TripleSpiral, 0.03)
	require.NoError(t, err)
	b, err := New(mandel.TripleSpiral, 0.03)
	require.NoError(t, err)

	var seqA, seqB []mandel.Region
	for range 20 {
		seqA = append(seqA, a.Advance())
		seqB = append(seqB, b.Advance())
	}
	assert.Empty(t, cmp.Diff(seqA, seqB))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
