package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersOnPrivateRegistries(t *testing.T) {
	// two instances must not collide
	a := New(nil)
	b := New(prometheus.NewRegistry())

	a.FramesPresented.Inc()
	a.FramesPresented.Inc()
	b.FramesPresented.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.FramesPresented))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.FramesPresented))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ZoomStep.Set(42)
	m.IssueFailures.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mandelzoom_zoom_step 42")
	assert.Contains(t, string(body), "mandelzoom_issue_failures_total 1")
}
