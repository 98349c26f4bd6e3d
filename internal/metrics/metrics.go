// Package metrics holds the prometheus collectors of the zoom pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	FrameComputeSeconds prometheus.Histogram
	SlotsInFlight       prometheus.Gauge
	IssueFailures       prometheus.Counter

	// Render loop metrics
	FramesPresented prometheus.Counter
	PresentSeconds  prometheus.Histogram
	ZoomStep        prometheus.Gauge
	ViewWidth       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing nil uses a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		FrameComputeSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mandelzoom_frame_compute_seconds",
				Help:    "Time a worker spends computing one full frame",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		SlotsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "mandelzoom_slots_in_flight",
				Help: "Number of pipeline slots currently computing a frame",
			},
		),
		IssueFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "mandelzoom_issue_failures_total",
				Help: "Total number of frames that could not be issued to a slot",
			},
		),
		FramesPresented: f.NewCounter(
			prometheus.CounterOpts{
				Name: "mandelzoom_frames_presented_total",
				Help: "Total number of frames handed to the display",
			},
		),
		PresentSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mandelzoom_present_seconds",
				Help:    "Time spent coloring and presenting one frame",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		ZoomStep: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "mandelzoom_zoom_step",
				Help: "Number of viewport advances so far",
			},
		),
		ViewWidth: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "mandelzoom_view_width",
				Help: "Width in plane units of the most recently issued viewport",
			},
		),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
