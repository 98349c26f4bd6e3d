// Package zoom drives the animation: it keeps every pipeline slot busy with the next
// viewport step and presents finished frames strictly in zoom order.
package zoom

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/metrics"
	"github.com/marben/mandelzoom/pipeline"
	"github.com/marben/mandelzoom/viewport"
)

// ErrPresent wraps display failures; they end the animation.
var ErrPresent = errors.New("present failed")

// Pipeline is the part of *pipeline.Pipeline the loop drives.
type Pipeline interface {
	Slots() int
	Issue(slot int, r mandel.Region) error
	Await(ctx context.Context, slot int) (pipeline.Frame, error)
	Drain(ctx context.Context) error
}

type Config struct {
	Frames int
	Width  int
	Height int

	Pipeline    Pipeline
	Progression *viewport.Progression
	Palette     mandel.Palette
	Display     mandel.Display

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Loop struct {
	frames      int
	pipeline    Pipeline
	progression *viewport.Progression
	palette     mandel.Palette
	display     mandel.Display
	log         *zap.Logger
	metrics     *metrics.Metrics

	img *image.RGBA
}

func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Pipeline == nil:
		return nil, errors.New("zoom: pipeline is required")
	case cfg.Progression == nil:
		return nil, errors.New("zoom: progression is required")
	case cfg.Palette == nil:
		return nil, errors.New("zoom: palette is required")
	case cfg.Display == nil:
		return nil, errors.New("zoom: display is required")
	case cfg.Frames < 0:
		return nil, fmt.Errorf("zoom: frame count must not be negative, got %d", cfg.Frames)
	case cfg.Width <= 0 || cfg.Height <= 0:
		return nil, fmt.Errorf("zoom: frame size must be positive, got %dx%d", cfg.Width, cfg.Height)
	case cfg.Pipeline.Slots() <= 0:
		return nil, errors.New("zoom: pipeline has no slots")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(nil)
	}

	return &Loop{
		frames:      cfg.Frames,
		pipeline:    cfg.Pipeline,
		progression: cfg.Progression,
		palette:     cfg.Palette,
		display:     cfg.Display,
		log:         log,
		metrics:     m,
		img:         image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}, nil
}

// Run primes every slot, then presents the configured number of frames. Frame k comes
// from slot k mod N, which is reissued with the next viewport step right after it is
// presented. Whatever is still in flight is drained before Run returns.
//
// A cancelled ctx is a clean stop and returns nil. A display failure returns an error
// wrapping ErrPresent.
func (l *Loop) Run(ctx context.Context) (err error) {
	n := l.pipeline.Slots()
	l.log.Info("animation started",
		zap.Int("frames", l.frames),
		zap.Int("slots", n),
		zap.Float64("zoom", l.progression.Zoom()),
		zap.Stringer("view", l.progression.Current()),
	)
	for s := range n {
		l.issue(s)
	}
	defer func() {
		if derr := l.pipeline.Drain(context.WithoutCancel(ctx)); derr != nil && err == nil {
			err = fmt.Errorf("drain: %w", derr)
		}
	}()

	for k := 0; k < l.frames; k++ {
		if ctx.Err() != nil {
			l.log.Info("animation stopped", zap.Int("frames", k))
			return nil
		}

		s := k % n
		f, err := l.pipeline.Await(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("animation stopped", zap.Int("frames", k))
				return nil
			}
			return fmt.Errorf("await frame %d: %w", k, err)
		}

		if err := l.present(k, f); err != nil {
			return err
		}
		l.issue(s)
	}

	l.log.Info("animation complete", zap.Int("frames", l.frames), zap.Int("steps", l.progression.Step()))
	return nil
}

// issue advances the viewport and hands the new bounds to slot s. A refused issue is
// logged and skipped; the slot keeps its previous frame.
func (l *Loop) issue(s int) {
	r := l.progression.Advance()
	step := l.progression.Step()
	l.metrics.ZoomStep.Set(float64(step))
	l.metrics.ViewWidth.Set(r.Width())

	if err := l.pipeline.Issue(s, r); err != nil {
		l.metrics.IssueFailures.Inc()
		l.log.Error("issue frame", zap.Int("slot", s), zap.Int("step", step), zap.Error(err))
	}
}

func (l *Loop) present(k int, f pipeline.Frame) error {
	start := time.Now()

	g := f.Grid
	b := l.img.Bounds()
	if g.W != b.Dx() || g.H != b.Dy() {
		return fmt.Errorf("frame %d: grid is %dx%d, display buffer is %dx%d", k, g.W, g.H, b.Dx(), b.Dy())
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			l.img.SetRGBA(x, y, l.palette.Color(g.At(x, y)))
		}
	}

	if err := l.display.Present(l.img); err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrPresent, k, err)
	}

	l.metrics.FramesPresented.Inc()
	l.metrics.PresentSeconds.Observe(time.Since(start).Seconds())
	l.log.Debug("frame presented",
		zap.Int("frame", k),
		zap.Int("slot", f.Slot),
		zap.Uint64("seq", f.Seq),
		zap.Bool("stale", f.Stale),
		zap.Stringer("bounds", f.Bounds),
	)
	return nil
}
