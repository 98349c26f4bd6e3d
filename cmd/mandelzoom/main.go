// Command mandelzoom renders a continuous zoom into the Mandelbrot set, computing
// several frames ahead in parallel and showing them in order in the terminal, in a
// browser, or both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/display"
	"github.com/marben/mandelzoom/internal/config"
	"github.com/marben/mandelzoom/internal/logging"
	"github.com/marben/mandelzoom/internal/metrics"
	"github.com/marben/mandelzoom/palette"
	"github.com/marben/mandelzoom/pipeline"
	"github.com/marben/mandelzoom/viewport"
	"github.com/marben/mandelzoom/zoom"
)

func main() {
	err := run(os.Args[1:])
	code := exitCode(err)
	if err != nil && code != 0 {
		fmt.Fprintf(os.Stderr, "mandelzoom: %v\n", err)
	}
	os.Exit(code)
}

// exitCode is 0 for a finished or interrupted animation, 2 for settings the program
// cannot start with and 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, config.ErrInvalid):
		return 2
	default:
		return 1
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	width, height := cfg.ScreenWidth, cfg.ScreenHeight()
	log.Info("starting",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Stringer("view", cfg.Viewport()),
		zap.Float64("zoom", cfg.Zoom),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_iter", cfg.MaxIter),
		zap.Int("frames", cfg.Frames),
	)

	progression, err := viewport.New(cfg.Viewport(), cfg.Zoom)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	colors, err := palette.ByName(cfg.Palette, cfg.MaxIter)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	p, err := pipeline.New(ctx, pipeline.Config{
		Slots:   cfg.Workers,
		Width:   width,
		Height:  height,
		MaxIter: cfg.MaxIter,
		Logger:  log.Named("pipeline"),
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("pipeline.New: %w", err)
	}
	defer p.Close()

	sinks, err := openSinks(cfg, log, m, cancel)
	if err != nil {
		return err
	}
	defer sinks.Close()

	loop, err := zoom.New(zoom.Config{
		Frames:      cfg.Frames,
		Width:       width,
		Height:      height,
		Pipeline:    p,
		Progression: progression,
		Palette:     colors,
		Display:     sinks.display,
		Logger:      log.Named("zoom"),
		Metrics:     m,
	})
	if err != nil {
		return fmt.Errorf("zoom.New: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if sinks.web != nil {
		g.Go(func() error { return sinks.web.ListenAndServe(gctx) })
	}
	g.Go(func() error {
		// the web server only lives as long as the animation
		defer cancel()
		return loop.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if sinks.snapshot != nil {
		// the terminal has to give the screen back before we log
		sinks.Close()
		saved, err := sinks.snapshot.Save()
		if err != nil {
			return err
		}
		if saved {
			log.Info("snapshot saved", zap.String("path", sinks.snapshot.Path()))
		} else {
			log.Info("no frame presented, snapshot skipped", zap.String("path", sinks.snapshot.Path()))
		}
	}
	return nil
}

// sinks are the displays frames go to; display fans out to all of them.
type sinks struct {
	display  mandel.Display
	web      *display.Web
	term     *display.Terminal
	snapshot *display.Snapshot
}

func (s *sinks) Close() {
	if s.term != nil {
		s.term.Close()
	}
}

// openSinks builds the displays cfg asks for. "auto" means the terminal when stdout is
// one and the browser otherwise.
func openSinks(cfg *config.Config, log *zap.Logger, m *metrics.Metrics, quit func()) (*sinks, error) {
	kind := cfg.Display
	if kind == config.DisplayAuto {
		kind = config.DisplayWeb
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			kind = config.DisplayTerminal
		}
		log.Debug("display chosen", zap.String("display", kind))
	}

	s := &sinks{}
	var tee display.Tee
	if kind == config.DisplayWeb || kind == config.DisplayBoth {
		s.web = display.NewWeb(cfg.Listen, log.Named("web"), map[string]http.Handler{
			"/metrics": m.Handler(),
		})
		tee = append(tee, s.web)
	}
	if kind == config.DisplayTerminal || kind == config.DisplayBoth {
		term, err := display.NewTerminal(nil, log.Named("terminal"), quit)
		if err != nil {
			return nil, fmt.Errorf("terminal display: %w", err)
		}
		s.term = term
		tee = append(tee, term)
	}

	if cfg.Snapshot != "" {
		s.snapshot = display.NewSnapshot(cfg.Snapshot)
		tee = append(tee, s.snapshot)
	}

	switch len(tee) {
	case 0:
		s.display = &display.Null{}
	case 1:
		s.display = tee[0]
	default:
		s.display = tee
	}
	return s, nil
}
