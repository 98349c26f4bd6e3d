// Package config collects mandelzoom settings from defaults, an optional YAML file,
// MANDEL_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/logging"
	"github.com/marben/mandelzoom/palette"
)

// ErrInvalid marks configuration the program cannot start with.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "MANDEL"

// maxScreenSide bounds both frame dimensions; every slot holds a full frame.
const maxScreenSide = 8192

// Display kinds.
const (
	DisplayAuto     = "auto"
	DisplayTerminal = "terminal"
	DisplayWeb      = "web"
	DisplayBoth     = "both"
	DisplayNull     = "null"
)

// Config holds all application configuration. Environment names are MANDEL_ plus the
// field name in upper snake case (MANDEL_MAX_ITER). There are no default tags so that
// unset variables leave file and default values alone.
type Config struct {
	CenterX float64 `yaml:"center_x" split_words:"true"`
	CenterY float64 `yaml:"center_y" split_words:"true"`

	// Width and Height are the extent of the starting view in the complex plane.
	Width  float64 `yaml:"width" split_words:"true"`
	Height float64 `yaml:"height" split_words:"true"`

	// Region names a landmark that replaces the centre and extent above.
	Region string `yaml:"region" split_words:"true"`

	ScreenWidth int     `yaml:"screen_width" split_words:"true"`
	Zoom        float64 `yaml:"zoom" split_words:"true"`
	Workers     int     `yaml:"workers" split_words:"true"`
	MaxIter     int     `yaml:"max_iter" split_words:"true"`
	Frames      int     `yaml:"frames" split_words:"true"`

	Display string `yaml:"display" split_words:"true"`
	Palette string `yaml:"palette" split_words:"true"`
	Listen  string `yaml:"listen" split_words:"true"`

	// Snapshot, when set, is where the last frame is saved as PNG on exit.
	Snapshot string `yaml:"snapshot" split_words:"true"`

	LogLevel string `yaml:"log_level" split_words:"true"`
	LogDev   bool   `yaml:"log_dev" split_words:"true"`
}

// Default returns default configuration: the whole set at 800 pixels wide, zooming in
// by 5% per frame.
func Default() *Config {
	return &Config{
		CenterX:     -0.75,
		CenterY:     0,
		Width:       3.5,
		Height:      2,
		ScreenWidth: 800,
		Zoom:        0.05,
		Workers:     4,
		MaxIter:     512,
		Frames:      2000,
		Display:     DisplayAuto,
		Palette:     "classic",
		Listen:      "localhost:8080",
		LogLevel:    "info",
	}
}

// Load builds the configuration for the given command-line arguments (without the
// program name). flag.ErrHelp is returned as is when -h was requested.
func Load(args []string) (*Config, error) {
	// first pass only finds the config file; flags are applied again last
	var path string
	probe := newFlagSet(Default(), &path)
	if err := probe.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}

	fs := newFlagSet(cfg, &path)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q", ErrInvalid, fs.Args())
	}

	if err := cfg.applyRegion(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFlagSet(c *Config, path *string) *flag.FlagSet {
	fs := flag.NewFlagSet("mandelzoom", flag.ContinueOnError)
	fs.StringVar(path, "config", *path, "YAML configuration file")

	fs.Float64Var(&c.CenterX, "cx", c.CenterX, "real part of the zoom centre")
	fs.Float64Var(&c.CenterY, "cy", c.CenterY, "imaginary part of the zoom centre")
	fs.Float64Var(&c.Width, "dx", c.Width, "starting view width in the complex plane")
	fs.Float64Var(&c.Height, "dy", c.Height, "starting view height in the complex plane")
	fs.StringVar(&c.Region, "region", c.Region, "start at a landmark: "+strings.Join(mandel.LandmarkNames(), ", "))

	fs.IntVar(&c.ScreenWidth, "width", c.ScreenWidth, "frame width in pixels; the height follows the view's aspect ratio")
	fs.Float64Var(&c.Zoom, "zoom", c.Zoom, "fraction of the view removed per frame")
	fs.IntVar(&c.Workers, "workers", c.Workers, "frames computed concurrently")
	fs.IntVar(&c.MaxIter, "iter", c.MaxIter, "maximum iterations per point")
	fs.IntVar(&c.Frames, "frames", c.Frames, "number of frames to present")

	fs.StringVar(&c.Display, "display", c.Display, "auto, terminal, web, both or null")
	fs.StringVar(&c.Palette, "palette", c.Palette, "color table: "+strings.Join(palette.Names(), ", "))
	fs.StringVar(&c.Listen, "listen", c.Listen, "web display address")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "save the last frame to this PNG file")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&c.LogDev, "log-dev", c.LogDev, "human readable logs")
	return fs
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) applyRegion() error {
	if c.Region == "" {
		return nil
	}
	r, ok := mandel.Landmark(c.Region)
	if !ok {
		return fmt.Errorf("%w: unknown region %q, have %s", ErrInvalid, c.Region, strings.Join(mandel.LandmarkNames(), ", "))
	}
	c.CenterX, c.CenterY = r.Center()
	c.Width, c.Height = r.Width(), r.Height()
	return nil
}

// Validate reports the first setting the program cannot run with.
func (c *Config) Validate() error {
	switch {
	case !(c.Width > 0) || !(c.Height > 0):
		return fmt.Errorf("%w: view size must be positive, got %vx%v", ErrInvalid, c.Width, c.Height)
	case c.ScreenWidth <= 0 || c.ScreenWidth > maxScreenSide:
		return fmt.Errorf("%w: screen width must be in [1, %d], got %d", ErrInvalid, maxScreenSide, c.ScreenWidth)
	case !(c.screenHeight() < maxScreenSide+1):
		return fmt.Errorf("%w: screen height %.0f exceeds %d, widen the view or lower -width", ErrInvalid, c.screenHeight(), maxScreenSide)
	case c.ScreenHeight() <= 0:
		return fmt.Errorf("%w: screen height rounds to %d", ErrInvalid, c.ScreenHeight())
	case !(c.Zoom > 0 && c.Zoom < 1):
		return fmt.Errorf("%w: zoom must be in (0, 1), got %v", ErrInvalid, c.Zoom)
	case c.Workers < 1:
		return fmt.Errorf("%w: need at least one worker, got %d", ErrInvalid, c.Workers)
	case c.MaxIter < 1:
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalid, c.MaxIter)
	case c.Frames < 0:
		return fmt.Errorf("%w: frame count must not be negative, got %d", ErrInvalid, c.Frames)
	}

	if err := c.Viewport().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch c.Display {
	case DisplayAuto, DisplayTerminal, DisplayWeb, DisplayBoth, DisplayNull:
	default:
		return fmt.Errorf("%w: unknown display %q", ErrInvalid, c.Display)
	}
	if _, err := palette.ByName(c.Palette, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q: %w", ErrInvalid, c.LogLevel, err)
	}
	return nil
}

// Viewport is the starting view.
func (c *Config) Viewport() mandel.Region {
	return mandel.RegionAround(c.CenterX, c.CenterY, c.Width, c.Height)
}

// ScreenHeight keeps the frame at the view's aspect ratio.
func (c *Config) ScreenHeight() int {
	return int(c.screenHeight())
}

func (c *Config) screenHeight() float64 {
	return float64(c.ScreenWidth) / c.Width * c.Height
}

func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.LogDev
	return cfg
}
