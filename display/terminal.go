package display

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	mandel "github.com/marben/mandelzoom"
)

// upper half block: foreground paints the top pixel, background the bottom one
const halfBlock = '▀'

// Terminal shows frames on a tcell screen, two pixel rows per character cell.
// Frames are scaled to the current screen size with nearest-neighbour sampling.
type Terminal struct {
	screen tcell.Screen
	log    *zap.Logger
	onQuit func()

	done chan struct{}
	once sync.Once
}

var _ mandel.Display = (*Terminal)(nil)

// NewTerminal takes over screen, or the process terminal when screen is nil.
// onQuit is called when the user presses q, Esc or Ctrl-C.
func NewTerminal(screen tcell.Screen, log *zap.Logger, onQuit func()) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("tcell.NewScreen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen.Init: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	if log == nil {
		log = zap.NewNop()
	}
	t := &Terminal{
		screen: screen,
		log:    log,
		onQuit: onQuit,
		done:   make(chan struct{}),
	}
	go t.pollEvents()
	return t, nil
}

// Present implements mandel.Display.
func (t *Terminal) Present(frame *image.RGBA) error {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	b := frame.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty frame %v", b)
	}

	for row := range rows {
		for col := range cols {
			top := sample(frame, col, 2*row, cols, 2*rows)
			bottom := sample(frame, col, 2*row+1, cols, 2*rows)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			t.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.once.Do(func() {
		t.screen.Fini()
		<-t.done
	})
	return nil
}

func (t *Terminal) pollEvents() {
	defer close(t.done)

	for {
		switch ev := t.screen.PollEvent().(type) {
		case nil:
			// screen finalized
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				t.log.Info("quit requested from terminal")
				if t.onQuit != nil {
					t.onQuit()
				}
			}
		}
	}
}

// sample picks the frame pixel covering cell pixel (x, y) of a w × h target.
func sample(frame *image.RGBA, x, y, w, h int) color.RGBA {
	b := frame.Bounds()
	px := b.Min.X + x*b.Dx()/w
	py := b.Min.Y + y*b.Dy()/h
	return frame.RGBAAt(px, py)
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
