package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	mandel "github.com/marben/mandelzoom"
)

// Snapshot keeps a copy of the last presented frame so it can be saved as a PNG file
// once the animation is over.
type Snapshot struct {
	path string

	m      sync.Mutex
	latest *image.RGBA
}

var _ mandel.Display = (*Snapshot)(nil)

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) Present(frame *image.RGBA) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.latest == nil || s.latest.Rect != frame.Rect {
		s.latest = image.NewRGBA(frame.Rect)
	}
	copy(s.latest.Pix, frame.Pix)
	return nil
}

// Save writes the last frame. It reports false without touching the file when
// nothing was presented.
func (s *Snapshot) Save() (saved bool, err error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.latest == nil {
		return false, nil
	}

	f, err := os.Create(s.path)
	if err != nil {
		return false, fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, s.latest); err != nil {
		f.Close()
		return false, fmt.Errorf("snapshot: png encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("snapshot: %w", err)
	}
	return true, nil
}

func (s *Snapshot) Path() string { return s.path }
