// Package pipeline computes whole frames concurrently in a fixed set of slots.
//
// Each slot owns one grid for the life of the pipeline and one long-lived worker
// goroutine. A coordinator issues bounds to a slot and later awaits it; the grid is
// overwritten in place for every frame the slot computes. The pipeline does not order
// slots against each other, that is the caller's job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/metrics"
	"github.com/marben/mandelzoom/render"
)

var (
	ErrSlotBusy  = errors.New("slot is still computing")
	ErrSlotRange = errors.New("slot out of range")
	ErrClosed    = errors.New("pipeline is closed")
)

// ComputeFunc fills g with the frame for r. It must honor ctx so that Close returns promptly.
type ComputeFunc func(ctx context.Context, r mandel.Region, g *render.Grid) error

type Config struct {
	Slots   int
	Width   int
	Height  int
	MaxIter int

	// Compute defaults to render.Renderer{MaxIter}.Render.
	Compute ComputeFunc
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Frame is the result of one computation. Grid belongs to the slot and is only valid
// until the slot is issued again.
type Frame struct {
	Slot   int
	Seq    uint64 // pipeline-wide issue number, 0 if the slot never computed anything
	Bounds mandel.Region
	Grid   *render.Grid

	// Stale is set when the slot had nothing in flight and the grid still holds
	// the previous frame.
	Stale bool
}

type job struct {
	seq    uint64
	bounds mandel.Region
}

type slot struct {
	id   int
	grid *render.Grid
	jobs chan job
	done chan error

	inFlight bool
	pending  job
	last     job
}

type Pipeline struct {
	slots   []*slot
	compute ComputeFunc
	log     *zap.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	m      sync.Mutex
	seq    uint64
	closed bool
}

// New allocates every slot grid and starts one worker per slot. Workers stop when ctx
// is cancelled or Close is called.
func New(ctx context.Context, cfg Config) (*Pipeline, error) {
	if cfg.Slots <= 0 {
		return nil, fmt.Errorf("slot count must be positive, got %d", cfg.Slots)
	}
	compute := cfg.Compute
	if compute == nil {
		if cfg.MaxIter <= 0 {
			return nil, fmt.Errorf("max iterations must be positive, got %d", cfg.MaxIter)
		}
		compute = render.Renderer{MaxIter: cfg.MaxIter}.Render
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(nil)
	}

	slots := make([]*slot, cfg.Slots)
	for i := range slots {
		g, err := render.NewGrid(cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots[i] = &slot{
			id:   i,
			grid: g,
			jobs: make(chan job, 1),
			done: make(chan error, 1),
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		slots:   slots,
		compute: compute,
		log:     log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, s := range slots {
		p.wg.Add(1)
		go p.work(s)
	}
	log.Debug("pipeline started", zap.Int("slots", len(slots)), zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	return p, nil
}

func (p *Pipeline) Slots() int { return len(p.slots) }

// Issue starts computing bounds r into slot i. It fails with ErrSlotBusy if the slot's
// previous frame has not been awaited yet.
func (p *Pipeline) Issue(i int, r mandel.Region) error {
	p.m.Lock()
	defer p.m.Unlock()

	if p.closed {
		return fmt.Errorf("issue slot %d: %w", i, ErrClosed)
	}
	s, err := p.slot(i)
	if err != nil {
		return err
	}
	if s.inFlight {
		return fmt.Errorf("issue slot %d: %w", i, ErrSlotBusy)
	}

	p.seq++
	s.pending = job{seq: p.seq, bounds: r}
	s.inFlight = true
	// never blocks: the buffer holds one job and inFlight guards it
	s.jobs <- s.pending
	p.metrics.SlotsInFlight.Inc()
	return nil
}

// Await blocks until slot i has finished its frame. A slot with nothing in flight
// returns its last frame immediately, marked Stale. Only one goroutine may await a
// given slot at a time.
func (p *Pipeline) Await(ctx context.Context, i int) (Frame, error) {
	p.m.Lock()
	s, err := p.slot(i)
	if err != nil {
		p.m.Unlock()
		return Frame{}, err
	}
	if !s.inFlight {
		f := p.frame(s, s.last)
		p.m.Unlock()
		f.Stale = true
		return f, nil
	}
	p.m.Unlock()

	select {
	case cerr := <-s.done:
		p.m.Lock()
		s.inFlight = false
		s.last = s.pending
		f := p.frame(s, s.last)
		if !p.closed {
			// Close already took closed slots off the gauge
			p.metrics.SlotsInFlight.Dec()
		}
		p.m.Unlock()

		if cerr != nil {
			return f, fmt.Errorf("slot %d frame %d: %w", i, f.Seq, cerr)
		}
		return f, nil
	case <-ctx.Done():
		return Frame{}, context.Cause(ctx)
	}
}

// Drain awaits every slot that still has a frame in flight.
func (p *Pipeline) Drain(ctx context.Context) error {
	for i := range p.slots {
		if _, err := p.Await(ctx, i); err != nil {
			if ctx.Err() != nil {
				return err
			}
			p.log.Debug("drained slot with error", zap.Int("slot", i), zap.Error(err))
		}
	}
	return nil
}

// Close cancels running computations and waits for every worker to exit. Frames
// still in flight can be awaited afterwards; they report the cancellation.
func (p *Pipeline) Close() error {
	p.cancel()

	p.m.Lock()
	if p.closed {
		p.m.Unlock()
		return nil
	}
	p.closed = true
	for _, s := range p.slots {
		if s.inFlight {
			p.metrics.SlotsInFlight.Dec()
		}
		close(s.jobs)
	}
	p.m.Unlock()

	p.wg.Wait()
	p.log.Debug("pipeline closed")
	return nil
}

func (p *Pipeline) work(s *slot) {
	defer p.wg.Done()

	for j := range s.jobs {
		start := time.Now()
		err := p.compute(p.ctx, j.bounds, s.grid)
		elapsed := time.Since(start)

		p.metrics.FrameComputeSeconds.Observe(elapsed.Seconds())
		p.log.Debug("frame computed",
			zap.Int("slot", s.id),
			zap.Uint64("seq", j.seq),
			zap.Duration("took", elapsed),
			zap.Error(err),
		)
		s.done <- err
	}
}

func (p *Pipeline) slot(i int) (*slot, error) {
	if i < 0 || i >= len(p.slots) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSlotRange, i, len(p.slots))
	}
	return p.slots[i], nil
}

func (p *Pipeline) frame(s *slot, j job) Frame {
	return Frame{
		Slot:   s.id,
		Seq:    j.seq,
		Bounds: j.bounds,
		Grid:   s.grid,
	}
}
