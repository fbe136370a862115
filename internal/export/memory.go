package export

import (
	"context"
	"image"
	"sync"
)

// MemorySink keeps copies of written frames. Limit caps how many are
// retained; zero keeps all.
type MemorySink struct {
	Limit int

	mu     sync.Mutex
	frames []*image.RGBA
	count  int
	closed bool
}

func (s *MemorySink) WriteFrame(ctx context.Context, frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.count++
	if s.Limit > 0 && len(s.frames) >= s.Limit {
		return nil
	}
	cp := image.NewRGBA(frame.Bounds())
	copy(cp.Pix, frame.Pix)
	s.frames = append(s.frames, cp)
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns the retained frames.
func (s *MemorySink) Frames() []*image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Count returns the number of frames written, retained or not.
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Closed reports whether Close was called.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
