package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FramePattern names numbered frame files.
const FramePattern = "frame_%04d.png"

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PNGSink writes every frame as a numbered PNG file in a directory.
type PNGSink struct {
	dir string

	mu     sync.Mutex
	next   int
	closed bool
}

// NewPNGSink creates dir if needed.
func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &PNGSink{dir: dir}, nil
}

func (s *PNGSink) WriteFrame(ctx context.Context, frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf(FramePattern, s.next))
	if err := SavePNG(path, frame); err != nil {
		return err
	}
	s.next++
	return nil
}

// Frames returns the number of frames written.
func (s *PNGSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

func (s *PNGSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
