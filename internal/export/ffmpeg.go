package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
)

// FFmpegSink pipes raw RGBA frames into an ffmpeg process.
type FFmpegSink struct {
	width, height int
	output        string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	frames int
	closed bool
}

// FFmpegArgs returns the command line used to encode raw frames of the
// given size into output.
func FFmpegArgs(width, height, fps int, format Format, output string) ([]string, error) {
	enc, err := encoderArgs(format)
	if err != nil {
		return nil, err
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
	}
	args = append(args, enc...)
	return append(args, output), nil
}

// NewFFmpegSink starts ffmpeg. The process is killed if ctx is canceled
// before Close.
func NewFFmpegSink(ctx context.Context, ffmpegPath string, width, height, fps int, format Format, output string) (*FFmpegSink, error) {
	args, err := FFmpegArgs(width, height, fps, format, output)
	if err != nil {
		return nil, err
	}

	s := &FFmpegSink{width: width, height: height, output: output}
	s.cmd = exec.CommandContext(ctx, ffmpegPath, args...)
	s.cmd.Stderr = &s.stderr
	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	slog.Debug("ffmpeg started", "output", output, "format", format, "size", fmt.Sprintf("%dx%d", width, height), "fps", fps)
	return s, nil
}

func (s *FFmpegSink) WriteFrame(ctx context.Context, frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSize(frame, s.width, s.height); err != nil {
		return err
	}

	row := s.width * 4
	for y := 0; y < s.height; y++ {
		off := y * frame.Stride
		if _, err := s.stdin.Write(frame.Pix[off : off+row]); err != nil {
			return fmt.Errorf("write frame %d: %w: %s", s.frames, err, s.stderr.String())
		}
	}
	s.frames++
	return nil
}

// Frames returns the number of frames written.
func (s *FFmpegSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Close finishes the stream and waits for ffmpeg to exit.
func (s *FFmpegSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, s.stderr.String())
	}

	slog.Debug("ffmpeg finished", "output", s.output, "frames", s.frames)
	return nil
}
