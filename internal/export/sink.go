// Package export encodes rendered frames into videos and image sequences.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	ErrFormat    = errors.New("unsupported export format")
	ErrFrameSize = errors.New("frame size mismatch")
	ErrClosed    = errors.New("sink closed")
)

// FrameSink consumes rendered frames in order.
type FrameSink interface {
	WriteFrame(ctx context.Context, frame *image.RGBA) error
	Close() error
}

// Format is an output container.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatMOV  Format = "mov"
	FormatWebM Format = "webm"
	FormatGIF  Format = "gif"
	FormatPNG  Format = "png"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatMP4, FormatMOV, FormatWebM, FormatGIF, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrFormat)
}

// ContentType returns the MIME type of files in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatMP4:
		return "video/mp4"
	case FormatMOV:
		return "video/quicktime"
	case FormatWebM:
		return "video/webm"
	case FormatGIF:
		return "image/gif"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Video reports whether the format is encoded by ffmpeg.
func (f Format) Video() bool {
	return f != FormatPNG
}

// encoderArgs returns the ffmpeg output options for a video format.
func encoderArgs(f Format) ([]string, error) {
	switch f {
	case FormatMP4:
		return []string{
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
		}, nil
	case FormatMOV:
		return []string{"-c:v", "qtrle"}, nil
	case FormatWebM:
		return []string{
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuva420p",
		}, nil
	case FormatGIF:
		return []string{
			"-filter_complex",
			"split[a][b];[a]palettegen=stats_mode=diff[p];[b][p]paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
		}, nil
	}
	return nil, fmt.Errorf("%q is not a video format: %w", f, ErrFormat)
}

func checkSize(frame *image.RGBA, w, h int) error {
	b := frame.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("got %dx%d, want %dx%d: %w", b.Dx(), b.Dy(), w, h, ErrFrameSize)
	}
	return nil
}
