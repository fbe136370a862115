package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const maxUploadSize = 500 << 20 // 500MB

var errBadUpload = errors.New("bad upload")

// Handler encodes client rendered PNG frames into a video.
type Handler struct {
	ffmpegPath string
}

func NewHandler(ffmpegPath string) *Handler {
	return &Handler{ffmpegPath: ffmpegPath}
}

// ExportVideo accepts a multipart form with frame_NNNN files plus format,
// fps and name fields, and responds with the encoded file.
func (h *Handler) ExportVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := ParseFormat(r.FormValue("format"))
	if err != nil || !format.Video() {
		http.Error(w, "invalid format: must be mp4, mov, gif, or webm", http.StatusBadRequest)
		return
	}

	fps, err := strconv.Atoi(r.FormValue("fps"))
	if err != nil || fps <= 0 || fps > 120 {
		fps = 24
	}
	name := SanitizeName(r.FormValue("name"))

	exportID := uuid.NewString()
	log := slog.With("export_id", exportID)

	tempDir, err := os.MkdirTemp("", "animlib-export-*")
	if err != nil {
		log.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	frameCount, err := saveFrames(r, tempDir)
	if err != nil {
		if errors.Is(err, errBadUpload) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("save frames", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if frameCount == 0 {
		http.Error(w, "no frames uploaded", http.StatusBadRequest)
		return
	}

	log.Info("export started", "format", format, "frames", frameCount, "fps", fps)

	outputFile := filepath.Join(tempDir, "output."+string(format))
	if err := EncodeSequence(r.Context(), h.ffmpegPath, tempDir, fps, format, outputFile); err != nil {
		log.Error("ffmpeg failed", "error", err)
		http.Error(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	outFile, err := os.Open(outputFile)
	if err != nil {
		log.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		log.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	io.Copy(w, outFile)

	log.Info("export complete", "format", format, "size", stat.Size())
}

// SanitizeName keeps letters, digits, dashes and underscores.
func SanitizeName(name string) string {
	if name == "" {
		return "animation"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}

// saveFrames writes uploaded frames into dir, keeping the index from the
// form key ("frame_0003" becomes frame_0003.png) since multipart keys
// arrive unordered.
func saveFrames(r *http.Request, dir string) (int, error) {
	n := 0
	for key, files := range r.MultipartForm.File {
		if !strings.HasPrefix(key, "frame_") || len(files) == 0 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(key, "frame_"))
		if err != nil || idx < 0 {
			return 0, fmt.Errorf("invalid frame key %s: %w", key, errBadUpload)
		}

		f, err := files[0].Open()
		if err != nil {
			return 0, fmt.Errorf("failed to read frame %s: %w", key, errBadUpload)
		}
		out, err := os.Create(filepath.Join(dir, fmt.Sprintf(FramePattern, idx)))
		if err != nil {
			f.Close()
			return 0, fmt.Errorf("create frame file: %w", err)
		}
		_, err = io.Copy(out, f)
		f.Close()
		out.Close()
		if err != nil {
			return 0, fmt.Errorf("write frame file: %w", err)
		}
		n++
	}
	return n, nil
}

// EncodeSequence encodes the numbered PNG frames in dir into output.
func EncodeSequence(ctx context.Context, ffmpegPath, dir string, fps int, format Format, output string) error {
	enc, err := encoderArgs(format)
	if err != nil {
		return err
	}
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(fps),
		"-i", filepath.Join(dir, FramePattern),
	}
	args = append(args, enc...)
	args = append(args, output)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %s", err, stderr.String())
	}
	return nil
}
