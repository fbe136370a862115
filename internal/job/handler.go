package job

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/inamate/animlib/internal/auth"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/export"
)

const maxScriptSize = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/jobs?format=mp4. The body is a JSON or YAML
// scene script, chosen by Content-Type.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	format := export.FormatMP4
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be mp4, mov, webm, gif or png"})
			return
		}
		format = parsed
	}

	script, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScriptSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "scene script too large"})
		return
	}
	if len(script) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scene script is required"})
		return
	}

	j, err := h.service.Create(r.Context(), userID, script, document.FormatFromContentType(r.Header.Get("Content-Type")), format)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, j)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	jobID := mux.Vars(r)["jobId"]

	j, err := h.service.Get(r.Context(), jobID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, j)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	jobs, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list jobs failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// Cancel handles DELETE /api/jobs/{jobId}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	jobID := mux.Vars(r)["jobId"]

	if err := h.service.Cancel(r.Context(), jobID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Output streams the rendered file. PNG jobs are sent as a zip of frames.
func (h *Handler) Output(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	jobID := mux.Vars(r)["jobId"]

	path, j, err := h.service.Output(r.Context(), jobID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if j.Format == export.FormatPNG {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, j.ID))
		if err := zipDir(w, path); err != nil {
			slog.Error("zip frames", "job", j.ID, "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", j.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func zipDir(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		// PNG data is already compressed.
		out, err := zw.CreateHeader(&zip.FileHeader{Name: d.Name(), Method: zip.Store})
		if err != nil {
			return err
		}
		_, err = io.Copy(out, f)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrFinished):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "job already finished"})
	case errors.Is(err, ErrNotReady):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "output not ready"})
	case errors.Is(err, ErrQueueFull):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "render queue is full"})
	case errors.Is(err, ErrFormat):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrInvalidScene):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
