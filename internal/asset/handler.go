package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/animlib/internal/auth"
	"github.com/inamate/animlib/internal/glyph"
	"github.com/inamate/animlib/internal/svgpath"
	"github.com/inamate/animlib/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

const (
	TypeSVG  = "image/svg+xml"
	TypePNG  = "image/png"
	TypeFont = "font/ttf"
)

var errUnsupportedType = errors.New("only SVG, TrueType, PNG and JPEG files are supported")

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	Asset
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Handler stores uploaded scene assets. Files are written to dir as
// <id><ext>, which is also how scene scripts reference them.
type Handler struct {
	dir   string
	store Store
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string, store Store) *Handler {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, store: store}
}

// Upload handles POST /api/assets (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large (max 10MB)"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload"})
		return
	}

	resp, stored, err := prepare(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp.ID = typeid.NewAssetID()
	resp.OwnerID = auth.UserIDFromContext(r.Context())
	resp.Name = header.Filename
	resp.File = resp.ID + extension(resp.ContentType)
	resp.Size = int64(len(stored))
	resp.URL = "/api/assets/" + resp.ID

	path := filepath.Join(h.dir, resp.File)
	if err := os.WriteFile(path, stored, 0o644); err != nil {
		slog.Error("write asset file", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save file"})
		return
	}
	if err := h.store.Create(r.Context(), &resp.Asset); err != nil {
		slog.Error("store asset", "error", err, "asset", resp.ID)
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	slog.Info("asset uploaded", "asset", resp.ID, "type", resp.ContentType, "size", resp.Size)
	writeJSON(w, http.StatusCreated, resp)
}

// prepare validates an upload and returns the bytes to store. Images are
// normalized to PNG; SVG and fonts are kept as sent once they parse.
func prepare(name, contentType string, data []byte) (*UploadResponse, []byte, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".svg" || strings.HasPrefix(contentType, TypeSVG):
		if _, err := svgpath.Parse(bytes.NewReader(data)); err != nil {
			return nil, nil, fmt.Errorf("invalid svg: %w", err)
		}
		return &UploadResponse{Asset: Asset{ContentType: TypeSVG}}, data, nil

	case ext == ".ttf" || ext == ".otf" || strings.HasPrefix(contentType, "font/"):
		if _, err := glyph.ParseFont(data); err != nil {
			return nil, nil, fmt.Errorf("invalid font: %w", err)
		}
		return &UploadResponse{Asset: Asset{ContentType: TypeFont}}, data, nil

	case strings.HasPrefix(contentType, "image/png") || strings.HasPrefix(contentType, "image/jpeg"):
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid image: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, nil, fmt.Errorf("encode png: %w", err)
		}
		b := img.Bounds()
		return &UploadResponse{Asset: Asset{ContentType: TypePNG}, Width: b.Dx(), Height: b.Dy()}, buf.Bytes(), nil
	}
	return nil, nil, errUnsupportedType
}

// Get handles GET /api/assets/{assetId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetId"]
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	a, err := h.store.Get(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		slog.Error("get asset", "error", err, "asset", assetID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	// Asset IDs are unique, so files are immutable
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", a.ContentType)
	http.ServeFile(w, r, filepath.Join(h.dir, a.File))
}

func extension(contentType string) string {
	switch contentType {
	case TypeSVG:
		return ".svg"
	case TypeFont:
		return ".ttf"
	}
	return ".png"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
