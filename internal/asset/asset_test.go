package asset

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/animlib/internal/auth"
	"github.com/inamate/animlib/internal/typeid"
)

type memStore struct {
	mu     sync.Mutex
	assets map[string]Asset
}

func (m *memStore) Create(_ context.Context, a *Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = time.Now()
	m.assets[a.ID] = *a
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg"><rect width="10" height="10"/></svg>`

const waveSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">
  <path transform="translate(2 0)" d="M.5 12c2-4 4-4 6 0s4 4 6 0V20h-12z"/>
</svg>`

func upload(t *testing.T, h *Handler, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithUserID(req.Context(), "user_1"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	store := &memStore{assets: make(map[string]Asset)}
	h := NewHandler(dir, store)

	tests := []struct {
		name, file, contentType string
		data                    []byte
		wantType, wantExt       string
		width                   int
	}{
		{"svg", "logo.svg", "application/octet-stream", []byte(squareSVG), TypeSVG, ".svg", 0},
		{"svg path", "wave.svg", "image/svg+xml", []byte(waveSVG), TypeSVG, ".svg", 0},
		{"font", "go.ttf", "application/octet-stream", goregular.TTF, TypeFont, ".ttf", 0},
		{"jpeg", "photo.jpg", "image/jpeg", jpegBytes(t), TypePNG, ".png", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, h, tt.file, tt.contentType, tt.data)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var resp UploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NoError(t, typeid.Validate(resp.ID, typeid.PrefixAsset))
			assert.Equal(t, tt.wantType, resp.ContentType)
			assert.Equal(t, resp.ID+tt.wantExt, resp.File)
			assert.Equal(t, tt.file, resp.Name)
			assert.Equal(t, "user_1", resp.OwnerID)
			assert.Equal(t, tt.width, resp.Width)

			info, err := os.Stat(filepath.Join(dir, resp.File))
			require.NoError(t, err)
			assert.Equal(t, resp.Size, info.Size())
		})
	}
}

func TestUploadRejects(t *testing.T) {
	h := NewHandler(t.TempDir(), &memStore{assets: make(map[string]Asset)})

	for name, tt := range map[string]struct {
		file, contentType string
		data              []byte
	}{
		"text":     {"notes.txt", "text/plain", []byte("hello")},
		"bad svg":  {"broken.svg", "image/svg+xml", []byte("<svg><path d='M 0 0 A 1 1 0 0 0 1 1'/></svg>")},
		"bad font": {"broken.ttf", "font/ttf", []byte("not a font")},
		"bad png":  {"broken.png", "image/png", []byte("not a png")},
	} {
		t.Run(name, func(t *testing.T) {
			rec := upload(t, h, tt.file, tt.contentType, tt.data)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/assets", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet(t *testing.T) {
	store := &memStore{assets: make(map[string]Asset)}
	h := NewHandler(t.TempDir(), store)

	rec := upload(t, h, "logo.svg", TypeSVG, []byte(squareSVG))
	require.Equal(t, http.StatusCreated, rec.Code)
	var up UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))

	get := func(id string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/assets/"+id, nil), map[string]string{"assetId": id})
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		return rec
	}

	rec = get(up.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TypeSVG, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, squareSVG, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get("../../etc/passwd").Code)
	assert.Equal(t, http.StatusNotFound, get(typeid.NewAssetID()).Code)
}
