package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/inamate/sceneview/internal/typeid"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: 100, B: 200, A: 255})
		}
	}
	return img
}

func newLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary(t.TempDir())
	require.NoError(t, err)
	return lib
}

func TestLibraryAddGetName(t *testing.T) {
	lib := newLibrary(t)
	img := testImage(4, 3)

	id, err := lib.Add(img)
	require.NoError(t, err)
	require.NoError(t, typeid.Validate(id, typeid.PrefixAsset))
	assert.FileExists(t, filepath.Join(lib.Dir(), Filename(id)))

	got, err := lib.Get(id)
	require.NoError(t, err)
	assert.Same(t, img, got)
	assert.Equal(t, id, lib.Name(img))
	assert.Empty(t, lib.Name(testImage(1, 1)))
	assert.Empty(t, lib.Name(nil))
}

func TestLibraryLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	first, err := NewLibrary(dir)
	require.NoError(t, err)
	id, err := first.Add(testImage(5, 2))
	require.NoError(t, err)

	second, err := NewLibrary(dir)
	require.NoError(t, err)
	img, err := second.Get(id)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 2), img.Bounds())
	assert.Equal(t, id, second.Name(img))
}

func TestLibraryNotFound(t *testing.T) {
	lib := newLibrary(t)

	_, err := lib.Get(typeid.NewAssetID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lib.Get("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lib.Get(typeid.NewItemID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryDelete(t *testing.T) {
	lib := newLibrary(t)
	img := testImage(2, 2)
	id, err := lib.Add(img)
	require.NoError(t, err)

	require.NoError(t, lib.Delete(id))
	assert.Empty(t, lib.Name(img))
	_, err = os.Stat(filepath.Join(lib.Dir(), Filename(id)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, lib.Delete(id), ErrNotFound)
}

func uploadRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="pic"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		encode      func(*bytes.Buffer, image.Image) error
	}{
		{"png", "image/png", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }},
		{"bmp", "image/bmp", func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lib := newLibrary(t)
			h := NewHandler(lib)

			var data bytes.Buffer
			require.NoError(t, tc.encode(&data, testImage(6, 4)))

			rec := httptest.NewRecorder()
			h.Upload(rec, uploadRequest(t, tc.contentType, data.Bytes()))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp UploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, 6, resp.Width)
			assert.Equal(t, 4, resp.Height)
			assert.Equal(t, "png", resp.Type)
			assert.Equal(t, "pic", resp.Name)
			assert.Equal(t, URL(resp.ID), resp.URL)

			img, err := lib.Get(resp.ID)
			require.NoError(t, err)
			assert.Equal(t, resp.ID, lib.Name(img))
		})
	}
}

func TestUploadRejects(t *testing.T) {
	h := NewHandler(newLibrary(t))

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", []byte("not a png")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeSetsCacheHeaders(t *testing.T) {
	lib := newLibrary(t)
	id, err := lib.Add(testImage(2, 2))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewHandler(lib).Serve().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, URL(id), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	_, err = png.Decode(rec.Body)
	assert.NoError(t, err)
}
