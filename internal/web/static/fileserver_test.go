package static

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return fstest.MapFS{
		"site.css":        {Data: []byte("body{}"), ModTime: mod},
		"docs/index.html": {Data: []byte("<p>docs</p>"), ModTime: mod},
		"empty/.gitkeep":  {Data: []byte{}, ModTime: mod},
		"img/logo.svg":    {Data: []byte("<svg/>"), ModTime: mod},
	}
}

func serve(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFileServer_ServesFiles(t *testing.T) {
	h := FileServer(testFS(), DefaultConfig("/public"))

	w := serve(t, h, http.MethodGet, "/public/site.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.Equal(t, `W/"6-`, w.Header().Get("ETag")[:5])

	w = serve(t, h, http.MethodGet, "/public/docs/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>docs</p>", w.Body.String())
}

func TestFileServer_ConditionalRequests(t *testing.T) {
	h := FileServer(testFS(), DefaultConfig("/public"))
	first := serve(t, h, http.MethodGet, "/public/img/logo.svg", nil)
	require.Equal(t, http.StatusOK, first.Code)

	w := serve(t, h, http.MethodGet, "/public/img/logo.svg", http.Header{"If-None-Match": {first.Header().Get("ETag")}})
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = serve(t, h, http.MethodGet, "/public/img/logo.svg", http.Header{"If-Modified-Since": {time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)}})
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestFileServer_Errors(t *testing.T) {
	h := FileServer(testFS(), DefaultConfig("/public"))

	tests := []struct {
		method string
		target string
		code   int
	}{
		{http.MethodPost, "/public/site.css", http.StatusMethodNotAllowed},
		{http.MethodGet, "/public/missing.css", http.StatusNotFound},
		{http.MethodGet, "/public/empty/", http.StatusForbidden},
		{http.MethodGet, "/public/../../etc/passwd", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := serve(t, h, tt.method, tt.target, nil)
		assert.Equal(t, tt.code, w.Code, tt.target)
	}

	noIndex := DefaultConfig("/public")
	noIndex.Index = ""
	w := serve(t, FileServer(testFS(), noIndex), http.MethodGet, "/public/docs/", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
