// Package static serves public assets next to the dispatcher.
package static

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/prodigyview/helium/internal/web/response"
)

// Config holds configuration for the file server
type Config struct {
	// Prefix is the URL prefix stripped before lookup, e.g. "/public"
	Prefix string
	// MaxAge is sent in Cache-Control
	MaxAge time.Duration
	// Index is served for directories; empty forbids directory requests
	Index string
}

// DefaultConfig returns the default file server configuration
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix: prefix,
		MaxAge: 24 * time.Hour,
		Index:  "index.html",
	}
}

// FileServer serves the files of fsys. Only GET and HEAD are allowed.
func FileServer(fsys fs.FS, config Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			_ = response.CreateResponse(http.StatusMethodNotAllowed).Write(w)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, config.Prefix)
		name = strings.TrimPrefix(path.Clean("/"+name), "/")
		if name == "" {
			name = "."
		}
		if !fs.ValidPath(name) {
			_ = response.CreateResponse(http.StatusBadRequest).Write(w)
			return
		}

		info, err := fs.Stat(fsys, name)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, fs.ErrNotExist) {
				code = http.StatusNotFound
			}
			_ = response.CreateResponse(code).Write(w)
			return
		}
		if info.IsDir() {
			if config.Index == "" {
				_ = response.CreateResponse(http.StatusForbidden).Write(w)
				return
			}
			name = path.Join(name, config.Index)
			if info, err = fs.Stat(fsys, name); err != nil || info.IsDir() {
				_ = response.CreateResponse(http.StatusForbidden).Write(w)
				return
			}
		}

		etag := ETag(info)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(config.MaxAge.Seconds())))
		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			_ = response.CreateResponse(http.StatusInternalServerError).Write(w)
			return
		}
		// ServeContent handles If-Modified-Since and Range requests
		http.ServeContent(w, r, name, info.ModTime(), io.ReadSeeker(bytes.NewReader(data)))
	})
}

// ETag returns a weak validator built from the size and modification time
func ETag(info fs.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().Unix())
}
