package handlers

import (
	"net/http"
	"path"
	"strings"
)

// StaticVideos serves persisted videos from the public directory. Directory
// listings are not exposed.
func (a *App) StaticVideos() http.Handler {
	fs := http.FileServer(a.Files.FileSystem())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") || !strings.HasPrefix(clean, "/videos/") || !a.Files.Exists(clean) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	})
}
