package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"easyvideo/internal/domain"
	"easyvideo/internal/providers/image"
	"easyvideo/internal/providers/video"
	"easyvideo/pkg/zip"
)

type manifestEntry struct {
	File        string        `json:"file,omitempty"`
	ID          string        `json:"id"`
	Type        domain.Intent `json:"type"`
	Description string        `json:"description"`
	URL         string        `json:"url,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// SessionArchive downloads the session canvas as a zip. Inline images and
// locally persisted videos are included as files; anything else is listed in
// manifest.json by URL only.
func (a *App) SessionArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := a.Sessions.Get(id)
	if err != nil {
		a.sessionError(w, err)
		return
	}

	assets := make([]zip.Asset, 0, len(sess.Canvas)+1)
	manifest := make([]manifestEntry, 0, len(sess.Canvas))
	for i, item := range sess.Canvas {
		entry := manifestEntry{ID: item.ID, Type: item.Type, Description: item.Description, Timestamp: item.Timestamp}
		if !strings.HasPrefix(item.URL, "data:") {
			entry.URL = item.URL
		}
		if name, data, ok := a.canvasFile(i, item); ok {
			entry.File = name
			assets = append(assets, zip.Asset{Filename: name, Modified: item.Timestamp, Data: data})
		}
		manifest = append(manifest, entry)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Failed to build archive")
		return
	}
	assets = append(assets, zip.Asset{Filename: "manifest.json", Modified: sess.UpdatedAt, Data: manifestJSON})

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "session-"+sess.ID+".zip"))
	if err := zip.Write(w, assets); err != nil {
		a.Logger.Error().Err(err).Str("session_id", sess.ID).Msg("archive: write failed")
	}
}

func (a *App) canvasFile(i int, item domain.CanvasItem) (string, []byte, bool) {
	prefix := fmt.Sprintf("%02d-%s", i+1, item.Type)
	if mimeType, data, err := image.ParseDataURL(item.URL); err == nil {
		return prefix + extensionFor(mimeType), data, true
	}
	key, ok := a.localKey(item.URL)
	if !ok {
		return "", nil, false
	}
	data, err := a.Files.Read(key)
	if err != nil {
		a.Logger.Debug().Err(err).Str("key", key).Msg("archive: skipping missing file")
		return "", nil, false
	}
	return prefix + path.Ext(key), data, true
}

// localKey maps a public URL served from Files back to its storage key.
func (a *App) localKey(raw string) (string, bool) {
	if a.Files == nil {
		return "", false
	}
	base := ""
	if a.Config != nil {
		base = a.Config.PublicBaseURL
	}
	return video.LocalKey(raw, base)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
