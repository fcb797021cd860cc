package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if a.Config != nil {
		resp["offline"] = a.Config.OfflineMode()
	}
	if a.Sessions != nil {
		resp["sessions"] = a.Sessions.Count()
	}
	a.json(w, http.StatusOK, resp)
}
