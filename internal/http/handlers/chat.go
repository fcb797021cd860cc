package handlers

import (
	"net/http"
	"time"

	"easyvideo/internal/chat"
)

type chatResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat returns a canned acknowledgement. It does not trigger generation.
func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.empty() {
		a.error(w, http.StatusBadRequest, "Prompt or messages are required")
		return
	}

	reply, err := a.Replier.Reply(r.Context(), chat.ChatPrompt(req.Prompt, req.history()))
	if err != nil {
		a.Logger.Error().Err(err).Msg("chat: reply failed")
		a.error(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}
	a.json(w, http.StatusOK, chatResponse{Message: reply, Timestamp: time.Now().UTC()})
}
