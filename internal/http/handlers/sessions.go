package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"easyvideo/internal/chat"
	"easyvideo/internal/domain"
)

type submitResponse struct {
	Turn    chat.Turn    `json:"turn"`
	Session chat.Session `json:"session"`
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusCreated, a.Sessions.Create())
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.sessionError(w, err)
		return
	}
	a.json(w, http.StatusOK, sess)
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		a.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitMessage runs one prompt through the session's generation flow and
// returns the turn together with the updated session.
func (a *App) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req promptRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	turn, sess, err := a.Orchestrator.Submit(r.Context(), id, req.Prompt)
	if err != nil {
		a.sessionError(w, err)
		return
	}
	a.json(w, http.StatusOK, submitResponse{Turn: turn, Session: sess})
}

func (a *App) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPromptRequired):
		a.error(w, http.StatusBadRequest, "Prompt is required")
	case errors.Is(err, domain.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, domain.ErrSessionBusy):
		a.error(w, http.StatusConflict, "A message is already being processed")
	default:
		a.Logger.Error().Err(err).Msg("sessions: unexpected error")
		a.error(w, http.StatusInternalServerError, "Failed to process chat message")
	}
}
