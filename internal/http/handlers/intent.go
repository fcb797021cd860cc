package handlers

import (
	"encoding/json"
	"net/http"

	"easyvideo/internal/domain"
	"easyvideo/internal/intent"
)

type intentResponse struct {
	Intent   domain.Intent `json:"intent"`
	Prompt   string        `json:"prompt"`
	Fallback bool          `json:"fallback,omitempty"`
}

// AnalyzeIntent classifies a prompt. A body that cannot be parsed is still
// answered, using keyword matching over the raw payload.
func (a *App) AnalyzeIntent(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var req promptRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			a.Logger.Warn().Err(err).Msg("analyze-intent: unparsable body; using keyword fallback")
			a.json(w, http.StatusOK, intentResponse{
				Intent:   intent.KeywordIntent(string(raw)),
				Prompt:   string(raw),
				Fallback: true,
			})
			return
		}
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	res := a.Classifier.Classify(r.Context(), req.Prompt)
	a.Logger.Debug().
		Str("intent", res.Intent.String()).
		Bool("fallback", res.Fallback).
		Msg("analyze-intent: classified")
	a.json(w, http.StatusOK, intentResponse{Intent: res.Intent, Prompt: req.Prompt, Fallback: res.Fallback})
}
