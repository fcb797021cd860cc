package handlers

import (
	"net/http"

	"easyvideo/internal/domain"
)

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
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

	enhanced := a.Enhancer.Enhance(r.Context(), req.Prompt, domain.IntentImage, nil)
	content, err := a.Images.Generate(r.Context(), enhanced)
	if err != nil {
		a.Logger.Error().Err(err).Msg("generate-image: failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate image")
		return
	}

	a.json(w, http.StatusOK, generationResponse{
		URL:            content.URL,
		Description:    content.Description,
		EnhancedPrompt: enhanced,
		OriginalPrompt: req.Prompt,
	})
}

// GenerateVideo accepts optional reference images; only items of type image
// are used.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	refs := req.references()
	enhanced := a.Enhancer.Enhance(r.Context(), req.Prompt, domain.IntentVideo, refs)
	content, err := a.Videos.Generate(r.Context(), enhanced, refs)
	if err != nil {
		a.Logger.Error().Err(err).Int("references", len(refs)).Msg("generate-video: failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate video")
		return
	}

	a.json(w, http.StatusOK, videoResponse{
		generationResponse: generationResponse{
			URL:            content.URL,
			Description:    content.Description,
			EnhancedPrompt: enhanced,
			OriginalPrompt: req.Prompt,
		},
		UsedImages: len(refs),
	})
}
