package genai

import (
	"context"
	"fmt"

	"easyvideo/internal/infra"
)

// FromConfig selects the backend for cfg. Without a Gemini key images and
// videos come from Offline; text uses OpenAI when configured, otherwise
// Gemini or Offline as well.
func FromConfig(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (Backend, error) {
	if logger == nil {
		logger = infra.NopLogger()
	}

	var media Backend
	if cfg.OfflineMode() {
		logger.Warn().Msg("genai: no API key configured; running in offline mode")
		media = NewOffline()
	} else {
		client, err := NewClient(ctx, Options{
			APIKey:     cfg.GeminiAPIKey,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			VideoModel: cfg.GeminiVideoModel,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		media = client
	}

	if cfg.TextProvider != infra.TextProviderOpenAI {
		return media, nil
	}
	text, err := NewOpenAIText(OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: openai text: %w", err)
	}
	logger.Info().Str("model", cfg.OpenAIModel).Msg("genai: text generation via openai")
	return NewComposite(text, media, media), nil
}
