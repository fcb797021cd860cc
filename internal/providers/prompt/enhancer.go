package prompt

import (
	"context"
	"strings"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/providers/genai"
)

// Enhancer rewrites a terse prompt into a detailed generation prompt.
// Enhancement is best effort: any failure yields the original prompt.
type Enhancer struct {
	text   genai.TextGenerator
	logger *infra.Logger
}

func NewEnhancer(text genai.TextGenerator, logger *infra.Logger) *Enhancer {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Enhancer{text: text, logger: logger}
}

// Enhance returns the model's rewrite of userPrompt, or userPrompt verbatim
// when the model is unavailable or answers with nothing.
func (e *Enhancer) Enhance(ctx context.Context, userPrompt string, intent domain.Intent, refs []domain.ReferenceImage) string {
	if e.text == nil {
		return userPrompt
	}
	out, err := e.text.GenerateText(ctx, Template(userPrompt, intent, refs))
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("intent", intent.String()).
			Int("references", len(refs)).
			Msg("prompt: enhancement failed; using original prompt")
		return userPrompt
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return userPrompt
	}
	return out
}
