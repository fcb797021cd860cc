package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/providers/genai"
)

const classifyTemplate = `You are an AI assistant that analyzes user prompts to determine if they want to generate an image or a video.

User prompt: "%s"

Analyze this prompt and respond with ONLY "image" or "video" based on what the user is asking for.

Guidelines:
- default to image if the prompt is ambiguous
- only return "video" if the prompt is clearly about video generation(no matter which language the prompt is)

Respond with exactly one word: either "image" or "video"`

// Result is the outcome of one classification. Fallback is set when the
// remote model could not be consulted and keywords decided the intent.
type Result struct {
	Intent   domain.Intent
	Fallback bool
	Raw      string
}

type Options struct {
	Text     genai.TextGenerator
	Logger   *infra.Logger
	CacheTTL time.Duration
}

// Classifier maps a prompt to an Intent. It never fails: remote errors are
// resolved with KeywordIntent.
type Classifier struct {
	text   genai.TextGenerator
	logger *infra.Logger
	cache  *cache.Cache
}

func NewClassifier(opts Options) *Classifier {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	c := &Classifier{text: opts.Text, logger: logger}
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

// Classify decides between image and video for prompt.
func (c *Classifier) Classify(ctx context.Context, prompt string) Result {
	key := fold(prompt)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(Result)
		}
	}

	if c.text == nil {
		return c.fallback(prompt, domain.ErrBackendDisabled)
	}

	raw, err := c.text.GenerateText(ctx, Template(prompt))
	if err != nil {
		return c.fallback(prompt, err)
	}

	res := Result{Intent: intentFromResponse(raw), Raw: raw}
	c.logger.Debug().
		Str("response", strings.TrimSpace(raw)).
		Str("intent", res.Intent.String()).
		Msg("intent: classified prompt")

	if c.cache != nil {
		c.cache.SetDefault(key, res)
	}
	return res
}

// Template returns the instruction sent to the text model.
func Template(prompt string) string {
	return fmt.Sprintf(classifyTemplate, prompt)
}

func (c *Classifier) fallback(prompt string, err error) Result {
	res := Result{Intent: KeywordIntent(prompt), Fallback: true}
	c.logger.Warn().
		Err(err).
		Str("intent", res.Intent.String()).
		Msg("intent: remote classification failed; using keyword fallback")
	return res
}

// intentFromResponse prefers video only when the model says so; anything
// unclear resolves to image.
func intentFromResponse(raw string) domain.Intent {
	clean := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(clean, "video"):
		return domain.IntentVideo
	case strings.Contains(clean, "image"):
		return domain.IntentImage
	default:
		return domain.IntentImage
	}
}
