package chat

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
)

var cannedResponses = []string{
	"I'd be happy to help you create that! Let me generate it for you.",
	"Great idea! I'll work on creating that content now.",
	"That sounds amazing! I'll generate that for you right away.",
	"Excellent request! Let me create that content for you.",
	"I love that concept! I'll get started on generating it now.",
}

// Replier answers free-form chat with a canned acknowledgement after a short
// simulated delay. It is not wired to generation.
type Replier struct {
	minDelay time.Duration
	jitter   time.Duration
	logger   *infra.Logger
	pick     func(n int) int
	jitterFn func(d time.Duration) time.Duration
}

func NewReplier(minDelay, jitter time.Duration, logger *infra.Logger) *Replier {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Replier{
		minDelay: max(minDelay, 0),
		jitter:   max(jitter, 0),
		logger:   logger,
		pick:     rand.IntN,
		jitterFn: func(d time.Duration) time.Duration { return rand.N(d) },
	}
}

// Reply waits for the simulated delay and returns one canned response.
func (r *Replier) Reply(ctx context.Context, prompt string) (string, error) {
	delay := r.minDelay
	if r.jitter > 0 {
		delay += r.jitterFn(r.jitter)
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.logger.Debug().Int("prompt_length", len(prompt)).Msg("chat: canned reply")
	return cannedResponses[r.pick(len(cannedResponses))], nil
}

// ChatPrompt returns prompt, or the content of the last message when prompt
// is blank. An empty result means the request carried neither.
func ChatPrompt(prompt string, messages []domain.Message) string {
	if p := strings.TrimSpace(prompt); p != "" {
		return p
	}
	if len(messages) == 0 {
		return ""
	}
	return strings.TrimSpace(messages[len(messages)-1].Content)
}
