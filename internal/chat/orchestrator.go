package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/intent"
)

const apologyMessage = "Sorry, I encountered an error while generating your content. Please try again."

type IntentClassifier interface {
	Classify(ctx context.Context, prompt string) intent.Result
}

type PromptEnhancer interface {
	Enhance(ctx context.Context, prompt string, in domain.Intent, refs []domain.ReferenceImage) string
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (domain.GeneratedContent, error)
}

type VideoGenerator interface {
	Generate(ctx context.Context, prompt string, refs []domain.ReferenceImage) (domain.GeneratedContent, error)
}

type Options struct {
	Store      *Store
	Classifier IntentClassifier
	Enhancer   PromptEnhancer
	Images     ImageGenerator
	Videos     VideoGenerator
	Logger     *infra.Logger
}

// Turn is the outcome of one submission. CanvasItem is nil when the
// submission failed and an apology was recorded instead.
type Turn struct {
	Intent         domain.Intent      `json:"intent"`
	Fallback       bool               `json:"fallback,omitempty"`
	EnhancedPrompt string             `json:"enhancedPrompt"`
	UsedImages     int                `json:"usedImages"`
	Message        domain.Message     `json:"message"`
	CanvasItem     *domain.CanvasItem `json:"canvasItem,omitempty"`
	Failed         bool               `json:"failed,omitempty"`
}

// Orchestrator runs classify, enhance and generate for prompts submitted to
// a session and records the result in its history and canvas.
type Orchestrator struct {
	store      *Store
	classifier IntentClassifier
	enhancer   PromptEnhancer
	images     ImageGenerator
	videos     VideoGenerator
	logger     *infra.Logger
	now        func() time.Time
	newID      func() string
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Orchestrator{
		store:      opts.Store,
		classifier: opts.Classifier,
		enhancer:   opts.Enhancer,
		images:     opts.Images,
		videos:     opts.Videos,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit processes prompt within session sessionID and returns the turn with
// the session as it stood right after the turn was recorded. Once started, a
// submission runs to completion even if ctx is cancelled or the session is
// deleted meanwhile. Errors are returned only when nothing was recorded:
// empty prompt, unknown session, or a submission already in flight.
func (o *Orchestrator) Submit(ctx context.Context, sessionID, prompt string) (Turn, Session, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Turn{}, Session{}, domain.ErrPromptRequired
	}
	sess, err := o.store.lookup(sessionID)
	if err != nil {
		return Turn{}, Session{}, err
	}

	canvas, err := sess.begin(domain.Message{
		ID:        o.newID(),
		Content:   prompt,
		Role:      domain.RoleUser,
		Timestamp: o.now().UTC(),
	})
	if err != nil {
		return Turn{}, Session{}, err
	}

	log := o.logger.With().Str("session_id", sess.id).Logger()
	ctx = context.WithoutCancel(ctx)

	turn, content, err := o.safeRun(ctx, prompt, canvas)
	if err != nil {
		log.Error().Err(err).Msg("chat: submission failed")
		turn.Failed = true
		turn.Message = domain.Message{
			ID:        o.newID(),
			Content:   apologyMessage,
			Role:      domain.RoleAssistant,
			Timestamp: o.now().UTC(),
		}
		return turn, sess.complete(turn.Message, nil), nil
	}

	// The canvas records what the user asked for; later video prompts list
	// these descriptions as reference context.
	content.Description = prompt
	ts := o.now().UTC()
	item := &domain.CanvasItem{
		ID:          o.newID(),
		Type:        content.Type,
		URL:         content.URL,
		Description: content.Description,
		Timestamp:   ts,
	}
	turn.CanvasItem = item
	turn.Message = domain.Message{
		ID:               o.newID(),
		Content:          fmt.Sprintf("I've generated a %s for you: \"%s\". You can see it on the canvas!", content.Type, prompt),
		Role:             domain.RoleAssistant,
		Timestamp:        ts,
		GeneratedContent: &content,
	}
	snap := sess.complete(turn.Message, item)

	log.Info().
		Str("intent", turn.Intent.String()).
		Int("used_images", turn.UsedImages).
		Msg("chat: submission completed")
	return turn, snap, nil
}

// safeRun turns a panic in a pipeline stage into an error so the session is
// never left busy.
func (o *Orchestrator) safeRun(ctx context.Context, prompt string, canvas []domain.CanvasItem) (turn Turn, content domain.GeneratedContent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("chat: panic: %v", rec)
		}
	}()
	return o.run(ctx, prompt, canvas)
}

func (o *Orchestrator) run(ctx context.Context, prompt string, canvas []domain.CanvasItem) (Turn, domain.GeneratedContent, error) {
	classified := o.classifier.Classify(ctx, prompt)
	turn := Turn{Intent: classified.Intent, Fallback: classified.Fallback}

	var refs []domain.ReferenceImage
	if classified.Intent.IsVideo() {
		refs = domain.ReferenceImages(canvas)
		turn.UsedImages = len(refs)
	}

	turn.EnhancedPrompt = o.enhancer.Enhance(ctx, prompt, classified.Intent, refs)

	var (
		content domain.GeneratedContent
		err     error
	)
	if classified.Intent.IsVideo() {
		content, err = o.videos.Generate(ctx, turn.EnhancedPrompt, refs)
	} else {
		content, err = o.images.Generate(ctx, turn.EnhancedPrompt)
	}
	if err != nil {
		return turn, domain.GeneratedContent{}, fmt.Errorf("chat: generate %s: %w", classified.Intent, err)
	}
	if content.URL == "" {
		return turn, domain.GeneratedContent{}, fmt.Errorf("chat: generate %s: %w", classified.Intent, domain.ErrInvalidArtifact)
	}
	if content.Type == "" {
		content.Type = classified.Intent
	}
	return turn, content, nil
}
