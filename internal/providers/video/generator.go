package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"strings"
	"time"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/providers/genai"
	"easyvideo/internal/storage"
)

const (
	DefaultPollInterval = 10 * time.Second

	videoDir       = "videos"
	maxNameRetries = 5
)

type Options struct {
	Backend       genai.VideoBackend
	Store         *storage.FileStore
	PublicBaseURL string
	PollInterval  time.Duration
	// PollTimeout bounds the whole start/poll/download sequence. Zero leaves
	// it bounded only by the caller's context.
	PollTimeout  time.Duration
	FallbackURLs []string
	Logger       *infra.Logger
}

// Generator produces a video from a prompt, persisting the artifact under the
// public videos directory. Any failure is replaced by a sample video.
type Generator struct {
	backend      genai.VideoBackend
	store        *storage.FileStore
	baseURL      string
	interval     time.Duration
	timeout      time.Duration
	fallbackURLs []string
	logger       *infra.Logger
	now          func() time.Time
	pick         func(n int) int
}

func NewGenerator(opts Options) (*Generator, error) {
	if opts.Backend == nil {
		return nil, errors.New("video: backend is required")
	}
	if opts.Store == nil {
		return nil, errors.New("video: store is required")
	}
	if len(opts.FallbackURLs) == 0 {
		return nil, errors.New("video: at least one fallback url is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Generator{
		backend:      opts.Backend,
		store:        opts.Store,
		baseURL:      strings.TrimRight(opts.PublicBaseURL, "/"),
		interval:     interval,
		timeout:      opts.PollTimeout,
		fallbackURLs: append([]string(nil), opts.FallbackURLs...),
		logger:       logger,
		now:          time.Now,
		pick:         rand.IntN,
	}, nil
}

// Generate always returns a playable URL. Only cancellation of ctx itself is
// reported as an error.
func (g *Generator) Generate(ctx context.Context, prompt string, refs []domain.ReferenceImage) (domain.GeneratedContent, error) {
	g.logger.Info().
		Int("references", len(refs)).
		Msg("video: generating")

	content, err := g.generate(ctx, prompt)
	if err == nil {
		return content, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.GeneratedContent{}, ctxErr
	}

	fallback := g.fallback(prompt, len(refs))
	g.logger.Warn().
		Err(err).
		Str("url", fallback.URL).
		Msg("video: generation failed; using sample video")
	return fallback, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (domain.GeneratedContent, error) {
	opCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	op, err := g.backend.StartVideo(opCtx, prompt)
	if err != nil {
		return domain.GeneratedContent{}, g.opError(ctx, err)
	}
	for op != nil && !op.Done {
		g.logger.Debug().Str("operation", op.Name).Msg("video: waiting for generation to complete")
		if err := wait(opCtx, g.interval); err != nil {
			return domain.GeneratedContent{}, g.opError(ctx, err)
		}
		if op, err = g.backend.PollVideo(opCtx, op); err != nil {
			return domain.GeneratedContent{}, g.opError(ctx, err)
		}
	}
	if op == nil {
		return domain.GeneratedContent{}, fmt.Errorf("video: %w", domain.ErrNoArtifact)
	}

	artifact, err := g.backend.DownloadVideo(opCtx, op)
	if err != nil {
		return domain.GeneratedContent{}, g.opError(ctx, err)
	}
	if artifact == nil || len(artifact.Data) == 0 {
		return domain.GeneratedContent{}, fmt.Errorf("video: %w", domain.ErrInvalidArtifact)
	}

	key, err := g.persist(ctx, artifact.Data)
	if err != nil {
		return domain.GeneratedContent{}, err
	}
	g.logger.Info().Str("key", key).Msg("video: saved generated video")

	return domain.GeneratedContent{
		Type:        domain.IntentVideo,
		URL:         g.baseURL + "/" + key,
		Description: prompt,
	}, nil
}

// persist writes data as generated_video_<unix-ms>.mp4, moving to the next
// millisecond if the name is already taken.
func (g *Generator) persist(ctx context.Context, data []byte) (string, error) {
	ts := g.now().UnixMilli()
	var lastErr error
	for i := 0; i < maxNameRetries; i++ {
		key, err := g.store.Write(ctx, Filename(videoDir, ts+int64(i)), data)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("video: persist: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("video: persist: %w", lastErr)
}

func (g *Generator) fallback(prompt string, references int) domain.GeneratedContent {
	return domain.GeneratedContent{
		Type:        domain.IntentVideo,
		URL:         g.fallbackURLs[g.pick(len(g.fallbackURLs))],
		Description: fmt.Sprintf("Generated fallback video for: %s (using %d reference images)", prompt, references),
	}
}

// opError maps expiry of the poll deadline to ErrOperationTimeout while
// leaving caller cancellation untouched.
func (g *Generator) opError(parent context.Context, err error) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("video: %w after %s", domain.ErrOperationTimeout, g.timeout)
	}
	return fmt.Errorf("video: %w", err)
}

// Filename returns the storage key for a video generated at unixMilli.
func Filename(dir string, unixMilli int64) string {
	name := fmt.Sprintf("generated_video_%d.mp4", unixMilli)
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
