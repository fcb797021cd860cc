package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "google.golang.org/genai"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
)

const (
	DefaultTextModel  = "gemini-2.0-flash-exp"
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultVideoModel = "veo-3.0-generate-001"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	TextModel  string
	ImageModel string
	VideoModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is the Gemini implementation of Backend. It translates SDK responses
// into artifacts or sentinel errors so callers never inspect SDK types.
type Client struct {
	sdk        *sdk.Client
	textModel  string
	imageModel string
	videoModel string
	logger     *infra.Logger
}

// NewClient constructs a Gemini client. An API key is required; callers that
// run without one should use Offline instead.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	client, err := sdk.NewClient(ctx, &sdk.ClientConfig{
		APIKey:     apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: init client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	return &Client{
		sdk:        client,
		textModel:  firstNonEmpty(opts.TextModel, DefaultTextModel),
		imageModel: firstNonEmpty(opts.ImageModel, DefaultImageModel),
		videoModel: firstNonEmpty(opts.VideoModel, DefaultVideoModel),
		logger:     logger,
	}, nil
}

// GenerateText returns the concatenated text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Models.GenerateContent(ctx, c.textModel, sdk.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai: generate text: %w", err)
	}
	var out strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				out.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("genai: generate text: %w", domain.ErrNoArtifact)
	}
	return text, nil
}

// GenerateImage returns the bytes of the first generated image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*ImageArtifact, error) {
	resp, err := c.sdk.Models.GenerateImages(ctx, c.imageModel, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: generate image: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("genai: generate image: %w", domain.ErrNoArtifact)
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("genai: generate image: %w", domain.ErrInvalidArtifact)
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Int("bytes", len(generated.Image.ImageBytes)).
		Msg("genai: generated image")

	return &ImageArtifact{
		Data:     generated.Image.ImageBytes,
		MIMEType: generated.Image.MIMEType,
	}, nil
}

// StartVideo submits a video job and returns its operation handle.
func (c *Client) StartVideo(ctx context.Context, prompt string) (*VideoOperation, error) {
	op, err := c.sdk.Models.GenerateVideos(ctx, c.videoModel, prompt, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: start video: %w", err)
	}
	if op == nil {
		return nil, fmt.Errorf("genai: start video: %w", domain.ErrNoArtifact)
	}
	c.logger.Debug().Str("model", c.videoModel).Str("operation", op.Name).Msg("genai: video operation started")
	return wrapOperation(op), nil
}

// PollVideo refreshes the operation state once.
func (c *Client) PollVideo(ctx context.Context, op *VideoOperation) (*VideoOperation, error) {
	raw, err := unwrapOperation(op)
	if err != nil {
		return nil, err
	}
	next, err := c.sdk.Operations.GetVideosOperation(ctx, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: poll video: %w", err)
	}
	return wrapOperation(next), nil
}

// DownloadVideo fetches the first generated video of a completed operation.
func (c *Client) DownloadVideo(ctx context.Context, op *VideoOperation) (*VideoArtifact, error) {
	raw, err := unwrapOperation(op)
	if err != nil {
		return nil, err
	}
	if len(raw.Error) > 0 {
		return nil, fmt.Errorf("genai: video operation %s failed: %v", raw.Name, raw.Error)
	}
	if raw.Response == nil || len(raw.Response.GeneratedVideos) == 0 {
		return nil, fmt.Errorf("genai: download video: %w", domain.ErrNoArtifact)
	}
	generated := raw.Response.GeneratedVideos[0]
	if generated == nil || generated.Video == nil {
		return nil, fmt.Errorf("genai: download video: %w", domain.ErrInvalidArtifact)
	}

	data := generated.Video.VideoBytes
	if len(data) == 0 {
		data, err = c.sdk.Files.Download(ctx, sdk.NewDownloadURIFromGeneratedVideo(generated), nil)
		if err != nil {
			return nil, fmt.Errorf("genai: download video: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("genai: download video: %w", domain.ErrInvalidArtifact)
	}

	return &VideoArtifact{
		Data:     data,
		MIMEType: firstNonEmpty(generated.Video.MIMEType, "video/mp4"),
	}, nil
}

func wrapOperation(op *sdk.GenerateVideosOperation) *VideoOperation {
	return &VideoOperation{Name: op.Name, Done: op.Done, handle: op}
}

func unwrapOperation(op *VideoOperation) (*sdk.GenerateVideosOperation, error) {
	if op == nil {
		return nil, errors.New("genai: nil video operation")
	}
	raw, ok := op.handle.(*sdk.GenerateVideosOperation)
	if !ok || raw == nil {
		return nil, fmt.Errorf("genai: operation %q was not created by this client", op.Name)
	}
	return raw, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var _ Backend = (*Client)(nil)
