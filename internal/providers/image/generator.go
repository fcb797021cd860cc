package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/providers/genai"
)

const placeholderDescription = "Error generating image. Showing placeholder."

var placeholderIDs = []int{1015, 1018, 1019, 1020, 1025, 1035, 1040, 1043, 1050, 1055}

// Generator turns a prompt into an inline image. It always yields a
// displayable result; only context cancellation is reported as an error.
type Generator struct {
	backend genai.ImageBackend
	logger  *infra.Logger
	now     func() time.Time
	pick    func(n int) int
}

func NewGenerator(backend genai.ImageBackend, logger *infra.Logger) *Generator {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Generator{backend: backend, logger: logger, now: time.Now, pick: rand.IntN}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GeneratedContent, error) {
	artifact, err := g.backend.GenerateImage(ctx, prompt)
	if err == nil && (artifact == nil || len(artifact.Data) == 0) {
		err = domain.ErrInvalidArtifact
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.GeneratedContent{}, ctxErr
		}
		g.logger.Warn().Err(err).Msg("image: generation failed; using placeholder")
		return g.placeholder(), nil
	}

	mime := artifact.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return domain.GeneratedContent{
		Type:        domain.IntentImage,
		URL:         DataURL(mime, artifact.Data),
		Description: prompt,
	}, nil
}

func (g *Generator) placeholder() domain.GeneratedContent {
	id := placeholderIDs[g.pick(len(placeholderIDs))]
	return domain.GeneratedContent{
		Type:        domain.IntentImage,
		URL:         fmt.Sprintf("https://picsum.photos/1024/768?random=%d&t=%d", id, g.now().UnixMilli()),
		Description: placeholderDescription,
	}
}

// DataURL encodes data as a self-contained data: URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var errNotDataURL = errors.New("image: not a base64 data url")

// ParseDataURL reverses DataURL.
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errNotDataURL
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("image: decode data url: %w", err)
	}
	return mime, data, nil
}
