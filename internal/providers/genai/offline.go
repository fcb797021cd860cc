package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"easyvideo/internal/domain"
)

// Offline is the Backend used when no API key is configured. Text and video
// calls report ErrBackendDisabled so callers take their fallback paths, while
// images are rendered locally from the prompt text.
type Offline struct {
	Width  int
	Height int
}

const maxPromptBands = 12

// NewOffline returns an offline backend rendering 1024x768 images.
func NewOffline() *Offline {
	return &Offline{Width: 1024, Height: 768}
}

func (o *Offline) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", domain.ErrBackendDisabled
}

func (o *Offline) GenerateImage(ctx context.Context, prompt string) (*ImageArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := renderPromptImage(o.Width, o.Height, prompt)
	if len(data) == 0 {
		return nil, domain.ErrInvalidArtifact
	}
	return &ImageArtifact{Data: data, MIMEType: "image/png"}, nil
}

func (o *Offline) StartVideo(ctx context.Context, prompt string) (*VideoOperation, error) {
	return nil, domain.ErrBackendDisabled
}

func (o *Offline) PollVideo(ctx context.Context, op *VideoOperation) (*VideoOperation, error) {
	return nil, domain.ErrBackendDisabled
}

func (o *Offline) DownloadVideo(ctx context.Context, op *VideoOperation) (*VideoArtifact, error) {
	return nil, domain.ErrBackendDisabled
}

// renderPromptImage paints a vertical gradient between two colours taken
// from the prompt digest, then one band per prompt word (at most
// maxPromptBands), each coloured by that word's digest.
func renderPromptImage(width, height int, prompt string) []byte {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 768
	}
	digest := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	top := digestColor(digest, 0)
	bottom := digestColor(digest, 3)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := blend(top, bottom, y, height-1)
		draw.Draw(img, image.Rect(0, y, width, y+1), &image.Uniform{c}, image.Point{}, draw.Src)
	}

	words := strings.Fields(prompt)
	if len(words) > maxPromptBands {
		words = words[:maxPromptBands]
	}
	if len(words) > 0 {
		bandWidth := width / (2*len(words) + 1)
		bandTop, bandBottom := height/4, height-height/4
		for i, word := range words {
			x := bandWidth * (2*i + 1)
			band := image.Rect(x, bandTop, x+bandWidth, bandBottom)
			c := digestColor(sha256.Sum256([]byte(strings.ToLower(word))), 0)
			c.A = 200
			draw.Draw(img, band, &image.Uniform{c}, image.Point{}, draw.Over)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func digestColor(digest [sha256.Size]byte, offset int) color.RGBA {
	return color.RGBA{R: digest[offset], G: digest[offset+1], B: digest[offset+2], A: 255}
}

// blend interpolates linearly from a to b as step goes from 0 to steps.
func blend(a, b color.RGBA, step, steps int) color.RGBA {
	if steps <= 0 {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(steps-step) + int(y)*step) / steps)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

var _ Backend = (*Offline)(nil)
