package domain

import (
	"fmt"
	"strings"
	"time"
)

// Intent is the content type a prompt asks for.
type Intent string

const (
	IntentImage Intent = "image"
	IntentVideo Intent = "video"
)

// ParseIntent accepts "image" or "video" in any case.
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(IntentImage):
		return IntentImage, nil
	case string(IntentVideo):
		return IntentVideo, nil
	default:
		return "", fmt.Errorf("unknown intent %q", s)
	}
}

func (i Intent) String() string { return string(i) }

func (i Intent) IsVideo() bool { return i == IntentVideo }

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// CanvasItem is one generated media item shown on the canvas.
type CanvasItem struct {
	ID          string    `json:"id"`
	Type        Intent    `json:"type"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReferenceImage is a previously generated image used as context for a video.
// It is read-only input to enhancement and generation.
type ReferenceImage struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReferenceImages keeps the image items of a canvas, in order, and drops videos.
func ReferenceImages(items []CanvasItem) []ReferenceImage {
	refs := make([]ReferenceImage, 0, len(items))
	for _, item := range items {
		if item.Type != IntentImage {
			continue
		}
		refs = append(refs, ReferenceImage{
			ID:          item.ID,
			URL:         item.URL,
			Description: item.Description,
			Timestamp:   item.Timestamp,
		})
	}
	return refs
}

// GeneratedContent is the normalized output of a generator.
type GeneratedContent struct {
	Type        Intent `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Message is one entry of the append-only conversation history.
type Message struct {
	ID               string            `json:"id"`
	Content          string            `json:"content"`
	Role             Role              `json:"role"`
	Timestamp        time.Time         `json:"timestamp"`
	GeneratedContent *GeneratedContent `json:"generatedContent,omitempty"`
}
