package handlers

import (
	"strings"
	"time"

	"easyvideo/internal/domain"
)

type promptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

func (r *promptRequest) normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
}

type referenceInput struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

type videoRequest struct {
	Prompt string           `json:"prompt" validate:"required"`
	Images []referenceInput `json:"images"`
}

func (r *videoRequest) normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
}

// references keeps the entries that are images. Entries without a type are
// plain reference images; anything else, such as videos, is dropped.
func (r *videoRequest) references() []domain.ReferenceImage {
	items := make([]domain.CanvasItem, 0, len(r.Images))
	for _, in := range r.Images {
		kind := domain.IntentImage
		if t := strings.TrimSpace(in.Type); t != "" {
			kind = domain.Intent(strings.ToLower(t))
		}
		ts, _ := time.Parse(time.RFC3339Nano, in.Timestamp)
		items = append(items, domain.CanvasItem{
			ID:          in.ID,
			Type:        kind,
			URL:         in.URL,
			Description: in.Description,
			Timestamp:   ts,
		})
	}
	return domain.ReferenceImages(items)
}

type chatMessageInput struct {
	Content string `json:"content"`
	Role    string `json:"role,omitempty"`
}

type chatRequest struct {
	Prompt   string             `json:"prompt"`
	Messages []chatMessageInput `json:"messages"`
}

func (r *chatRequest) empty() bool {
	return strings.TrimSpace(r.Prompt) == "" && r.Messages == nil
}

func (r *chatRequest) history() []domain.Message {
	out := make([]domain.Message, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = domain.Message{Content: m.Content, Role: domain.Role(m.Role)}
	}
	return out
}

type generationResponse struct {
	URL            string `json:"url"`
	Description    string `json:"description"`
	EnhancedPrompt string `json:"enhancedPrompt"`
	OriginalPrompt string `json:"originalPrompt"`
}

type videoResponse struct {
	generationResponse
	UsedImages int `json:"usedImages"`
}
