package genai

import "context"

// TextGenerator produces free text from a single prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageBackend synthesizes one image from a prompt.
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string) (*ImageArtifact, error)
}

// VideoBackend drives the asynchronous video capability: start an operation,
// poll it until Done, then download the first artifact.
type VideoBackend interface {
	StartVideo(ctx context.Context, prompt string) (*VideoOperation, error)
	PollVideo(ctx context.Context, op *VideoOperation) (*VideoOperation, error)
	DownloadVideo(ctx context.Context, op *VideoOperation) (*VideoArtifact, error)
}

// Backend is the full remote generation capability.
type Backend interface {
	TextGenerator
	ImageBackend
	VideoBackend
}

// ImageArtifact is a decoded image payload.
type ImageArtifact struct {
	Data     []byte
	MIMEType string
}

// VideoArtifact is a downloaded video payload.
type VideoArtifact struct {
	Data     []byte
	MIMEType string
}

// VideoOperation is a handle to a server-side video job. The provider state
// behind it is private to the backend that created the operation; callers
// read Name and Done and pass the value back unchanged.
type VideoOperation struct {
	Name string
	Done bool

	handle any
}

// Composite joins a text generator with a media backend, so text can come
// from a different provider than images and videos.
type Composite struct {
	TextGenerator
	ImageBackend
	VideoBackend
}

// NewComposite builds a Backend from independent parts.
func NewComposite(text TextGenerator, image ImageBackend, video VideoBackend) *Composite {
	return &Composite{TextGenerator: text, ImageBackend: image, VideoBackend: video}
}

var _ Backend = (*Composite)(nil)
