package domain

import "errors"

var (
	ErrPromptRequired   = errors.New("prompt is required")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionBusy      = errors.New("session has a submission in flight")
	ErrNoArtifact       = errors.New("no artifact generated")
	ErrInvalidArtifact  = errors.New("generated artifact is invalid")
	ErrBackendDisabled  = errors.New("generation backend disabled")
	ErrOperationTimeout = errors.New("operation did not complete in time")
)
