package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"easyvideo/internal/chat"
	"easyvideo/internal/infra"
	"easyvideo/internal/intent"
	"easyvideo/internal/providers/genai"
	"easyvideo/internal/providers/image"
	"easyvideo/internal/providers/prompt"
	"easyvideo/internal/providers/video"
	"easyvideo/internal/storage"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

var validate = validator.New(validator.WithRequiredStructEnabled())

// App carries the dependencies of the HTTP handlers.
type App struct {
	Config       *infra.Config
	Logger       zerolog.Logger
	Classifier   chat.IntentClassifier
	Enhancer     chat.PromptEnhancer
	Images       chat.ImageGenerator
	Videos       chat.VideoGenerator
	Sessions     *chat.Store
	Orchestrator *chat.Orchestrator
	Replier      *chat.Replier
	Files        *storage.FileStore
}

// NewApp wires the generation pipeline on top of backend.
func NewApp(cfg *infra.Config, logger zerolog.Logger, backend genai.Backend) (*App, error) {
	files, err := storage.NewFileStore(cfg.PublicDir)
	if err != nil {
		return nil, err
	}
	videos, err := video.NewGenerator(video.Options{
		Backend:       backend,
		Store:         files,
		PublicBaseURL: cfg.PublicBaseURL,
		PollInterval:  cfg.VideoPollInterval,
		PollTimeout:   cfg.VideoPollTimeout,
		FallbackURLs:  video.ResolveFallbacks(cfg.VideoFallbackURLs, cfg.PublicBaseURL, files, &logger),
		Logger:        &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("video generator: %w", err)
	}

	classifier := intent.NewClassifier(intent.Options{Text: backend, Logger: &logger, CacheTTL: cfg.IntentCacheTTL})
	enhancer := prompt.NewEnhancer(backend, &logger)
	images := image.NewGenerator(backend, &logger)
	sessions := chat.NewStore(chat.StoreOptions{
		TTL:             cfg.SessionTTL,
		CleanupInterval: cfg.SessionCleanupInterval,
		Logger:          &logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Classifier: classifier,
		Enhancer:   enhancer,
		Images:     images,
		Videos:     videos,
		Sessions:   sessions,
		Orchestrator: chat.NewOrchestrator(chat.Options{
			Store:      sessions,
			Classifier: classifier,
			Enhancer:   enhancer,
			Images:     images,
			Videos:     videos,
			Logger:     &logger,
		}),
		Replier: chat.NewReplier(cfg.ChatDelayMin, cfg.ChatDelayJitter, &logger),
		Files:   files,
	}, nil
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidBody
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidBody
	}
	return raw, nil
}
