package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TextProviderGemini = "gemini"
	TextProviderOpenAI = "openai"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                 string
	Port                   string
	PublicBaseURL          string
	PublicDir              string
	LogFile                string
	CORSAllowedOrigins     []string
	GeminiAPIKey           string
	GeminiTextModel        string
	GeminiImageModel       string
	GeminiVideoModel       string
	TextProvider           string
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIBaseURL          string
	VideoPollInterval      time.Duration
	VideoPollTimeout       time.Duration
	VideoFallbackURLs      []string
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	IntentCacheTTL         time.Duration
	ChatDelayMin           time.Duration
	ChatDelayJitter        time.Duration
	HTTPReadTimeout        time.Duration
	HTTPWriteTimeout       time.Duration
	HTTPIdleTimeout        time.Duration
}

// sampleVideos are served from PublicDir/videos when generation is unavailable.
// Names missing from the public directory are skipped at startup.
var sampleVideos = []string{
	"generated_video_1757842104402.mp4",
	"generated_video_1757842736723.mp4",
	"generated_video_1757843018326.mp4",
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "3000")
	cfg := &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),
		Port:                   port,
		PublicBaseURL:          strings.TrimRight(getEnv("PUBLIC_BASE_URL", getEnv("NEXT_PUBLIC_APP_URL", "http://localhost:"+port)), "/"),
		PublicDir:              getEnv("PUBLIC_DIR", "./public"),
		LogFile:                os.Getenv("LOG_FILE"),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS"),
		GeminiAPIKey:           strings.TrimSpace(getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY"))),
		GeminiTextModel:        getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash-exp"),
		GeminiImageModel:       getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		GeminiVideoModel:       getEnv("GEMINI_VIDEO_MODEL", "veo-3.0-generate-001"),
		TextProvider:           strings.ToLower(getEnv("TEXT_PROVIDER", TextProviderGemini)),
		OpenAIAPIKey:           strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:          os.Getenv("OPENAI_BASE_URL"),
		VideoPollInterval:      getEnvDuration("VIDEO_POLL_INTERVAL", 10*time.Second),
		VideoPollTimeout:       getEnvDuration("VIDEO_POLL_TIMEOUT", 0),
		SessionTTL:             getEnvDuration("SESSION_TTL", time.Hour),
		SessionCleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		IntentCacheTTL:         getEnvDuration("INTENT_CACHE_TTL", 15*time.Minute),
		ChatDelayMin:           getEnvDuration("CHAT_DELAY_MIN", 500*time.Millisecond),
		ChatDelayJitter:        getEnvDuration("CHAT_DELAY_JITTER", 500*time.Millisecond),
		HTTPReadTimeout:        time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:       time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:        time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	cfg.VideoFallbackURLs = getEnvList("VIDEO_FALLBACK_URLS")
	if len(cfg.VideoFallbackURLs) == 0 {
		for _, name := range sampleVideos {
			cfg.VideoFallbackURLs = append(cfg.VideoFallbackURLs, cfg.PublicBaseURL+"/videos/"+name)
		}
	}

	switch cfg.TextProvider {
	case TextProviderGemini:
	case TextProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when TEXT_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("unsupported TEXT_PROVIDER %q", cfg.TextProvider)
	}

	if cfg.VideoPollInterval <= 0 {
		return nil, fmt.Errorf("VIDEO_POLL_INTERVAL must be positive")
	}

	return cfg, nil
}

// OfflineMode reports whether no Gemini key is configured.
func (c *Config) OfflineMode() bool {
	return c.GeminiAPIKey == ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("10s") or bare seconds ("10").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
