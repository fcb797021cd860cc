package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"easyvideo/internal/http/handlers"
	"easyvideo/internal/infra"
	"easyvideo/internal/providers/genai"
	"easyvideo/internal/providers/video"
)

const sampleVideo = "generated_video_1757842104402.mp4"

func offlineConfig(t *testing.T) *infra.Config {
	t.Helper()
	return &infra.Config{
		PublicBaseURL:      "http://localhost:3000",
		PublicDir:          t.TempDir(),
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		VideoPollInterval:  time.Millisecond,
		VideoFallbackURLs: []string{
			"http://localhost:3000/videos/" + sampleVideo,
			"http://localhost:3000/videos/generated_video_1757842736723.mp4",
		},
		SessionTTL:     time.Minute,
		IntentCacheTTL: time.Minute,
	}
}

// newOfflineServer ships only the first sample video, so the second
// configured fallback must never be handed out.
func newOfflineServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := offlineConfig(t)
	dir := filepath.Join(cfg.PublicDir, "videos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sampleVideo), []byte("sample mp4"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	app, err := handlers.NewApp(cfg, zerolog.Nop(), genai.NewOffline())
	if err != nil {
		t.Fatalf("NewApp returned error: %v", err)
	}
	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestOfflineEndpoints(t *testing.T) {
	srv := newOfflineServer(t)

	code, out := post(t, srv, "/api/analyze-intent", `{"prompt":"Make a video of a cat"}`)
	if code != http.StatusOK || out["intent"] != "video" || out["fallback"] != true {
		t.Fatalf("analyze-intent: %d %v", code, out)
	}

	code, out = post(t, srv, "/api/generate-image", `{"prompt":"a red balloon"}`)
	if code != http.StatusOK {
		t.Fatalf("generate-image: %d %v", code, out)
	}
	if url, _ := out["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("generate-image url = %.40s", url)
	}
	if out["enhancedPrompt"] != "a red balloon" {
		t.Fatalf("enhancedPrompt = %v", out["enhancedPrompt"])
	}

	code, out = post(t, srv, "/api/generate-video", `{"prompt":"a cat","images":[{"id":"1","type":"image","url":"data:x","description":"cat"}]}`)
	if code != http.StatusOK {
		t.Fatalf("generate-video: %d %v", code, out)
	}
	if out["usedImages"] != float64(1) {
		t.Fatalf("usedImages = %v", out["usedImages"])
	}
	if out["description"] != "Generated fallback video for: a cat (using 1 reference images)" {
		t.Fatalf("description = %v", out["description"])
	}
	for i := 0; i < 5; i++ {
		_, out = post(t, srv, "/api/generate-video", `{"prompt":"a video of a cat"}`)
		raw, _ := out["url"].(string)
		u, err := url.Parse(raw)
		if err != nil || u.Path != "/videos/"+sampleVideo {
			t.Fatalf("fallback url = %q", raw)
		}
		resp, err := http.Get(srv.URL + u.Path)
		if err != nil {
			t.Fatalf("GET %s: %v", u.Path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(body) != "sample mp4" {
			t.Fatalf("GET %s: %d %q", u.Path, resp.StatusCode, body)
		}
	}

	code, out = post(t, srv, "/api/generate-image", `{}`)
	if code != http.StatusBadRequest || out["error"] != "Prompt is required" {
		t.Fatalf("missing prompt: %d %v", code, out)
	}
}

func TestSessionRoutes(t *testing.T) {
	srv := newOfflineServer(t)

	code, out := post(t, srv, "/api/sessions", ``)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, out)
	}
	id, _ := out["id"].(string)

	code, out = post(t, srv, "/api/sessions/"+id+"/messages", `{"prompt":"a red balloon"}`)
	if code != http.StatusOK {
		t.Fatalf("submit: %d %v", code, out)
	}
	session := out["session"].(map[string]any)
	if canvas := session["canvas"].([]any); len(canvas) != 1 {
		t.Fatalf("canvas = %v", canvas)
	}

	code, _ = post(t, srv, "/api/sessions/unknown/messages", `{"prompt":"a red balloon"}`)
	if code != http.StatusNotFound {
		t.Fatalf("unknown session: %d", code)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
}

func TestHealthAndCORS(t *testing.T) {
	srv := newOfflineServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Allow-Origin = %q", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["offline"] != true {
		t.Fatalf("offline = %v", body["offline"])
	}
}

func TestMissingSampleVideosFallBackToRemote(t *testing.T) {
	app, err := handlers.NewApp(offlineConfig(t), zerolog.Nop(), genai.NewOffline())
	if err != nil {
		t.Fatalf("NewApp returned error: %v", err)
	}
	content, err := app.Videos.Generate(context.Background(), "a cat", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !slices.Contains(video.RemoteSamples, content.URL) {
		t.Fatalf("url = %q, want one of the remote samples", content.URL)
	}
}
