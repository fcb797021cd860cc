package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"easyvideo/internal/chat"
	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
	"easyvideo/internal/intent"
	"easyvideo/internal/storage"
)

type stubClassifier struct {
	result intent.Result
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, p string) intent.Result {
	s.calls++
	return s.result
}

type stubEnhancer struct {
	calls int
	refs  []domain.ReferenceImage
}

func (s *stubEnhancer) Enhance(ctx context.Context, p string, in domain.Intent, refs []domain.ReferenceImage) string {
	s.calls++
	s.refs = refs
	return "enhanced: " + p
}

type stubImages struct {
	err    error
	calls  int
	during func()
}

func (s *stubImages) Generate(ctx context.Context, p string) (domain.GeneratedContent, error) {
	s.calls++
	if s.during != nil {
		s.during()
	}
	if s.err != nil {
		return domain.GeneratedContent{}, s.err
	}
	return domain.GeneratedContent{Type: domain.IntentImage, URL: "data:image/png;base64,AAAA", Description: p}, nil
}

type stubVideos struct {
	err   error
	calls int
	refs  []domain.ReferenceImage
}

func (s *stubVideos) Generate(ctx context.Context, p string, refs []domain.ReferenceImage) (domain.GeneratedContent, error) {
	s.calls++
	s.refs = refs
	if s.err != nil {
		return domain.GeneratedContent{}, s.err
	}
	return domain.GeneratedContent{Type: domain.IntentVideo, URL: "http://localhost:3000/videos/generated_video_1.mp4", Description: p}, nil
}

type testApp struct {
	*App
	classifier *stubClassifier
	enhancer   *stubEnhancer
	images     *stubImages
	videos     *stubVideos
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := chat.NewStore(chat.StoreOptions{})
	ta := &testApp{
		classifier: &stubClassifier{result: intent.Result{Intent: domain.IntentImage}},
		enhancer:   &stubEnhancer{},
		images:     &stubImages{},
		videos:     &stubVideos{},
	}
	ta.App = &App{
		Logger:     zerolog.Nop(),
		Classifier: ta.classifier,
		Enhancer:   ta.enhancer,
		Images:     ta.images,
		Videos:     ta.videos,
		Sessions:   store,
		Replier:    chat.NewReplier(0, 0, nil),
	}
	ta.App.Orchestrator = chat.NewOrchestrator(chat.Options{
		Store:      store,
		Classifier: ta.classifier,
		Enhancer:   ta.enhancer,
		Images:     ta.images,
		Videos:     ta.videos,
	})
	return ta
}

func (ta *testApp) remoteCalls() int {
	return ta.classifier.calls + ta.enhancer.calls + ta.images.calls + ta.videos.calls
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, out
}

func TestMissingPromptIsRejectedBeforeRemoteCalls(t *testing.T) {
	ta := newTestApp(t)
	routes := map[string]http.HandlerFunc{
		"analyze-intent": ta.AnalyzeIntent,
		"generate-image": ta.GenerateImage,
		"generate-video": ta.GenerateVideo,
	}
	bodies := []string{``, `{}`, `{"prompt":""}`, `{"prompt":"   "}`}

	for name, h := range routes {
		for _, body := range bodies {
			t.Run(name+" "+body, func(t *testing.T) {
				rec, out := doJSON(t, h, body)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("status = %d, want 400", rec.Code)
				}
				if out["error"] != "Prompt is required" {
					t.Fatalf("error = %v", out["error"])
				}
			})
		}
	}
	if n := ta.remoteCalls(); n != 0 {
		t.Fatalf("remote calls = %d, want 0", n)
	}
}

func TestAnalyzeIntent(t *testing.T) {
	tests := []struct {
		name         string
		result       intent.Result
		body         string
		wantIntent   string
		wantPrompt   string
		wantFallback bool
	}{
		{
			name:       "model decision",
			result:     intent.Result{Intent: domain.IntentVideo},
			body:       `{"prompt":"a cat running"}`,
			wantIntent: "video",
			wantPrompt: "a cat running",
		},
		{
			name:         "keyword fallback flagged",
			result:       intent.Result{Intent: domain.IntentImage, Fallback: true},
			body:         `{"prompt":"a red balloon"}`,
			wantIntent:   "image",
			wantPrompt:   "a red balloon",
			wantFallback: true,
		},
		{
			name:         "unparsable body",
			body:         `make a video please`,
			wantIntent:   "video",
			wantPrompt:   "make a video please",
			wantFallback: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.classifier.result = tt.result
			rec, out := doJSON(t, ta.AnalyzeIntent, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if out["intent"] != tt.wantIntent || out["prompt"] != tt.wantPrompt {
				t.Fatalf("unexpected response: %v", out)
			}
			gotFallback, _ := out["fallback"].(bool)
			if gotFallback != tt.wantFallback {
				t.Fatalf("fallback = %v, want %v", gotFallback, tt.wantFallback)
			}
		})
	}
}

func TestGenerateImage(t *testing.T) {
	ta := newTestApp(t)
	rec, out := doJSON(t, ta.GenerateImage, `{"prompt":"a red balloon"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["originalPrompt"] != "a red balloon" || out["enhancedPrompt"] != "enhanced: a red balloon" {
		t.Fatalf("unexpected prompts: %v", out)
	}
	if !strings.HasPrefix(out["url"].(string), "data:image/png;base64,") {
		t.Fatalf("url = %v", out["url"])
	}
	if _, ok := out["usedImages"]; ok {
		t.Fatal("image response must not carry usedImages")
	}
}

func TestGenerateVideoCountsOnlyImages(t *testing.T) {
	ta := newTestApp(t)
	body := `{"prompt":"a cat video","images":[
		{"id":"1","type":"image","url":"data:a","description":"a red balloon","timestamp":"2025-01-01T00:00:00Z"},
		{"id":"2","type":"video","url":"http://x/v.mp4","description":"a clip"},
		{"id":"3","url":"data:b","description":"a blue sky"}
	]}`
	rec, out := doJSON(t, ta.GenerateVideo, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["usedImages"] != float64(2) {
		t.Fatalf("usedImages = %v, want 2", out["usedImages"])
	}
	if len(ta.videos.refs) != 2 || len(ta.enhancer.refs) != 2 {
		t.Fatalf("refs passed = %d/%d", len(ta.videos.refs), len(ta.enhancer.refs))
	}
	if ta.videos.refs[1].Description != "a blue sky" {
		t.Fatalf("unexpected refs: %#v", ta.videos.refs)
	}
}

func TestGenerateFailuresReturn500(t *testing.T) {
	ta := newTestApp(t)
	ta.images.err = context.Canceled
	ta.videos.err = errors.New("boom")

	rec, out := doJSON(t, ta.GenerateImage, `{"prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError || out["error"] != "Failed to generate image" {
		t.Fatalf("image: status = %d body = %v", rec.Code, out)
	}
	rec, out = doJSON(t, ta.GenerateVideo, `{"prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError || out["error"] != "Failed to generate video" {
		t.Fatalf("video: status = %d body = %v", rec.Code, out)
	}
}

func TestChat(t *testing.T) {
	ta := newTestApp(t)

	rec, out := doJSON(t, ta.Chat, `{}`)
	if rec.Code != http.StatusBadRequest || out["error"] != "Prompt or messages are required" {
		t.Fatalf("status = %d body = %v", rec.Code, out)
	}

	for _, body := range []string{`{"prompt":"hello"}`, `{"messages":[{"role":"user","content":"hi"}]}`} {
		rec, out = doJSON(t, ta.Chat, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rec.Code, body)
		}
		if msg, _ := out["message"].(string); msg == "" {
			t.Fatalf("empty message for %s", body)
		}
		if _, ok := out["timestamp"].(string); !ok {
			t.Fatalf("missing timestamp for %s", body)
		}
	}
	if n := ta.remoteCalls(); n != 0 {
		t.Fatalf("chat triggered %d generation calls", n)
	}
}

func sessionRequest(method, target, id, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSessionLifecycle(t *testing.T) {
	ta := newTestApp(t)

	rec := httptest.NewRecorder()
	ta.CreateSession(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var sess chat.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	rec = httptest.NewRecorder()
	ta.SubmitMessage(rec, sessionRequest(http.MethodPost, "/", sess.ID, `{"prompt":"a red balloon"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d body = %s", rec.Code, rec.Body.String())
	}
	var submitted submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	if submitted.Turn.CanvasItem == nil || len(submitted.Session.Canvas) != 1 || len(submitted.Session.Messages) != 3 {
		t.Fatalf("unexpected submit response: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ta.SubmitMessage(rec, sessionRequest(http.MethodPost, "/", sess.ID, `{"prompt":""}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty prompt status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ta.DeleteSession(rec, sessionRequest(http.MethodDelete, "/", sess.ID, ""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ta.GetSession(rec, sessionRequest(http.MethodGet, "/", sess.ID, ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestSubmitMessageSurvivesConcurrentDelete(t *testing.T) {
	ta := newTestApp(t)
	sess := ta.Sessions.Create()
	ta.images.during = func() {
		rec := httptest.NewRecorder()
		ta.DeleteSession(rec, sessionRequest(http.MethodDelete, "/", sess.ID, ""))
		if rec.Code != http.StatusNoContent {
			t.Errorf("delete status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	ta.SubmitMessage(rec, sessionRequest(http.MethodPost, "/", sess.ID, `{"prompt":"a red balloon"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d body = %s", rec.Code, rec.Body.String())
	}
	var submitted submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	if submitted.Session.ID != sess.ID || len(submitted.Session.Canvas) != 1 {
		t.Fatalf("unexpected submit response: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ta.GetSession(rec, sessionRequest(http.MethodGet, "/", sess.ID, ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestStaticVideos(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "videos/generated_video_1.mp4", []byte("mp4")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.BasePath(), "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ta := newTestApp(t)
	ta.Files = store
	h := ta.StaticVideos()

	tests := []struct {
		path string
		want int
	}{
		{path: "/videos/generated_video_1.mp4", want: http.StatusOK},
		{path: "/videos/missing.mp4", want: http.StatusNotFound},
		{path: "/videos/", want: http.StatusNotFound},
		{path: "/secret.txt", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
		if tt.want == http.StatusOK && !bytes.Equal(rec.Body.Bytes(), []byte("mp4")) {
			t.Fatalf("%s: body = %q", tt.path, rec.Body.String())
		}
	}
}

func TestSessionArchive(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "videos/generated_video_1.mp4", []byte("mp4")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ta := newTestApp(t)
	ta.Files = store
	ta.Config = &infra.Config{PublicBaseURL: "http://localhost:3000"}

	sess := ta.Sessions.Create()
	if _, _, err := ta.Orchestrator.Submit(context.Background(), sess.ID, "a red balloon"); err != nil {
		t.Fatalf("Submit image: %v", err)
	}
	ta.classifier.result = intent.Result{Intent: domain.IntentVideo}
	if _, _, err := ta.Orchestrator.Submit(context.Background(), sess.ID, "a balloon video"); err != nil {
		t.Fatalf("Submit video: %v", err)
	}

	rec := httptest.NewRecorder()
	ta.SessionArchive(rec, sessionRequest(http.MethodGet, "/", sess.ID, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("Content-Type = %q", ct)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"01-image.png", "02-video.mp4", "manifest.json"} {
		if !names[want] {
			t.Fatalf("archive missing %s: %v", want, names)
		}
	}

	rec = httptest.NewRecorder()
	ta.SessionArchive(rec, sessionRequest(http.MethodGet, "/", "missing", ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing session status = %d", rec.Code)
	}
}
