package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"easyvideo/internal/http/handlers"
	"easyvideo/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	var origins []string
	if app.Config != nil {
		origins = app.Config.CORSAllowedOrigins
	}
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		middleware.Recoverer(app.Logger),
		middleware.CORS(origins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-intent", app.AnalyzeIntent)
		r.Post("/generate-image", app.GenerateImage)
		r.Post("/generate-video", app.GenerateVideo)
		r.Post("/chat", app.Chat)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Get("/{id}", app.GetSession)
			r.Delete("/{id}", app.DeleteSession)
			r.Post("/{id}/messages", app.SubmitMessage)
			r.Get("/{id}/archive", app.SessionArchive)
		})
	})

	if app.Files != nil {
		r.Method(http.MethodGet, "/videos/*", app.StaticVideos())
		r.Method(http.MethodHead, "/videos/*", app.StaticVideos())
	}

	return r
}
