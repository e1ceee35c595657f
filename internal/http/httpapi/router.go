package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"posterlab/internal/http/handlers"
	"posterlab/internal/infra"
	"posterlab/internal/middleware"
)

type RouterOptions struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	Logger          *infra.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Country(opts.CountryLookup),
		middleware.Logger(*infra.LoggerOrDiscard(opts.Logger)),
		middleware.CORS(opts.AllowedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
	)
	r.MethodNotAllowed(app.MethodNotAllowed)
	r.NotFound(app.NotFound)

	r.Post("/concept", app.GenerateConcept)
	r.Post("/image", app.GenerateImage)
	r.Post("/song", app.GenerateSong)
	r.Get("/health", app.Health)
	r.Post("/health", app.Health)

	// Paths the browser front end has always called.
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-concept", app.GenerateConcept)
		r.Post("/generate-image", app.GenerateImage)
		r.Post("/generate-song", app.GenerateSong)
		r.Get("/health", app.Health)
		r.Post("/health", app.Health)
	})

	return r
}
