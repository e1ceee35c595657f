package handlers

import (
	"errors"
	"net/http"

	"posterlab/internal/domain"
	"posterlab/internal/middleware"
	"posterlab/internal/providers/image"
)

type imageRequest struct {
	VisualElements     string          `json:"visualElements"`
	Concept            *domain.Concept `json:"concept"`
	PreferredGenerator string          `json:"preferredGenerator"`
}

type imageResponse struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Generator string `json:"generator"`
}

// GenerateImage surfaces provider failure as 502, or 503 when no provider
// could be called at all. It never substitutes a placeholder image.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeBody(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	out, err := a.images.Generate(r.Context(), image.GenerateInput{
		Concept:        req.Concept,
		VisualElements: req.VisualElements,
		Preferred:      req.PreferredGenerator,
	})
	if err != nil {
		rid := middleware.RequestIDFromContext(r.Context())
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			a.error(w, http.StatusBadRequest, "concept or visualElements is required")
		case image.IsUnavailable(err):
			a.logger.Warn().Err(err).Str("request_id", rid).Msg("image: no provider available")
			a.error(w, http.StatusServiceUnavailable, "No image provider is configured")
		default:
			a.logger.Error().Err(err).Str("request_id", rid).Msg("image: generation failed")
			a.error(w, http.StatusBadGateway, "Image generation failed")
		}
		return
	}
	a.json(w, http.StatusOK, imageResponse{Success: true, ImageURL: out.ImageURL, Generator: out.Generator})
}
