package handlers

import (
	"net/http"

	"posterlab/internal/domain"
	"posterlab/internal/middleware"
)

type songRequest struct {
	Concept *domain.Concept `json:"concept"`
}

type songResponse struct {
	Success        bool                      `json:"success"`
	Recommendation domain.SongRecommendation `json:"recommendation"`
}

func (a *App) GenerateSong(w http.ResponseWriter, r *http.Request) {
	var req songRequest
	if err := decodeBody(r, &req); err != nil {
		a.logger.Warn().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("song: malformed body treated as empty")
		req = songRequest{}
	}
	res := a.songs.Recommend(r.Context(), req.Concept)
	w.Header().Set("X-Song-Source", res.Source)
	a.json(w, http.StatusOK, songResponse{Success: true, Recommendation: res.Recommendation})
}
