package handlers

import (
	"net/http"

	"posterlab/internal/concept"
	"posterlab/internal/domain"
	"posterlab/internal/middleware"
)

type conceptRequest struct {
	GenreFilter string `json:"genreFilter"`
	EraFilter   string `json:"eraFilter"`
	NodTheme    bool   `json:"nodTheme"`
}

// UnmarshalJSON keeps every field that can be read, so a mistyped nodTheme
// does not discard valid filters.
func (r *conceptRequest) UnmarshalJSON(data []byte) error {
	f, ok, err := domain.LooseFields(data)
	if err != nil || !ok {
		return err
	}
	*r = conceptRequest{
		GenreFilter: domain.LooseString(domain.LooseField(f, "genreFilter")),
		EraFilter:   domain.LooseString(domain.LooseField(f, "eraFilter")),
		NodTheme:    domain.LooseBool(domain.LooseField(f, "nodTheme")),
	}
	return nil
}

type conceptResponse struct {
	Success bool           `json:"success"`
	Concept domain.Concept `json:"concept"`
}

// GenerateConcept always answers 200. Provider failures and malformed bodies
// both end in a fallback concept.
func (a *App) GenerateConcept(w http.ResponseWriter, r *http.Request) {
	var req conceptRequest
	if err := decodeBody(r, &req); err != nil {
		a.logger.Warn().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("concept: malformed body treated as empty")
		req = conceptRequest{}
	}
	res := a.concepts.Generate(r.Context(), concept.Request{
		Genre:    domain.ParseGenreFilter(req.GenreFilter),
		Era:      domain.ParseEraFilter(req.EraFilter),
		Hardcore: req.NodTheme,
	})
	w.Header().Set("X-Concept-Source", res.Source)
	a.json(w, http.StatusOK, conceptResponse{Success: true, Concept: res.Concept})
}
