package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"posterlab/internal/concept"
	"posterlab/internal/infra"
	"posterlab/internal/providers/image"
	"posterlab/internal/song"
)

// maxBodyBytes bounds request bodies. A concept with a full visual spec is a
// few kilobytes.
const maxBodyBytes = 1 << 20

const defaultProbeTimeout = 10 * time.Second

// Prober is anything the health endpoint can ping.
type Prober interface {
	Name() string
	Ping(ctx context.Context) error
}

type Deps struct {
	Config       *infra.Config
	Concepts     *concept.Service
	Images       *image.Service
	Songs        *song.Service
	Probes       []Prober
	ProbeTimeout time.Duration
	Logger       *infra.Logger
	Now          func() time.Time
}

type App struct {
	cfg          *infra.Config
	concepts     *concept.Service
	images       *image.Service
	songs        *song.Service
	probes       []Prober
	probeTimeout time.Duration
	logger       *infra.Logger
	now          func() time.Time
}

func NewApp(d Deps) *App {
	cfg := d.Config
	if cfg == nil {
		cfg = &infra.Config{}
	}
	concepts := d.Concepts
	if concepts == nil {
		concepts = concept.NewService(concept.Options{Logger: d.Logger})
	}
	images := d.Images
	if images == nil {
		images = image.NewService(image.ServiceOptions{Logger: d.Logger})
	}
	songs := d.Songs
	if songs == nil {
		songs = song.NewService(song.Options{Logger: d.Logger})
	}
	timeout := d.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		cfg:          cfg,
		concepts:     concepts,
		images:       images,
		songs:        songs,
		probes:       d.Probes,
		probeTimeout: timeout,
		logger:       infra.LoggerOrDiscard(d.Logger),
		now:          now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, errorResponse{Success: false, Error: msg})
}

// MethodNotAllowed is mounted as the router's 405 handler.
func (a *App) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (a *App) NotFound(w http.ResponseWriter, _ *http.Request) {
	a.error(w, http.StatusNotFound, "Not found")
}

// decodeBody reads a JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
