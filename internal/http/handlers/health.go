package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"posterlab/internal/infra"
	"posterlab/internal/middleware"
)

type keyStatus struct {
	Present     bool   `json:"present"`
	Length      int    `json:"length"`
	ValidFormat bool   `json:"validFormat"`
	Prefix      string `json:"prefix,omitempty"`
	Source      string `json:"source,omitempty"`
}

type healthDebug struct {
	EnvKeys       []string `json:"envKeys"`
	TotalEnvVars  int      `json:"totalEnvVars"`
	GoVersion     string   `json:"goVersion"`
	Platform      string   `json:"platform"`
	ClientCountry string   `json:"clientCountry,omitempty"`
	TextProvider  string   `json:"textProvider,omitempty"`
	ImageChain    []string `json:"imageChain,omitempty"`
}

type probeResult struct {
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    string                 `json:"timestamp"`
	Environment  string                 `json:"environment"`
	Region       string                 `json:"region,omitempty"`
	APIKeys      map[string]keyStatus   `json:"apiKeys"`
	Debug        healthDebug            `json:"debug"`
	Connectivity map[string]probeResult `json:"connectivity,omitempty"`
}

// Health reports key presence and runtime details. POST additionally pings
// every provider concurrently.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := a.healthSnapshot(r)
	if r.Method == http.MethodPost {
		resp.Connectivity = a.probe(r.Context())
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) healthSnapshot(r *http.Request) healthResponse {
	chain := make([]string, 0)
	for _, p := range a.images.Chain().Providers() {
		chain = append(chain, p.Name())
	}
	return healthResponse{
		Status:      "OK",
		Timestamp:   a.now().UTC().Format(time.RFC3339),
		Environment: a.cfg.AppEnv,
		Region:      a.cfg.Region,
		APIKeys: map[string]keyStatus{
			"anthropic": statusOf(a.cfg.AnthropicKey),
			"openai":    statusOf(a.cfg.OpenAIKey),
			"gemini":    statusOf(a.cfg.GeminiKey),
		},
		Debug: healthDebug{
			EnvKeys:       infra.CredentialEnvNames(),
			TotalEnvVars:  len(os.Environ()),
			GoVersion:     runtime.Version(),
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			ClientCountry: middleware.CountryFromContext(r.Context()),
			TextProvider:  a.cfg.TextProvider,
			ImageChain:    chain,
		},
	}
}

func statusOf(k infra.APIKey) keyStatus {
	return keyStatus{
		Present:     k.Present(),
		Length:      len(k.Value),
		ValidFormat: k.ValidFormat(),
		Prefix:      k.Redacted(),
		Source:      k.Source,
	}
}

// probe pings every provider in parallel. A failing probe is recorded, not
// returned, so one slow provider never cancels the others.
func (a *App) probe(ctx context.Context) map[string]probeResult {
	var (
		mu  sync.Mutex
		out = make(map[string]probeResult, len(a.probes))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range a.probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, a.probeTimeout)
			defer cancel()
			start := time.Now()
			err := p.Ping(pctx)
			res := probeResult{OK: err == nil, LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Error = err.Error()
			}
			mu.Lock()
			out[p.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
