package text

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

const (
	GeminiName         = "gemini"
	defaultGeminiModel = "gemini-2.5-flash"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Gemini completes prompts through the official genai SDK. A Gemini without a
// key reports ProviderUnavailable on every call.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *infra.Logger
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTextTimeout
	}
	g := &Gemini{
		model:   model,
		timeout: timeout,
		logger:  infra.LoggerOrDiscard(opts.Logger),
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return g, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Name() string { return GeminiName }

// Model returns the configured model identifier.
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.client == nil {
		return "", domain.NewUnavailable(GeminiName)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", classifyGenaiError(err)
	}
	out := strings.TrimSpace(responseText(resp))
	if out == "" {
		return "", domain.NewMalformed(GeminiName, errors.New("empty candidates"))
	}
	g.logger.Debug().
		Str("model", g.model).
		Int("chars", len(out)).
		Msg("gemini: completion received")
	return out, nil
}

// Ping fetches the configured model's metadata.
func (g *Gemini) Ping(ctx context.Context) error {
	if g.client == nil {
		return domain.NewUnavailable(GeminiName)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return classifyGenaiError(err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return domain.NewHTTPError(GeminiName, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code != 0 {
		return domain.NewHTTPError(GeminiName, apiErrPtr.Code, apiErrPtr.Message)
	}
	return domain.NewTransportError(GeminiName, err)
}

var _ Provider = (*Gemini)(nil)
