package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

const (
	ImagenName            = "imagen"
	defaultImagenModel    = "imagen-3.0-generate-002"
	defaultImagenBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultRequestTimeout = 45 * time.Second
)

type ImagenOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Imagen calls the Gemini API :predict endpoint over plain HTTP. Each call is a
// single attempt bounded by the configured timeout; wrap it in Retrying for
// backoff.
type Imagen struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *infra.Logger
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount      int    `json:"sampleCount"`
	AspectRatio      string `json:"aspectRatio,omitempty"`
	NegativePrompt   string `json:"negativePrompt,omitempty"`
	PersonGeneration string `json:"personGeneration,omitempty"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewImagen(opts ImagenOptions) *Imagen {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultImagenBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultImagenModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Imagen{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		client:  client,
		logger:  infra.LoggerOrDiscard(opts.Logger),
	}
}

func (g *Imagen) Name() string { return ImagenName }

func (g *Imagen) Configured() bool { return g.apiKey != "" }

// Model returns the configured model identifier.
func (g *Imagen) Model() string { return g.model }

func (g *Imagen) Generate(ctx context.Context, req Request) (Image, error) {
	if !g.Configured() {
		return Image{}, domain.NewUnavailable(ImagenName)
	}
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: strings.TrimSpace(req.Prompt)}},
		Parameters: predictParameters{
			SampleCount:      1,
			AspectRatio:      NormalizeAspectRatio(req.AspectRatio),
			NegativePrompt:   strings.TrimSpace(req.NegativePrompt),
			PersonGeneration: "allow_adult",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Image{}, domain.NewMalformed(ImagenName, fmt.Errorf("encode request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	raw, err := g.do(ctx, http.MethodPost, g.modelPath()+":predict", body)
	if err != nil {
		return Image{}, err
	}
	img, err := ExtractImage(raw)
	if err != nil {
		return Image{}, domain.NewMalformed(ImagenName, err)
	}
	g.logger.Debug().
		Str("model", g.model).
		Str("mime", img.MIMEType).
		Int("bytes_b64", len(img.Base64)).
		Msg("imagen: image generated")
	return img, nil
}

// Ping fetches the model resource to verify the key and connectivity.
func (g *Imagen) Ping(ctx context.Context) error {
	if !g.Configured() {
		return domain.NewUnavailable(ImagenName)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	_, err := g.do(ctx, http.MethodGet, g.modelPath(), nil)
	return err
}

func (g *Imagen) modelPath() string {
	return "/models/" + url.PathEscape(g.model)
}

func (g *Imagen) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, domain.NewNetworkError(ImagenName, fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(ImagenName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(ImagenName, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 300 {
		var detail googleErrorResponse
		msg := ""
		if err := json.Unmarshal(raw, &detail); err == nil {
			msg = strings.TrimSpace(detail.Error.Message)
		}
		return nil, domain.NewHTTPError(ImagenName, resp.StatusCode, msg)
	}
	return raw, nil
}

var _ Provider = (*Imagen)(nil)
