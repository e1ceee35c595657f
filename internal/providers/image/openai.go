package image

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

const (
	OpenAIName         = "openai"
	defaultOpenAIModel = openai.CreateImageModelDallE3
)

type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// OpenAI generates images through the DALL-E endpoint, asking for base64
// output so the result never depends on a short-lived URL.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *infra.Logger
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	o := &OpenAI{
		model:   model,
		timeout: timeout,
		logger:  infra.LoggerOrDiscard(opts.Logger),
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return o
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	o.client = openai.NewClientWithConfig(cfg)
	return o
}

func (o *OpenAI) Name() string { return OpenAIName }

func (o *OpenAI) Configured() bool { return o.client != nil }

// Model returns the configured model identifier.
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Image, error) {
	if !o.Configured() {
		return Image{}, domain.NewUnavailable(OpenAIName)
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	imageReq := openai.ImageRequest{
		Prompt:         strings.TrimSpace(req.Prompt),
		Model:          o.model,
		N:              1,
		Size:           openAISize(o.model, req.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if o.model == openai.CreateImageModelDallE3 {
		imageReq.Style = openai.CreateImageStyleVivid
		imageReq.Quality = openai.CreateImageQualityStandard
	}
	resp, err := o.client.CreateImage(ctx, imageReq)
	if err != nil {
		return Image{}, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].B64JSON) == "" {
		return Image{}, domain.NewMalformed(OpenAIName, domain.ErrNoImageData)
	}
	o.logger.Debug().
		Str("model", o.model).
		Int("bytes_b64", len(resp.Data[0].B64JSON)).
		Msg("openai: image generated")
	return Image{Base64: strings.TrimSpace(resp.Data[0].B64JSON), MIMEType: "image/png"}, nil
}

// Ping retrieves the model resource.
func (o *OpenAI) Ping(ctx context.Context) error {
	if !o.Configured() {
		return domain.NewUnavailable(OpenAIName)
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if _, err := o.client.GetModel(ctx, o.model); err != nil {
		return classifyOpenAIError(err)
	}
	return nil
}

// openAISize picks the request size. Only DALL-E 3 accepts the tall and wide
// sizes; every other model gets a square.
func openAISize(model, aspect string) string {
	if model != openai.CreateImageModelDallE3 {
		return openai.CreateImageSize1024x1024
	}
	switch NormalizeAspectRatio(aspect) {
	case "3:4", "9:16":
		return openai.CreateImageSize1024x1792
	case "4:3", "16:9":
		return openai.CreateImageSize1792x1024
	default:
		return openai.CreateImageSize1024x1024
	}
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return domain.NewHTTPError(OpenAIName, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return domain.NewHTTPError(OpenAIName, reqErr.HTTPStatusCode, "")
	}
	return domain.NewTransportError(OpenAIName, err)
}

var _ Provider = (*OpenAI)(nil)
