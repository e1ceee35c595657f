package text

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

const (
	AnthropicName           = "anthropic"
	defaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultTextTimeout      = 30 * time.Second
)

type AnthropicOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Anthropic calls the Messages API directly over HTTP.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *infra.Logger
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropic(opts AnthropicOptions) *Anthropic {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultAnthropicModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTextTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Anthropic{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
		client:  client,
		logger:  infra.LoggerOrDiscard(opts.Logger),
	}
}

func (a *Anthropic) Name() string { return AnthropicName }

// Model returns the configured model identifier.
func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.apiKey == "" {
		return "", domain.NewUnavailable(AnthropicName)
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", domain.NewMalformed(AnthropicName, fmt.Errorf("encode request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.do(ctx, http.MethodPost, "/v1/messages", body)
	if err != nil {
		return "", err
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", domain.NewMalformed(AnthropicName, fmt.Errorf("decode response: %w", err))
	}
	var sb strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" || block.Type == "" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", domain.NewMalformed(AnthropicName, errors.New("empty content"))
	}
	a.logger.Debug().
		Str("model", a.model).
		Int("chars", len(out)).
		Msg("anthropic: completion received")
	return out, nil
}

// Ping lists a single model to verify the key and connectivity.
func (a *Anthropic) Ping(ctx context.Context) error {
	if a.apiKey == "" {
		return domain.NewUnavailable(AnthropicName)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	_, err := a.do(ctx, http.MethodGet, "/v1/models?limit=1", nil)
	return err
}

func (a *Anthropic) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, domain.NewNetworkError(AnthropicName, fmt.Errorf("build request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(AnthropicName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(AnthropicName, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 300 {
		var detail anthropicErrorResponse
		msg := ""
		if err := json.Unmarshal(raw, &detail); err == nil {
			msg = strings.TrimSpace(detail.Error.Message)
		}
		return nil, domain.NewHTTPError(AnthropicName, resp.StatusCode, msg)
	}
	return raw, nil
}

var _ Provider = (*Anthropic)(nil)
