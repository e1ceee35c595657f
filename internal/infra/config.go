package infra

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Accepted environment names per provider key, in lookup order.
var (
	AnthropicKeyEnv = []string{"ANTHROPIC_API_KEY", "anthropic_api_key", "ANTHROPIC_KEY", "CLAUDE_API_KEY"}
	OpenAIKeyEnv    = []string{"OPENAI_API_KEY", "openai_api_key", "OPENAI_KEY"}
	GeminiKeyEnv    = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "gemini_api_key"}
)

const (
	TextProviderAnthropic = "anthropic"
	TextProviderGemini    = "gemini"

	ImageProviderImagen = "imagen"
	ImageProviderOpenAI = "openai"
)

// APIKey is a provider credential together with the variable it came from.
type APIKey struct {
	Value  string
	Source string
	prefix string
}

// Present reports whether a key was found.
func (k APIKey) Present() bool { return k.Value != "" }

// ValidFormat reports whether the key carries the provider's expected prefix.
func (k APIKey) ValidFormat() bool {
	return k.Present() && strings.HasPrefix(k.Value, k.prefix)
}

// Redacted returns the first seven characters followed by an ellipsis.
func (k APIKey) Redacted() string {
	if !k.Present() {
		return ""
	}
	if len(k.Value) <= 7 {
		return "..."
	}
	return k.Value[:7] + "..."
}

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	Region             string
	CORSAllowedOrigins []string
	GeoIPDBPath        string

	TextProvider     string
	AnthropicKey     APIKey
	AnthropicModel   string
	AnthropicBaseURL string
	GeminiKey        APIKey
	GeminiTextModel  string
	GeminiBaseURL    string

	ImageProviders   []string
	ImagenModel      string
	ImagenBaseURL    string
	OpenAIKey        APIKey
	OpenAIImageModel string
	OpenAIBaseURL    string

	ImageMaxAttempts    int
	ImageRetryBase      time.Duration
	ImageRequestTimeout time.Duration
	TextRequestTimeout  time.Duration
	ConceptMaxTokens    int
	SongMaxTokens       int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults. Missing provider keys are not an error; the matching endpoints
// degrade to their fallbacks.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		Region:             firstEnv("VERCEL_REGION", "AWS_REGION"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),

		TextProvider:     strings.ToLower(getEnv("TEXT_PROVIDER", TextProviderAnthropic)),
		AnthropicKey:     lookupKey(AnthropicKeyEnv, "sk-ant-"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GeminiKey:        lookupKey(GeminiKeyEnv, "AIza"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),

		ImageProviders:   splitList(strings.ToLower(getEnv("IMAGE_PROVIDERS", "imagen,openai"))),
		ImagenModel:      getEnv("IMAGEN_MODEL", "imagen-3.0-generate-002"),
		ImagenBaseURL:    getEnv("IMAGEN_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIKey:        lookupKey(OpenAIKeyEnv, "sk-"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		ImageMaxAttempts:    getEnvInt("IMAGE_MAX_ATTEMPTS", 3),
		ImageRetryBase:      time.Millisecond * time.Duration(getEnvInt("IMAGE_RETRY_BASE_MS", 1000)),
		ImageRequestTimeout: time.Second * time.Duration(getEnvInt("IMAGE_REQUEST_TIMEOUT_SECONDS", 45)),
		TextRequestTimeout:  time.Second * time.Duration(getEnvInt("TEXT_REQUEST_TIMEOUT_SECONDS", 30)),
		ConceptMaxTokens:    getEnvInt("CONCEPT_MAX_TOKENS", 900),
		SongMaxTokens:       getEnvInt("SONG_MAX_TOKENS", 400),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.TextProvider {
	case TextProviderAnthropic, TextProviderGemini:
	default:
		return nil, fmt.Errorf("TEXT_PROVIDER must be %q or %q, got %q", TextProviderAnthropic, TextProviderGemini, cfg.TextProvider)
	}
	for _, name := range cfg.ImageProviders {
		if name != ImageProviderImagen && name != ImageProviderOpenAI {
			return nil, fmt.Errorf("IMAGE_PROVIDERS: unknown provider %q", name)
		}
	}
	if cfg.ImageMaxAttempts < 1 {
		return nil, fmt.Errorf("IMAGE_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// CredentialEnvNames lists environment variable names that look like provider
// credentials. Only names are returned, never values.
func CredentialEnvNames() []string {
	var out []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		upper := strings.ToUpper(name)
		if strings.Contains(upper, "KEY") || strings.Contains(upper, "ANTHROPIC") ||
			strings.Contains(upper, "OPENAI") || strings.Contains(upper, "GEMINI") || strings.Contains(upper, "CLAUDE") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func lookupKey(names []string, prefix string) APIKey {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return APIKey{Value: v, Source: name, prefix: prefix}
		}
	}
	return APIKey{prefix: prefix}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
