// Package bootstrap assembles providers, services and the HTTP handler from
// configuration. Every entry point goes through Build.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"posterlab/internal/concept"
	"posterlab/internal/http/handlers"
	"posterlab/internal/http/httpapi"
	"posterlab/internal/infra"
	"posterlab/internal/infra/geoip"
	"posterlab/internal/providers/image"
	"posterlab/internal/providers/text"
	"posterlab/internal/song"
)

// Container holds everything wired from one Config.
type Container struct {
	Config   *infra.Config
	Logger   *infra.Logger
	Text     text.Provider
	Images   *image.Service
	Concepts *concept.Service
	Songs    *song.Service
	App      *handlers.App
	Handler  http.Handler

	closers []io.Closer
}

// Build wires the container. A GeoIP database that fails to open is logged and
// skipped; edge headers still resolve countries.
func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Container, error) {
	logger = infra.LoggerOrDiscard(logger)
	c := &Container{Config: cfg, Logger: logger}

	tp, err := NewTextProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Text = tp

	chain, err := NewImageChain(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Images = image.NewService(image.ServiceOptions{Chain: chain, Logger: logger})

	c.Concepts = concept.NewService(concept.Options{
		Text:      tp,
		MaxTokens: cfg.ConceptMaxTokens,
		Logger:    logger,
	})
	c.Songs = song.NewService(song.Options{
		Text:      tp,
		MaxTokens: cfg.SongMaxTokens,
		Logger:    logger,
	})

	probes := []handlers.Prober{named{prefix: "text", Prober: tp}}
	for _, p := range chain.Providers() {
		probes = append(probes, named{prefix: "image", Prober: p})
	}
	c.App = handlers.NewApp(handlers.Deps{
		Config:   cfg,
		Concepts: c.Concepts,
		Images:   c.Images,
		Songs:    c.Songs,
		Probes:   probes,
		Logger:   logger,
	})

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip disabled")
		resolver = nil
	}
	if resolver != nil {
		c.closers = append(c.closers, resolver)
	}

	c.Handler = httpapi.NewRouter(c.App, httpapi.RouterOptions{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   geoip.Lookup(resolver),
		Logger:          logger,
	})

	logger.Info().
		Str("text_provider", tp.Name()).
		Bool("text_key", textKey(cfg).Present()).
		Strs("image_providers", cfg.ImageProviders).
		Bool("geoip", resolver != nil).
		Msg("container ready")
	return c, nil
}

// Close releases resources opened by Build.
func (c *Container) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewTextProvider returns the configured text provider. A missing key is not
// an error: the provider reports itself unavailable on every call.
func NewTextProvider(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (text.Provider, error) {
	switch cfg.TextProvider {
	case infra.TextProviderGemini:
		g, err := text.NewGemini(ctx, text.GeminiOptions{
			APIKey:  cfg.GeminiKey.Value,
			Model:   cfg.GeminiTextModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.TextRequestTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini text provider: %w", err)
		}
		return g, nil
	case infra.TextProviderAnthropic, "":
		return text.NewAnthropic(text.AnthropicOptions{
			APIKey:  cfg.AnthropicKey.Value,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
			Timeout: cfg.TextRequestTimeout,
			Logger:  logger,
		}), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown text provider %q", cfg.TextProvider)
	}
}

// NewImageChain builds one retrying provider per IMAGE_PROVIDERS entry, in order.
func NewImageChain(cfg *infra.Config, logger *infra.Logger) (*image.Chain, error) {
	providers := make([]image.Provider, 0, len(cfg.ImageProviders))
	for _, name := range cfg.ImageProviders {
		var p image.Provider
		switch name {
		case infra.ImageProviderImagen:
			p = image.NewImagen(image.ImagenOptions{
				APIKey:  cfg.GeminiKey.Value,
				Model:   cfg.ImagenModel,
				BaseURL: cfg.ImagenBaseURL,
				Timeout: cfg.ImageRequestTimeout,
				Logger:  logger,
			})
		case infra.ImageProviderOpenAI:
			p = image.NewOpenAI(image.OpenAIOptions{
				APIKey:  cfg.OpenAIKey.Value,
				Model:   cfg.OpenAIImageModel,
				BaseURL: cfg.OpenAIBaseURL,
				Timeout: cfg.ImageRequestTimeout,
				Logger:  logger,
			})
		default:
			return nil, fmt.Errorf("bootstrap: unknown image provider %q", name)
		}
		providers = append(providers, image.NewRetrying(p, image.RetryOptions{
			MaxAttempts: cfg.ImageMaxAttempts,
			BaseDelay:   cfg.ImageRetryBase,
			Logger:      logger,
		}))
	}
	return image.NewChain(logger, providers...), nil
}

func textKey(cfg *infra.Config) infra.APIKey {
	if cfg.TextProvider == infra.TextProviderGemini {
		return cfg.GeminiKey
	}
	return cfg.AnthropicKey
}

// named qualifies probe names so a text and an image provider from the same
// vendor do not collide.
type named struct {
	prefix string
	handlers.Prober
}

func (n named) Name() string { return n.prefix + "/" + n.Prober.Name() }
