package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

// Chain tries providers in order and returns the first image produced.
// Providers without credentials are skipped rather than counted as failures.
type Chain struct {
	providers []Provider
	logger    *infra.Logger
}

func NewChain(logger *infra.Logger, providers ...Provider) *Chain {
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept, logger: infra.LoggerOrDiscard(logger)}
}

// Providers returns the chain members in their configured order.
func (c *Chain) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}

// Configured reports whether at least one provider can be called.
func (c *Chain) Configured() bool {
	for _, p := range c.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

// Generate returns the image and the name of the provider that produced it.
// preferred, when it names a chain member, moves that member to the front.
func (c *Chain) Generate(ctx context.Context, req Request, preferred string) (Image, string, error) {
	var lastErr error
	for _, p := range c.ordered(preferred) {
		if !p.Configured() {
			continue
		}
		img, err := p.Generate(ctx, req)
		if err == nil {
			return img, p.Name(), nil
		}
		lastErr = err
		c.logger.Warn().
			Err(err).
			Str("provider", p.Name()).
			Str("reason", domain.FallbackReason(err)).
			Msg("image: provider failed; trying next")
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		return Image{}, "", fmt.Errorf("image: no provider configured: %w", domain.ErrProviderUnavailable)
	}
	return Image{}, "", lastErr
}

func (c *Chain) ordered(preferred string) []Provider {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred == "" {
		return c.providers
	}
	out := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.Name() == preferred {
			out = append(out, p)
		}
	}
	for _, p := range c.providers {
		if p.Name() != preferred {
			out = append(out, p)
		}
	}
	return out
}

// IsUnavailable reports whether err means no image provider could be called.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrProviderUnavailable)
}
