// Package text holds the text-generation providers used for concepts and song
// recommendations. Every failure is reported as a *domain.ProviderError and no
// call is ever retried here; callers fall back instead.
package text

import (
	"context"

	"posterlab/internal/domain"
)

// Provider completes a single prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	Ping(ctx context.Context) error
}

// Unavailable stands in for a provider whose key is not configured.
type Unavailable struct {
	Provider string
}

func (u Unavailable) Name() string { return u.Provider }

func (u Unavailable) Complete(context.Context, string, int) (string, error) {
	return "", domain.NewUnavailable(u.Provider)
}

func (u Unavailable) Ping(context.Context) error {
	return domain.NewUnavailable(u.Provider)
}

var _ Provider = Unavailable{}
