package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"posterlab/internal/domain"
	"posterlab/internal/infra"
)

type ServiceOptions struct {
	Chain          *Chain
	Styles         *StyleMaps
	NegativePrompt string
	AspectRatio    string
	Logger         *infra.Logger
}

// Service turns a concept into a data: URI. Unlike concepts it never
// substitutes a placeholder; failures are returned to the caller.
type Service struct {
	chain    *Chain
	styles   StyleMaps
	negative string
	aspect   string
	logger   *infra.Logger
}

type GenerateInput struct {
	Concept        *domain.Concept
	VisualElements string
	Preferred      string
}

type Output struct {
	ImageURL  string
	Generator string
	Prompt    string
}

func NewService(opts ServiceOptions) *Service {
	styles := DefaultStyleMaps()
	if opts.Styles != nil {
		styles = *opts.Styles
	}
	negative := strings.TrimSpace(opts.NegativePrompt)
	if negative == "" {
		negative = DefaultNegativePrompt
	}
	chain := opts.Chain
	if chain == nil {
		chain = NewChain(opts.Logger)
	}
	return &Service{
		chain:    chain,
		styles:   styles,
		negative: negative,
		aspect:   NormalizeAspectRatio(opts.AspectRatio),
		logger:   infra.LoggerOrDiscard(opts.Logger),
	}
}

// Chain exposes the provider chain for health probes.
func (s *Service) Chain() *Chain { return s.chain }

func (s *Service) Generate(ctx context.Context, in GenerateInput) (Output, error) {
	if in.Concept == nil && strings.TrimSpace(in.VisualElements) == "" {
		return Output{}, fmt.Errorf("image: concept or visualElements required: %w", domain.ErrInvalidRequest)
	}
	hardcore := in.Concept != nil && in.Concept.HardcoreMode
	prompt := BuildPrompt(in.Concept, in.VisualElements, s.styles, hardcore)

	start := time.Now()
	img, generator, err := s.chain.Generate(ctx, Request{
		Prompt:         prompt,
		NegativePrompt: s.negative,
		AspectRatio:    s.aspect,
	}, in.Preferred)
	if err != nil {
		s.logger.Error().
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("image: generation failed")
		return Output{}, err
	}
	s.logger.Info().
		Str("generator", generator).
		Dur("elapsed", time.Since(start)).
		Msg("image: generated")
	return Output{ImageURL: img.DataURI(), Generator: generator, Prompt: prompt}, nil
}
