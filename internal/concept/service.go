// Package concept turns user filters into a structured film concept. A text
// provider is asked first; anything it fails to deliver is replaced by a
// deterministic concept built from literal tables, so Generate never fails.
package concept

import (
	"context"
	"time"

	"posterlab/internal/domain"
	"posterlab/internal/extract"
	"posterlab/internal/infra"
	"posterlab/internal/providers/text"
)

const (
	SourceProvider = "provider"
	SourceFallback = "fallback"

	defaultMaxTokens = 900
)

type Options struct {
	Text       text.Provider
	MaxTokens  int
	Rand       Rand
	Now        func() time.Time
	Logger     *infra.Logger
	OnFallback func(reason string, err error)
}

type Service struct {
	text       text.Provider
	maxTokens  int
	rand       Rand
	now        func() time.Time
	logger     *infra.Logger
	onFallback func(reason string, err error)
}

// Request carries the normalised filters of one concept request.
type Request struct {
	Genre    domain.GenreFilter
	Era      domain.EraFilter
	Hardcore bool
}

type Result struct {
	Concept        domain.Concept
	Theme          string
	Source         string
	FallbackReason string
}

func NewService(opts Options) *Service {
	provider := opts.Text
	if provider == nil {
		provider = text.Unavailable{Provider: "text"}
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = GlobalRand{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		text:       provider,
		maxTokens:  maxTokens,
		rand:       rnd,
		now:        now,
		logger:     infra.LoggerOrDiscard(opts.Logger),
		onFallback: opts.OnFallback,
	}
}

// Generate runs prompt, provider, extraction and validation in sequence.
func (s *Service) Generate(ctx context.Context, req Request) Result {
	p := BuildPrompt(req.Genre, req.Era, req.Hardcore, s.rand, s.now)

	var (
		candidate *domain.Concept
		reason    string
		cause     error
	)
	raw, err := s.text.Complete(ctx, p.Prompt, s.maxTokens)
	switch {
	case err != nil:
		reason, cause = domain.FallbackReason(err), err
	default:
		candidate = extract.Concept(raw)
		if candidate == nil {
			reason = "extraction_failed"
		} else if !Valid(candidate) {
			reason = "invalid_concept"
		}
	}

	c := EnsureValid(candidate, p.Decade, req.Genre, p.Seed, req.Hardcore)
	res := Result{Concept: c, Theme: p.Theme, Source: SourceProvider}
	if reason != "" {
		res.Source = SourceFallback
		res.FallbackReason = reason
		s.useFallback(reason, cause)
	}
	s.logger.Info().
		Str("provider", s.text.Name()).
		Str("source", res.Source).
		Str("decade", string(c.Decade)).
		Str("genre", string(c.Genre)).
		Int("seed", c.Seed).
		Bool("hardcore", req.Hardcore).
		Msg("concept generated")
	return res
}

func (s *Service) useFallback(reason string, err error) {
	ev := s.logger.Warn().Str("provider", s.text.Name()).Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("concept: using fallback")
	if s.onFallback != nil {
		s.onFallback(reason, err)
	}
}
