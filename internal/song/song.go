// Package song recommends a soundtrack pick for a concept. The text provider is
// asked first; a static decade by genre table answers whenever it cannot.
package song

import (
	"context"
	"fmt"
	"strings"

	"posterlab/internal/domain"
	"posterlab/internal/extract"
	"posterlab/internal/infra"
	"posterlab/internal/providers/text"
)

const (
	SourceProvider = "provider"
	SourceFallback = "fallback"

	defaultMaxTokens = 400
)

type Options struct {
	Text       text.Provider
	MaxTokens  int
	Logger     *infra.Logger
	OnFallback func(reason string, err error)
}

type Service struct {
	text       text.Provider
	maxTokens  int
	logger     *infra.Logger
	onFallback func(reason string, err error)
}

type Result struct {
	Recommendation domain.SongRecommendation
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
	return &Service{
		text:       provider,
		maxTokens:  maxTokens,
		logger:     infra.LoggerOrDiscard(opts.Logger),
		onFallback: opts.OnFallback,
	}
}

// Recommend never fails. A concept without title or synopsis skips the
// provider entirely.
func (s *Service) Recommend(ctx context.Context, c *domain.Concept) Result {
	if c == nil || strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Synopsis) == "" {
		return s.fallback(c, "incomplete_concept", nil)
	}
	raw, err := s.text.Complete(ctx, BuildPrompt(c), s.maxTokens)
	if err != nil {
		return s.fallback(c, domain.FallbackReason(err), err)
	}
	rec := extract.Song(raw)
	if rec == nil {
		return s.fallback(c, "extraction_failed", nil)
	}
	if !rec.Complete() {
		return s.fallback(c, "invalid_recommendation", nil)
	}
	if strings.TrimSpace(string(rec.Year)) == "" {
		rec.Year = "Unknown"
	}
	s.logger.Info().
		Str("provider", s.text.Name()).
		Str("song", rec.Title).
		Str("artist", rec.Artist).
		Msg("song recommended")
	return Result{Recommendation: *rec, Source: SourceProvider}
}

func (s *Service) fallback(c *domain.Concept, reason string, err error) Result {
	ev := s.logger.Warn().Str("provider", s.text.Name()).Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("song: using fallback")
	if s.onFallback != nil {
		s.onFallback(reason, err)
	}
	return Result{Recommendation: Fallback(c), Source: SourceFallback, FallbackReason: reason}
}

// BuildPrompt renders the recommendation instruction for c.
func BuildPrompt(c *domain.Concept) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a music expert and film soundtrack consultant. Based on this movie concept, ")
	sb.WriteString("recommend the PERFECT song that would capture the essence and mood of this film.\n\n")
	sb.WriteString("MOVIE DETAILS:\n")
	fmt.Fprintf(sb, "Title: %q\n", c.Title)
	fmt.Fprintf(sb, "Genre: %s\n", orDefault(string(c.Genre), "Unknown"))
	fmt.Fprintf(sb, "Era: %s\n", orDefault(string(c.Decade), "Unknown"))
	fmt.Fprintf(sb, "Tagline: %q\n", orDefault(c.Tagline, "N/A"))
	fmt.Fprintf(sb, "Synopsis: %q\n\n", c.Synopsis)
	sb.WriteString("CRITICAL: You MUST respond with ONLY a valid JSON object. No additional text, explanation, or formatting. Just the JSON.\n\n")
	sb.WriteString("Example format:\n")
	sb.WriteString(`{"title": "Song Title", "artist": "Artist Name", "year": "1985", "reason": "This song captures the film's themes because..."}`)
	sb.WriteString("\n\nYour JSON response:")
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
