package image

import (
	"fmt"
	"strings"

	"posterlab/internal/domain"
)

// DefaultNegativePrompt keeps lettering out of the generated art.
const DefaultNegativePrompt = "text, words, letters, typography, titles, credits, signatures, logos, watermarks, captions"

// StyleMaps holds the decade and render-style hints used by BuildPrompt.
type StyleMaps struct {
	Era    map[domain.Decade]string
	Render map[domain.RenderStyle]string
}

// DefaultStyleMaps returns the built-in era and medium hints.
func DefaultStyleMaps() StyleMaps {
	return StyleMaps{
		Era: map[domain.Decade]string{
			domain.Decade1950s: "vintage painted portrait style with warm color palette",
			domain.Decade1960s: "retro illustration with bold geometric shapes and pop art influence",
			domain.Decade1970s: "airbrushed painting with soft gradients and earthy tones",
			domain.Decade1980s: "neon-lit cinematic portrait with dramatic shadows and vibrant colors",
			domain.Decade1990s: "digital matte painting with photorealistic details",
			domain.Decade2000s: "polished digital artwork with clean composition",
			domain.Decade2010s: "minimalist portrait with negative space and contemporary aesthetics",
			domain.Decade2020s: "modern digital painting with atmospheric lighting",
		},
		Render: map[domain.RenderStyle]string{
			domain.RenderLithograph:     "hand-painted lithograph texture with visible grain",
			domain.RenderSilkscreen:     "silkscreen halftone with limited ink layers",
			domain.RenderAirbrushed:     "smooth airbrushed gradients",
			domain.RenderPaintedMontage: "painted montage of overlapping scenes",
			domain.RenderPhotoComposite: "studio photo-composite with dramatic rim light",
			domain.RenderDigital:        "clean digital composite with atmospheric depth",
		},
	}
}

// BuildPrompt converts a concept and free-form visual elements into a single
// comma-separated instruction. A nil concept yields a generic 1980s horror
// portrait.
func BuildPrompt(c *domain.Concept, visualElements string, maps StyleMaps, hardcore bool) string {
	genre := string(domain.GenreHorror)
	decade := domain.DefaultDecade
	var spec *domain.VisualSpec
	var render domain.RenderStyle
	if c != nil {
		if c.Genre != "" {
			genre = string(c.Genre)
		}
		if c.Decade.Valid() {
			decade = c.Decade
		}
		spec = c.VisualSpec
		render = c.RenderStyle
	}

	parts := []string{
		"Portrait painting of a character",
		fmt.Sprintf("%s film aesthetic from the %s", genre, decade),
		eraHint(maps, decade),
		maps.Render[render],
	}
	if hardcore {
		parts = append(parts, "intense, unsettling atmosphere without gore")
	}
	elements := strings.TrimSpace(visualElements)
	if elements == "" && spec != nil {
		elements = joinNonEmpty(", ", spec.Composition, spec.Lighting, spec.Environment)
	}
	parts = append(parts, elements)
	if spec != nil && len(spec.Palette) > 0 {
		parts = append(parts, "color palette "+strings.Join(spec.Palette, " "))
	}
	parts = append(parts,
		"Professional concept art illustration",
		"No text, no words, no letters anywhere in the image",
	)
	return joinNonEmpty(", ", parts...)
}

func eraHint(maps StyleMaps, decade domain.Decade) string {
	if hint, ok := maps.Era[decade]; ok {
		return hint
	}
	return maps.Era[domain.DefaultDecade]
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
