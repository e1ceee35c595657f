package extract

import (
	"fmt"
	"strings"
	"testing"

	"posterlab/internal/domain"
)

const prettyConcept = `{
  "title": "Test Film",
  "tagline": "The signal was never meant for us.",
  "decade": "1980s",
  "genre": "Horror",
  "synopsis": "A radio astronomer hears a voice she recognises.",
  "visual_spec": {
    "subgenre": "cosmic horror",
    "palette": ["#0b0c10", "#1f2833", "#c5c6c7"],
    "camera": {"shot": "low angle", "lens": "35mm", "depth_of_field": "deep"},
    "composition": "centered figure beneath a dish array",
    "lighting": "sodium vapour",
    "environment": "desert observatory",
    "wardrobe_props": "headphones, notebook",
    "motifs": ["static"],
    "keywords": ["poster", "no text"],
    "banned": ["gore"]
  },
  "render_style": "airbrushed illustration",
  "nod_theme": false,
  "seed": 4242
}`

func TestConceptTiers(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		raw     string
		wantNil bool
	}{
		{name: "pretty_json", raw: prettyConcept},
		{name: "wrapped_in_prose", raw: "Sure! Here is the concept you asked for:\n\n" + prettyConcept + "\n\nLet me know if you want changes."},
		{name: "code_fence", raw: "```json\n" + prettyConcept + "\n```"},
		{name: "noise_span_first", raw: "Notes {draft} follow.\n" + prettyConcept},
		{name: "corrupted", raw: `{"title": "Test Film", "tagline": "cut off", "visual_spec": {"palette": ["#111111", `, wantNil: true},
		{name: "empty", raw: "   ", wantNil: true},
		{name: "prose_only", raw: "I cannot help with that.", wantNil: true},
		{name: "object_without_title", raw: `{"camera": {"shot": "wide"}}`, wantNil: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Concept(tc.raw)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("Concept() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Concept() = nil, want parsed concept")
			}
			if got.Title != "Test Film" {
				t.Fatalf("title = %q, want %q", got.Title, "Test Film")
			}
			if got.VisualSpec == nil || got.VisualSpec.Camera.Lens != "35mm" {
				t.Fatalf("visual spec not decoded: %+v", got.VisualSpec)
			}
			if got.Seed != 4242 {
				t.Fatalf("seed = %d, want 4242", got.Seed)
			}
		})
	}
}

func TestConceptToleratesFieldTypeDrift(t *testing.T) {
	t.Parallel()
	const spec = `"visual_spec": {"subgenre": "folk horror", "camera": {"lens": "50mm"}%s}`
	cases := []struct {
		name  string
		raw   string
		check func(t *testing.T, c *domain.Concept)
	}{
		{
			name: "seed_string",
			raw:  `{"title": "Test Film", "seed": "4242", ` + fmt.Sprintf(spec, "") + `}`,
			check: func(t *testing.T, c *domain.Concept) {
				if c.Seed != 4242 {
					t.Fatalf("seed = %d, want 4242", c.Seed)
				}
			},
		},
		{
			name: "wardrobe_array",
			raw:  `{"title": "Test Film", ` + fmt.Sprintf(spec, `, "wardrobe_props": ["coat", "lantern"]`) + `}`,
			check: func(t *testing.T, c *domain.Concept) {
				if c.VisualSpec.WardrobeProps != "coat, lantern" {
					t.Fatalf("wardrobe_props = %q", c.VisualSpec.WardrobeProps)
				}
			},
		},
		{
			name: "nod_theme_string",
			raw:  `{"title": "Test Film", "nod_theme": "false", ` + fmt.Sprintf(spec, "") + `}`,
			check: func(t *testing.T, c *domain.Concept) {
				if c.HardcoreMode {
					t.Fatal("nod_theme \"false\" decoded as true")
				}
			},
		},
		{
			name: "motifs_string",
			raw:  `{"title": "Test Film", ` + fmt.Sprintf(spec, `, "motifs": "fog"`) + `}`,
			check: func(t *testing.T, c *domain.Concept) {
				if len(c.VisualSpec.Motifs) != 1 || c.VisualSpec.Motifs[0] != "fog" {
					t.Fatalf("motifs = %v", c.VisualSpec.Motifs)
				}
			},
		},
		{
			name: "camera_string_in_prose",
			raw:  "Here it is: " + `{"title": "Test Film", "visual_spec": {"camera": "low angle", "palette": "#111111, #222222"}}`,
			check: func(t *testing.T, c *domain.Concept) {
				if c.VisualSpec.Camera.Shot != "low angle" || len(c.VisualSpec.Palette) != 2 {
					t.Fatalf("visual spec = %+v", c.VisualSpec)
				}
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Concept(tc.raw)
			if got == nil {
				t.Fatal("Concept() = nil, want parsed concept")
			}
			if got.Title != "Test Film" || got.VisualSpec == nil {
				t.Fatalf("concept = %+v", got)
			}
			tc.check(t, got)
		})
	}
}

func TestBraceExprMatchesDepthTwoPattern(t *testing.T) {
	t.Parallel()
	want := `\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`
	if got := braceExpr(2); got != want {
		t.Fatalf("braceExpr(2) = %q, want %q", got, want)
	}
	if bracePattern(3) != bracePattern(3) {
		t.Fatal("expected compiled pattern to be cached")
	}
}

func TestSongTiers(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		raw       string
		wantTitle string
		wantYear  string
		wantNil   bool
	}{
		{
			name:      "strict",
			raw:       `{"title": "Blue Monday", "artist": "New Order", "year": "1983", "reason": "Cold synths for a cold war."}`,
			wantTitle: "Blue Monday",
			wantYear:  "1983",
		},
		{
			name:      "numeric_year_in_prose",
			raw:       `Here you go: {"title": "Thriller", "artist": "Michael Jackson", "year": 1982, "reason": "Obvious."} Enjoy.`,
			wantTitle: "Thriller",
			wantYear:  "1982",
		},
		{
			name:      "field_regex_trailing_comma",
			raw:       `{"title": "Blue Monday", "artist": "New Order", "year": "1983", "reason": "Cold synths", }`,
			wantTitle: "Blue Monday",
			wantYear:  "1983",
		},
		{
			name:      "field_regex_without_year",
			raw:       `"title": "Closer", "artist": "Nine Inch Nails", "reason": "Industrial dread"`,
			wantTitle: "Closer",
			wantYear:  "Unknown",
		},
		{
			name:    "missing_artist",
			raw:     `"title": "Closer", "reason": "Industrial dread"`,
			wantNil: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Song(tc.raw)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("Song() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Song() = nil")
			}
			if got.Title != tc.wantTitle {
				t.Fatalf("title = %q, want %q", got.Title, tc.wantTitle)
			}
			if string(got.Year) != tc.wantYear {
				t.Fatalf("year = %q, want %q", got.Year, tc.wantYear)
			}
			if strings.TrimSpace(got.Artist) == "" {
				t.Fatal("artist should be populated")
			}
		})
	}
}
