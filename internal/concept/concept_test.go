package concept

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"posterlab/internal/domain"
)

type fixedRand struct{ n int }

func (f fixedRand) IntN(n int) int { return f.n % n }

type fakeText struct {
	out   string
	err   error
	calls int
	last  string
}

func (f *fakeText) Name() string { return "fake" }

func (f *fakeText) Complete(_ context.Context, prompt string, _ int) (string, error) {
	f.calls++
	f.last = prompt
	return f.out, f.err
}

func (f *fakeText) Ping(context.Context) error { return nil }

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestBuildPromptDecadeIsAlwaysSupported(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(1, 2))
	genres := []domain.GenreFilter{domain.GenreFilterAny, domain.GenreFilterHorror, domain.GenreFilterSciFi, domain.GenreFilterFusion}
	eras := append([]domain.EraFilter{domain.EraFilterAny}, eraFilters()...)
	for _, g := range genres {
		for _, era := range eras {
			for _, hardcore := range []bool{false, true} {
				for i := 0; i < 20; i++ {
					p := BuildPrompt(g, era, hardcore, rnd, nil)
					if !p.Decade.Valid() {
						t.Fatalf("decade %q not supported", p.Decade)
					}
					if era != domain.EraFilterAny && string(p.Decade) != string(era) {
						t.Fatalf("decade = %q, want %q", p.Decade, era)
					}
					if p.Seed < 0 || p.Seed >= SeedModulus {
						t.Fatalf("seed %d out of range", p.Seed)
					}
				}
			}
		}
	}
}

func TestBuildPromptEmbedsConstraints(t *testing.T) {
	t.Parallel()
	p := BuildPrompt(domain.GenreFilterFusion, domain.EraFilter(domain.Decade1970s), true, fixedRand{n: 2}, fixedClock(1_700_000_123_456))
	if p.Seed != 23456 {
		t.Fatalf("seed = %d, want 23456", p.Seed)
	}
	if p.Theme != hardcoreFusionThemes[2] {
		t.Fatalf("theme = %q, want %q", p.Theme, hardcoreFusionThemes[2])
	}
	for _, want := range []string{
		`Era MUST be "1970s"`,
		"tasteful fusion of Horror and Sci-Fi",
		p.Theme,
		"Dark, Shadow, Night, Blood, Death, Steel, Cross, Stone",
		"PG-13",
		`"seed": 23456`,
		`"nod_theme": true`,
		`"render_style": "painted montage"`,
	} {
		if !strings.Contains(p.Prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p.Prompt)
		}
	}
}

func TestBuildPromptIsNotMemoised(t *testing.T) {
	t.Parallel()
	ms := int64(0)
	now := func() time.Time { ms += 7; return time.UnixMilli(ms) }
	a := BuildPrompt(domain.GenreFilterAny, domain.EraFilterAny, false, GlobalRand{}, now)
	b := BuildPrompt(domain.GenreFilterAny, domain.EraFilterAny, false, GlobalRand{}, now)
	if a.Seed == b.Seed {
		t.Fatalf("expected a fresh seed per call, got %d twice", a.Seed)
	}
}

func TestThemePoolSelection(t *testing.T) {
	t.Parallel()
	if got := themePool(domain.GenreFilterHorror, false); len(got) != len(creativeThemes) {
		t.Fatalf("non-hardcore pool size = %d", len(got))
	}
	if got := themePool(domain.GenreFilterAny, true); len(got) != len(hardcoreHorrorThemes)+len(hardcoreSciFiThemes)+len(hardcoreFusionThemes) {
		t.Fatalf("combined hardcore pool size = %d", len(got))
	}
	if len(creativeThemes) != 42 {
		t.Fatalf("creative themes = %d, want 42", len(creativeThemes))
	}
}

func TestEnsureValidIsTotal(t *testing.T) {
	t.Parallel()
	candidates := []*domain.Concept{
		nil,
		{},
		{Title: "No Spec"},
		{VisualSpec: &domain.VisualSpec{}},
		{Title: "Kept", Decade: "1890s", Genre: "western", VisualSpec: &domain.VisualSpec{Banned: []string{"clowns"}}},
	}
	for i, c := range candidates {
		for _, seed := range []int{0, 11, 99999, -3} {
			got := EnsureValid(c, domain.Decade1960s, domain.GenreFilterAny, seed, i%2 == 0)
			if got.Title == "" || got.VisualSpec == nil {
				t.Fatalf("candidate %d: incomplete concept %+v", i, got)
			}
			if !got.Decade.Valid() {
				t.Fatalf("candidate %d: decade %q", i, got.Decade)
			}
			for _, term := range domain.BaselineBanned {
				if !slices.Contains(got.VisualSpec.Banned, term) {
					t.Fatalf("candidate %d: banned %v missing %q", i, got.VisualSpec.Banned, term)
				}
			}
			if got.Seed != seed {
				t.Fatalf("candidate %d: seed = %d, want %d", i, got.Seed, seed)
			}
		}
	}
}

func TestEnsureValidKeepsProviderFields(t *testing.T) {
	t.Parallel()
	in := &domain.Concept{
		Title:        "Test Film",
		Genre:        "horror",
		Decade:       domain.Decade1950s,
		HardcoreMode: true,
		Seed:         1,
		VisualSpec:   &domain.VisualSpec{Lighting: "sodium vapour"},
	}
	got := EnsureValid(in, domain.Decade1980s, domain.GenreFilterHorror, 777, false)
	if got.Title != "Test Film" || got.VisualSpec.Lighting != "sodium vapour" {
		t.Fatalf("provider fields not kept: %+v", got)
	}
	if got.Decade != domain.Decade1950s {
		t.Fatalf("decade = %q, want provider value 1950s", got.Decade)
	}
	if got.Genre != domain.GenreHorror {
		t.Fatalf("genre = %q, want Horror", got.Genre)
	}
	if got.HardcoreMode || got.Seed != 777 {
		t.Fatalf("nod_theme/seed not forced: %+v", got)
	}
	if in.VisualSpec.Banned != nil {
		t.Fatal("candidate must not be mutated")
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	t.Parallel()
	for _, hardcore := range []bool{false, true} {
		for _, g := range []domain.GenreFilter{domain.GenreFilterAny, domain.GenreFilterHorror, domain.GenreFilterSciFi, domain.GenreFilterFusion} {
			a, _ := json.Marshal(Fallback(domain.Decade1990s, g, 4242, hardcore))
			b, _ := json.Marshal(Fallback(domain.Decade1990s, g, 4242, hardcore))
			if !bytes.Equal(a, b) {
				t.Fatalf("fallback differs:\n%s\n%s", a, b)
			}
		}
	}
}

func TestFallbackTables(t *testing.T) {
	t.Parallel()
	for _, hardcore := range []bool{false, true} {
		titles := FallbackTitles(hardcore)
		if len(titles) != 12 {
			t.Fatalf("hardcore=%v: %d titles, want 12", hardcore, len(titles))
		}
		for _, title := range titles {
			for _, word := range BannedTitleWords {
				if strings.Contains(strings.ToLower(title), strings.ToLower(word)) {
					t.Fatalf("title %q uses banned word %q", title, word)
				}
			}
		}
	}
	c := Fallback(domain.Decade1980s, domain.GenreFilterAny, 13, false)
	if c.Title != normalTitles[1].Title || c.Tagline != normalTitles[1].Tagline {
		t.Fatalf("seed 13 picked %q", c.Title)
	}
	if c.Genre != domain.GenreSciFi {
		t.Fatalf("genre = %q, want Sci-Fi", c.Genre)
	}
	if c.RenderStyle != domain.RenderAirbrushed {
		t.Fatalf("render style = %q", c.RenderStyle)
	}
	if got := Fallback(domain.Decade1980s, domain.GenreFilterFusion, 0, true); got.Genre != domain.GenreFusion || !got.HardcoreMode {
		t.Fatalf("fusion hardcore fallback = %+v", got)
	}
}

func TestServiceUsesProviderConcept(t *testing.T) {
	t.Parallel()
	provider := &fakeText{out: "Here you go:\n" + `{"title":"Test Film","tagline":"x","decade":"1980s","genre":"Horror","visual_spec":{"palette":["#000000"]},"nod_theme":true,"seed":1}`}
	svc := NewService(Options{Text: provider, Rand: fixedRand{}, Now: fixedClock(42)})
	res := svc.Generate(context.Background(), Request{
		Genre: domain.GenreFilterHorror,
		Era:   domain.EraFilter(domain.Decade1980s),
	})
	if res.Source != SourceProvider {
		t.Fatalf("source = %q (reason %q)", res.Source, res.FallbackReason)
	}
	c := res.Concept
	if c.Title != "Test Film" || c.Decade != domain.Decade1980s || c.Genre != domain.GenreHorror || c.HardcoreMode {
		t.Fatalf("concept = %+v", c)
	}
	if c.Seed != 42 {
		t.Fatalf("seed = %d, want 42", c.Seed)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestServiceFallsBack(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		provider   *fakeText
		wantReason string
	}{
		{name: "network", provider: &fakeText{err: domain.NewNetworkError("fake", errors.New("dial tcp: refused"))}, wantReason: "network"},
		{name: "missing_key", provider: &fakeText{err: domain.NewUnavailable("fake")}, wantReason: "missing_api_key"},
		{name: "http_500", provider: &fakeText{err: domain.NewHTTPError("fake", 500, "")}, wantReason: "http_500"},
		{name: "prose", provider: &fakeText{out: "I'd rather not."}, wantReason: "extraction_failed"},
		{name: "no_visual_spec", provider: &fakeText{out: `{"title":"Half"}`}, wantReason: "invalid_concept"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var hookReason string
			svc := NewService(Options{
				Text:       tc.provider,
				Rand:       fixedRand{},
				Now:        fixedClock(5),
				OnFallback: func(reason string, err error) { hookReason = reason },
			})
			res := svc.Generate(context.Background(), Request{Genre: domain.GenreFilterAny, Era: domain.EraFilterAny})
			if res.Source != SourceFallback || res.FallbackReason != tc.wantReason {
				t.Fatalf("result = %+v, want fallback %q", res, tc.wantReason)
			}
			if hookReason != tc.wantReason {
				t.Fatalf("hook reason = %q", hookReason)
			}
			if !slices.Contains(FallbackTitles(false), res.Concept.Title) {
				t.Fatalf("title %q is not a fallback title", res.Concept.Title)
			}
			if res.Concept.Seed != 5 {
				t.Fatalf("seed = %d, want 5", res.Concept.Seed)
			}
		})
	}
}

func eraFilters() []domain.EraFilter {
	out := make([]domain.EraFilter, 0, len(domain.Decades))
	for _, d := range domain.Decades {
		out = append(out, domain.EraFilter(d))
	}
	return out
}
