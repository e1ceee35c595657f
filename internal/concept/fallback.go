package concept

import "posterlab/internal/domain"

type titleEntry struct {
	Title   string
	Tagline string
}

var normalTitles = []titleEntry{
	{"The Hollow Frequency", "Some signals should never be answered."},
	{"Echoes of Orion", "The stars remember everything."},
	{"The Glass Orchard", "Every harvest has a price."},
	{"Static Bloom", "It grows in the spaces between channels."},
	{"Beneath the Lighthouse", "The light keeps something in."},
	{"The Paper Moon Protocol", "Reality folds where no one is looking."},
	{"Vesper Station", "Nobody signs off from the last shift."},
	{"The Marrow Choir", "Listen closely. They are singing your name."},
	{"Hollowmere", "The lake gives back what it takes."},
	{"Signal Lost at Kepler Ridge", "Contact was only the beginning."},
	{"The Quiet Geometry", "Some angles were never meant to meet."},
	{"Afterglow Protocol", "When the lights return, so do they."},
}

var hardcoreTitles = []titleEntry{
	{"Feral Transmission", "The broadcast wants a body."},
	{"The Hunger Beneath Ward Nine", "Visiting hours are over. Forever."},
	{"Carrion Orbit", "Out here, nothing stays buried."},
	{"The Flesh Cartographer", "He maps what lies under your skin."},
	{"Rust Cathedral", "Pray to the machine. It is listening."},
	{"Host Signal", "Something is wearing the crew."},
	{"The Wailing Reactor", "Meltdown was the merciful option."},
	{"Nest of Teeth", "Sleep is when they feed."},
	{"Parasite Sun", "Daylight is the infection."},
	{"The Bone Archive", "Every file ends in a scream."},
	{"Grave Orbit", "Abandon ship. Abandon hope."},
	{"Mother of Static", "She hears you through every screen."},
}

// FallbackTitles returns the literal titles used by the fallback generator.
func FallbackTitles(hardcore bool) []string {
	table := titleTable(hardcore)
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.Title
	}
	return out
}

func titleTable(hardcore bool) []titleEntry {
	if hardcore {
		return hardcoreTitles
	}
	return normalTitles
}

type modeLiterals struct {
	Synopsis      string
	Subgenre      string
	Palette       []string
	Camera        domain.Camera
	Composition   string
	Lighting      string
	Environment   string
	WardrobeProps string
	Motifs        []string
}

var (
	normalLiterals = modeLiterals{
		Synopsis:      "An impossible discovery pulls a small, isolated community into a mystery that bends the rules of the world they thought they knew.",
		Subgenre:      "atmospheric mystery",
		Palette:       []string{"#1b1f3b", "#c94b4b", "#f2e8cf"},
		Camera:        domain.Camera{Shot: "medium wide", Lens: "35mm", DepthOfField: "moderate"},
		Composition:   "lone figure off-centre against a vast backdrop",
		Lighting:      "moody rim light with soft haze",
		Environment:   "remote outpost at dusk",
		WardrobeProps: "period-appropriate coat, handheld lantern",
		Motifs:        []string{"fog", "distant lights", "long shadows"},
	}
	hardcoreLiterals = modeLiterals{
		Synopsis:      "A sealed facility loses contact with the outside world as something ancient and hungry begins rewriting the people trapped inside.",
		Subgenre:      "visceral dread",
		Palette:       []string{"#0a0a0a", "#7a0c0c", "#d9d2c5"},
		Camera:        domain.Camera{Shot: "tight close-up", Lens: "24mm wide-angle", DepthOfField: "shallow"},
		Composition:   "face half-lit, crowding the frame",
		Lighting:      "harsh single-source underlighting with deep falloff",
		Environment:   "flooded maintenance corridor",
		WardrobeProps: "torn uniform, flickering flashlight",
		Motifs:        []string{"static", "cracked glass", "flickering lights"},
	}
)

var decadeRenderStyles = map[domain.Decade]domain.RenderStyle{
	domain.Decade1950s: domain.RenderLithograph,
	domain.Decade1960s: domain.RenderSilkscreen,
	domain.Decade1970s: domain.RenderPaintedMontage,
	domain.Decade1980s: domain.RenderAirbrushed,
	domain.Decade1990s: domain.RenderPhotoComposite,
	domain.Decade2000s: domain.RenderPhotoComposite,
	domain.Decade2010s: domain.RenderDigital,
	domain.Decade2020s: domain.RenderDigital,
}

// RenderStyleFor returns the era-true medium for decade, defaulting to the
// 1980s medium.
func RenderStyleFor(decade domain.Decade) domain.RenderStyle {
	if s, ok := decadeRenderStyles[decade]; ok {
		return s
	}
	return decadeRenderStyles[domain.DefaultDecade]
}

// ResolveGenre maps a filter onto the genre a fallback concept carries.
func ResolveGenre(filter domain.GenreFilter) domain.Genre {
	switch filter {
	case domain.GenreFilterAny:
		return domain.GenreSciFi
	case domain.GenreFilterHorror:
		return domain.GenreHorror
	}
	if g, ok := domain.ParseGenre(string(filter)); ok {
		return g
	}
	return domain.GenreSciFi
}

// Fallback builds a complete concept from literal tables. It is a pure
// function of its arguments.
func Fallback(decade domain.Decade, genre domain.GenreFilter, seed int, hardcore bool) domain.Concept {
	if !decade.Valid() {
		decade = domain.DefaultDecade
	}
	table := titleTable(hardcore)
	entry := table[pickIndex(seed, len(table))]
	lit := normalLiterals
	if hardcore {
		lit = hardcoreLiterals
	}
	return domain.Concept{
		Title:    entry.Title,
		Tagline:  entry.Tagline,
		Decade:   decade,
		Genre:    ResolveGenre(genre),
		Synopsis: lit.Synopsis,
		VisualSpec: &domain.VisualSpec{
			Subgenre:      lit.Subgenre,
			Palette:       append([]string(nil), lit.Palette...),
			Camera:        lit.Camera,
			Composition:   lit.Composition,
			Lighting:      lit.Lighting,
			Environment:   lit.Environment,
			WardrobeProps: lit.WardrobeProps,
			Motifs:        append([]string(nil), lit.Motifs...),
			Keywords:      []string{"poster", "no text", "cinematic", "professional"},
			Banned:        domain.MergeBanned(nil),
		},
		RenderStyle:  RenderStyleFor(decade),
		HardcoreMode: hardcore,
		Seed:         seed,
	}
}

// Valid reports whether a provider concept is usable as-is.
func Valid(c *domain.Concept) bool {
	return c != nil && c.Title != "" && c.VisualSpec != nil
}

// EnsureValid returns candidate repaired to satisfy the concept invariants, or
// the fallback concept when candidate is unusable. It never fails.
func EnsureValid(candidate *domain.Concept, decade domain.Decade, genre domain.GenreFilter, seed int, hardcore bool) domain.Concept {
	if !Valid(candidate) {
		return Fallback(decade, genre, seed, hardcore)
	}
	out := *candidate
	spec := *candidate.VisualSpec
	spec.Banned = domain.MergeBanned(spec.Banned)
	out.VisualSpec = &spec

	out.HardcoreMode = hardcore
	out.Seed = seed
	if !out.Decade.Valid() {
		out.Decade = decade
		if !out.Decade.Valid() {
			out.Decade = domain.DefaultDecade
		}
	}
	if g, ok := domain.ParseGenre(string(out.Genre)); ok {
		out.Genre = g
	} else {
		out.Genre = ResolveGenre(genre)
	}
	if out.RenderStyle == "" {
		out.RenderStyle = RenderStyleFor(out.Decade)
	}
	return out
}

func pickIndex(seed, n int) int {
	i := seed % n
	if i < 0 {
		i += n
	}
	return i
}
