package concept

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"posterlab/internal/domain"
)

// Rand is the randomness source for decade and theme selection.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// GlobalRand draws from the concurrency-safe top-level math/rand/v2 source.
type GlobalRand struct{}

func (GlobalRand) IntN(n int) int { return rand.IntN(n) }

// SeedModulus bounds the per-request seed.
const SeedModulus = 100000

// BannedTitleWords are words the provider is told to keep out of titles.
var BannedTitleWords = []string{"Dark", "Shadow", "Night", "Blood", "Death", "Steel", "Cross", "Stone"}

// ConceptPrompt is the rendered instruction plus the values it was built from.
type ConceptPrompt struct {
	Prompt string
	Decade domain.Decade
	Theme  string
	Seed   int
}

// BuildPrompt renders the concept instruction. Each call draws a fresh decade
// (when era is any), theme and seed.
func BuildPrompt(genre domain.GenreFilter, era domain.EraFilter, hardcore bool, rnd Rand, now func() time.Time) ConceptPrompt {
	if rnd == nil {
		rnd = GlobalRand{}
	}
	if now == nil {
		now = time.Now
	}
	decade, ok := era.Decade()
	if !ok {
		decade = domain.Decades[rnd.IntN(len(domain.Decades))]
	}
	pool := themePool(genre, hardcore)
	theme := pool[rnd.IntN(len(pool))]
	seed := SeedFrom(now())

	sb := &strings.Builder{}
	sb.WriteString("You are a film art director. Produce ONLY valid JSON. No prose.\n\n")
	sb.WriteString("Constraints:\n")
	fmt.Fprintf(sb, "- Era MUST be %q\n", decade)
	fmt.Fprintf(sb, "- Genre %s\n", genreConstraint(genre))
	fmt.Fprintf(sb, "- Creative seed: %q\n", theme)
	fmt.Fprintf(sb, "- Avoid banned title words (%s)\n", strings.Join(BannedTitleWords, ", "))
	sb.WriteString("- Keep PG-13 implication (no graphic detail)\n")
	if hardcore {
		sb.WriteString("- Intensity: push dread and unease as far as PG-13 allows; imply, never show\n")
	}
	fmt.Fprintf(sb, "- Add render_style: era-true medium (%s)\n\n", renderStyleChoices())
	sb.WriteString("Return JSON:\n")
	fmt.Fprintf(sb, `{
  "title": "Short original title",
  "tagline": "Atmospheric one-liner",
  "decade": %q,
  "genre": "Horror|Sci-Fi|Fusion",
  "synopsis": "1-2 sentences",
  "visual_spec": {
    "subgenre": "...",
    "palette": ["#hex","#hex","#hex"],
    "camera": {"shot":"...","lens":"...","depth_of_field":"..."},
    "composition": "...",
    "lighting": "...",
    "environment": "...",
    "wardrobe_props": "...",
    "motifs": ["..."],
    "keywords": ["poster","no text","cinematic","professional"],
    "banned": ["gore","blood","weapons","graphic injury"]
  },
  "render_style": %q,
  "nod_theme": %s,
  "seed": %d
}`, decade, RenderStyleFor(decade), strconv.FormatBool(hardcore), seed)

	return ConceptPrompt{
		Prompt: sb.String(),
		Decade: decade,
		Theme:  theme,
		Seed:   seed,
	}
}

// SeedFrom derives the request seed from a timestamp.
func SeedFrom(t time.Time) int {
	return int(t.UnixMilli() % SeedModulus)
}

func genreConstraint(genre domain.GenreFilter) string {
	switch genre {
	case domain.GenreFilterHorror:
		return `MUST be "Horror"`
	case domain.GenreFilterSciFi:
		return `MUST be "Sci-Fi"`
	case domain.GenreFilterFusion:
		return "MUST be a tasteful fusion of Horror and Sci-Fi"
	default:
		return "MUST be Horror or Sci-Fi (or fusion)"
	}
}

func renderStyleChoices() string {
	quoted := make([]string, len(domain.RenderStyles))
	for i, s := range domain.RenderStyles {
		quoted[i] = strconv.Quote(string(s))
	}
	return strings.Join(quoted, " | ")
}

func themePool(genre domain.GenreFilter, hardcore bool) []string {
	if !hardcore {
		return creativeThemes
	}
	switch genre {
	case domain.GenreFilterHorror:
		return hardcoreHorrorThemes
	case domain.GenreFilterSciFi:
		return hardcoreSciFiThemes
	case domain.GenreFilterFusion:
		return hardcoreFusionThemes
	default:
		return hardcoreAnyThemes
	}
}

var creativeThemes = []string{
	"time manipulation", "parallel dimensions", "artificial consciousness", "genetic memories",
	"color psychology", "mathematical nightmares", "botanical mutations", "memory trading",
	"gravity anomalies", "digital archaeology", "weather manipulation", "architectural haunting",
	"crystalline entities", "quantum entanglement", "molecular dissolution", "temporal echoes",
	"geometric demons", "photographic souls", "magnetic personalities", "elastic reality",
	"transparent beings", "living architecture", "cosmic dread", "eldritch signals",
	"body horror metamorphosis (non-graphic)", "occult conspiracies (non-graphic)",
	"witch covens (implied)", "alien first contact", "robotic uprising (PG-13)",
	"mind uploading", "cryogenic revival", "space colonies", "virtual realities",
	"bioengineered viruses (non-graphic)", "energy beings", "mirror dimension bleeding (abstract)",
	"emotional parasites (metaphoric)", "dream archaeology", "liquid shadows (lighting motif)",
	"paper-thin realities", "dimensional doorways", "bone libraries (symbolic)",
}

var hardcoreHorrorThemes = []string{
	"possession spreading through a family (implied)",
	"a cult that worships a drowned god",
	"an asylum that never released anyone",
	"folk ritual harvest with a human price (off-screen)",
	"a presence that mimics dead relatives",
	"sleep paralysis entity that follows you awake",
	"a village that feeds the forest every winter",
	"skin-walker sightings on an isolated ranch (implied)",
}

var hardcoreSciFiThemes = []string{
	"parasitic alien hive aboard a mining ship",
	"rogue AI farming its creators (non-graphic)",
	"terraforming plague rewriting human biology",
	"derelict vessel broadcasting a distress loop",
	"clone crew discovering the originals",
	"neural implant that edits your memories overnight",
	"quarantine moon where the dead keep working",
	"first contact that arrives as an infection",
}

var hardcoreFusionThemes = []string{
	"demonic signal hidden in deep-space telemetry",
	"haunted generation ship drifting for centuries",
	"occult experiments inside a particle collider",
	"biomechanical cathedral grown by something alien",
	"a seance conducted through a quantum computer",
	"ancient evil thawed from an arctic research core",
	"cybernetic cult harvesting souls as data",
	"a wormhole that opens onto a sunken chapel",
}

var hardcoreAnyThemes = concatThemes(hardcoreHorrorThemes, hardcoreSciFiThemes, hardcoreFusionThemes)

func concatThemes(pools ...[]string) []string {
	var out []string
	for _, p := range pools {
		out = append(out, p...)
	}
	return out
}
