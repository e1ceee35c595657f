package domain

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// Decade is one of the eight supported film eras.
type Decade string

const (
	Decade1950s Decade = "1950s"
	Decade1960s Decade = "1960s"
	Decade1970s Decade = "1970s"
	Decade1980s Decade = "1980s"
	Decade1990s Decade = "1990s"
	Decade2000s Decade = "2000s"
	Decade2010s Decade = "2010s"
	Decade2020s Decade = "2020s"
)

// DefaultDecade is used wherever a decade is needed but none was supplied.
const DefaultDecade = Decade1980s

// Decades lists every supported decade in chronological order.
var Decades = []Decade{
	Decade1950s, Decade1960s, Decade1970s, Decade1980s,
	Decade1990s, Decade2000s, Decade2010s, Decade2020s,
}

// Valid reports whether d is one of the supported decades.
func (d Decade) Valid() bool {
	for _, known := range Decades {
		if d == known {
			return true
		}
	}
	return false
}

// Genre is the canonical genre label carried by a concept.
type Genre string

const (
	GenreHorror Genre = "Horror"
	GenreSciFi  Genre = "Sci-Fi"
	GenreFusion Genre = "Fusion"
)

// ParseGenre maps free-form provider output onto a canonical genre.
func ParseGenre(s string) (Genre, bool) {
	switch cases.Fold().String(strings.TrimSpace(s)) {
	case "horror":
		return GenreHorror, true
	case "sci-fi", "scifi", "sci fi", "science fiction":
		return GenreSciFi, true
	case "fusion", "horror/sci-fi", "sci-fi/horror", "horror sci-fi":
		return GenreFusion, true
	default:
		return "", false
	}
}

// RenderStyle is an era-true medium label.
type RenderStyle string

const (
	RenderLithograph     RenderStyle = "hand-painted lithograph"
	RenderSilkscreen     RenderStyle = "silkscreen halftone"
	RenderAirbrushed     RenderStyle = "airbrushed illustration"
	RenderPaintedMontage RenderStyle = "painted montage"
	RenderPhotoComposite RenderStyle = "studio photo-composite"
	RenderDigital        RenderStyle = "digital composite"
)

// RenderStyles lists the accepted render_style values.
var RenderStyles = []RenderStyle{
	RenderLithograph, RenderSilkscreen, RenderAirbrushed,
	RenderPaintedMontage, RenderPhotoComposite, RenderDigital,
}

// BaselineBanned are the content terms every visual spec must exclude.
var BaselineBanned = []string{"gore", "blood", "weapons", "graphic injury"}

// Camera describes the framing of the key art.
type Camera struct {
	Shot         string `json:"shot"`
	Lens         string `json:"lens"`
	DepthOfField string `json:"depth_of_field"`
}

// VisualSpec is the art-direction block of a concept.
type VisualSpec struct {
	Subgenre      string   `json:"subgenre"`
	Palette       []string `json:"palette"`
	Camera        Camera   `json:"camera"`
	Composition   string   `json:"composition"`
	Lighting      string   `json:"lighting"`
	Environment   string   `json:"environment"`
	WardrobeProps string   `json:"wardrobe_props"`
	Motifs        []string `json:"motifs"`
	Keywords      []string `json:"keywords"`
	Banned        []string `json:"banned"`
}

// Concept is the structured creative brief produced for every concept request.
// VisualSpec is a pointer so an absent block can be told apart from an empty one.
type Concept struct {
	Title        string      `json:"title"`
	Tagline      string      `json:"tagline"`
	Decade       Decade      `json:"decade"`
	Genre        Genre       `json:"genre"`
	Synopsis     string      `json:"synopsis"`
	VisualSpec   *VisualSpec `json:"visual_spec"`
	RenderStyle  RenderStyle `json:"render_style"`
	HardcoreMode bool        `json:"nod_theme"`
	Seed         int         `json:"seed"`
}

// UnmarshalJSON decodes c field by field. Provider output drifts in type
// (quoted seeds, string booleans, lists given as one string), and such drift
// must not discard the rest of the concept. A visual_spec that is not an
// object leaves VisualSpec nil.
func (c *Concept) UnmarshalJSON(data []byte) error {
	f, ok, err := LooseFields(data)
	if err != nil || !ok {
		return err
	}
	*c = Concept{
		Title:        LooseString(LooseField(f, "title")),
		Tagline:      LooseString(LooseField(f, "tagline")),
		Decade:       Decade(LooseString(LooseField(f, "decade"))),
		Genre:        Genre(LooseString(LooseField(f, "genre"))),
		Synopsis:     LooseString(LooseField(f, "synopsis")),
		RenderStyle:  RenderStyle(LooseString(LooseField(f, "render_style"))),
		HardcoreMode: LooseBool(LooseField(f, "nod_theme")),
		Seed:         LooseInt(LooseField(f, "seed")),
	}
	if raw := LooseField(f, "visual_spec"); isObject(raw) {
		var vs VisualSpec
		if err := json.Unmarshal(raw, &vs); err != nil {
			return err
		}
		c.VisualSpec = &vs
	}
	return nil
}

func (v *VisualSpec) UnmarshalJSON(data []byte) error {
	f, ok, err := LooseFields(data)
	if err != nil || !ok {
		return err
	}
	*v = VisualSpec{
		Subgenre:      LooseString(LooseField(f, "subgenre")),
		Palette:       LooseStrings(LooseField(f, "palette")),
		Composition:   LooseString(LooseField(f, "composition")),
		Lighting:      LooseString(LooseField(f, "lighting")),
		Environment:   LooseString(LooseField(f, "environment")),
		WardrobeProps: LooseString(LooseField(f, "wardrobe_props")),
		Motifs:        LooseStrings(LooseField(f, "motifs")),
		Keywords:      LooseStrings(LooseField(f, "keywords")),
		Banned:        LooseStrings(LooseField(f, "banned")),
	}
	if raw := LooseField(f, "camera"); raw != nil {
		return json.Unmarshal(raw, &v.Camera)
	}
	return nil
}

// UnmarshalJSON accepts a camera object or a bare shot description.
func (c *Camera) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*c = Camera{Shot: LooseString(data)}
		return nil
	}
	f, ok, err := LooseFields(data)
	if err != nil || !ok {
		return err
	}
	*c = Camera{
		Shot:         LooseString(LooseField(f, "shot")),
		Lens:         LooseString(LooseField(f, "lens")),
		DepthOfField: LooseString(LooseField(f, "depth_of_field")),
	}
	return nil
}

// MergeBanned returns banned with every baseline term appended when missing.
// Comparison is case-insensitive and the original order is preserved.
func MergeBanned(banned []string) []string {
	out := make([]string, 0, len(banned)+len(BaselineBanned))
	seen := make(map[string]struct{}, len(banned)+len(BaselineBanned))
	for _, term := range append(append([]string{}, banned...), BaselineBanned...) {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	return out
}
