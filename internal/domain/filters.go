package domain

import "strings"

// GenreFilter is the genre selection sent by the front end.
type GenreFilter string

const (
	GenreFilterAny    GenreFilter = "any"
	GenreFilterHorror GenreFilter = "horror"
	GenreFilterSciFi  GenreFilter = "sci-fi"
	GenreFilterFusion GenreFilter = "fusion"
)

// ParseGenreFilter normalises user input; anything unrecognised becomes any.
func ParseGenreFilter(s string) GenreFilter {
	switch GenreFilter(strings.ToLower(strings.TrimSpace(s))) {
	case GenreFilterHorror:
		return GenreFilterHorror
	case GenreFilterSciFi, "scifi":
		return GenreFilterSciFi
	case GenreFilterFusion:
		return GenreFilterFusion
	default:
		return GenreFilterAny
	}
}

// EraFilter is either "any" or one of the supported decades.
type EraFilter string

// EraFilterAny lets the prompt builder pick a decade.
const EraFilterAny EraFilter = "any"

// ParseEraFilter normalises user input; anything that is not a decade becomes any.
func ParseEraFilter(s string) EraFilter {
	d := Decade(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return EraFilter(d)
	}
	return EraFilterAny
}

// Decade returns the fixed decade for the filter, if any.
func (f EraFilter) Decade() (Decade, bool) {
	d := Decade(f)
	return d, d.Valid()
}
