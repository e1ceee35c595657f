package song

import (
	"fmt"
	"strings"

	"posterlab/internal/domain"
)

type category string

const (
	categoryHorror  category = "horror"
	categorySciFi   category = "sci-fi"
	categoryDefault category = "default"
)

type track struct {
	Title  string
	Artist string
	Year   string
}

var songTable = map[domain.Decade]map[category]track{
	domain.Decade1950s: {
		categoryHorror:  {"Monster Mash", "Bobby Pickett", "1962"},
		categorySciFi:   {"Flying Purple People Eater", "Sheb Wooley", "1958"},
		categoryDefault: {"Only You", "The Platters", "1955"},
	},
	domain.Decade1960s: {
		categoryHorror:  {"I Put a Spell on You", "Screamin' Jay Hawkins", "1956"},
		categorySciFi:   {"Space Oddity", "David Bowie", "1969"},
		categoryDefault: {"The Sound of Silence", "Simon & Garfunkel", "1964"},
	},
	domain.Decade1970s: {
		categoryHorror:  {"Superstition", "Stevie Wonder", "1972"},
		categorySciFi:   {"Space Truckin'", "Deep Purple", "1972"},
		categoryDefault: {"Hotel California", "Eagles", "1976"},
	},
	domain.Decade1980s: {
		categoryHorror:  {"Thriller", "Michael Jackson", "1982"},
		categorySciFi:   {"Blue Monday", "New Order", "1983"},
		categoryDefault: {"Don't Stop Believin'", "Journey", "1981"},
	},
	domain.Decade1990s: {
		categoryHorror:  {"Closer", "Nine Inch Nails", "1994"},
		categorySciFi:   {"Firestarter", "The Prodigy", "1996"},
		categoryDefault: {"Smells Like Teen Spirit", "Nirvana", "1991"},
	},
	domain.Decade2000s: {
		categoryHorror:  {"Bodies", "Drowning Pool", "2001"},
		categorySciFi:   {"Technologic", "Daft Punk", "2005"},
		categoryDefault: {"Hips Don't Lie", "Shakira", "2006"},
	},
	domain.Decade2010s: {
		categoryHorror:  {"Heathens", "Twenty One Pilots", "2016"},
		categorySciFi:   {"Radioactive", "Imagine Dragons", "2012"},
		categoryDefault: {"Shape of You", "Ed Sheeran", "2017"},
	},
	domain.Decade2020s: {
		categoryHorror:  {"bad guy", "Billie Eilish", "2019"},
		categorySciFi:   {"Blinding Lights", "The Weeknd", "2019"},
		categoryDefault: {"drivers license", "Olivia Rodrigo", "2021"},
	},
}

// Fallback picks a song from the static table keyed by the concept's decade
// and genre. It accepts a nil or partial concept.
func Fallback(c *domain.Concept) domain.SongRecommendation {
	decade := domain.DefaultDecade
	title := "this film"
	var genre string
	if c != nil {
		if c.Decade.Valid() {
			decade = c.Decade
		}
		if t := strings.TrimSpace(c.Title); t != "" {
			title = t
		}
		genre = string(c.Genre)
	}
	cat := categoryFor(genre)
	pick := songTable[decade][cat]
	label := string(cat)
	if cat == categoryDefault {
		label = "classic"
	}
	return domain.SongRecommendation{
		Title:  pick.Title,
		Artist: pick.Artist,
		Year:   domain.FlexString(pick.Year),
		Reason: fmt.Sprintf("This %s %s song perfectly captures the mood and era of %q with its atmospheric sound and thematic resonance.", pick.Year, label, title),
	}
}

func categoryFor(genre string) category {
	g := strings.ToLower(genre)
	switch {
	case strings.Contains(g, "horror"):
		return categoryHorror
	case strings.Contains(g, "sci-fi"):
		return categorySciFi
	default:
		return categoryDefault
	}
}
