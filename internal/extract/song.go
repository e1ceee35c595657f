package extract

import (
	"regexp"
	"strings"

	"posterlab/internal/domain"
)

var (
	songTitleRe  = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	songArtistRe = regexp.MustCompile(`"artist"\s*:\s*"([^"]+)"`)
	songYearRe   = regexp.MustCompile(`"year"\s*:\s*"?([^",}\s]+)"?`)
	songReasonRe = regexp.MustCompile(`"reason"\s*:\s*"([^"]+)"`)
)

// Song adds a third, field-level tier on top of JSON: when no span decodes,
// title, artist and reason are pulled out individually. Year is optional.
func Song(raw string) *domain.SongRecommendation {
	if rec, ok := JSON[domain.SongRecommendation](raw, songDepth, "title"); ok {
		return &rec
	}
	return songFields(raw)
}

func songFields(raw string) *domain.SongRecommendation {
	title := firstGroup(songTitleRe, raw)
	artist := firstGroup(songArtistRe, raw)
	reason := firstGroup(songReasonRe, raw)
	if title == "" || artist == "" || reason == "" {
		return nil
	}
	year := firstGroup(songYearRe, raw)
	if year == "" {
		year = "Unknown"
	}
	return &domain.SongRecommendation{
		Title:  title,
		Artist: artist,
		Year:   domain.FlexString(year),
		Reason: reason,
	}
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
