package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SongRecommendation is a single soundtrack pick for a concept.
type SongRecommendation struct {
	Title  string     `json:"title"`
	Artist string     `json:"artist"`
	Year   FlexString `json:"year"`
	Reason string     `json:"reason"`
}

// Complete reports whether the fields the front end renders are present.
func (s *SongRecommendation) Complete() bool {
	return s != nil && s.Title != "" && s.Artist != "" && s.Reason != ""
}

// FlexString decodes from either a JSON string or a JSON number.
// Providers are inconsistent about quoting years.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}
