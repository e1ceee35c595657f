package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The Loose* helpers read a single JSON value of unknown shape. A value of the
// wrong kind yields the zero value so one bad field never rejects the object
// it belongs to.

// LooseString renders strings verbatim, numbers and booleans as their literal
// text and arrays as a comma-joined list. Objects and null are empty.
func LooseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return s
	case '[':
		return strings.Join(LooseStrings(raw), ", ")
	case '{', 'n':
		return ""
	case 't', 'f':
		return string(raw)
	default:
		var n json.Number
		if json.Unmarshal(raw, &n) != nil {
			return ""
		}
		return n.String()
	}
}

// LooseStrings accepts an array of scalars or a single comma-separated string.
// Blank entries are dropped.
func LooseStrings(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var parts []string
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return nil
		}
		for _, item := range items {
			parts = append(parts, LooseString(item))
		}
	case '{', 'n':
		return nil
	default:
		parts = strings.Split(LooseString(raw), ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// LooseInt accepts a number or a numeric string. Fractions are truncated.
func LooseInt(raw json.RawMessage) int {
	s := strings.TrimSpace(LooseString(raw))
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// LooseBool accepts a boolean, or "true", "yes", "on" or "1" in any case.
// Everything else is false.
func LooseBool(raw json.RawMessage) bool {
	switch strings.ToLower(strings.TrimSpace(LooseString(raw))) {
	case "true", "yes", "on", "1":
		return true
	}
	return false
}

// LooseFields decodes an object into its raw members. ok is false for null;
// any other non-object is an error.
func LooseFields(data []byte) (fields map[string]json.RawMessage, ok bool, err error) {
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, err
	}
	return fields, fields != nil, nil
}

// LooseField returns the member named key, falling back to a case-insensitive
// match the way encoding/json does for struct fields.
func LooseField(fields map[string]json.RawMessage, key string) json.RawMessage {
	if v, ok := fields[key]; ok {
		return v
	}
	for k, v := range fields {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
