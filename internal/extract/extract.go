// Package extract recovers structured payloads from free-form model output.
//
// Provider text is unreliable, so every function here reports failure with a
// nil or false result rather than an error.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"posterlab/internal/domain"
)

const (
	conceptDepth = 3
	songDepth    = 2
)

var (
	patternMu sync.Mutex
	patterns  = map[int]*regexp.Regexp{}
)

// Concept runs the strict and brace-span tiers against raw and returns the
// first object carrying a title key. Concept decodes each field leniently, so
// a mistyped field does not reject the candidate.
func Concept(raw string) *domain.Concept {
	c, ok := JSON[domain.Concept](raw, conceptDepth, "title")
	if !ok {
		return nil
	}
	return &c
}

// JSON decodes raw into T. It first tries the trimmed text as a whole, then
// every brace-balanced span up to depth levels deep, left to right. A candidate
// is accepted only when it is a JSON object containing all required keys.
func JSON[T any](raw string, depth int, required ...string) (T, bool) {
	var zero T
	text := strings.TrimSpace(raw)
	if text == "" {
		return zero, false
	}
	if v, ok := decodeObject[T](text, required); ok {
		return v, true
	}
	for _, span := range bracePattern(depth).FindAllString(text, -1) {
		if v, ok := decodeObject[T](span, required); ok {
			return v, true
		}
	}
	return zero, false
}

func decodeObject[T any](text string, required []string) (T, bool) {
	var zero T
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return zero, false
	}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return zero, false
		}
	}
	var decoded T
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return zero, false
	}
	return decoded, true
}

// bracePattern matches a {...} span nesting at most depth levels. RE2 has no
// recursion, so the expression is unrolled once per level.
func bracePattern(depth int) *regexp.Regexp {
	if depth < 1 {
		depth = 1
	}
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patterns[depth]; ok {
		return re
	}
	re := regexp.MustCompile(braceExpr(depth))
	patterns[depth] = re
	return re
}

func braceExpr(depth int) string {
	if depth <= 1 {
		return `\{[^{}]*\}`
	}
	return `\{[^{}]*(?:` + braceExpr(depth-1) + `[^{}]*)*\}`
}
