package nlu

import (
	"regexp"
	"sort"
	"strings"
)

var (
	periodRunRe   = regexp.MustCompile(`\.{2,}`)
	questionRunRe = regexp.MustCompile(`\?+`)
	spaceRunRe    = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Normalizer cleans up a transcribed utterance: lower-case, known
// transcription misspellings fixed, punctuation and whitespace runs collapsed.
// Misspellings are matched as whole words, which keeps Normalize idempotent.
type Normalizer struct {
	corrections map[string]string
	typoRe      *regexp.Regexp
}

func NewNormalizer(corrections map[string]string) *Normalizer {
	n := &Normalizer{corrections: make(map[string]string, len(corrections))}

	keys := make([]string, 0, len(corrections))
	for wrong, right := range corrections {
		wrong = strings.ToLower(strings.TrimSpace(wrong))
		if wrong == "" {
			continue
		}
		n.corrections[wrong] = strings.ToLower(right)
		keys = append(keys, regexp.QuoteMeta(wrong))
	}
	if len(keys) == 0 {
		return n
	}

	// longest first so alternation never settles on a shorter key
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	n.typoRe = regexp.MustCompile(`\b(?:` + strings.Join(keys, "|") + `)\b`)

	return n
}

func (n *Normalizer) Normalize(query string) string {
	s := strings.ToLower(query)

	if n.typoRe != nil {
		s = n.typoRe.ReplaceAllStringFunc(s, func(w string) string {
			return n.corrections[w]
		})
	}

	s = periodRunRe.ReplaceAllString(s, ".")
	s = questionRunRe.ReplaceAllString(s, "?")
	s = spaceRunRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

var defaultNormalizer = NewNormalizer(DefaultHeuristics().Corrections)

// Normalize runs the default normalizer.
func Normalize(query string) string {
	return defaultNormalizer.Normalize(query)
}
