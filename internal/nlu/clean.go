package nlu

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"voxroute/pkg/util"
)

// NoInfoReply replaces retrieval answers that are empty once cleaned.
const NoInfoReply = "I don't have specific information about that."

const sentenceCutset = " \t\r\n.,;:!?-"

// Cleaner removes stock references to the retrieval process ("according to
// the documents", ...) from a grounded answer.
type Cleaner struct {
	phraseRe *regexp.Regexp
	minChars int
}

func NewCleaner(phrases []string, minChars int) *Cleaner {
	c := &Cleaner{minChars: minChars}

	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) == 0 {
		return c
	}

	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	c.phraseRe = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)

	return c
}

// Clean keeps the text before a meta-phrase, or the text after it when the
// phrase opens the answer, until none is left. A cleaned answer ends with a
// single period and starts upper-case.
func (c *Cleaner) Clean(response string) string {
	s := strings.TrimSpace(response)

	stripped := false
	for c.phraseRe != nil {
		loc := c.phraseRe.FindStringIndex(s)
		if loc == nil {
			break
		}
		stripped = true

		if before := strings.TrimSpace(s[:loc[0]]); before != "" {
			s = before
			continue
		}
		s = strings.TrimLeft(s[loc[1]:], sentenceCutset)
	}

	if stripped {
		s = strings.TrimRight(s, sentenceCutset)
		if s != "" {
			s = util.Capitalize(s + ".")
		}
	}

	if utf8.RuneCountInString(s) < c.minChars {
		return NoInfoReply
	}
	return s
}
