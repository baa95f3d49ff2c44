package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsAny reports whether s contains any of subs as a substring.
func ContainsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Words splits s on whitespace and trims punctuation from every token.
// Tokens made only of punctuation are dropped.
func Words(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// HasWord reports whether any token of s equals one of words.
func HasWord(s string, words []string) bool {
	for _, tok := range Words(s) {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
