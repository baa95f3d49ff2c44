package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	h := DefaultHeuristics()
	c := NewCleaner(h.MetaPhrases, h.MinResponseChars)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "leading phrase",
			in:   "According to the retrieved information, we have offices in Chennai.",
			want: "We have offices in Chennai.",
		},
		{
			name: "trailing phrase",
			in:   "We have offices in Chennai and Dallas, as mentioned in the company profile!",
			want: "We have offices in Chennai and Dallas.",
		},
		{
			name: "phrase mid sentence",
			in:   "Praveen Kumar leads architecture; please refer to the team page for more.",
			want: "Praveen Kumar leads architecture.",
		},
		{
			name: "two phrases",
			in:   "Based on the documents, it appears that we work with banks.",
			want: "We work with banks.",
		},
		{
			name: "upper case phrase",
			in:   "BASED ON THE SEARCH RESULTS: our COO is Yokesh Sankar",
			want: "Our COO is Yokesh Sankar.",
		},
		{
			name: "no phrase left untouched",
			in:   "Praveen Kumar is our Lead Architect",
			want: "Praveen Kumar is our Lead Architect",
		},
		{
			name: "nothing left",
			in:   "According to the documents.",
			want: NoInfoReply,
		},
		{
			name: "too short",
			in:   "Yes. I found that the answer is here.",
			want: NoInfoReply,
		},
		{
			name: "empty",
			in:   "  ",
			want: NoInfoReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Clean(tt.in))
		})
	}
}

func TestCleanRemovesEveryPhrase(t *testing.T) {
	h := DefaultHeuristics()
	c := NewCleaner(h.MetaPhrases, h.MinResponseChars)

	for _, p := range h.MetaPhrases {
		for _, in := range []string{
			"We have two offices in India " + p + " the brochure...",
			strings.ToUpper(p[:1]) + p[1:] + ", we deliver mobile and blockchain projects!!",
		} {
			out := c.Clean(in)
			assert.NotContains(t, strings.ToLower(out), p, "input %q", in)
			assert.True(t, strings.HasSuffix(out, "."), "output %q", out)
			assert.False(t, strings.HasSuffix(out, ".."), "output %q", out)
		}
	}
}

func TestCleanWithoutPhrases(t *testing.T) {
	c := NewCleaner(nil, 10)
	assert.Equal(t, "According to the documents, yes.", c.Clean("According to the documents, yes."))
	assert.Equal(t, NoInfoReply, c.Clean("ok"))
}
