package nlu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeuristics(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadHeuristicsDefaults(t *testing.T) {
	h, err := LoadHeuristics("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHeuristics(), h)
	assert.NoError(t, h.Validate())
}

func TestLoadHeuristicsMerge(t *testing.T) {
	path := writeHeuristics(t, `
short_query_words: 6
clusters:
  - name: people
    triggers: [ceo, coo, founder]
    keywords: [ceo, coo, founder, who]
  - name: engagement
    keywords: [project, client]
`)

	h, err := LoadHeuristics(path)
	require.NoError(t, err)

	assert.Equal(t, 6, h.ShortQueryWords)
	require.Len(t, h.Clusters, 2)
	assert.Equal(t, "people", h.Clusters[0].Name)
	assert.Equal(t, DefaultHeuristics().MetaPhrases, h.MetaPhrases)
	assert.Equal(t, DefaultHeuristics().Corrections, h.Corrections)

	e := NewEnhancer(h, DefaultOrg())
	got := e.Enhance("who is that?", nil)
	assert.Equal(t, "Sparkout Tech Solutions who is that?", got.Query)
}

func TestLoadHeuristicsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "clusters: [oops"},
		{"cluster without keywords", "clusters:\n  - name: empty\n    triggers: [x]\n"},
		{"two fallbacks", "clusters:\n  - name: a\n    keywords: [x]\n  - name: b\n    keywords: [y]\n"},
		{"chained corrections", "corrections:\n  teh: the\n  the: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHeuristics(writeHeuristics(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadHeuristics(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
