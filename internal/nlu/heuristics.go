package nlu

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxroute/pkg/util"
)

// Cluster is a keyword group used to decide whether a follow-up continues an
// earlier knowledge-base question. A cluster applies to a candidate when any of
// its triggers appear in it; a cluster without triggers is the fallback.
type Cluster struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Keywords []string `yaml:"keywords"`
}

// Heuristics is the lexical table behind normalization, query enhancement and
// response cleaning.
type Heuristics struct {
	Corrections       map[string]string `yaml:"corrections"`
	VagueWords        []string          `yaml:"vague_words"`
	ShortQueryWords   int               `yaml:"short_query_words"`
	BrandQueryWords   int               `yaml:"brand_query_words"`
	MinAnchorWords    int               `yaml:"min_anchor_words"`
	FreshTopicMarkers []string          `yaml:"fresh_topic_markers"`
	Clusters          []Cluster         `yaml:"clusters"`
	MetaPhrases       []string          `yaml:"meta_phrases"`
	MinResponseChars  int               `yaml:"min_response_chars"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		Corrections: map[string]string{
			"saprkout":   "sparkout",
			"sprakout":   "sparkout",
			"sparkot":    "sparkout",
			"menctioned": "mentioned",
			"mentionned": "mentioned",
			"studys":     "studies",
			"studie":     "study",
			"servies":    "services",
			"serrvice":   "service",
			"projet":     "project",
			"projets":    "projects",
			"branc":      "branch",
			"loction":    "location",
			"adress":     "address",
		},
		VagueWords: []string{
			"where", "location", "address", "there", "here", "you", "u",
			"exact", "which", "that", "this", "it", "they", "what", "how",
		},
		ShortQueryWords:   10,
		BrandQueryWords:   8,
		MinAnchorWords:    5,
		FreshTopicMarkers: []string{"case study"},
		Clusters: []Cluster{
			{
				Name:     "location",
				Triggers: []string{"branch", "office", "location"},
				Keywords: []string{"branch", "office", "location", "address", "clients", "where"},
			},
			{
				Name:     "engagement",
				Keywords: []string{"case study", "project", "client", "service"},
			},
		},
		MetaPhrases: []string{
			"according to the retrieved information",
			"according to the retrieved documents",
			"according to the information",
			"according to the documents",
			"according to the search results",
			"based on the search results",
			"based on the retrieved information",
			"based on the retrieved documents",
			"based on the retrieved",
			"based on the documents",
			"based on the information",
			"the retrieved documents mention",
			"the retrieved information shows",
			"the retrieved documents show",
			"the documents mention",
			"the documents show",
			"the search results show",
			"the information shows",
			"i found that",
			"i found information",
			"it is mentioned that",
			"it appears that",
			"from the documents",
			"from the retrieved information",
			"from the search results",
			"as per the documents",
			"as mentioned in",
			"so refer to",
			"please refer to",
			"you can refer to",
			"refer to the",
		},
		MinResponseChars: 10,
	}
}

// LoadHeuristics reads a YAML table from path. Fields left out of the file
// keep their defaults.
func LoadHeuristics(path string) (Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read heuristics: %w", err)
	}

	var file Heuristics
	if err := yaml.Unmarshal(data, &file); err != nil {
		return h, fmt.Errorf("parse heuristics %s: %w", path, err)
	}

	h.merge(file)
	if err := h.Validate(); err != nil {
		return h, fmt.Errorf("heuristics %s: %w", path, err)
	}
	return h, nil
}

func (h *Heuristics) merge(o Heuristics) {
	if o.Corrections != nil {
		h.Corrections = o.Corrections
	}
	if o.VagueWords != nil {
		h.VagueWords = o.VagueWords
	}
	if o.ShortQueryWords > 0 {
		h.ShortQueryWords = o.ShortQueryWords
	}
	if o.BrandQueryWords > 0 {
		h.BrandQueryWords = o.BrandQueryWords
	}
	if o.MinAnchorWords > 0 {
		h.MinAnchorWords = o.MinAnchorWords
	}
	if o.FreshTopicMarkers != nil {
		h.FreshTopicMarkers = o.FreshTopicMarkers
	}
	if o.Clusters != nil {
		h.Clusters = o.Clusters
	}
	if o.MetaPhrases != nil {
		h.MetaPhrases = o.MetaPhrases
	}
	if o.MinResponseChars > 0 {
		h.MinResponseChars = o.MinResponseChars
	}
}

func (h Heuristics) Validate() error {
	fallbacks := 0
	for _, c := range h.Clusters {
		if len(c.Keywords) == 0 {
			return fmt.Errorf("cluster %q has no keywords", c.Name)
		}
		if len(c.Triggers) == 0 {
			fallbacks++
		}
	}
	if fallbacks > 1 {
		return fmt.Errorf("%d clusters without triggers, want at most one", fallbacks)
	}
	for wrong, right := range h.Corrections {
		if _, ok := h.Corrections[right]; ok {
			return fmt.Errorf("correction %q -> %q feeds another correction", wrong, right)
		}
	}
	return nil
}

// cluster picks the keyword group that applies to an earlier query.
func (h Heuristics) cluster(candidate string) (Cluster, bool) {
	var fallback *Cluster
	for i, c := range h.Clusters {
		if len(c.Triggers) == 0 {
			if fallback == nil {
				fallback = &h.Clusters[i]
			}
			continue
		}
		if util.ContainsAny(candidate, c.Triggers) {
			return c, true
		}
	}
	if fallback == nil {
		return Cluster{}, false
	}
	return *fallback, true
}
