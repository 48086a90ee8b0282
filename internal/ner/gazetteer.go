//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package ner

import (
	"cmp"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

var Msg = lnch.Msg

//go:embed gazetteer.yaml
var defaultgazetteer []byte

// Gazetteer - a dictionary tagger: every listed term found on word boundaries, case ignored
type Gazetteer struct {
	categories []string
	patterns   map[string]*regexp.Regexp
	terms      int
}

// NewGazetteer - parse YAML of the form "CATEGORY: [term, term, ...]"
func NewGazetteer(data []byte) (*Gazetteer, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing gazetteer: %w", err)
	}

	g := &Gazetteer{patterns: make(map[string]*regexp.Regexp)}
	for cat, tt := range raw {
		if !slices.Contains(vv.TagCategories, cat) {
			return nil, fmt.Errorf("gazetteer: unknown category '%s'", cat)
		}

		var quoted []string
		for _, t := range tt {
			t = strings.TrimSpace(t)
			if t != "" {
				quoted = append(quoted, regexp.QuoteMeta(t))
			}
		}
		if len(quoted) == 0 {
			continue
		}

		// leftmost-first alternation: the longer term has to be tried first
		slices.SortStableFunc(quoted, func(a, b string) int {
			return cmp.Compare(len(b), len(a))
		})
		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("gazetteer category '%s': %w", cat, err)
		}
		g.patterns[cat] = re
		g.terms += len(quoted)
	}

	g.categories = maps.Keys(g.patterns)
	slices.Sort(g.categories)
	return g, nil
}

// LoadGazetteer - the file at fp, or the built in list if fp is empty
func LoadGazetteer(fp string) (*Gazetteer, error) {
	const (
		MSG = "LoadGazetteer(): %d terms in %d categories from %s"
	)

	src := "the built in list"
	data := defaultgazetteer
	if fp != "" {
		b, err := os.ReadFile(fp)
		if err != nil {
			return nil, err
		}
		data = b
		src = fp
	}

	g, err := NewGazetteer(data)
	if err != nil {
		return nil, err
	}
	Msg.PEEK(fmt.Sprintf(MSG, g.terms, len(g.categories), src))
	return g, nil
}

// Tag - every match of every category; overlaps are left for FilterNested
func (g *Gazetteer) Tag(text string) []Span {
	var spans []Span
	for _, cat := range g.categories {
		for _, m := range g.patterns[cat].FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: m[0], End: m[1], Category: cat})
		}
	}
	slices.SortStableFunc(spans, func(a, b Span) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return spans
}

func (g *Gazetteer) Categories() []string {
	return slices.Clone(g.categories)
}
