//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package ner finds biomedical entities in text and marks them up for display.
package ner

import (
	"cmp"
	"fmt"
	"html"
	"strings"

	"golang.org/x/exp/slices"
)

// Span - text[Start:End] (byte offsets) names an entity of Category
type Span struct {
	Start    int
	End      int
	Category string
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Tagger - anything that can find entity spans in a text
type Tagger interface {
	Tag(text string) []Span
}

// FilterNested - a new list in which no two spans overlap: of each group of overlapping spans the longest survives
// (ties: the earliest start, then the category name). The input is left alone.
func FilterNested(spans []Span) []Span {
	byweight := slices.Clone(spans)
	slices.SortStableFunc(byweight, func(a, b Span) int {
		if c := cmp.Compare(b.Len(), a.Len()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	var kept []Span
	for _, s := range byweight {
		if s.Len() <= 0 {
			continue
		}
		clash := false
		for _, k := range kept {
			if s.overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, s)
		}
	}

	slices.SortFunc(kept, func(a, b Span) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return kept
}

// Whitelist - the spans whose category is in cats
func Whitelist(spans []Span, cats []string) []Span {
	var out []Span
	for _, s := range spans {
		if slices.Contains(cats, s.Category) {
			out = append(out, s)
		}
	}
	return out
}

// MarkUp - html-escaped text with every span wrapped in <mark title="CATEGORY">; overlaps are resolved first
func MarkUp(text string, spans []Span) string {
	const (
		OPEN  = `<mark title="%s">`
		CLOSE = `</mark>`
	)

	var sb strings.Builder
	at := 0
	for _, s := range FilterNested(spans) {
		if s.Start < at || s.End > len(text) {
			continue
		}
		sb.WriteString(html.EscapeString(text[at:s.Start]))
		sb.WriteString(fmt.Sprintf(OPEN, html.EscapeString(s.Category)))
		sb.WriteString(html.EscapeString(text[s.Start:s.End]))
		sb.WriteString(CLOSE)
		at = s.End
	}
	sb.WriteString(html.EscapeString(text[at:]))
	return sb.String()
}

// Annotate - tag, keep the wanted categories, resolve the overlaps, mark up
func Annotate(t Tagger, text string, cats []string) (string, []Span) {
	spans := FilterNested(Whitelist(t.Tag(text), cats))
	return MarkUp(text, spans), spans
}
