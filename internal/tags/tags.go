//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package tags names documents: "corpus+line" for a body and "corpus+line+abstract" for its abstract.
package tags

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	SEP      = "+"
	ABSTRACT = "abstract"
)

var (
	ErrMalformed = errors.New("malformed document tag")
	ErrUnsorted  = errors.New("document tags are not in canonical order")
)

// Tag - the composite key of a document
type Tag struct {
	Corpus   string
	Line     int
	Abstract bool
}

func (t Tag) String() string {
	s := t.Corpus + SEP + strconv.Itoa(t.Line)
	if t.Abstract {
		s += SEP + ABSTRACT
	}
	return s
}

// Parse - "pmc+12+abstract" into Tag{"pmc", 12, true}
func Parse(s string) (Tag, error) {
	parts := strings.Split(s, SEP)
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return Tag{}, fmt.Errorf("%w: '%s'", ErrMalformed, s)
	}

	// one line, one spelling: "007" and "+7" would alias "7"
	ln, err := strconv.Atoi(parts[1])
	if err != nil || ln < 0 || strconv.Itoa(ln) != parts[1] {
		return Tag{}, fmt.Errorf("%w: '%s'", ErrMalformed, s)
	}

	t := Tag{Corpus: parts[0], Line: ln}
	if len(parts) == 3 {
		if parts[2] != ABSTRACT {
			return Tag{}, fmt.Errorf("%w: '%s'", ErrMalformed, s)
		}
		t.Abstract = true
	}
	return t, nil
}

// Compare - corpus name, then line, then the abstract ahead of its body (ingestion order)
func Compare(a, b Tag) int {
	if c := cmp.Compare(a.Corpus, b.Corpus); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	switch {
	case a.Abstract == b.Abstract:
		return 0
	case a.Abstract:
		return -1
	default:
		return 1
	}
}

// Less - for sort.Slice and friends
func Less(a, b Tag) bool {
	return Compare(a, b) < 0
}
