//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tags

import (
	"fmt"
	"slices"
)

// Index - the canonical tag list; position i names row i of every matrix built from the same corpora
type Index struct {
	tags []Tag
}

// NewIndex - refuses a list that is not strictly ascending under Compare: lookups would silently return wrong rows
func NewIndex(tt []Tag) (*Index, error) {
	for i := 1; i < len(tt); i++ {
		if Compare(tt[i-1], tt[i]) >= 0 {
			return nil, fmt.Errorf("%w: '%s' at row %d follows '%s'", ErrUnsorted, tt[i], i, tt[i-1])
		}
	}
	return &Index{tags: slices.Clone(tt)}, nil
}

// Row - the matrix row of t; -1 if t is not in the index
func (x *Index) Row(t Tag) int {
	i, found := slices.BinarySearchFunc(x.tags, t, Compare)
	if !found {
		return -1
	}
	return i
}

// RowOf - Row for a tag string; -1 if the string does not parse or is not in the index
func (x *Index) RowOf(s string) int {
	t, err := Parse(s)
	if err != nil {
		return -1
	}
	return x.Row(t)
}

func (x *Index) TagAt(row int) (Tag, bool) {
	if row < 0 || row >= len(x.tags) {
		return Tag{}, false
	}
	return x.tags[row], true
}

func (x *Index) Len() int {
	return len(x.tags)
}

// Tags - a copy of the canonical list
func (x *Index) Tags() []Tag {
	return slices.Clone(x.tags)
}

// Strings - every tag in row order as a string
func (x *Index) Strings() []string {
	s := make([]string, len(x.tags))
	for i, t := range x.tags {
		s[i] = t.String()
	}
	return s
}
