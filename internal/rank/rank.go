//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package rank orders document rows by cosine similarity to a query vector.
package rank

import (
	"cmp"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Order int

const (
	Descending Order = iota // "top": most similar first
	Ascending               // "bottom": least similar first
)

// Scored - a matrix row and its score
type Scored struct {
	Row   int
	Score float64
}

// TagScore - a Scored row resolved to its document tag
type TagScore struct {
	Tag   tags.Tag
	Score float64
}

// Cosine - (a·b)/(‖a‖‖b‖); 0 if either vector has no length; panics if the lengths differ
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// Scores - the cosine similarity of query against every row of docs
func Scores(query []float64, docs mat.Matrix) []float64 {
	r, _ := docs.Dims()
	sc := make([]float64, r)
	row := make([]float64, len(query))

	nq := floats.Norm(query, 2)
	if nq == 0 {
		return sc
	}

	for i := 0; i < r; i++ {
		mat.Row(row, i, docs)
		nd := floats.Norm(row, 2)
		if nd == 0 {
			continue
		}
		sc[i] = floats.Dot(query, row) / (nq * nd)
	}
	return sc
}

// Rank - every row not in exclude, ordered by score; ties go to the lower row
func Rank(query []float64, docs mat.Matrix, exclude map[int]bool, o Order) []Scored {
	sc := Scores(query, docs)
	return order(sc, exclude, o)
}

func order(sc []float64, exclude map[int]bool, o Order) []Scored {
	ranked := make([]Scored, 0, len(sc))
	for i, s := range sc {
		if exclude[i] {
			continue
		}
		ranked = append(ranked, Scored{Row: i, Score: s})
	}

	// the rows went in ascending; a stable sort keeps them that way among equals
	slices.SortStableFunc(ranked, func(a, b Scored) int {
		if o == Ascending {
			return cmp.Compare(a.Score, b.Score)
		}
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// Top - the first min(n, available) rows of a Descending Rank
func Top(query []float64, docs mat.Matrix, n int, exclude map[int]bool) []Scored {
	return first(Rank(query, docs, exclude, Descending), n)
}

// Bottom - the first min(n, available) rows of an Ascending Rank
func Bottom(query []float64, docs mat.Matrix, n int, exclude map[int]bool) []Scored {
	return first(Rank(query, docs, exclude, Ascending), n)
}

func first(ss []Scored, n int) []Scored {
	if n < 0 {
		n = 0
	}
	if n < len(ss) {
		ss = ss[:n]
	}
	return ss
}

// NearestTags - Top resolved through the tag index; rows the index does not know are skipped
func NearestTags(query []float64, docs mat.Matrix, idx *tags.Index, n int) []TagScore {
	top := Top(query, docs, n, nil)
	out := make([]TagScore, 0, len(top))
	for _, s := range top {
		t, ok := idx.TagAt(s.Row)
		if !ok {
			continue
		}
		out = append(out, TagScore{Tag: t, Score: s.Score})
	}
	return out
}
