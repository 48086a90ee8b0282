//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"cmp"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// TermWeight - how often a term occurs inside the documents of its co-cluster
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Size - the documents and terms of one co-cluster
type Size struct {
	Docs  int `json:"docs"`
	Terms int `json:"terms"`
}

// Sizes - one entry per co-cluster
func (r *Result) Sizes() []Size {
	ss := make([]Size, r.K)
	for _, l := range r.RowLabels {
		ss[l].Docs++
	}
	for _, l := range r.ColLabels {
		ss[l].Terms++
	}
	return ss
}

// TopTerms - the n heaviest terms of each co-cluster, weighed over that co-cluster's documents
func TopTerms(dt *DocTerm, r *Result, n int) [][]TermWeight {
	out := make([][]TermWeight, r.K)
	for c := 0; c < r.K; c++ {
		rows := r.Rows(c)
		var tw []TermWeight
		for _, j := range r.Cols(c) {
			w := 0.0
			for _, i := range rows {
				w += dt.X.At(i, j)
			}
			tw = append(tw, TermWeight{Term: dt.Vocabulary[j], Weight: w})
		}
		slices.SortStableFunc(tw, func(a, b TermWeight) int {
			if x := cmp.Compare(b.Weight, a.Weight); x != 0 {
				return x
			}
			return cmp.Compare(a.Term, b.Term)
		})
		if n > 0 && len(tw) > n {
			tw = tw[:n]
		}
		out[c] = tw
	}
	return out
}

// Reorganise - the rows and columns of X grouped by co-cluster; also the new order of each
func Reorganise(X mat.Matrix, r *Result) (*mat.Dense, []int, []int) {
	ro := order(r.RowLabels)
	co := order(r.ColLabels)
	out := mat.NewDense(len(ro), len(co), nil)
	for i, oi := range ro {
		for j, oj := range co {
			out.Set(i, j, X.At(oi, oj))
		}
	}
	return out, ro, co
}

// order - indices sorted by label; stable within a label
func order(labels []int) []int {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(labels[a], labels[b])
	})
	return idx
}
