//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package project

import (
	"cmp"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// WordVectors - a vocabulary and its embedding, one row per word
type WordVectors struct {
	Words   []string
	Vectors *mat.Dense
}

type WordProb struct {
	Word string
	Prob float64
}

// TopWords - for each centroid c the words with the highest P(w|c) = exp(w·c) / Σ exp(w'·c); cutoff 0 keeps all
func TopWords(centroids mat.Matrix, wv WordVectors, cutoff int) [][]WordProb {
	if centroids == nil || wv.Vectors == nil || len(wv.Words) == 0 {
		return nil
	}
	k, _ := centroids.Dims()
	out := make([][]WordProb, k)

	var dots mat.Dense
	dots.Mul(wv.Vectors, centroids.T())

	for j := 0; j < k; j++ {
		p := mat.Col(nil, j, &dots)
		softmax(p)

		wp := make([]WordProb, len(p))
		for i := range p {
			wp[i] = WordProb{Word: wv.Words[i], Prob: p[i]}
		}
		slices.SortStableFunc(wp, func(a, b WordProb) int {
			return cmp.Compare(b.Prob, a.Prob)
		})
		if cutoff > 0 && cutoff < len(wp) {
			wp = wp[:cutoff]
		}
		out[j] = wp
	}
	return out
}
