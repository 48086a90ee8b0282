//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package project

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

// TopicProfile - v as a distribution over the centroids: exp(v·c) / Σ exp(v·c')
func TopicProfile(v []float64, centroids mat.Matrix) []float64 {
	k, _ := centroids.Dims()
	dots := make([]float64, k)
	c := make([]float64, len(v))
	for j := 0; j < k; j++ {
		mat.Row(c, j, centroids)
		dots[j] = floats.Dot(v, c)
	}
	softmax(dots)
	return dots
}

// ToTopicSpace - TopicProfile for every row of docs
func ToTopicSpace(docs mat.Matrix, centroids mat.Matrix) *mat.Dense {
	r, _ := docs.Dims()
	k, _ := centroids.Dims()
	out := mat.NewDense(r, k, nil)
	for i := 0; i < r; i++ {
		out.SetRow(i, TopicProfile(mat.Row(nil, i, docs), centroids))
	}
	return out
}

// softmax - in place; the max is subtracted first so that large dot products cannot overflow
func softmax(x []float64) {
	if len(x) == 0 {
		return
	}
	mx := floats.Max(x)
	sum := 0.0
	for i := range x {
		x[i] = math.Exp(x[i] - mx)
		sum += x[i]
	}
	floats.Scale(1/sum, x)
}
