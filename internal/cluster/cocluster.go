//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package cluster groups documents and terms together: Dhillon's bipartite spectral co-clustering over a
// document-term matrix, plus the charts that describe the result.
package cluster

import (
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"gonum.org/v1/gonum/mat"
	"math"
)

var Msg = lnch.Msg

var ErrClusterCount = errors.New("invalid number of clusters")

// Result - co-cluster c is the documents with RowLabels == c and the terms with ColLabels == c
type Result struct {
	RowLabels []int
	ColLabels []int
	K         int
}

// Rows - the documents of cluster c
func (r *Result) Rows(c int) []int {
	return members(r.RowLabels, c)
}

// Cols - the terms of cluster c
func (r *Result) Cols(c int) []int {
	return members(r.ColLabels, c)
}

func members(labels []int, c int) []int {
	var out []int
	for i, l := range labels {
		if l == c {
			out = append(out, i)
		}
	}
	return out
}

// SpectralCoCluster - normalise A = D1^-1/2 X D2^-1/2, take singular vectors 2..l+1 of A with l = ceil(log2 k),
// scale them back by D1^-1/2 and D2^-1/2, stack rows over columns and run k-means on the stack
func SpectralCoCluster(X mat.Matrix, k int) (*Result, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyMatrix
	}
	if k < 2 || k > min(r, c) {
		return nil, fmt.Errorf("%w: %d for a %d x %d matrix", ErrClusterCount, k, r, c)
	}

	d1 := invsqrt(rowsums(X))
	d2 := invsqrt(colsums(X))

	an := mat.NewDense(r, c, nil)
	an.Apply(func(i, j int, v float64) float64 {
		return d1[i] * v * d2[j]
	}, X)

	var svd mat.SVD
	if ok := svd.Factorize(an, mat.SVDThin); !ok {
		return nil, errors.New("SVD failed to factorize the normalised matrix")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	l := int(math.Ceil(math.Log2(float64(k))))
	_, nsv := u.Dims()
	if l+1 > nsv {
		l = nsv - 1
	}
	if l < 1 {
		return nil, fmt.Errorf("%w: %d singular vectors", ErrClusterCount, nsv)
	}

	z := mat.NewDense(r+c, l, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < l; j++ {
			z.Set(i, j, d1[i]*u.At(i, j+1))
		}
	}
	for i := 0; i < c; i++ {
		for j := 0; j < l; j++ {
			z.Set(r+i, j, d2[i]*v.At(i, j+1))
		}
	}

	_, labels := project.KMeans(z, k, vv.KMEANSMAXITER)

	return &Result{RowLabels: labels[:r], ColLabels: labels[r:], K: k}, nil
}

func rowsums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i] += m.At(i, j)
		}
	}
	return out
}

func colsums(m mat.Matrix) []float64 {
	return rowsums(m.T())
}

// invsqrt - 1/sqrt(x); an empty row or column scales to 0
func invsqrt(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = 1 / math.Sqrt(v)
		}
	}
	return out
}
