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

// KMeans - Lloyd's algorithm seeded by farthest point selection from row 0; the same input always yields
// the same centroids and labels. A cluster that empties keeps its previous centroid.
func KMeans(data mat.Matrix, k int, maxiter int) (*mat.Dense, []int) {
	r, c := data.Dims()
	if k > r {
		k = r
	}
	if k < 1 || c == 0 {
		return nil, make([]int, r)
	}

	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, data)
	}

	centroids := farthestpoints(rows, k)
	labels := make([]int, r)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxiter; iter++ {
		changed := false
		for i, row := range rows {
			l := nearest(row, centroids)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for j := range sums {
			sums[j] = make([]float64, c)
		}
		for i, row := range rows {
			floats.Add(sums[labels[i]], row)
			counts[labels[i]]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[j]), sums[j])
			centroids[j] = sums[j]
		}
	}

	out := mat.NewDense(k, c, nil)
	for j, cc := range centroids {
		out.SetRow(j, cc)
	}
	return out, labels
}

// farthestpoints - row 0, then repeatedly the row farthest from every centroid chosen so far
func farthestpoints(rows [][]float64, k int) [][]float64 {
	centroids := [][]float64{append([]float64{}, rows[0]...)}
	mindist := make([]float64, len(rows))
	for i, row := range rows {
		mindist[i] = sqdist(row, centroids[0])
	}
	mindist[0] = -1

	for len(centroids) < k {
		// when every remaining row duplicates a centroid this is the lowest row not yet chosen
		best := -1
		bestd := -1.0
		for i, d := range mindist {
			if d > bestd {
				best, bestd = i, d
			}
		}
		nc := append([]float64{}, rows[best]...)
		centroids = append(centroids, nc)
		for i, row := range rows {
			mindist[i] = math.Min(mindist[i], sqdist(row, nc))
		}
		mindist[best] = -1
	}
	return centroids
}

func nearest(row []float64, centroids [][]float64) int {
	best := 0
	bestd := math.Inf(1)
	for j, c := range centroids {
		if d := sqdist(row, c); d < bestd {
			best, bestd = j, d
		}
	}
	return best
}

func sqdist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
