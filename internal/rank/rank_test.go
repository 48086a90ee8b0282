//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package rank

import (
	"math"
	"testing"

	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func compass() *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		-1, 0,
		0, -1,
	})
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{3, 0}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-2, 0}), 1e-12)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 5}), 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), Cosine([]float64{1, 1}, []float64{1, 0}), 1e-12)

	// zero norms score 0 rather than NaN
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 0}))
}

func TestCompassTopAndBottom(t *testing.T) {
	docs := compass()
	q := []float64{1, 0}

	top := Top(q, docs, 1, nil)
	require.Len(t, top, 1)
	assert.Equal(t, 0, top[0].Row)
	assert.Equal(t, 1.0, top[0].Score)

	bottom := Bottom(q, docs, 1, nil)
	require.Len(t, bottom, 1)
	assert.Equal(t, 2, bottom[0].Row)
	assert.Equal(t, -1.0, bottom[0].Score)
}

func TestTiesGoToTheLowerRow(t *testing.T) {
	docs := compass()
	q := []float64{1, 0}

	// rows 1 and 3 both score 0
	desc := Rank(q, docs, nil, Descending)
	assert.Equal(t, []int{0, 1, 3, 2}, rows(desc))

	asc := Rank(q, docs, nil, Ascending)
	assert.Equal(t, []int{2, 1, 3, 0}, rows(asc))
}

func TestRankIsIdempotent(t *testing.T) {
	docs := mat.NewDense(6, 3, []float64{
		1, 2, 3,
		1, 2, 3,
		0, 0, 0,
		-1, 2, 0,
		2, 4, 6,
		0, 0, 1,
	})
	q := []float64{1, 1, 1}
	a := Rank(q, docs, nil, Descending)
	b := Rank(q, docs, nil, Descending)
	assert.Equal(t, a, b)
	// rows 0 and 1 are identical; row 4 is parallel to both
	assert.Less(t, indexof(a, 0), indexof(a, 1))
	assert.ElementsMatch(t, []int{0, 1, 4}, rows(a[:3]))
}

func TestExcludeComesFirst(t *testing.T) {
	docs := compass()
	q := []float64{1, 0}
	ex := map[int]bool{0: true, 2: true}

	top := Top(q, docs, 1, ex)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Row)

	bottom := Bottom(q, docs, 10, ex)
	assert.Equal(t, []int{1, 3}, rows(bottom))
}

func TestCappedAtAvailable(t *testing.T) {
	docs := compass()
	assert.Len(t, Top([]float64{1, 0}, docs, 99, nil), 4)
	assert.Len(t, Top([]float64{1, 0}, docs, 99, map[int]bool{0: true, 1: true, 2: true, 3: true}), 0)
	assert.Empty(t, Top([]float64{1, 0}, docs, -1, nil))
}

func TestZeroNormRows(t *testing.T) {
	docs := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		-1, 0,
	})
	sc := Scores([]float64{1, 0}, docs)
	assert.Equal(t, []float64{0, 1, -1}, sc)

	// a zero query scores everything 0; the ranking is then row order
	r := Rank([]float64{0, 0}, docs, nil, Descending)
	assert.Equal(t, []int{0, 1, 2}, rows(r))
}

func TestNearestTags(t *testing.T) {
	idx, err := tags.NewIndex([]tags.Tag{{Corpus: "a", Line: 0, Abstract: false}, {Corpus: "a", Line: 1, Abstract: false}, {Corpus: "b", Line: 0, Abstract: true}, {Corpus: "b", Line: 0, Abstract: false}})
	require.NoError(t, err)
	nt := NearestTags([]float64{0, -1}, compass(), idx, 2)
	require.Len(t, nt, 2)
	assert.Equal(t, "b+0", nt[0].Tag.String())
	assert.Equal(t, 1.0, nt[0].Score)
	// rows 0 and 2 tie at 0
	assert.Equal(t, "a+0", nt[1].Tag.String())
}

func rows(ss []Scored) []int {
	out := make([]int, len(ss))
	for i, s := range ss {
		out[i] = s.Row
	}
	return out
}

func indexof(ss []Scored, row int) int {
	for i, s := range ss {
		if s.Row == row {
			return i
		}
	}
	return -1
}
