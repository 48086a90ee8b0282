//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package classify

import (
	"testing"

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

func subset(X *mat.Dense, rows ...int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

func TestFitNeedsBothClasses(t *testing.T) {
	X := compass()
	svm := NewLinearSVM()

	err := svm.Fit(subset(X, 0, 1), []bool{true, true})
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 2, ide.Relevant)
	assert.Equal(t, 0, ide.Irrelevant)
	assert.False(t, svm.Fitted())

	err = svm.Fit(subset(X, 2), []bool{false})
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 1, ide.Irrelevant)

	err = svm.Fit(&mat.Dense{}, nil)
	assert.Error(t, err)

	assert.ErrorIs(t, svm.Fit(X, []bool{true}), ErrShape)
}

func TestFitCompass(t *testing.T) {
	X := compass()
	svm := NewLinearSVM()
	require.NoError(t, svm.Fit(subset(X, 0, 2), []bool{true, false}))
	assert.True(t, svm.Fitted())

	sc := svm.DecisionScore(X)
	require.Len(t, sc, 4)
	// the training points sit on their own sides
	assert.Greater(t, sc[0], 0.0)
	assert.Less(t, sc[2], 0.0)
	// rows 1 and 3 are mirror images across an axis the boundary ignores
	assert.InDelta(t, sc[1], sc[3], 1e-9)

	assert.Equal(t, []bool{true, false, false, false}, svm.Predict(subset(X, 0, 2, 2, 2)))

	w, b := svm.Weights()
	assert.Greater(t, w[0], 0.0)
	assert.InDelta(t, 0.0, w[1], 1e-12)
	assert.InDelta(t, 0.0, b, 1e-9)
}

func TestFitIsDeterministic(t *testing.T) {
	X := mat.NewDense(6, 3, []float64{
		1, 0.2, 0,
		0.9, 0.1, 0.3,
		0.8, -0.1, 0.2,
		-1, 0.3, 0,
		-0.7, 0, 0.4,
		-0.9, -0.2, 0.1,
	})
	y := []bool{true, true, true, false, false, false}

	a := NewLinearSVM()
	b := NewLinearSVM()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.DecisionScore(X), b.DecisionScore(X))
	assert.Equal(t, y, a.Predict(X))
	assert.Greater(t, a.Iterations(), 0)
}

func TestRefitReplacesState(t *testing.T) {
	X := compass()
	svm := NewLinearSVM()
	require.NoError(t, svm.Fit(subset(X, 0, 2), []bool{true, false}))
	first := svm.DecisionScore(X)

	// flip the labels: the boundary must flip with them
	require.NoError(t, svm.Fit(subset(X, 0, 2), []bool{false, true}))
	second := svm.DecisionScore(X)
	assert.Less(t, second[0], 0.0)
	assert.Greater(t, second[2], 0.0)
	assert.InDelta(t, first[0], -second[0], 1e-9)

	// a failed refit keeps the previous boundary
	require.Error(t, svm.Fit(subset(X, 0), []bool{true}))
	assert.Equal(t, second, svm.DecisionScore(X))
}

func TestUnfittedScoresZero(t *testing.T) {
	svm := NewLinearSVM()
	assert.Equal(t, []float64{0, 0, 0, 0}, svm.DecisionScore(compass()))
	assert.Equal(t, []bool{false, false, false, false}, svm.Predict(compass()))
}

func TestTopNByConfidence(t *testing.T) {
	sc := []float64{0.5, -2, 0.1, 2, -0.5, 0}

	top := ByConfidence(sc, 3, nil)
	require.Len(t, top, 3)
	// |2| twice: row 1 before row 3
	assert.Equal(t, 1, top[0].Row)
	assert.Equal(t, 3, top[1].Row)
	assert.Equal(t, 0, top[2].Row)
	assert.Equal(t, 0.5, top[2].Score)

	ig := ByConfidence(sc, 10, map[int]bool{1: true, 3: true})
	assert.Equal(t, []int{0, 4, 2, 5}, rowsof(ig))
}

func TestTopNByConfidenceBoundary(t *testing.T) {
	X := compass()
	svm := NewLinearSVM()
	require.NoError(t, svm.Fit(subset(X, 0, 2), []bool{true, false}))

	// more than the unlabelled pool: exactly the pool
	got := svm.TopNByConfidence(X, 50, map[int]bool{0: true, 2: true})
	assert.Len(t, got, 2)
	assert.ElementsMatch(t, []int{1, 3}, rowsof(got))

	assert.Empty(t, svm.TopNByConfidence(X, 0, nil))
	assert.Empty(t, svm.TopNByConfidence(X, 5, map[int]bool{0: true, 1: true, 2: true, 3: true}))
}
