//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package classify fits a linear relevance boundary to labelled document vectors.
package classify

import (
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

const (
	BIAS = 1.0 // value of the augmented feature that carries the intercept
)

var (
	ErrShape = errors.New("labels and rows disagree")
)

// InsufficientDataError - a boundary needs at least one example of each class
type InsufficientDataError struct {
	Relevant   int
	Irrelevant int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need at least one relevant and one irrelevant example: have %d relevant and %d irrelevant",
		e.Relevant, e.Irrelevant)
}

// LinearSVM - L2-regularised squared hinge loss, solved by dual coordinate descent (Hsieh et al. 2008)
type LinearSVM struct {
	C       float64
	MaxIter int
	Tol     float64
	Seed    uint64

	w      []float64
	b      float64
	fitted bool
	iters  int
}

func NewLinearSVM() *LinearSVM {
	return &LinearSVM{C: vv.SVMCOST, MaxIter: vv.SVMMAXITER, Tol: vv.SVMTOLERANCE, Seed: vv.SVMSEED}
}

// Fit - replaces every trace of any previous fit; a positive score will mean "relevant"
func (s *LinearSVM) Fit(X mat.Matrix, y []bool) error {
	r, c := X.Dims()
	if len(y) != r {
		return fmt.Errorf("%w: %d labels for %d rows", ErrShape, len(y), r)
	}

	pos := 0
	for _, l := range y {
		if l {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return &InsufficientDataError{Relevant: pos, Irrelevant: len(y) - pos}
	}

	cost := s.C
	if cost <= 0 {
		cost = vv.SVMCOST
	}
	maxiter := s.MaxIter
	if maxiter < 1 {
		maxiter = vv.SVMMAXITER
	}
	tol := s.Tol
	if tol <= 0 {
		tol = vv.SVMTOLERANCE
	}

	// rows augmented with the bias feature
	xs := make([][]float64, r)
	for i := range xs {
		xs[i] = make([]float64, c+1)
		mat.Row(xs[i][:c], i, X)
		xs[i][c] = BIAS
	}

	ys := make([]float64, r)
	for i, l := range y {
		ys[i] = -1
		if l {
			ys[i] = 1
		}
	}

	// squared hinge: no upper bound on alpha, a diagonal term instead
	dii := 1 / (2 * cost)
	qbar := make([]float64, r)
	for i := range xs {
		qbar[i] = floats.Dot(xs[i], xs[i]) + dii
	}

	alpha := make([]float64, r)
	w := make([]float64, c+1)
	rng := rand.New(rand.NewSource(s.Seed))

	iter := 0
	for ; iter < maxiter; iter++ {
		pgmax := math.Inf(-1)
		pgmin := math.Inf(1)

		for _, i := range rng.Perm(r) {
			g := ys[i]*floats.Dot(w, xs[i]) - 1 + dii*alpha[i]

			pg := g
			if alpha[i] == 0 {
				pg = math.Min(g, 0)
			}
			pgmax = math.Max(pgmax, pg)
			pgmin = math.Min(pgmin, pg)

			if pg == 0 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Max(alpha[i]-g/qbar[i], 0)
			floats.AddScaled(w, (alpha[i]-old)*ys[i], xs[i])
		}

		if pgmax-pgmin <= tol {
			break
		}
	}

	s.w = w[:c]
	s.b = w[c] * BIAS
	s.fitted = true
	s.iters = iter
	return nil
}

func (s *LinearSVM) Fitted() bool {
	return s.fitted
}

// Iterations - outer passes used by the last Fit
func (s *LinearSVM) Iterations() int {
	return s.iters
}

// Weights - a copy of w and the intercept
func (s *LinearSVM) Weights() ([]float64, float64) {
	return append([]float64{}, s.w...), s.b
}

// DecisionScore - w·x + b per row: the sign is the class, the magnitude the confidence; all zeros before a Fit
func (s *LinearSVM) DecisionScore(X mat.Matrix) []float64 {
	r, c := X.Dims()
	sc := make([]float64, r)
	if !s.fitted {
		return sc
	}
	if c != len(s.w) {
		panic(fmt.Sprintf("classify: %d columns against %d weights", c, len(s.w)))
	}
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		sc[i] = floats.Dot(s.w, row) + s.b
	}
	return sc
}

// Predict - true means relevant
func (s *LinearSVM) Predict(X mat.Matrix) []bool {
	sc := s.DecisionScore(X)
	p := make([]bool, len(sc))
	for i, v := range sc {
		p[i] = v > 0
	}
	return p
}
