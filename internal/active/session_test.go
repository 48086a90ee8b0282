//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package active

import (
	"math"
	"testing"

	"github.com/e-gun/ScreeningGoServer/internal/classify"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newsession(t *testing.T, data []float64, cols int, query []float64, k int) *Session {
	t.Helper()
	rows := len(data) / cols
	tt := make([]tags.Tag, rows)
	for i := range tt {
		tt[i] = tags.Tag{Corpus: "c", Line: i}
	}
	idx, err := tags.NewIndex(tt)
	require.NoError(t, err)

	pr := &project.Projection{
		Space: project.DocumentSpace,
		Docs:  mat.NewDense(rows, cols, data),
		Query: query,
	}
	s, err := NewSession("u1", pr, idx, k)
	require.NoError(t, err)
	return s
}

func compass(t *testing.T, k int) *Session {
	return newsession(t, []float64{
		1, 0,
		0, 1,
		-1, 0,
		0, -1,
	}, 2, []float64{1, 0}, k)
}

func six(t *testing.T, k int) *Session {
	return newsession(t, []float64{
		1, 0,
		0.8, 0.2,
		0.6, 0.4,
		-0.6, 0.4,
		-0.8, 0.2,
		-1, 0,
	}, 2, []float64{1, 0}, k)
}

func tag(line int) tags.Tag {
	return tags.Tag{Corpus: "c", Line: line}
}

func rowsof(pp []Proposal) []int {
	out := make([]int, len(pp))
	for i, p := range pp {
		out[i] = p.Row
	}
	return out
}

func TestNewSessionChecks(t *testing.T) {
	idx, err := tags.NewIndex([]tags.Tag{tag(0)})
	require.NoError(t, err)
	pr := &project.Projection{Docs: mat.NewDense(2, 1, []float64{1, 2})}
	_, err = NewSession("x", pr, idx, 2)
	assert.ErrorIs(t, err, ErrIndexMismatch)

	_, err = NewSession("x", nil, idx, 2)
	assert.ErrorIs(t, err, ErrEmptyCollection)

	s := compass(t, 0)
	assert.Greater(t, s.BatchSize(), 0)
	assert.Equal(t, Uninitialized, s.State())
}

func TestSeedingSplitsBySimilarity(t *testing.T) {
	s := compass(t, 4)
	b, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, AwaitingLabels, s.State())
	assert.Nil(t, s.Classifier())

	// top ⌈4/2⌉: row 0 then row 1 (rows 1 and 3 tie; the lower row wins)
	assert.Equal(t, []int{0, 1}, rowsof(b.Positive()))
	// bottom ⌊4/2⌋ of what is left
	assert.Equal(t, []int{2, 3}, rowsof(b.Negative()))
	assert.Equal(t, 1.0, b.Items[0].Score)
	assert.Equal(t, -1.0, b.Items[2].Score)
	for _, p := range b.Items {
		assert.True(t, p.Override)
	}
	assert.Same(t, b, s.Pending())

	_, err = s.Start()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestSeedingOddBatchAndSmallPool(t *testing.T) {
	s := compass(t, 3)
	b, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rowsof(b.Positive()))
	assert.Equal(t, []int{2}, rowsof(b.Negative()))

	// k larger than the pool: the bottom half never repeats a top row
	s = compass(t, 10)
	b, err = s.Start()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3, 2}, rowsof(b.Positive()))
	assert.Empty(t, b.Negative())
}

func TestSubmitRefitsAndReranks(t *testing.T) {
	s := compass(t, 2)
	b, err := s.Start()
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, rowsof(b.Items))

	r, err := s.Submit([]Judgment{{tag(0), true}, {tag(2), false}})
	require.NoError(t, err)
	require.False(t, r.Exhausted)
	require.NotNil(t, r.Batch)

	svm := s.Classifier()
	require.NotNil(t, svm)
	sc := svm.DecisionScore(mat.NewDense(4, 2, []float64{1, 0, 0, 1, -1, 0, 0, -1}))
	assert.Greater(t, sc[0], 0.0)
	assert.Less(t, sc[2], 0.0)

	// only the unlabeled rows come back
	assert.ElementsMatch(t, []int{1, 3}, rowsof(r.Batch.Items))
	assert.Equal(t, 1, r.Batch.Round)
	assert.Equal(t, 1, s.Round())
	assert.Equal(t, []int{0}, s.Relevant())
	assert.Equal(t, []int{2}, s.Irrelevant())
	assert.InDelta(t, 0.5, s.Progress(), 1e-12)
}

func TestSingleClassRoundIsNotCommitted(t *testing.T) {
	s := compass(t, 2)
	b, err := s.Start()
	require.NoError(t, err)

	_, err = s.Submit([]Judgment{{tag(0), true}, {tag(2), true}})
	var ide *classify.InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 2, ide.Relevant)

	assert.Equal(t, AwaitingLabels, s.State())
	assert.Zero(t, s.Labeled())
	assert.Same(t, b, s.Pending())

	// flip one and resubmit
	r, err := s.Submit([]Judgment{{tag(0), true}, {tag(2), false}})
	require.NoError(t, err)
	assert.NotNil(t, r.Batch)
	assert.Equal(t, 2, s.Labeled())
}

func TestSubmitValidation(t *testing.T) {
	s := compass(t, 2)
	_, err := s.Submit([]Judgment{{tag(0), true}})
	assert.ErrorIs(t, err, ErrNotAwaiting)

	b, err := s.Start()
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, rowsof(b.Items))

	_, err = s.Submit(nil)
	assert.ErrorIs(t, err, ErrNoJudgments)

	_, err = s.Submit([]Judgment{{tag(1), true}})
	assert.ErrorIs(t, err, ErrNotPresented)

	_, err = s.Submit([]Judgment{{tags.Tag{Corpus: "zzz", Line: 0}, true}})
	assert.ErrorIs(t, err, ErrNotPresented)

	_, err = s.Submit([]Judgment{{tag(0), true}, {tag(0), false}})
	assert.ErrorIs(t, err, ErrAlreadyLabeled)

	// half a batch is refused and nothing is committed
	_, err = s.Submit([]Judgment{{tag(0), true}})
	assert.ErrorIs(t, err, ErrIncompleteBatch)
	assert.Zero(t, s.Labeled())
	assert.Same(t, b, s.Pending())

	r, err := s.Submit([]Judgment{{tag(0), true}, {tag(2), false}})
	require.NoError(t, err)

	// labeled rows are never presented again, so they cannot be judged again
	for _, p := range r.Batch.Items {
		assert.NotContains(t, []int{0, 2}, p.Row)
	}
	_, err = s.Submit([]Judgment{{tag(0), false}})
	assert.ErrorIs(t, err, ErrNotPresented)
}

func TestJudgmentsAppliedInTagOrder(t *testing.T) {
	s := compass(t, 4)
	_, err := s.Start()
	require.NoError(t, err)

	_, err = s.Submit([]Judgment{{tag(3), false}, {tag(0), true}, {tag(2), false}, {tag(1), true}})
	require.NoError(t, err)

	ll := s.Labels()
	require.Len(t, ll, 4)
	for i, want := range []int{0, 1, 2, 3} {
		assert.Equal(t, i, ll[i].Seq)
		assert.Equal(t, want, ll[i].Row)
	}
}

func TestLabelingEverythingExhaustsWithoutRanking(t *testing.T) {
	s := six(t, 6)
	b, err := s.Start()
	require.NoError(t, err)
	require.Len(t, b.Items, 6)

	var jj []Judgment
	for _, p := range b.Items {
		jj = append(jj, Judgment{Tag: p.Tag, Relevant: p.Row < 3})
	}
	r, err := s.Submit(jj)
	require.NoError(t, err)
	assert.True(t, r.Exhausted)
	assert.Nil(t, r.Batch)
	assert.Equal(t, Exhausted, s.State())
	assert.Zero(t, s.Round())
	assert.Nil(t, s.Pending())

	require.NotNil(t, r.Result)
	assert.Equal(t, 6, r.Result.Labeled)
	assert.Equal(t, 3, r.Result.Explicit)
	assert.Zero(t, r.Result.Predicted)
	assert.Equal(t, 3, r.Result.Irrelevant)
	assert.Equal(t, len(s.Relevant())+len(s.Irrelevant()), s.Total())

	// the matrix and the boundary are let go; the result and the counts remain
	assert.Nil(t, s.Classifier())
	assert.Equal(t, project.DocumentSpace, s.Space())
	assert.Equal(t, 1.0, s.Progress())
	got, ok := s.Result()
	assert.True(t, ok)
	assert.Same(t, r.Result, got)

	_, err = s.Submit(jj)
	assert.ErrorIs(t, err, ErrNotAwaiting)
	_, err = s.Proceed(nil)
	assert.ErrorIs(t, err, ErrNotAwaiting)
}

func TestExhaustionToleratesASingleClass(t *testing.T) {
	s := six(t, 6)
	b, err := s.Start()
	require.NoError(t, err)

	var jj []Judgment
	for _, p := range b.Items {
		jj = append(jj, Judgment{Tag: p.Tag, Relevant: true})
	}
	r, err := s.Submit(jj)
	require.NoError(t, err)
	assert.True(t, r.Exhausted)
	assert.Len(t, r.Result.Relevant, 6)
}

func TestProceedEarly(t *testing.T) {
	s := six(t, 2)
	b, err := s.Start()
	require.NoError(t, err)
	require.Equal(t, []int{0, 5}, rowsof(b.Items))

	// one class only: refused, nothing changes
	_, err = s.Proceed([]Judgment{{tag(0), true}, {tag(5), true}})
	var ide *classify.InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, AwaitingLabels, s.State())
	assert.Zero(t, s.Labeled())

	res, err := s.Proceed([]Judgment{{tag(0), true}, {tag(5), false}})
	require.NoError(t, err)
	assert.Equal(t, Exhausted, s.State())
	assert.Equal(t, 2, res.Labeled)
	assert.Equal(t, 6, res.Total)

	// explicit first, then the predictions in row order
	require.Len(t, res.Relevant, 3)
	assert.Equal(t, 0, res.Relevant[0].Row)
	assert.True(t, res.Relevant[0].Explicit)
	assert.Equal(t, 1, res.Relevant[1].Row)
	assert.False(t, res.Relevant[1].Explicit)
	assert.Equal(t, 2, res.Relevant[2].Row)
	assert.Equal(t, 1, res.Explicit)
	assert.Equal(t, 2, res.Predicted)
	assert.Equal(t, 3, res.Irrelevant)

	got, ok := s.Result()
	assert.True(t, ok)
	assert.Same(t, res, got)
}

func TestProceedWithoutNewJudgments(t *testing.T) {
	s := six(t, 2)
	_, err := s.Start()
	require.NoError(t, err)

	// nothing labeled yet: the same refusal as a single class, not a crash
	_, err = s.Proceed(nil)
	var ide *classify.InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Zero(t, ide.Relevant)
	assert.Zero(t, ide.Irrelevant)
	assert.Equal(t, AwaitingLabels, s.State())
	require.NotNil(t, s.Pending())

	_, err = s.Proceed([]Judgment{{tag(0), true}})
	assert.ErrorIs(t, err, ErrIncompleteBatch)

	_, err = s.Submit([]Judgment{{tag(0), true}, {tag(5), false}})
	require.NoError(t, err)
	res, err := s.Proceed(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Labeled)
}

// the collection is screened to the end by an oracle; the invariants hold at every step
func TestScreeningToTheEnd(t *testing.T) {
	var data []float64
	n := 12
	for i := 0; i < n; i++ {
		a := float64(i) * math.Pi / 6
		data = append(data, math.Cos(a), math.Sin(a))
	}
	oracle := func(row int) bool {
		return data[2*row] > 0.1
	}

	s := newsession(t, data, 2, []float64{1, 0}, 3)
	b, err := s.Start()
	require.NoError(t, err)

	seen := make(map[int]bool)
	for rounds := 0; rounds <= n; rounds++ {
		var jj []Judgment
		for _, p := range b.Items {
			assert.False(t, seen[p.Row], "row %d presented twice", p.Row)
			seen[p.Row] = true
			jj = append(jj, Judgment{Tag: p.Tag, Relevant: oracle(p.Row)})
		}

		r, err := s.Submit(jj)
		require.NoError(t, err)

		rel := make(map[int]bool)
		for _, x := range s.Relevant() {
			rel[x] = true
		}
		for _, x := range s.Irrelevant() {
			assert.False(t, rel[x], "row %d is both relevant and irrelevant", x)
		}
		assert.LessOrEqual(t, s.Labeled(), s.Total())

		if r.Exhausted {
			break
		}
		assert.NotEqual(t, s.Total(), s.Labeled())
		b = r.Batch
	}

	assert.Equal(t, Exhausted, s.State())
	assert.Equal(t, s.Total(), s.Labeled())
	res, ok := s.Result()
	require.True(t, ok)

	want := 0
	for i := 0; i < n; i++ {
		if oracle(i) {
			want++
		}
	}
	assert.Equal(t, want, res.Explicit)
	assert.Zero(t, res.Predicted)
}
