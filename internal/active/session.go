//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package active runs the screening loop: seed a batch by similarity, collect the user's judgments, refit the
// relevance classifier on every label so far, present the rows it is most sure about, repeat until nothing is
// left unlabeled or the user proceeds.
package active

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/classify"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/rank"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"time"
)

// Session - one user's screening state. Not safe for concurrent use: the vault serialises the rounds of a user.
type Session struct {
	ID      string
	Created time.Time

	proj      *project.Projection
	space     project.Space
	index     *tags.Index
	k         int
	state     State
	round     int
	labels    []Label
	labeled   map[int]bool
	presented map[int]bool
	pending   *Batch
	svm       *classify.LinearSVM
	result    *Result
}

// NewSession - proj must carry a query vector and index must name every one of its rows
func NewSession(id string, proj *project.Projection, index *tags.Index, k int) (*Session, error) {
	if proj == nil || proj.Docs == nil || index == nil {
		return nil, ErrEmptyCollection
	}
	if proj.Rows() != index.Len() {
		return nil, fmt.Errorf("%w: %d rows and %d tags", ErrIndexMismatch, proj.Rows(), index.Len())
	}
	if index.Len() == 0 {
		return nil, ErrEmptyCollection
	}
	if k < 1 {
		k = vv.DEFAULTBATCHSIZE
	}
	return &Session{
		ID:        id,
		Created:   time.Now(),
		proj:      proj,
		space:     proj.Space,
		index:     index,
		k:         k,
		state:     Uninitialized,
		labeled:   make(map[int]bool),
		presented: make(map[int]bool),
	}, nil
}

// Start - the seeding round: the ⌈k/2⌉ most similar documents proposed as relevant, then the ⌊k/2⌋ least similar
// of the rest proposed as irrelevant. No classifier yet.
func (s *Session) Start() (*Batch, error) {
	if s.state != Uninitialized {
		return nil, ErrAlreadyStarted
	}
	s.state = Seeding

	docs := s.proj.Docs
	q := s.proj.Query
	top := rank.Top(q, docs, (s.k+1)/2, nil)

	chosen := make(map[int]bool, len(top))
	for _, t := range top {
		chosen[t.Row] = true
	}
	bottom := rank.Bottom(q, docs, s.k/2, chosen)

	b := &Batch{Round: s.round}
	for _, t := range top {
		b.Items = append(b.Items, s.proposal(t, true))
	}
	for _, t := range bottom {
		b.Items = append(b.Items, s.proposal(t, false))
	}

	s.present(b)
	s.state = AwaitingLabels
	return b, nil
}

// Submit - apply a batch of judgments and produce the next batch. A label set with a single class cannot be
// fit: the error is returned and nothing is committed, so the user can flip a judgment and resubmit.
func (s *Session) Submit(jj []Judgment) (*Round, error) {
	if s.state != AwaitingLabels {
		return nil, ErrNotAwaiting
	}
	if len(jj) == 0 {
		return nil, ErrNoJudgments
	}

	next, err := s.tentative(jj)
	if err != nil {
		return nil, err
	}

	if len(next) == s.Total() {
		s.commit(next)
		s.finish(s.tryfit(next))
		return &Round{Exhausted: true, Result: s.result}, nil
	}

	s.state = Ranking
	svm, err := s.fit(next)
	if err != nil {
		s.state = AwaitingLabels
		return nil, err
	}

	s.commit(next)
	s.svm = svm
	s.round++

	scores := svm.DecisionScore(s.proj.Docs)
	b := &Batch{Round: s.round}
	for _, c := range classify.ByConfidence(scores, s.k, s.labeled) {
		b.Items = append(b.Items, s.proposal(c, c.Score > 0))
	}

	s.present(b)
	s.state = AwaitingLabels
	return &Round{Batch: b}, nil
}

// Proceed - stop asking: apply any final judgments, refit once more on the labels so far and predict the rest
func (s *Session) Proceed(jj []Judgment) (*Result, error) {
	if s.state != AwaitingLabels {
		return nil, ErrNotAwaiting
	}

	next := s.labels
	if len(jj) > 0 {
		var err error
		next, err = s.tentative(jj)
		if err != nil {
			return nil, err
		}
	}

	if len(next) == s.Total() {
		s.commit(next)
		s.finish(s.tryfit(next))
		return s.result, nil
	}

	svm, err := s.fit(next)
	if err != nil {
		return nil, err
	}
	s.commit(next)
	s.finish(svm)
	return s.result, nil
}

// tentative - the label set as it would be after jj; jj must judge every presented row and is applied in
// canonical tag order
func (s *Session) tentative(jj []Judgment) ([]Label, error) {
	sorted := slices.Clone(jj)
	slices.SortStableFunc(sorted, func(a, b Judgment) int {
		return tags.Compare(a.Tag, b.Tag)
	})

	seen := make(map[int]bool, len(sorted))
	next := slices.Clone(s.labels)
	for _, j := range sorted {
		row := s.index.Row(j.Tag)
		if row < 0 || !s.presented[row] {
			return nil, fmt.Errorf("%w: '%s'", ErrNotPresented, j.Tag)
		}
		if s.labeled[row] || seen[row] {
			return nil, fmt.Errorf("%w: '%s'", ErrAlreadyLabeled, j.Tag)
		}
		seen[row] = true
		next = append(next, Label{Seq: len(next), Row: row, Tag: j.Tag, Relevant: j.Relevant})
	}
	if len(seen) != len(s.presented) {
		return nil, fmt.Errorf("%w: %d of %d judged", ErrIncompleteBatch, len(seen), len(s.presented))
	}
	return next, nil
}

func (s *Session) commit(next []Label) {
	s.labels = next
	for _, l := range next {
		s.labeled[l.Row] = true
	}
	s.presented = make(map[int]bool)
	s.pending = nil
}

// fit - a fresh classifier on the entire label set
func (s *Session) fit(ll []Label) (*classify.LinearSVM, error) {
	pos := 0
	for _, l := range ll {
		if l.Relevant {
			pos++
		}
	}
	if pos == 0 || pos == len(ll) {
		return nil, &classify.InsufficientDataError{Relevant: pos, Irrelevant: len(ll) - pos}
	}

	_, c := s.proj.Docs.Dims()
	X := mat.NewDense(len(ll), c, nil)
	y := make([]bool, len(ll))
	for i, l := range ll {
		X.SetRow(i, s.proj.Docs.RawRowView(l.Row))
		y[i] = l.Relevant
	}

	svm := classify.NewLinearSVM()
	if err := svm.Fit(X, y); err != nil {
		return nil, err
	}
	return svm, nil
}

// tryfit - everything is labeled, so a boundary is only needed for the scores; nil if one cannot be fit
func (s *Session) tryfit(ll []Label) *classify.LinearSVM {
	svm, err := s.fit(ll)
	if err != nil {
		return nil
	}
	return svm
}

// finish - the terminal state and its result
func (s *Session) finish(svm *classify.LinearSVM) {
	var scores []float64
	if svm != nil {
		scores = svm.DecisionScore(s.proj.Docs)
	}
	score := func(row int) float64 {
		if scores == nil {
			return 0
		}
		return scores[row]
	}

	r := &Result{Total: s.Total(), Labeled: len(s.labels)}
	for _, l := range s.labels {
		if l.Relevant {
			r.Relevant = append(r.Relevant, Outcome{Row: l.Row, Tag: l.Tag, Explicit: true, Score: score(l.Row)})
			r.Explicit++
		} else {
			r.Irrelevant++
		}
	}

	for row, v := range scores {
		if s.labeled[row] {
			continue
		}
		if v > 0 {
			t, _ := s.index.TagAt(row)
			r.Relevant = append(r.Relevant, Outcome{Row: row, Tag: t, Score: v})
			r.Predicted++
		} else {
			r.Irrelevant++
		}
	}

	s.result = r
	s.state = Exhausted

	// only the result is needed from here on
	s.proj = nil
	s.svm = nil
	s.presented = nil
	s.labeled = nil
}

func (s *Session) proposal(sc rank.Scored, rel bool) Proposal {
	t, _ := s.index.TagAt(sc.Row)
	return Proposal{Row: sc.Row, Tag: t, Relevant: rel, Score: sc.Score, Override: true}
}

func (s *Session) present(b *Batch) {
	s.presented = make(map[int]bool, len(b.Items))
	for _, p := range b.Items {
		s.presented[p.Row] = true
	}
	s.pending = b
}

//
// ACCESSORS
//

func (s *Session) State() State {
	return s.state
}

// Pending - the batch awaiting judgment; nil unless AwaitingLabels
func (s *Session) Pending() *Batch {
	return s.pending
}

// Result - only once Exhausted
func (s *Session) Result() (*Result, bool) {
	return s.result, s.result != nil
}

// Labels - the label set in the order it was applied
func (s *Session) Labels() []Label {
	return slices.Clone(s.labels)
}

// Relevant - rows labeled relevant, in label order
func (s *Session) Relevant() []int {
	return s.rows(true)
}

// Irrelevant - rows labeled irrelevant, in label order
func (s *Session) Irrelevant() []int {
	return s.rows(false)
}

func (s *Session) rows(rel bool) []int {
	var out []int
	for _, l := range s.labels {
		if l.Relevant == rel {
			out = append(out, l.Row)
		}
	}
	return out
}

func (s *Session) Labeled() int {
	return len(s.labels)
}

func (s *Session) Total() int {
	return s.index.Len()
}

// Progress - the share of the collection labeled so far
func (s *Session) Progress() float64 {
	return float64(len(s.labels)) / float64(s.Total())
}

func (s *Session) Round() int {
	return s.round
}

func (s *Session) BatchSize() int {
	return s.k
}

func (s *Session) Space() project.Space {
	return s.space
}

// Classifier - the boundary from the latest successful fit; nil before the first one and once Exhausted
func (s *Session) Classifier() *classify.LinearSVM {
	return s.svm
}
