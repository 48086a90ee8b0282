//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package active

import (
	"errors"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
)

type State int

const (
	Uninitialized State = iota
	Seeding
	AwaitingLabels
	Ranking
	Exhausted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Seeding:
		return "seeding"
	case AwaitingLabels:
		return "awaiting labels"
	case Ranking:
		return "ranking"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyStarted  = errors.New("active learning has already started")
	ErrNotAwaiting     = errors.New("the session is not waiting for labels")
	ErrNotPresented    = errors.New("document was not part of the current batch")
	ErrAlreadyLabeled  = errors.New("document has already been labeled")
	ErrNoJudgments     = errors.New("no judgments submitted")
	ErrIndexMismatch   = errors.New("tag index and document matrix disagree")
	ErrEmptyCollection = errors.New("there are no documents to screen")
	ErrIncompleteBatch = errors.New("every document of the batch needs a judgment")
)

// Proposal - one document as presented: its predicted class, which the user may override
type Proposal struct {
	Row      int
	Tag      tags.Tag
	Relevant bool
	Score    float64
	Override bool
}

// Batch - what the user is asked to judge; seeding scores are similarities, later ones classifier confidences
type Batch struct {
	Round int
	Items []Proposal
}

// Positive - the proposals predicted relevant
func (b *Batch) Positive() []Proposal {
	return b.split(true)
}

// Negative - the proposals predicted irrelevant
func (b *Batch) Negative() []Proposal {
	return b.split(false)
}

func (b *Batch) split(rel bool) []Proposal {
	var out []Proposal
	for _, p := range b.Items {
		if p.Relevant == rel {
			out = append(out, p)
		}
	}
	return out
}

// Judgment - the user's verdict on one presented document
type Judgment struct {
	Tag      tags.Tag
	Relevant bool
}

// Label - an applied judgment; Seq is its position in the label set
type Label struct {
	Seq      int
	Row      int
	Tag      tags.Tag
	Relevant bool
}

// Round - the outcome of a submission: either the next batch or, once every document is labeled, the result
type Round struct {
	Batch     *Batch
	Exhausted bool
	Result    *Result
}

// Outcome - a document in the final answer; Explicit means a user said so
type Outcome struct {
	Row      int
	Tag      tags.Tag
	Explicit bool
	Score    float64
}

// Result - the explicitly relevant documents in label order, then the predicted relevant in row order
type Result struct {
	Relevant   []Outcome
	Labeled    int
	Explicit   int
	Predicted  int
	Irrelevant int
	Total      int
}
