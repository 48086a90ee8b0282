//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package project places documents and queries in either the native document-embedding space or a topic
// space whose axes are k-means centroids of the document vectors.
package project

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"gonum.org/v1/gonum/mat"
)

// Model - the embedding collaborator
type Model interface {
	DocVectors() *mat.Dense
	InferVector(tokens []string) []float64
}

// Query - free text (Tokens) or, when Row >= 0, an existing document whose row is read and never re-inferred
type Query struct {
	Tokens []string
	Row    int
}

// TextQuery - a query with no row
func TextQuery(tokens []string) Query {
	return Query{Tokens: tokens, Row: -1}
}

// RowQuery - a query naming an existing document
func RowQuery(row int) Query {
	return Query{Row: row}
}

type Projector struct {
	Topics  int
	MaxIter int
}

// NewProjector - the default topic count, clamped later to the number of documents
func NewProjector(topics int) Projector {
	if topics < 1 {
		topics = vv.TOPICCOUNT
	}
	return Projector{Topics: topics, MaxIter: vv.KMEANSMAXITER}
}

// Projection - the document matrix in the chosen space; Centroids is nil in document space
type Projection struct {
	Space     Space
	Docs      *mat.Dense
	Query     []float64
	Centroids *mat.Dense
}

// Project - the document matrix plus the query vector
func (p Projector) Project(m Model, s Space, q Query) (*Projection, error) {
	base, err := p.Base(m, s)
	if err != nil {
		return nil, err
	}
	return base.WithQuery(m, q)
}

// Base - the document matrix alone; it can be shared read-only between every session over the same model
func (p Projector) Base(m Model, s Space) (*Projection, error) {
	if _, err := ParseSpace(string(s)); err != nil {
		return nil, err
	}

	docs := m.DocVectors()
	if docs == nil || docs.IsEmpty() {
		return nil, ErrNoDocuments
	}

	if s == DocumentSpace {
		return &Projection{Space: s, Docs: docs}, nil
	}

	r, _ := docs.Dims()
	k := p.Topics
	if k < 1 {
		k = vv.TOPICCOUNT
	}
	if k > r {
		k = r
	}
	mi := p.MaxIter
	if mi < 1 {
		mi = vv.KMEANSMAXITER
	}

	centroids, _ := KMeans(docs, k, mi)
	return &Projection{Space: s, Docs: ToTopicSpace(docs, centroids), Centroids: centroids}, nil
}

// WithQuery - a copy of the projection carrying the query vector; the matrices are shared
func (pr *Projection) WithQuery(m Model, q Query) (*Projection, error) {
	cp := *pr
	r, _ := pr.Docs.Dims()

	if q.Row >= 0 {
		if q.Row >= r {
			return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchRow, q.Row, r)
		}
		cp.Query = mat.Row(nil, q.Row, pr.Docs)
		return &cp, nil
	}

	v := m.InferVector(q.Tokens)
	if pr.Space == TopicSpace {
		v = TopicProfile(v, pr.Centroids)
	}
	cp.Query = v
	return &cp, nil
}

// Rows - the number of documents
func (pr *Projection) Rows() int {
	r, _ := pr.Docs.Dims()
	return r
}
