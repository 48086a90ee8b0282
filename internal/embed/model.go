//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package embed turns word embeddings into document vectors: a document is the mean of the vectors of the words
// it contains.
package embed

import (
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/rank"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/wego/pkg/embedding"
	"github.com/e-gun/wego/pkg/search"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"time"
)

var (
	ErrNoVocabulary = errors.New("the embeddings have no vocabulary")
	ErrUnknownWord  = errors.New("word is not in the vocabulary")
)

// DocModel - word vectors plus the document matrix they induce over a collection; immutable once built
type DocModel struct {
	Kind     string
	Built    time.Time
	dim      int
	words    map[string][]float64
	embs     embedding.Embeddings
	docs     *mat.Dense
	index    *tags.Index
	texts    *tags.Resolver
	searcher *search.Searcher
}

// NewDocModel - every document of c becomes the mean of its in-vocabulary word vectors
func NewDocModel(kind string, embs embedding.Embeddings, c *corpus.Collection) (*DocModel, error) {
	const (
		FAIL1 = "%w: word '%s' has %d dimensions, expected %d"
		MSG1  = "NewDocModel(): %d words x %d dimensions; %d documents"
	)

	if len(embs) == 0 {
		return nil, ErrNoVocabulary
	}
	if c == nil || c.Len() == 0 {
		return nil, project.ErrNoDocuments
	}

	dim := len(embs[0].Vector)
	words := make(map[string][]float64, len(embs))
	for _, e := range embs {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf(FAIL1, ErrNoVocabulary, e.Word, len(e.Vector), dim)
		}
		words[e.Word] = e.Vector
	}

	s, err := search.New(embs...)
	if err != nil {
		return nil, err
	}

	m := &DocModel{
		Kind:     kind,
		Built:    time.Now(),
		dim:      dim,
		words:    words,
		embs:     embs,
		index:    c.Index,
		texts:    c.Resolver,
		searcher: s,
	}

	m.docs = mat.NewDense(c.Len(), dim, nil)
	for i, d := range c.Docs {
		m.docs.SetRow(i, m.InferVector(d.Tokens))
	}

	Msg.PEEK(fmt.Sprintf(MSG1, len(words), dim, c.Len()))
	return m, nil
}

// InferVector - the mean of the known word vectors; all zeros if no token is known
func (m *DocModel) InferVector(tokens []string) []float64 {
	v := make([]float64, m.dim)
	n := 0
	for _, t := range tokens {
		if wv, ok := m.words[t]; ok {
			floats.Add(v, wv)
			n++
		}
	}
	if n > 0 {
		floats.Scale(1/float64(n), v)
	}
	return v
}

// DocVectors - the shared matrix: callers must not write to it
func (m *DocModel) DocVectors() *mat.Dense {
	return m.docs
}

func (m *DocModel) Index() *tags.Index {
	return m.index
}

func (m *DocModel) Texts() *tags.Resolver {
	return m.texts
}

func (m *DocModel) Dim() int {
	return m.dim
}

func (m *DocModel) Vocabulary() int {
	return len(m.words)
}

func (m *DocModel) Known(word string) bool {
	_, ok := m.words[word]
	return ok
}

// NearestDocs - the n documents most similar to v
func (m *DocModel) NearestDocs(v []float64, n int) []rank.TagScore {
	return rank.NearestTags(v, m.docs, m.index, n)
}

// WordVectors - the vocabulary as a matrix for the topic word tables
func (m *DocModel) WordVectors() project.WordVectors {
	ww := make([]string, len(m.embs))
	vv := mat.NewDense(len(m.embs), m.dim, nil)
	for i, e := range m.embs {
		ww[i] = e.Word
		vv.SetRow(i, e.Vector)
	}
	return project.WordVectors{Words: ww, Vectors: vv}
}

// NearestWords - the n nearest neighbors of a word in the embedding space
func (m *DocModel) NearestWords(word string, n int) (search.Neighbors, error) {
	if !m.Known(word) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownWord, word)
	}
	return m.searcher.SearchInternal(word, n)
}
