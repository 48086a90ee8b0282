//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"errors"
	"github.com/e-gun/nlp"
	"gonum.org/v1/gonum/mat"
)

var ErrEmptyMatrix = errors.New("the document-term matrix is empty")

// DocTerm - raw term counts, one row per document and one column per vocabulary entry
type DocTerm struct {
	X          *mat.Dense
	Vocabulary []string
}

// DocTermMatrix - count the terms of texts, stops excluded
func DocTermMatrix(texts []string, stops []string) (*DocTerm, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyMatrix
	}

	vectoriser := nlp.NewCountVectoriser(stops...)

	// terms x docs
	tbd, err := vectoriser.FitTransform(texts...)
	if err != nil {
		return nil, err
	}
	if len(vectoriser.Vocabulary) == 0 {
		return nil, ErrEmptyMatrix
	}

	vocab := make([]string, len(vectoriser.Vocabulary))
	for k, v := range vectoriser.Vocabulary {
		vocab[v] = k
	}

	return &DocTerm{X: mat.DenseCopyOf(tbd.T()), Vocabulary: vocab}, nil
}
