//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package project

import (
	"errors"
	"fmt"
	"strings"
)

type Space string

const (
	TopicSpace    Space = "topic"
	DocumentSpace Space = "document"
)

var (
	ErrNoDocuments = errors.New("the model has no document vectors")
	ErrNoSuchRow   = errors.New("query row is outside the document matrix")
)

// InvalidSpaceError - the selector was neither "topic" nor "document"
type InvalidSpaceError struct {
	Space string
}

func (e *InvalidSpaceError) Error() string {
	return fmt.Sprintf("invalid vector space '%s': choose '%s' or '%s'", e.Space, TopicSpace, DocumentSpace)
}

// ParseSpace - there is no default: anything unrecognised is an *InvalidSpaceError
func ParseSpace(s string) (Space, error) {
	switch Space(strings.TrimSpace(s)) {
	case TopicSpace:
		return TopicSpace, nil
	case DocumentSpace:
		return DocumentSpace, nil
	default:
		return "", &InvalidSpaceError{Space: s}
	}
}
