//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

// Package corpus reads named collections of articles out of a store and lays them out as documents in canonical
// tag order: the order every vector matrix in the program follows.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"strings"
)

var Msg = lnch.Msg

var (
	ErrNoCorpus = errors.New("no such corpus")
	ErrBadName  = errors.New("invalid corpus name")
)

// Record - one article: a line of a corpus file or a row of the documents table
type Record struct {
	Tag      tags.Tag
	Raw      string
	Abstract string
	Title    string
	Journal  string
	PMID     string
	PMC      string
	Label    string
	Keywords []string
	Mesh     []string
}

// Labels - keywords, then mesh terms, then the label if there is one
func (r Record) Labels() []string {
	ll := make([]string, 0, len(r.Keywords)+len(r.Mesh)+1)
	ll = append(ll, r.Keywords...)
	ll = append(ll, r.Mesh...)
	if r.Label != "" {
		ll = append(ll, r.Label)
	}
	return ll
}

// Document - a unit of screening: either an abstract or a body
type Document struct {
	Tag    tags.Tag
	Text   string
	Tokens []string
}

// Provider - anything that can hand over the records of a named corpus
type Provider interface {
	Names(ctx context.Context) ([]string, error)
	Iterate(ctx context.Context, name string) ([]Record, error)
}

// Closer - providers holding a connection
type Closer interface {
	Close() error
}

// ValidName - a corpus name becomes the first part of every tag, so it cannot be empty or carry the separator
func ValidName(name string) error {
	if name == "" || strings.Contains(name, tags.SEP) || strings.ContainsAny(name, `/\ `) {
		return fmt.Errorf("%w: '%s'", ErrBadName, name)
	}
	return nil
}

// splitplus - "a+b++c" into [a b c]
func splitplus(s string) []string {
	var out []string
	for _, p := range strings.Split(s, tags.SEP) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
