//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"context"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"strings"
	"time"
)

// Collection - the documents of one or more corpora, row aligned with Index
type Collection struct {
	Names    []string
	Docs     []Document
	Records  map[tags.Tag]Record
	Index    *tags.Index
	Resolver *tags.Resolver
}

func (c *Collection) Len() int {
	return len(c.Docs)
}

// Texts - document texts in row order
func (c *Collection) Texts() []string {
	tt := make([]string, len(c.Docs))
	for i, d := range c.Docs {
		tt[i] = d.Text
	}
	return tt
}

// Sentences - tokenized documents in row order
func (c *Collection) Sentences() [][]string {
	ss := make([][]string, len(c.Docs))
	for i, d := range c.Docs {
		ss[i] = d.Tokens
	}
	return ss
}

// Record - the article behind a tag; an abstract tag finds the record of its body
func (c *Collection) Record(t tags.Tag) (Record, bool) {
	t.Abstract = false
	r, ok := c.Records[t]
	return r, ok
}

// Merge - read the named corpora in parallel and lay their documents out in canonical order: corpora by name,
// records by line, an abstract right before its body
func Merge(ctx context.Context, p Provider, names []string) (*Collection, error) {
	const (
		MSG = "Merge(): %d corpora, %d records, %d documents"
	)

	start := time.Now()
	nn := slices.Clone(names)
	slices.Sort(nn)
	nn = slices.Compact(nn)
	if len(nn) == 0 {
		return nil, fmt.Errorf("%w: no corpora requested", ErrNoCorpus)
	}

	fetched := make([][]Record, len(nn))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, lnch.Config.WorkerCount))
	for i, n := range nn {
		i, n := i, n
		g.Go(func() error {
			if err := ValidName(n); err != nil {
				return err
			}
			rr, err := p.Iterate(gctx, n)
			if err != nil {
				return fmt.Errorf("corpus '%s': %w", n, err)
			}
			fetched[i] = rr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Collection{
		Names:    nn,
		Records:  make(map[tags.Tag]Record),
		Resolver: tags.NewResolver(),
	}

	nrec := 0
	for i := range fetched {
		rr := slices.Clone(fetched[i])
		slices.SortStableFunc(rr, func(a, b Record) int {
			return a.Tag.Line - b.Tag.Line
		})
		for _, r := range rr {
			r.Tag.Corpus = nn[i]
			r.Tag.Abstract = false
			c.Records[r.Tag] = r
			nrec++
			if strings.TrimSpace(r.Abstract) != "" {
				at := r.Tag
				at.Abstract = true
				c.add(at, r.Abstract)
			}
			c.add(r.Tag, r.Raw)
		}
	}

	tt := make([]tags.Tag, len(c.Docs))
	for i, d := range c.Docs {
		tt[i] = d.Tag
	}
	idx, err := tags.NewIndex(tt)
	if err != nil {
		return nil, err
	}
	c.Index = idx

	Msg.PEEK(fmt.Sprintf(MSG, len(nn), nrec, len(c.Docs)))
	Msg.Timer("M", "corpus.Merge()", start, start)
	return c, nil
}

func (c *Collection) add(t tags.Tag, text string) {
	c.Docs = append(c.Docs, Document{Tag: t, Text: text, Tokens: Tokenize(text)})
	c.Resolver.Add(t, text)
}
