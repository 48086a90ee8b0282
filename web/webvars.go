//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"context"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/active"
	"github.com/e-gun/ScreeningGoServer/internal/classify"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/embed"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/ner"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"html"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	Msg         = lnch.Msg
	Collections = vlt.NewRegistry[*corpus.Collection]()
	Models      = vlt.NewRegistry[*embed.DocModel]()
	Projections = vlt.NewRegistry[*project.Projection]()
	Provider    corpus.Provider
	Tagger      ner.Tagger
	Stops       []string
)

var (
	ErrNoModel    = errors.New("no model has been trained for these corpora: train one first")
	ErrNoProvider = errors.New("no corpus provider has been configured")
	ErrUnknownDoc = errors.New("no such document")
	ErrNoQuery    = errors.New("supply either a text or a document tag")
)

// JSFailure - what the JS on the other side gets when something went wrong
type JSFailure struct {
	Error string `json:"error"`
}

// DocPair - a document id and the html that presents it
type DocPair struct {
	ID   string  `json:"id"`
	HTML string  `json:"html"`
	Sim  float64 `json:"score"`
}

// Configure - hand the routes their collaborators; main calls this once before serving
func Configure(p corpus.Provider, t ner.Tagger, stops []string) {
	Provider = p
	Tagger = t
	Stops = stops
}

//
// LOOKUPS
//

// modelkey - the key of the model the session is using
func modelkey(s str.ServerSession) vlt.ModelKey {
	return vlt.NewModelKey(s.ActiveCorp, s.Model, lnch.Config.VectorDim)
}

// corpuskey - a merged collection does not depend on the model
func corpuskey(corpora []string) vlt.ModelKey {
	return vlt.NewModelKey(corpora, "corpus", 0)
}

// modeldir - where trained embeddings are cached
func modeldir() string {
	return filepath.Join(lnch.Config.CorpusDir, vv.MODELSUBDIR)
}

// collection - the merged corpora; built once and then shared
func collection(ctx context.Context, corpora []string) (*corpus.Collection, error) {
	if Provider == nil {
		return nil, ErrNoProvider
	}
	return Collections.GetOrBuild(ctx, corpuskey(corpora), func() (*corpus.Collection, error) {
		// the build outlives any one request
		return corpus.Merge(context.Background(), Provider, corpora)
	})
}

// currentmodel - the trained model of the session's corpora
func currentmodel(s str.ServerSession) (*embed.DocModel, error) {
	m, ok := Models.Get(modelkey(s))
	if !ok {
		return nil, ErrNoModel
	}
	return m, nil
}

// projection - the shared document matrix of a model in a space
func projection(ctx context.Context, s str.ServerSession, m *embed.DocModel, sp project.Space) (*project.Projection, error) {
	if _, err := project.ParseSpace(string(sp)); err != nil {
		return nil, err
	}
	k := modelkey(s).With(fmt.Sprintf("%s-%d-%d", sp, s.Topics, m.Built.UnixNano()))
	return Projections.GetOrBuild(ctx, k, func() (*project.Projection, error) {
		return project.NewProjector(s.Topics).Base(m, sp)
	})
}

// pruneprojections - drop the projections of the models that k used to name before m
func pruneprojections(k vlt.ModelKey, m *embed.DocModel) {
	current := fmt.Sprintf("-%d", m.Built.UnixNano())
	for _, pk := range Projections.Keys() {
		if pk.With("") == k && !strings.HasSuffix(pk.Extra, current) {
			Projections.Delete(pk)
		}
	}
}

// parsespace - an empty form value means the session's preference
func parsespace(s str.ServerSession, val string) (project.Space, error) {
	if val == "" {
		val = s.Space
	}
	return project.ParseSpace(val)
}

// query - a document row if a tag was given, else the tokens of the text
func query(m *embed.DocModel, text string, tag string) (project.Query, error) {
	if tag != "" {
		row := m.Index().RowOf(tag)
		if row < 0 {
			return project.Query{}, fmt.Errorf("%w: '%s'", ErrUnknownDoc, tag)
		}
		return project.RowQuery(row), nil
	}
	tt := corpus.Tokenize(text)
	if len(tt) == 0 {
		return project.Query{}, ErrNoQuery
	}
	return project.TextQuery(tt), nil
}

//
// OUTPUT
//

// snippet - the start of a document's text, escaped
func snippet(r *tags.Resolver, t tags.Tag) string {
	const (
		SNIP = `<span class="doctag">%s</span> %s`
		ELL  = "…"
	)
	txt, _ := r.Text(t)
	if utf8.RuneCountInString(txt) > vv.SNIPPETLEN {
		txt = string([]rune(txt)[:vv.SNIPPETLEN]) + ELL
	}
	return fmt.Sprintf(SNIP, t.String(), html.EscapeString(strings.TrimSpace(txt)))
}

// apierror - the user's mistakes are 400s with a message; a missing model or session is a 409; the rest is logged
func apierror(c echo.Context, fn string, err error) error {
	const (
		FAIL = "%s failed: %s"
	)

	var ise *project.InvalidSpaceError
	var ide *classify.InsufficientDataError
	var vde validator.ValidationErrors
	var bnd *echo.HTTPError

	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &ise), errors.As(err, &ide), errors.As(err, &vde), errors.As(err, &bnd):
		code = http.StatusBadRequest
	case errors.Is(err, active.ErrNotAwaiting), errors.Is(err, active.ErrNotPresented),
		errors.Is(err, active.ErrAlreadyLabeled), errors.Is(err, active.ErrNoJudgments),
		errors.Is(err, active.ErrAlreadyStarted), errors.Is(err, ErrUnknownDoc), errors.Is(err, ErrNoQuery),
		errors.Is(err, tags.ErrMalformed), errors.Is(err, corpus.ErrNoCorpus), errors.Is(err, corpus.ErrBadName),
		errors.Is(err, embed.ErrUnknownWord), errors.Is(err, ErrBadJudgment), errors.Is(err, active.ErrEmptyCollection),
		errors.Is(err, active.ErrIncompleteBatch),
		errors.Is(err, project.ErrNoSuchRow):
		code = http.StatusBadRequest
	case errors.Is(err, ErrNoModel), errors.Is(err, vlt.ErrNoSession):
		code = http.StatusConflict
	default:
		Msg.WARN(fmt.Sprintf(FAIL, fn, err.Error()))
	}
	return c.JSONPretty(code, JSFailure{Error: err.Error()}, vv.JSONINDENT)
}

// bindandvalidate - c.Bind() then the validator/v10 tags
func bindandvalidate(c echo.Context, i interface{}) error {
	if err := c.Bind(i); err != nil {
		return err
	}
	return c.Validate(i)
}
