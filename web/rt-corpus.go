//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/ner"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/labstack/echo/v4"
	"html"
	"net/http"
)

type JSCorpora struct {
	Corpora []string `json:"corpora"`
	Active  []string `json:"active"`
}

type JSDocument struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Journal string   `json:"journal"`
	PMID    string   `json:"pmid"`
	PMC     string   `json:"pmc"`
	Labels  []string `json:"labels"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

// RtCorpusList - the corpora the provider can supply and the ones this session is using
func RtCorpusList(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtCorpusList()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	if Provider == nil {
		return apierror(c, "RtCorpusList()", ErrNoProvider)
	}
	nn, err := Provider.Names(c.Request().Context())
	if err != nil {
		return apierror(c, "RtCorpusList()", err)
	}
	return c.JSONPretty(http.StatusOK, JSCorpora{Corpora: nn, Active: s.ActiveCorp}, vv.JSONINDENT)
}

// RtCorpusDoc - one document, its metadata and its text with the entities marked
func RtCorpusDoc(c echo.Context) error {
	const (
		TITLE = `<h3 class="doctitle">%s</h3>`
		BODY  = `<div class="docbody">%s</div>`
	)
	c.Response().After(func() { Msg.LogPaths("RtCorpusDoc()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	t, err := tags.Parse(c.Param("tag"))
	if err != nil {
		return apierror(c, "RtCorpusDoc()", err)
	}

	col, err := collection(c.Request().Context(), []string{t.Corpus})
	if err != nil {
		return apierror(c, "RtCorpusDoc()", err)
	}

	rec, ok := col.Record(t)
	txt, found := col.Resolver.Text(t)
	if !ok || !found {
		return apierror(c, "RtCorpusDoc()", fmt.Errorf("%w: '%s'", ErrUnknownDoc, t.String()))
	}

	marked := html.EscapeString(txt)
	if Tagger != nil {
		marked, _ = ner.Annotate(Tagger, txt, s.Categories)
	}

	jd := JSDocument{
		ID:      t.String(),
		Title:   rec.Title,
		Journal: rec.Journal,
		PMID:    rec.PMID,
		PMC:     rec.PMC,
		Labels:  rec.Labels(),
		Text:    txt,
		HTML:    fmt.Sprintf(TITLE, html.EscapeString(rec.Title)) + fmt.Sprintf(BODY, marked),
	}
	return c.JSONPretty(http.StatusOK, jd, vv.JSONINDENT)
}
