//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"errors"
	"github.com/e-gun/ScreeningGoServer/internal/ner"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/labstack/echo/v4"
	"net/http"
)

var (
	ErrNoTagger = errors.New("no entity tagger has been configured")
)

type tagform struct {
	Text       string   `form:"text" json:"text" validate:"required,max=20000"`
	Categories []string `form:"categories" json:"categories" validate:"omitempty,dive,oneof=ORGANISM DISEASE DISEASEALT GENE DRUG ANATOMY LOC PHENOTYPE HEALTHCARE PROCESS DIAGNOSTICS"`
}

type JSSpan struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

type JSTagged struct {
	HTML  string   `json:"html"`
	Spans []JSSpan `json:"spans"`
}

// RtTerminologyTag - mark the entities of a text; only the categories asked for, nested spans resolved
func RtTerminologyTag(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtTerminologyTag()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	var f tagform
	if err := bindandvalidate(c, &f); err != nil {
		return apierror(c, "RtTerminologyTag()", err)
	}
	if Tagger == nil {
		return apierror(c, "RtTerminologyTag()", ErrNoTagger)
	}

	cats := f.Categories
	if len(cats) == 0 {
		cats = s.Categories
	}

	htm, spans := ner.Annotate(Tagger, f.Text, cats)

	js := JSTagged{HTML: htm, Spans: []JSSpan{}}
	for _, sp := range spans {
		if sp.Start < 0 || sp.End > len(f.Text) {
			continue
		}
		js.Spans = append(js.Spans, JSSpan{Start: sp.Start, End: sp.End, Category: sp.Category, Text: f.Text[sp.Start:sp.End]})
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}
