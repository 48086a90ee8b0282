//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/active"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const (
	RADIO      = "radio-"
	RELEVANT   = "relevant"
	IRRELEVANT = "irrelevant"
)

var (
	ErrBadJudgment = errors.New("a judgment must be 'relevant' or 'irrelevant'")
)

type startform struct {
	Text  string `form:"text" json:"text" validate:"max=20000,required_without=Tag"`
	Tag   string `form:"tag" json:"tag" validate:"max=256"`
	Space string `form:"space" json:"space" validate:"max=16"`
	K     int    `form:"k" json:"k" validate:"min=0,max=100"`
}

// JSScreening - the state of a screening session after a request; Positive and Negative are the batch to judge
type JSScreening struct {
	State    string    `json:"state"`
	Space    string    `json:"space"`
	Round    int       `json:"round"`
	Labeled  int       `json:"labeled"`
	Total    int       `json:"total"`
	Progress float64   `json:"progress"`
	Summary  string    `json:"summary"`
	Positive []DocPair `json:"positive"`
	Negative []DocPair `json:"negative"`
	Result   *JSResult `json:"result,omitempty"`
}

// JSResult - the explicitly relevant documents in label order, then the predicted relevant in row order
type JSResult struct {
	Relevant   []DocPair `json:"relevant"`
	Explicit   int       `json:"explicit"`
	Predicted  int       `json:"predicted"`
	Irrelevant int       `json:"irrelevant"`
	Labeled    int       `json:"labeled"`
	Total      int       `json:"total"`
	HTML       string    `json:"html"`
}

// RtActiveStart - seed a new screening session by similarity to a text or a document; replaces any earlier one
func RtActiveStart(c echo.Context) error {
	const (
		MSG = "RtActiveStart(): %s screening %d documents in %s space, batches of %d"
	)
	c.Response().After(func() { Msg.LogPaths("RtActiveStart()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	var f startform
	if err := bindandvalidate(c, &f); err != nil {
		return apierror(c, "RtActiveStart()", err)
	}

	sp, err := parsespace(s, f.Space)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}

	k := f.K
	if k == 0 {
		k = s.BatchSize
	}

	m, err := currentmodel(s)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}
	q, err := query(m, f.Text, f.Tag)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}
	base, err := projection(c.Request().Context(), s, m, sp)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}
	pr, err := base.WithQuery(m, q)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}

	as, err := active.NewSession(uuid.New().String(), pr, m.Index(), k)
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}
	if _, err = as.Start(); err != nil {
		return apierror(c, "RtActiveStart()", err)
	}

	var js JSScreening
	err = vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		us.Active = as
		us.Texts = m.Texts()
		us.Prefs.Space = string(sp)
		us.Prefs.BatchSize = k
		js = screeningjson(as, us.Texts)
		return nil
	})
	if err != nil {
		return apierror(c, "RtActiveStart()", err)
	}

	Msg.PEEK(fmt.Sprintf(MSG, user, as.Total(), sp, k))
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// RtActiveSubmit - apply the judgments of the current batch and present the next one
func RtActiveSubmit(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtActiveSubmit()") })
	user := ReadUUIDCookie(c)

	jj, err := judgments(c)
	if err != nil {
		return apierror(c, "RtActiveSubmit()", err)
	}

	var js JSScreening
	err = vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		if us.Active == nil {
			return vlt.ErrNoSession
		}
		if _, e := us.Active.Submit(jj); e != nil {
			return e
		}
		js = screeningjson(us.Active, us.Texts)
		return nil
	})
	if err != nil {
		return apierror(c, "RtActiveSubmit()", err)
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// RtActiveProceed - stop screening: apply any final judgments and predict the rest
func RtActiveProceed(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtActiveProceed()") })
	user := ReadUUIDCookie(c)

	jj, err := judgments(c)
	if err != nil {
		return apierror(c, "RtActiveProceed()", err)
	}

	var js JSScreening
	err = vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		if us.Active == nil {
			return vlt.ErrNoSession
		}
		if _, e := us.Active.Proceed(jj); e != nil {
			return e
		}
		js = screeningjson(us.Active, us.Texts)
		return nil
	})
	if err != nil {
		return apierror(c, "RtActiveProceed()", err)
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// RtActiveStatus - where the screening session stands
func RtActiveStatus(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtActiveStatus()") })
	user := ReadUUIDCookie(c)

	var js JSScreening
	err := vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		if us.Active == nil {
			return vlt.ErrNoSession
		}
		js = screeningjson(us.Active, us.Texts)
		return nil
	})
	if err != nil {
		return apierror(c, "RtActiveStatus()", err)
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

//
// HELPERS
//

// judgments - every "radio-<TAG>" field of the form
func judgments(c echo.Context) ([]active.Judgment, error) {
	fp, err := c.FormParams()
	if err != nil {
		return nil, err
	}

	var jj []active.Judgment
	for k, vals := range fp {
		if !strings.HasPrefix(k, RADIO) || len(vals) == 0 {
			continue
		}
		t, e := tags.Parse(strings.TrimPrefix(k, RADIO))
		if e != nil {
			return nil, e
		}
		switch vals[0] {
		case RELEVANT:
			jj = append(jj, active.Judgment{Tag: t, Relevant: true})
		case IRRELEVANT:
			jj = append(jj, active.Judgment{Tag: t, Relevant: false})
		default:
			return nil, fmt.Errorf("%w: '%s' for %s", ErrBadJudgment, vals[0], t.String())
		}
	}
	// map order: the session applies them in tag order
	return jj, nil
}

// screeningjson - the session as the JS on the other side wants to see it
func screeningjson(as *active.Session, texts *tags.Resolver) JSScreening {
	const (
		SUMM = "round %d: %d of %d documents labeled (%.0f%%)"
	)

	js := JSScreening{
		State:    as.State().String(),
		Space:    string(as.Space()),
		Round:    as.Round(),
		Labeled:  as.Labeled(),
		Total:    as.Total(),
		Progress: as.Progress(),
		Summary:  fmt.Sprintf(SUMM, as.Round(), as.Labeled(), as.Total(), as.Progress()*100),
		Positive: []DocPair{},
		Negative: []DocPair{},
	}

	if b := as.Pending(); b != nil {
		for _, p := range b.Positive() {
			js.Positive = append(js.Positive, proposalhtml(p, texts))
		}
		for _, p := range b.Negative() {
			js.Negative = append(js.Negative, proposalhtml(p, texts))
		}
	}

	if r, ok := as.Result(); ok {
		js.Result = resultjson(r, texts)
	}
	return js
}

// proposalhtml - a document with its predicted class checked; the user may flip it
func proposalhtml(p active.Proposal, texts *tags.Resolver) DocPair {
	const (
		PROPOSAL = `<div class="proposal %s"><span class="score">%.3f</span>%s<br>
<label><input type="radio" name="%s" value="%s"%s> relevant</label>
<label><input type="radio" name="%s" value="%s"%s> irrelevant</label></div>`
		CHK = " checked"
	)

	cl, yes, no := "negative", "", CHK
	if p.Relevant {
		cl, yes, no = "positive", CHK, ""
	}
	name := RADIO + p.Tag.String()
	htm := fmt.Sprintf(PROPOSAL, cl, p.Score, snippet(texts, p.Tag), name, RELEVANT, yes, name, IRRELEVANT, no)
	return DocPair{ID: p.Tag.String(), HTML: htm, Sim: p.Score}
}

func resultjson(r *active.Result, texts *tags.Resolver) *JSResult {
	const (
		HEAD    = `<h3>%d relevant documents: %d labeled, %d predicted (%d of %d labeled in all)</h3>`
		OUTCOME = `<div class="outcome %s"><span class="score">%.3f</span>%s</div>`
	)

	jr := &JSResult{
		Relevant:   []DocPair{},
		Explicit:   r.Explicit,
		Predicted:  r.Predicted,
		Irrelevant: r.Irrelevant,
		Labeled:    r.Labeled,
		Total:      r.Total,
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(HEAD, len(r.Relevant), r.Explicit, r.Predicted, r.Labeled, r.Total))
	for _, o := range r.Relevant {
		cl := "predicted"
		if o.Explicit {
			cl = "explicit"
		}
		htm := fmt.Sprintf(OUTCOME, cl, o.Score, snippet(texts, o.Tag))
		jr.Relevant = append(jr.Relevant, DocPair{ID: o.Tag.String(), HTML: htm, Sim: o.Score})
		sb.WriteString(htm)
	}
	jr.HTML = sb.String()
	return jr
}
