//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/cluster"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/rank"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

type simform struct {
	Text string `form:"text" json:"text" validate:"max=20000,required_without=Tag"`
	Tag  string `form:"tag" json:"tag" validate:"max=256"`
	TopN int    `form:"topn" json:"topn" validate:"min=0,max=50"`
}

type JSSimilar struct {
	Space   string    `json:"space"`
	Query   string    `json:"query"`
	Results []DocPair `json:"results"`
}

type JSTopic struct {
	Topic int                  `json:"topic"`
	Words []cluster.TermWeight `json:"words"`
}

type JSNeighbor struct {
	Word string  `json:"word"`
	Sim  float64 `json:"score"`
}

type JSNeighbors struct {
	Word      string       `json:"word"`
	Neighbors []JSNeighbor `json:"neighbors"`
}

type JSTopics struct {
	Topics []JSTopic `json:"topics"`
	HTML   string    `json:"html"`
}

// RtUseDocSim - the documents nearest a text or a document in document space
func RtUseDocSim(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtUseDocSim()") })
	return similar(c, project.DocumentSpace, "RtUseDocSim()")
}

// RtUseTopicSim - the documents whose topic profiles are nearest that of a text or a document
func RtUseTopicSim(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtUseTopicSim()") })
	return similar(c, project.TopicSpace, "RtUseTopicSim()")
}

// similar - project the query into sp and rank every document against it; a document never finds itself
func similar(c echo.Context, sp project.Space, fn string) error {
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	var f simform
	if err := bindandvalidate(c, &f); err != nil {
		return apierror(c, fn, err)
	}
	topn := f.TopN
	if topn == 0 {
		topn = s.TopN
	}

	m, err := currentmodel(s)
	if err != nil {
		return apierror(c, fn, err)
	}
	q, err := query(m, f.Text, f.Tag)
	if err != nil {
		return apierror(c, fn, err)
	}
	base, err := projection(c.Request().Context(), s, m, sp)
	if err != nil {
		return apierror(c, fn, err)
	}
	pr, err := base.WithQuery(m, q)
	if err != nil {
		return apierror(c, fn, err)
	}

	var exclude map[int]bool
	if q.Row >= 0 {
		exclude = map[int]bool{q.Row: true}
	}

	js := JSSimilar{Space: string(sp), Query: f.Tag, Results: []DocPair{}}
	if f.Tag == "" {
		js.Query = f.Text
	}
	for _, sc := range rank.Top(pr.Query, pr.Docs, topn, exclude) {
		t, _ := m.Index().TagAt(sc.Row)
		js.Results = append(js.Results, DocPair{ID: t.String(), HTML: snippet(m.Texts(), t), Sim: sc.Score})
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// RtUseTopics - the words most probable under each topic of the session's model, as tables and as a chart
func RtUseTopics(c echo.Context) error {
	const (
		TITLE  = "Top words per topic"
		SERIES = "topic"
		FAIL   = "RtUseTopics() could not draw the chart: %s"
	)
	c.Response().After(func() { Msg.LogPaths("RtUseTopics()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	m, err := currentmodel(s)
	if err != nil {
		return apierror(c, "RtUseTopics()", err)
	}
	pr, err := projection(c.Request().Context(), s, m, project.TopicSpace)
	if err != nil {
		return apierror(c, "RtUseTopics()", err)
	}

	tw := project.TopWords(pr.Centroids, m.WordVectors(), vv.TOPICWORDCUTOFF)

	js := JSTopics{Topics: make([]JSTopic, len(tw))}
	tt := make([][]cluster.TermWeight, len(tw))
	for i, ww := range tw {
		tt[i] = make([]cluster.TermWeight, len(ww))
		for j, w := range ww {
			tt[i][j] = cluster.TermWeight{Term: w.Word, Weight: w.Prob}
		}
		js.Topics[i] = JSTopic{Topic: i, Words: tt[i]}
	}

	htm, err := cluster.RenderString(cluster.TermsChart(TITLE, SERIES, tt))
	if err != nil {
		Msg.WARN(fmt.Sprintf(FAIL, err.Error()))
	}
	js.HTML = htm
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// RtUseNeighbors - the words nearest a word in the embedding space of the session's model
func RtUseNeighbors(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtUseNeighbors()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)
	word := strings.ToLower(strings.TrimSpace(c.Param("word")))

	m, err := currentmodel(s)
	if err != nil {
		return apierror(c, "RtUseNeighbors()", err)
	}
	nn, err := m.NearestWords(word, vv.VECTORNEIGHBORS)
	if err != nil {
		return apierror(c, "RtUseNeighbors()", err)
	}

	js := JSNeighbors{Word: word, Neighbors: make([]JSNeighbor, len(nn))}
	for i, n := range nn {
		js.Neighbors[i] = JSNeighbor{Word: n.Word, Sim: n.Similarity}
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}
