//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"context"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/cluster"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

type clusterform struct {
	K int `form:"k" json:"k" validate:"min=0,max=50"`
}

// JSClusterResult - a co-clustering job: still running, failed, or its report
type JSClusterResult struct {
	ID      string          `json:"id"`
	Done    bool            `json:"done"`
	Summary string          `json:"summary"`
	Error   string          `json:"error,omitempty"`
	Report  *cluster.Report `json:"report,omitempty"`
	HTML    string          `json:"html"`
}

// RtClusterStart - co-cluster the documents and terms of the session's corpora in the background
func RtClusterStart(c echo.Context) error {
	const (
		MSG = "co-clustering job %s for '%s' launched: k = %d"
	)
	c.Response().After(func() { Msg.LogPaths("RtClusterStart()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	var f clusterform
	if err := bindandvalidate(c, &f); err != nil {
		return apierror(c, "RtClusterStart()", err)
	}
	k := f.K
	if k == 0 {
		k = vv.CLUSTERCOUNT
	}

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	vlt.Jobs.Insert(vlt.JobInfo{ID: id, User: user, Kind: JOBCLUSTER, Launched: time.Now(), CancelFnc: cancel})
	Msg.PEEK(fmt.Sprintf(MSG, id, corpuskey(s.ActiveCorp).Corpora, k))

	go func() {
		defer cancel()
		rep, err := clusterjob(ctx, id, s.ActiveCorp, k)
		if err != nil {
			vlt.Jobs.Done(id, nil, err)
			return
		}
		vlt.Jobs.Done(id, rep, nil)
	}()

	return c.JSONPretty(http.StatusOK, JSJob{ID: id, Kind: JOBCLUSTER, Key: corpuskey(s.ActiveCorp).String()}, vv.JSONINDENT)
}

// RtClusterResult - the report of a co-clustering job; only its owner may collect it
func RtClusterResult(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtClusterResult()") })
	user := ReadUUIDCookie(c)
	id := c.Param("id")

	ji := vlt.Jobs.Fetch(id)
	if !ji.Exists || ji.User != user || ji.Kind != JOBCLUSTER {
		return c.JSONPretty(http.StatusNotFound, JSFailure{Error: fmt.Sprintf("no co-clustering job '%s'", id)}, vv.JSONINDENT)
	}

	js := JSClusterResult{ID: id, Done: ji.Done, Summary: ji.Summary, Error: ji.Err}
	if rep, ok := ji.Result.(*cluster.Report); ok && rep != nil {
		js.Report = rep
		js.HTML = rep.HTML
	}
	return c.JSONPretty(http.StatusOK, js, vv.JSONINDENT)
}

// clusterjob - load the corpora and run the co-clustering, reporting each stage to the hub
func clusterjob(ctx context.Context, id string, corpora []string, k int) (*cluster.Report, error) {
	const (
		MSG1 = "Loading the corpora"
	)

	vlt.Jobs.Summary(id, MSG1)
	col, err := collection(ctx, corpora)
	if err != nil {
		return nil, err
	}

	stage := func(summary string, done int, total int) {
		vlt.Jobs.Summary(id, summary)
		vlt.Jobs.Progress(id, total, total-done)
	}
	return cluster.Run(ctx, col.Texts(), Stops, k, stage)
}
