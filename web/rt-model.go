//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"context"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/embed"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	JOBTRAIN   = "train"
	JOBCLUSTER = "cluster"
)

type trainform struct {
	Corpora []string `form:"corpora" json:"corpora" validate:"omitempty,max=32,dive,min=1,max=64"`
	Model   string   `form:"model" json:"model" validate:"omitempty,oneof=w2v glove lexvec"`
	Retrain bool     `form:"retrain" json:"retrain"`
}

// JSJob - a background job has been launched: poll "/ws" with the id
type JSJob struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

// JSModel - what is known about one trained model
type JSModel struct {
	Key        string    `json:"key"`
	Kind       string    `json:"kind"`
	Built      time.Time `json:"built"`
	Dim        int       `json:"dim"`
	Vocabulary int       `json:"vocabulary"`
	Docs       int       `json:"docs"`
}

type JSJobInfo struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
	Total   int    `json:"total"`
	Remain  int    `json:"remain"`
	Done    bool   `json:"done"`
	Err     string `json:"error"`
}

type JSModelStatus struct {
	Key     string      `json:"key"`
	Trained bool        `json:"trained"`
	Model   *JSModel    `json:"model,omitempty"`
	Jobs    []JSJobInfo `json:"jobs"`
	Known   []string    `json:"known"`
}

// RtModelTrain - train (or reload) the embeddings of the session's corpora in the background
func RtModelTrain(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtModelTrain()") })
	user := ReadUUIDCookie(c)

	var f trainform
	if err := bindandvalidate(c, &f); err != nil {
		return apierror(c, "RtModelTrain()", err)
	}
	for _, n := range f.Corpora {
		if err := corpus.ValidName(n); err != nil {
			return apierror(c, "RtModelTrain()", err)
		}
	}

	var s str.ServerSession
	err := vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		if len(f.Corpora) != 0 {
			cc := slices.Clone(f.Corpora)
			slices.Sort(cc)
			us.Prefs.ActiveCorp = slices.Compact(cc)
		}
		if f.Model != "" {
			us.Prefs.Model = f.Model
		}
		s = us.Prefs
		return nil
	})
	if err != nil {
		return apierror(c, "RtModelTrain()", err)
	}

	id := LaunchTraining(user, s, f.Retrain)
	return c.JSONPretty(http.StatusOK, JSJob{ID: id, Kind: JOBTRAIN, Key: modelkey(s).String()}, vv.JSONINDENT)
}

// RtModelStatus - the model of the session's corpora, this user's jobs and every model in memory
func RtModelStatus(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtModelStatus()") })
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	key := modelkey(s)
	st := JSModelStatus{Key: key.String(), Jobs: []JSJobInfo{}, Known: []string{}}
	if m, ok := Models.Get(key); ok {
		st.Trained = true
		st.Model = describemodel(key, m)
	}

	jj := vlt.Jobs.List(user)
	slices.SortFunc(jj, func(a, b vlt.JobInfo) int {
		return a.Launched.Compare(b.Launched)
	})
	for _, j := range jj {
		st.Jobs = append(st.Jobs, JSJobInfo{ID: j.ID, Kind: j.Kind, Summary: j.Summary, Total: j.Total,
			Remain: j.Remain, Done: j.Done, Err: j.Err})
	}

	for _, k := range Models.Keys() {
		st.Known = append(st.Known, k.String())
	}
	return c.JSONPretty(http.StatusOK, st, vv.JSONINDENT)
}

//
// THE JOB
//

// LaunchTraining - register a training job with the hub and run it; returns the job id
func LaunchTraining(user string, s str.ServerSession, retrain bool) string {
	const (
		MSG = "training job %s for '%s' launched"
	)

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	vlt.Jobs.Insert(vlt.JobInfo{ID: id, User: user, Kind: JOBTRAIN, Launched: time.Now(), CancelFnc: cancel})
	Msg.PEEK(fmt.Sprintf(MSG, id, modelkey(s).String()))

	go func() {
		defer cancel()
		m, err := trainmodel(ctx, id, s, retrain)
		if err != nil {
			vlt.Jobs.Done(id, nil, err)
			return
		}
		vlt.Jobs.Done(id, describemodel(modelkey(s), m), nil)
	}()
	return id
}

// trainmodel - the model in memory, else the one cached on disk, else a freshly trained one; retrain skips the
// first two
func trainmodel(ctx context.Context, id string, s str.ServerSession, retrain bool) (*embed.DocModel, error) {
	const (
		MSG1 = "Loading <span class=\"sought\">%s</span>"
		MSG2 = "Training <span class=\"sought\">%s</span>"
		MSG3 = "Building the document vectors"
		MSG4 = "Loaded the stored <span class=\"sought\">%s</span> embeddings"
		FAIL = "trainmodel() could not use the stored embeddings at %s: %s"
	)

	key := modelkey(s)
	if !retrain {
		if m, ok := Models.Get(key); ok {
			return m, nil
		}
	}

	vlt.Jobs.Summary(id, fmt.Sprintf(MSG1, strings.Join(s.ActiveCorp, ", ")))
	col, err := collection(ctx, s.ActiveCorp)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	fp := embed.ModelFile(modeldir(), key.String())

	build := func() (*embed.DocModel, error) {
		if !retrain {
			embs, found, ferr := embed.Fetch(fp)
			if ferr != nil {
				Msg.WARN(fmt.Sprintf(FAIL, fp, ferr.Error()))
			}
			if found && ferr == nil {
				vlt.Jobs.Summary(id, fmt.Sprintf(MSG4, s.Model))
				return embed.NewDocModel(s.Model, embs, col)
			}
		}

		vlt.Jobs.Summary(id, fmt.Sprintf(MSG2, s.Model))
		progress := func(done int, total int) {
			vlt.Jobs.Progress(id, total, total-done)
		}
		embs, terr := embed.Train(ctx, col, settings(s), progress)
		if terr != nil {
			return nil, terr
		}
		Msg.EC(embed.Store(fp, embs))

		vlt.Jobs.Summary(id, MSG3)
		return embed.NewDocModel(s.Model, embs, col)
	}

	m, err := Models.Rebuild(key, build)
	if err != nil {
		return nil, err
	}
	pruneprojections(key, m)
	return m, nil
}

// settings - what embed.Train needs from the session and the configuration
func settings(s str.ServerSession) embed.Settings {
	uh, e := os.UserHomeDir()
	if e != nil {
		uh = "."
	}
	return embed.Settings{
		Model:     s.Model,
		Dim:       lnch.Config.VectorDim,
		Workers:   lnch.Config.WorkerCount,
		ConfigDir: fmt.Sprintf(vv.CONFIGALTAPTH, uh),
	}
}

func describemodel(k vlt.ModelKey, m *embed.DocModel) *JSModel {
	return &JSModel{
		Key:        k.String(),
		Kind:       m.Kind,
		Built:      m.Built,
		Dim:        m.Dim(),
		Vocabulary: m.Vocabulary(),
		Docs:       m.Index().Len(),
	}
}
