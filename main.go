//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package main

import (
	"context"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/cluster"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/mm"
	"github.com/e-gun/ScreeningGoServer/internal/ner"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/e-gun/ScreeningGoServer/web"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// these next variables should be injected at build time: 'go build -ldflags "-X main.GitCommit=$GIT_COMMIT"', etc

var GitCommit string
var VersSuppl string
var BuildDate string

func main() {
	lnch.GitCommit = GitCommit
	lnch.VersSuppl = VersSuppl
	lnch.BuildDate = BuildDate

	root := lnch.NewRootCommand(lnch.Handlers{
		Serve:  serve,
		Ingest: ingest,
		Tag:    tag,
	})

	err := root.Execute()
	lnch.Msg.Sync()
	if err != nil {
		lnch.Msg.CRIT(err.Error())
		lnch.Msg.ExitOrHang(1)
	}
}

// serve - load what the routes need and then hand over to echo; does not return while the server is alive
func serve(cmd *cobra.Command) error {
	const (
		MSG1 = "%d corpora available via the '%s' store"
		MSG2 = "entity tagger ready: %d categories"
		MSG3 = "%d stop words"
		FAIL = "could not reach the corpus store: %s"
	)

	msg := lnch.Msg
	cfg := lnch.Config

	// go tool pprof --pdf ./ScreeningGoServer /var/folders/.../cpu.pprof > profile.pdf
	if cfg.ProfileCPU {
		defer profile.Start().Stop()
	}

	if !cfg.QuietStart {
		msg.MAND(fmt.Sprintf(vv.TERMINALTEXT, vv.PROJYEAR, vv.PROJAUTH, vv.PROJURL))
		lnch.PrintVersion(cmd.OutOrStdout(), *cfg)
		lnch.PrintBuildInfo(cmd.OutOrStdout(), *cfg)
	}

	go mm.PathInfoHub()
	go vlt.Jobs.Run()
	go vlt.WebsocketPool.WSPoolStartListening()

	vlt.AllSessions = vlt.MakeSessionVault(time.Duration(cfg.SessionTTL)*time.Minute, vv.SESSIONJANITOR, lnch.MakeDefaultSession)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	previous := time.Now()

	p, err := corpus.NewProvider(ctx, *cfg)
	if err != nil {
		return fmt.Errorf(FAIL, err.Error())
	}
	if cl, ok := p.(corpus.Closer); ok {
		defer cl.Close()
	}
	nn, err := p.Names(ctx)
	if err != nil {
		return fmt.Errorf(FAIL, err.Error())
	}
	msg.Timer("A1", fmt.Sprintf(MSG1, len(nn), cfg.CorpusStore), start, previous)

	// concurrent launching
	var awaiting sync.WaitGroup
	var g *ner.Gazetteer
	var gerr error
	var stops []string

	awaiting.Add(1)
	go func() {
		defer awaiting.Done()
		previous := time.Now()
		g, gerr = ner.LoadGazetteer(cfg.Gazetteer)
		if gerr == nil {
			msg.Timer("B1", fmt.Sprintf(MSG2, len(g.Categories())), start, previous)
		}
	}()

	awaiting.Add(1)
	go func() {
		defer awaiting.Done()
		previous := time.Now()
		stops = cluster.ReadStops(configdir())
		msg.Timer("C1", fmt.Sprintf(MSG3, len(stops)), start, previous)
	}()

	awaiting.Wait()
	if gerr != nil {
		return gerr
	}

	web.Configure(p, g, stops)

	if cfg.TrainAtLaunch {
		web.LaunchTraining("launch", lnch.MakeDefaultSession("launch"), false)
	}

	web.StartEchoServer()
	return nil
}

// ingest - "ScreeningGoServer ingest pmc pmc.json"
func ingest(cmd *cobra.Command, name string, src string) error {
	const (
		MSG = "ingested %d records from %s into '%s' at %s"
	)

	if err := corpus.ValidName(name); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rr, err := corpus.ReadJSONLines(ctx, f, name)
	if err != nil {
		return err
	}

	st, err := corpus.OpenSQLite(ctx, lnch.Config.SQLiteFile)
	if err != nil {
		return err
	}
	defer st.Close()

	if err = st.Ingest(ctx, name, rr); err != nil {
		return err
	}
	lnch.Msg.NOTE(fmt.Sprintf(MSG, len(rr), src, name, lnch.Config.SQLiteFile))
	return nil
}

// tag - "ScreeningGoServer tag --cat DISEASE,GENE abstract.txt"
func tag(cmd *cobra.Command, fp string, cats []string) error {
	const (
		LINE = "%d\t%d\t%s\t%s\n"
	)

	content, err := os.ReadFile(fp)
	if err != nil {
		return err
	}

	g, err := ner.LoadGazetteer(lnch.Config.Gazetteer)
	if err != nil {
		return err
	}

	for i := range cats {
		cats[i] = strings.ToUpper(cats[i])
	}

	text := string(content)
	_, spans := ner.Annotate(g, text, cats)
	w := cmd.OutOrStdout()
	for _, s := range spans {
		_, _ = fmt.Fprintf(w, LINE, s.Start, s.End, s.Category, text[s.Start:s.End])
	}
	return nil
}

// configdir - where the stop list and the training options live
func configdir() string {
	uh, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	d := filepath.Dir(fmt.Sprintf(vv.CONFIGALTAPTH, uh) + "x")
	if _, err = os.Stat(d); err != nil {
		return ""
	}
	return d
}
