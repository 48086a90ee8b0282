//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"context"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"time"
)

// Stage - reported before each step of Run
type Stage func(summary string, done int, total int)

// Report - everything a finished co-clustering job hands back
type Report struct {
	K        int            `json:"k"`
	Docs     int            `json:"docs"`
	Terms    int            `json:"terms"`
	Sizes    []Size         `json:"sizes"`
	TopTerms [][]TermWeight `json:"topterms"`
	Labels   []int          `json:"labels"`
	HTML     string         `json:"html"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Run - matrix, co-clusters, summaries, charts; ctx is checked between the steps
func Run(ctx context.Context, texts []string, stops []string, k int, stage Stage) (*Report, error) {
	const (
		TOTAL = 4
		MSG1  = "Building the document-term matrix"
		MSG2  = "Co-clustering %d documents x %d terms"
		MSG3  = "Summarizing %d co-clusters"
		MSG4  = "Drawing the charts"
		MSG5  = "cluster.Run(): %d x %d into %d co-clusters"
	)

	start := time.Now()
	if stage == nil {
		stage = func(string, int, int) {}
	}

	stage(MSG1, 0, TOTAL)
	dt, err := DocTermMatrix(texts, stops)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	nd, nt := dt.X.Dims()
	stage(fmt.Sprintf(MSG2, nd, nt), 1, TOTAL)
	res, err := SpectralCoCluster(dt.X, k)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	stage(fmt.Sprintf(MSG3, k), 2, TOTAL)
	tt := TopTerms(dt, res, vv.CLUSTERTOPTERMS)

	stage(MSG4, 3, TOTAL)
	html, err := RenderString(TopTermsChart(tt), SizesChart(res), MatrixChart(dt.X, res))
	if err != nil {
		return nil, err
	}

	Msg.PEEK(fmt.Sprintf(MSG5, nd, nt, k))
	return &Report{
		K:        k,
		Docs:     nd,
		Terms:    nt,
		Sizes:    res.Sizes(),
		TopTerms: tt,
		Labels:   res.RowLabels,
		HTML:     html,
		Elapsed:  time.Since(start),
	}, nil
}
