//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/wego/pkg/embedding"
	"github.com/e-gun/wego/pkg/model"
	"github.com/e-gun/wego/pkg/model/glove"
	"github.com/e-gun/wego/pkg/model/lexvec"
	"github.com/e-gun/wego/pkg/model/modelutil/vector"
	"github.com/e-gun/wego/pkg/model/word2vec"
	"strings"
	"time"
)

var ErrUnknownModel = errors.New("unknown embedding model")

// Progress - iterations done out of the total; called from the training goroutine
type Progress func(done int, total int)

// newmodel - a wego model for s.Model plus the number of iterations it will run
func newmodel(s Settings) (model.Model, int, error) {
	switch s.Model {
	case "glove":
		cfg := glovevectorconfig(s)
		m, err := glove.NewForOptions(cfg)
		return m, cfg.Iter, err
	case "lexvec":
		cfg := lexvecvectorconfig(s)
		m, err := lexvec.NewForOptions(cfg)
		return m, cfg.Iter, err
	case "w2v":
		cfg := w2vvectorconfig(s)
		m, err := word2vec.NewForOptions(cfg)
		return m, cfg.Iter, err
	default:
		return nil, 0, fmt.Errorf("%w: '%s'", ErrUnknownModel, s.Model)
	}
}

// TextBlock - one line per document, tokens separated by spaces
func TextBlock(c *corpus.Collection) string {
	var sb strings.Builder
	for _, ss := range c.Sentences() {
		if len(ss) == 0 {
			continue
		}
		sb.WriteString(strings.Join(ss, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Train - word embeddings for the documents of c; a cancelled ctx abandons the run (wego cannot be interrupted, so
// the training goroutine finishes in the background and its result is dropped)
func Train(ctx context.Context, c *corpus.Collection, s Settings, progress Progress) (embedding.Embeddings, error) {
	const (
		FAIL1 = "model initialization failed: %w"
		FAIL2 = "failed to train %s vector embeddings: %w"
		FAIL3 = "failed to save %s vector embeddings: %w"
		FAIL4 = "failed to load %s vector embeddings: %w"
		MSG1  = "Train(): a %s model over %d documents"
		MSG2  = "Train() successfully trained a %s model (%.3fs)"
	)

	start := time.Now()
	s.Workers = max(1, s.Workers)

	vmodel, ti, err := newmodel(s)
	if err != nil {
		return nil, fmt.Errorf(FAIL1, err)
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	Msg.PEEK(fmt.Sprintf(MSG1, s.Model, c.Len()))

	// input for .Train() is an 'io.ReadSeeker'
	b := bytes.NewReader([]byte(TextBlock(c)))

	finished := make(chan error, 1)

	// .Train() but do not block; so we can also .Reporter()
	go func() {
		finished <- vmodel.Train(b)
	}()

	ct := make(chan int)
	rep := make(chan string)
	go vmodel.Reporter(ct, rep)

	progress(0, ti)

	var trainerr error
	waiting := true
	for waiting {
		select {
		case in := <-ct:
			progress(in, ti)
		case m := <-rep:
			Msg.TMI(m)
		case trainerr = <-finished:
			waiting = false
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if trainerr != nil {
		return nil, fmt.Errorf(FAIL2, s.Model, trainerr)
	}
	progress(ti, ti)
	Msg.PEEK(fmt.Sprintf(MSG2, s.Model, time.Since(start).Seconds()))

	// skip the disk: Save() into a buffer and Load() back out of it
	var buf bytes.Buffer
	if err = vmodel.Save(&buf, vector.Agg); err != nil {
		return nil, fmt.Errorf(FAIL3, s.Model, err)
	}

	embs, err := embedding.Load(&buf)
	if err != nil {
		return nil, fmt.Errorf(FAIL4, s.Model, err)
	}
	return embs, nil
}

// Build - Train and then NewDocModel
func Build(ctx context.Context, c *corpus.Collection, s Settings, progress Progress) (*DocModel, error) {
	embs, err := Train(ctx, c, s, progress)
	if err != nil {
		return nil, err
	}
	return NewDocModel(s.Model, embs, c)
}
