//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package embed

import (
	"encoding/json"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/e-gun/wego/pkg/model/glove"
	"github.com/e-gun/wego/pkg/model/lexvec"
	"github.com/e-gun/wego/pkg/model/word2vec"
	"os"
	"path/filepath"
)

var Msg = lnch.Msg

var (
	DefaultW2VVectors = word2vec.Options{
		BatchSize:          1024,
		Dim:                vv.VECTORDIMDEFAULT,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               15,
		LogBatch:           100000,
		MaxCount:           -1,
		MaxDepth:           150,
		MinCount:           5,
		MinLR:              0.0000025,
		ModelType:          "skipgram", // "cbow" and "skipgram" available
		NegativeSampleSize: 5,
		OptimizerType:      "hs",
		SubsampleThreshold: 0.001,
		ToLower:            false,
		UpdateLRBatch:      100000,
		Verbose:            false,
		Window:             5,
	}
	DefaultLexVecVectors = lexvec.Options{
		BatchSize:          1024,
		Dim:                vv.VECTORDIMDEFAULT,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               15,
		LogBatch:           100000,
		MaxCount:           -1,
		MinCount:           5,
		MinLR:              0.025 * 1.0e-4,
		NegativeSampleSize: 5,
		RelationType:       "ppmi", // "ppmi", "pmi", "co", "logco" are available; "co" will fail to model
		Smooth:             0.75,
		SubsampleThreshold: 1.0e-3,
		ToLower:            false,
		UpdateLRBatch:      100000,
		Verbose:            false,
		Window:             5,
	}
	DefaultGloveVectors = glove.Options{
		// see also: https://nlp.stanford.edu/projects/glove/
		Alpha:              0.55,
		BatchSize:          1024,
		CountType:          "inc", // "prox" panics
		Dim:                vv.VECTORDIMDEFAULT,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               25,
		LogBatch:           100000,
		MaxCount:           -1,
		MinCount:           5,
		SolverType:         "adagrad", // "sdg", "adagrad" available
		SubsampleThreshold: 0.001,
		ToLower:            false,
		Verbose:            false,
		Window:             5,
		Xmax:               90,
	}
)

// Settings - what a training run may override on top of an option set
type Settings struct {
	Model     string
	Dim       int
	Workers   int
	ConfigDir string
}

// readoptions - the option set in dir/fn; a missing file is written out with the defaults so it can be edited
func readoptions[T any](dir string, fn string, def T) T {
	const (
		ERR1 = "readoptions() failed to parse %s: using defaults"
		MSG1 = "wrote default vector configuration file %s"
		MSG2 = "read vector configuration from %s"
	)

	if dir == "" {
		return def
	}

	fp := filepath.Join(dir, fn)
	content, err := os.ReadFile(fp)
	if err != nil {
		content, err = json.MarshalIndent(def, vv.JSONINDENT, vv.JSONINDENT)
		Msg.EC(err)
		if err = os.WriteFile(fp, content, vv.WRITEPERMS); err == nil {
			Msg.PEEK(fmt.Sprintf(MSG1, fp))
		}
		return def
	}

	var vc T
	if err = json.Unmarshal(content, &vc); err != nil {
		Msg.CRIT(fmt.Sprintf(ERR1, fp))
		return def
	}
	Msg.TMI(fmt.Sprintf(MSG2, fp))
	return vc
}

// w2vvectorconfig - word2vec.Options after the file in the config dir and then the run settings
func w2vvectorconfig(s Settings) word2vec.Options {
	cfg := readoptions(s.ConfigDir, vv.CONFIGVECTORW2V, DefaultW2VVectors)
	cfg.Goroutines = s.Workers
	if s.Dim > 0 {
		cfg.Dim = s.Dim
	}
	return cfg
}

func glovevectorconfig(s Settings) glove.Options {
	cfg := readoptions(s.ConfigDir, vv.CONFIGVECTORGLOVE, DefaultGloveVectors)
	cfg.Goroutines = s.Workers
	if s.Dim > 0 {
		cfg.Dim = s.Dim
	}
	return cfg
}

func lexvecvectorconfig(s Settings) lexvec.Options {
	cfg := readoptions(s.ConfigDir, vv.CONFIGVECTORLEXVEC, DefaultLexVecVectors)
	cfg.Goroutines = s.Workers
	if s.Dim > 0 {
		cfg.Dim = s.Dim
	}
	return cfg
}
