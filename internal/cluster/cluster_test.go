//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// two blocks joined by one weak link: docs 0-2 use terms 0-1, docs 3-5 use terms 2-3
func twoblocks() *DocTerm {
	return &DocTerm{
		X: mat.NewDense(6, 4, []float64{
			3, 2, 0, 0,
			2, 3, 0, 0,
			2, 2, 1, 0,
			0, 0, 3, 2,
			0, 0, 2, 3,
			0, 0, 2, 2,
		}),
		Vocabulary: []string{"asthma", "airway", "malaria", "mosquito"},
	}
}

func TestSpectralCoClusterSeparatesBlocks(t *testing.T) {
	dt := twoblocks()
	res, err := SpectralCoCluster(dt.X, 2)
	require.NoError(t, err)

	rl, cl := res.RowLabels, res.ColLabels
	require.Len(t, rl, 6)
	require.Len(t, cl, 4)

	assert.Equal(t, rl[0], rl[1])
	assert.Equal(t, rl[0], rl[2])
	assert.Equal(t, rl[3], rl[4])
	assert.Equal(t, rl[3], rl[5])
	assert.NotEqual(t, rl[0], rl[3])

	// the terms go with their documents
	assert.Equal(t, rl[0], cl[0])
	assert.Equal(t, rl[0], cl[1])
	assert.Equal(t, rl[3], cl[2])
	assert.Equal(t, rl[3], cl[3])
}

func TestSpectralCoClusterIsDeterministic(t *testing.T) {
	a, err := SpectralCoCluster(twoblocks().X, 2)
	require.NoError(t, err)
	b, err := SpectralCoCluster(twoblocks().X, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSpectralCoClusterRejects(t *testing.T) {
	x := twoblocks().X
	_, err := SpectralCoCluster(x, 1)
	assert.ErrorIs(t, err, ErrClusterCount)
	_, err = SpectralCoCluster(x, 5)
	assert.ErrorIs(t, err, ErrClusterCount)
	_, err = SpectralCoCluster(&mat.Dense{}, 2)
	assert.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestEmptyRowsDoNotPoisonTheNormalisation(t *testing.T) {
	x := mat.NewDense(5, 4, []float64{
		3, 2, 0, 0,
		2, 3, 1, 0,
		0, 0, 0, 0,
		0, 0, 3, 2,
		0, 0, 2, 3,
	})
	res, err := SpectralCoCluster(x, 2)
	require.NoError(t, err)
	assert.Len(t, res.RowLabels, 5)
	assert.NotEqual(t, res.RowLabels[0], res.RowLabels[3])
}

func TestSummaries(t *testing.T) {
	dt := twoblocks()
	res := &Result{RowLabels: []int{0, 0, 0, 1, 1, 1}, ColLabels: []int{0, 0, 1, 1}, K: 2}

	assert.Equal(t, []Size{{Docs: 3, Terms: 2}, {Docs: 3, Terms: 2}}, res.Sizes())

	tt := TopTerms(dt, res, 1)
	require.Len(t, tt, 2)
	// asthma 7 vs airway 7: the tie goes to the name
	assert.Equal(t, []TermWeight{{Term: "airway", Weight: 7}}, tt[0])
	assert.Equal(t, []TermWeight{{Term: "malaria", Weight: 7}}, tt[1])

	all := TopTerms(dt, res, 0)
	assert.Len(t, all[0], 2)
}

func TestReorganise(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	res := &Result{RowLabels: []int{1, 0, 1}, ColLabels: []int{1, 0}, K: 2}
	re, ro, co := Reorganise(x, res)
	assert.Equal(t, []int{1, 0, 2}, ro)
	assert.Equal(t, []int{1, 0}, co)
	assert.Equal(t, []float64{4, 3, 2, 1, 6, 5}, re.RawMatrix().Data)
}

func TestDocTermMatrix(t *testing.T) {
	dt, err := DocTermMatrix([]string{"asthma asthma airway", "malaria mosquito", "the asthma"}, []string{"the"})
	require.NoError(t, err)

	r, c := dt.X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	assert.NotContains(t, dt.Vocabulary, "the")

	col := -1
	for j, w := range dt.Vocabulary {
		if w == "asthma" {
			col = j
		}
	}
	require.GreaterOrEqual(t, col, 0)
	assert.Equal(t, 2.0, dt.X.At(0, col))
	assert.Equal(t, 0.0, dt.X.At(1, col))
	assert.Equal(t, 1.0, dt.X.At(2, col))

	_, err = DocTermMatrix(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestRun(t *testing.T) {
	texts := []string{
		"asthma airway inflammation asthma",
		"airway asthma wheezing inflammation",
		"asthma inflammation airway fever",
		"malaria mosquito parasite malaria",
		"mosquito parasite malaria",
		"parasite malaria mosquito fever",
	}

	var stages []string
	rep, err := Run(context.Background(), texts, DefaultStops(), 2, func(s string, done int, total int) {
		stages = append(stages, s)
		assert.Equal(t, 4, total)
	})
	require.NoError(t, err)

	assert.Len(t, stages, 4)
	assert.Equal(t, 6, rep.Docs)
	assert.Len(t, rep.Labels, 6)
	assert.Equal(t, rep.Labels[0], rep.Labels[2])
	assert.NotEqual(t, rep.Labels[0], rep.Labels[4])
	assert.Equal(t, 6, rep.Sizes[0].Docs+rep.Sizes[1].Docs)
	assert.Contains(t, rep.HTML, "echarts.init")
	assert.Equal(t, 3, strings.Count(rep.HTML, "echarts.init"))
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []string{"alpha beta gamma", "delta epsilon zeta"}, nil, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStops(t *testing.T) {
	ss := DefaultStops()
	assert.Contains(t, ss, "the")
	assert.Contains(t, ss, "et")
	assert.NotContains(t, ss, "people")

	dir := t.TempDir()
	assert.Equal(t, ss, ReadStops(dir))
	assert.FileExists(t, filepath.Join(dir, vv.CONFIGVECTORSTOPS))

	require.NoError(t, os.WriteFile(filepath.Join(dir, vv.CONFIGVECTORSTOPS), []byte(`["only"]`), vv.WRITEPERMS))
	assert.Equal(t, []string{"only"}, ReadStops(dir))
}
