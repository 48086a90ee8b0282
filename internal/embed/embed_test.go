//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package embed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/project"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/e-gun/wego/pkg/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const vectors = `asthma 1 0
airway 0.8 0.2
lung 0.6 0.4
mosquito 0 1
malaria 0.2 0.8
`

type oneprovider []corpus.Record

func (o oneprovider) Names(ctx context.Context) ([]string, error) {
	return []string{"t"}, nil
}

func (o oneprovider) Iterate(ctx context.Context, name string) ([]corpus.Record, error) {
	return o, nil
}

func testembeddings(t *testing.T) embedding.Embeddings {
	t.Helper()
	embs, err := embedding.Load(strings.NewReader(vectors))
	require.NoError(t, err)
	require.Len(t, embs, 5)
	return embs
}

func testcollection(t *testing.T) *corpus.Collection {
	t.Helper()
	p := oneprovider{
		{Tag: tags.Tag{Line: 0}, Raw: "Asthma of the airway.", Abstract: "Asthma!"},
		{Tag: tags.Tag{Line: 1}, Raw: "The mosquito spreads malaria."},
		{Tag: tags.Tag{Line: 2}, Raw: "Nothing known here."},
	}
	c, err := corpus.Merge(context.Background(), p, []string{"t"})
	require.NoError(t, err)
	return c
}

func TestNewDocModel(t *testing.T) {
	m, err := NewDocModel("w2v", testembeddings(t), testcollection(t))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, 5, m.Vocabulary())
	assert.Equal(t, []string{"t+0+abstract", "t+0", "t+1", "t+2"}, m.Index().Strings())

	r, c := m.DocVectors().Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)

	// "asthma" alone; "asthma" and "airway" averaged; "mosquito" and "malaria" averaged; nothing known
	assert.InDeltaSlice(t, []float64{1, 0}, m.DocVectors().RawRowView(0), 1e-12)
	assert.InDeltaSlice(t, []float64{0.9, 0.1}, m.DocVectors().RawRowView(1), 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.9}, m.DocVectors().RawRowView(2), 1e-12)
	assert.Equal(t, []float64{0, 0}, m.DocVectors().RawRowView(3))

	txt, ok := m.Texts().TextOf("t+0+abstract")
	assert.True(t, ok)
	assert.Equal(t, "Asthma!", txt)
}

func TestNewDocModelRefusesEmptiness(t *testing.T) {
	_, err := NewDocModel("w2v", nil, testcollection(t))
	assert.ErrorIs(t, err, ErrNoVocabulary)
	_, err = NewDocModel("w2v", testembeddings(t), &corpus.Collection{})
	assert.ErrorIs(t, err, project.ErrNoDocuments)
}

func TestInferVector(t *testing.T) {
	m, err := NewDocModel("w2v", testembeddings(t), testcollection(t))
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.7, 0.3}, m.InferVector([]string{"airway", "lung", "unknown"}), 1e-12)
	assert.Equal(t, []float64{0, 0}, m.InferVector(nil))
	assert.Equal(t, []float64{0, 0}, m.InferVector([]string{"nope"}))
}

func TestNearestDocs(t *testing.T) {
	m, err := NewDocModel("w2v", testembeddings(t), testcollection(t))
	require.NoError(t, err)

	nn := m.NearestDocs(m.InferVector(corpus.Tokenize("Asthma")), 2)
	require.Len(t, nn, 2)
	assert.Equal(t, "t+0+abstract", nn[0].Tag.String())
	assert.InDelta(t, 1.0, nn[0].Score, 1e-9)
	assert.Equal(t, "t+0", nn[1].Tag.String())
}

func TestNearestWords(t *testing.T) {
	m, err := NewDocModel("w2v", testembeddings(t), testcollection(t))
	require.NoError(t, err)

	nn, err := m.NearestWords("asthma", 2)
	require.NoError(t, err)
	require.Len(t, nn, 2)
	assert.Equal(t, "airway", nn[0].Word)
	assert.Equal(t, "lung", nn[1].Word)

	_, err = m.NearestWords("zebra", 2)
	assert.ErrorIs(t, err, ErrUnknownWord)
}

func TestWordVectorsFeedTopWords(t *testing.T) {
	m, err := NewDocModel("w2v", testembeddings(t), testcollection(t))
	require.NoError(t, err)

	wv := m.WordVectors()
	assert.Len(t, wv.Words, 5)

	centroids := mat.NewDense(2, 2, []float64{5, 0, 0, 5})
	tw := project.TopWords(centroids, wv, 1)
	require.Len(t, tw, 2)
	assert.Equal(t, "asthma", tw[0][0].Word)
	assert.Equal(t, "mosquito", tw[1][0].Word)
}

func TestStoreAndFetch(t *testing.T) {
	dir := t.TempDir()
	fp := ModelFile(dir, "a,b|w2v|2")
	assert.Equal(t, filepath.Join(dir, "a-b_w2v_2"+MODELSUFFIX), fp)

	_, found, err := Fetch(fp)
	require.NoError(t, err)
	assert.False(t, found)

	embs := testembeddings(t)
	require.NoError(t, Store(fp, embs))

	got, found, err := Fetch(fp)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, got, len(embs))
	for i := range embs {
		assert.Equal(t, embs[i].Word, got[i].Word)
		assert.InDeltaSlice(t, embs[i].Vector, got[i].Vector, 1e-12)
	}

	assert.ErrorIs(t, Store(fp, nil), ErrNoVocabulary)
}

func TestUnknownModel(t *testing.T) {
	_, err := Train(context.Background(), testcollection(t), Settings{Model: "bert"}, nil)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestReadOptionsWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	s := Settings{Model: "w2v", Dim: 33, Workers: 2, ConfigDir: dir}
	cfg := w2vvectorconfig(s)
	assert.Equal(t, 33, cfg.Dim)
	assert.Equal(t, 2, cfg.Goroutines)
	assert.FileExists(t, filepath.Join(dir, vv.CONFIGVECTORW2V))

	// an edited file wins over the defaults; the run settings still win over the file
	require.NoError(t, os.WriteFile(filepath.Join(dir, vv.CONFIGVECTORW2V), []byte(`{"Iter": 3, "Window": 2}`), vv.WRITEPERMS))
	cfg = w2vvectorconfig(s)
	assert.Equal(t, 3, cfg.Iter)
	assert.Equal(t, 2, cfg.Window)
	assert.Equal(t, 33, cfg.Dim)

	require.NoError(t, os.WriteFile(filepath.Join(dir, vv.CONFIGVECTORGLOVE), []byte(`{broken`), vv.WRITEPERMS))
	g := glovevectorconfig(Settings{Workers: 1, ConfigDir: dir})
	assert.Equal(t, DefaultGloveVectors.Iter, g.Iter)
}

func TestTextBlock(t *testing.T) {
	tb := TextBlock(testcollection(t))
	assert.Equal(t, "asthma\nasthma of the airway\nthe mosquito spreads malaria\nnothing known here\n", tb)
}
