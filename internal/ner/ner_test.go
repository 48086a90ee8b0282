//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package ner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterNested(t *testing.T) {
	tests := []struct {
		name string
		in   []Span
		want []Span
	}{
		{
			name: "disjoint spans all survive",
			in:   []Span{{10, 15, "GENE"}, {0, 4, "DRUG"}},
			want: []Span{{0, 4, "DRUG"}, {10, 15, "GENE"}},
		},
		{
			name: "same start keeps the longer",
			in:   []Span{{0, 8, "DISEASE"}, {0, 15, "DISEASE"}},
			want: []Span{{0, 15, "DISEASE"}},
		},
		{
			name: "same end keeps the longer",
			in:   []Span{{9, 15, "DISEASE"}, {0, 15, "PHENOTYPE"}},
			want: []Span{{0, 15, "PHENOTYPE"}},
		},
		{
			name: "chain keeps the longest and whatever no longer clashes",
			in:   []Span{{0, 5, "A"}, {3, 12, "B"}, {10, 14, "C"}, {20, 22, "D"}},
			want: []Span{{3, 12, "B"}, {20, 22, "D"}},
		},
		{
			name: "equal lengths go to the earlier start",
			in:   []Span{{2, 6, "B"}, {0, 4, "A"}},
			want: []Span{{0, 4, "A"}},
		},
		{
			name: "same interval goes to the first category",
			in:   []Span{{0, 4, "GENE"}, {0, 4, "DRUG"}},
			want: []Span{{0, 4, "DRUG"}},
		},
		{
			name: "empty spans vanish",
			in:   []Span{{3, 3, "X"}},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterNested(tt.in))
		})
	}
}

func TestFilterNestedLeavesItsInputAlone(t *testing.T) {
	in := []Span{{0, 8, "DISEASE"}, {0, 15, "DISEASE"}, {2, 4, "GENE"}}
	before := append([]Span(nil), in...)
	_ = FilterNested(in)
	assert.Equal(t, before, in)
}

func TestWhitelist(t *testing.T) {
	in := []Span{{0, 1, "GENE"}, {2, 3, "PROCESS"}, {4, 5, "DRUG"}}
	assert.Equal(t, []Span{{0, 1, "GENE"}, {4, 5, "DRUG"}}, Whitelist(in, vv.TagWhitelist))
	assert.Empty(t, Whitelist(in, nil))
}

func TestMarkUp(t *testing.T) {
	text := "IL-13 & asthma"
	got := MarkUp(text, []Span{{8, 14, "DISEASE"}, {0, 5, "GENE"}})
	assert.Equal(t, `<mark title="GENE">IL-13</mark> &amp; <mark title="DISEASE">asthma</mark>`, got)

	assert.Equal(t, "a &lt;b&gt;", MarkUp("a <b>", nil))

	// a span past the end of the text is dropped rather than sliced
	assert.Equal(t, "abc", MarkUp("abc", []Span{{1, 10, "X"}}))
}

func TestGazetteer(t *testing.T) {
	g, err := LoadGazetteer("")
	require.NoError(t, err)
	assert.Contains(t, g.Categories(), "DISEASE")

	text := "Allergic asthma in mice: IL-13 drives airway hyperresponsiveness."
	html, spans := Annotate(g, text, vv.TagCategories)

	found := make(map[string]string)
	for _, s := range spans {
		found[text[s.Start:s.End]] = s.Category
	}
	assert.Equal(t, "DISEASE", found["Allergic asthma"])
	assert.Equal(t, "ORGANISM", found["mice"])
	assert.Equal(t, "GENE", found["IL-13"])
	assert.Equal(t, "PHENOTYPE", found["airway hyperresponsiveness"])
	_, nested := found["asthma"]
	assert.False(t, nested)
	_, nested = found["airway"]
	assert.False(t, nested)

	assert.Contains(t, html, `<mark title="DISEASE">Allergic asthma</mark>`)
}

func TestGazetteerWordBoundaries(t *testing.T) {
	g, err := NewGazetteer([]byte("DRUG: [imatinib]\nANATOMY: [lung]\n"))
	require.NoError(t, err)
	assert.Empty(t, g.Tag("lungfish and pre-imatinibs"))
	assert.Len(t, g.Tag("LUNG, Imatinib."), 2)
}

func TestGazetteerWhitelistBeforeNesting(t *testing.T) {
	// the PHENOTYPE span would swallow the ANATOMY span if it were not filtered out first
	g, err := NewGazetteer([]byte("PHENOTYPE: [airway hyperresponsiveness]\nANATOMY: [airway]\n"))
	require.NoError(t, err)
	_, spans := Annotate(g, "airway hyperresponsiveness", vv.TagWhitelist)
	assert.Equal(t, []Span{{0, 6, "ANATOMY"}}, spans)
}

func TestGazetteerRejects(t *testing.T) {
	_, err := NewGazetteer([]byte("WIDGET: [x]\n"))
	assert.Error(t, err)
	_, err = NewGazetteer([]byte(":::"))
	assert.Error(t, err)

	fp := filepath.Join(t.TempDir(), "g.yaml")
	require.NoError(t, os.WriteFile(fp, []byte("GENE: [TP53]\n"), vv.WRITEPERMS))
	g, err := LoadGazetteer(fp)
	require.NoError(t, err)
	assert.Equal(t, []string{"GENE"}, g.Categories())

	_, err = LoadGazetteer(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
