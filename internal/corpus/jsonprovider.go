//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"golang.org/x/exp/slices"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	JSONSUFFIX = ".json"
	MAXJSONLN  = 64 * 1024 * 1024
)

// jsonline - one article per line of a corpus file; "kwds" and "mesh" are "+" separated
type jsonline struct {
	Raw      string `json:"raw"`
	Abstract string `json:"ab"`
	Title    string `json:"title"`
	Keywords string `json:"kwds"`
	Mesh     string `json:"mesh"`
	Label    string `json:"label"`
	Journal  string `json:"journal"`
	Journ    string `json:"journ"`
	PMID     string `json:"pmid"`
	PMC      string `json:"pmc"`
}

func (j jsonline) record(t tags.Tag) Record {
	jn := j.Journal
	if jn == "" {
		jn = j.Journ
	}
	return Record{
		Tag:      t,
		Raw:      j.Raw,
		Abstract: j.Abstract,
		Title:    j.Title,
		Journal:  jn,
		PMID:     j.PMID,
		PMC:      j.PMC,
		Label:    j.Label,
		Keywords: splitplus(j.Keywords),
		Mesh:     splitplus(j.Mesh),
	}
}

// JSONProvider - a directory of "<name>.json" files, one JSON object per line
type JSONProvider struct {
	Dir string
}

func NewJSONProvider(dir string) *JSONProvider {
	return &JSONProvider{Dir: dir}
}

// Names - every corpus file in the directory, sorted
func (p *JSONProvider) Names(ctx context.Context) ([]string, error) {
	ee, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}
	var nn []string
	for _, e := range ee {
		if e.IsDir() || !strings.HasSuffix(e.Name(), JSONSUFFIX) {
			continue
		}
		n := strings.TrimSuffix(e.Name(), JSONSUFFIX)
		if ValidName(n) == nil {
			nn = append(nn, n)
		}
	}
	slices.Sort(nn)
	return nn, nil
}

// Iterate - the records of "<dir>/<name>.json"; a record's line is its 0-based line in the file
func (p *JSONProvider) Iterate(ctx context.Context, name string) ([]Record, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(p.Dir, name+JSONSUFFIX))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: '%s'", ErrNoCorpus, name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONLines(ctx, f, name)
}

// ReadJSONLines - parse a stream of corpus lines; blank lines keep their line number but yield nothing
func ReadJSONLines(ctx context.Context, r io.Reader, name string) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), MAXJSONLN)

	var rr []Record
	ln := -1
	for sc.Scan() {
		ln++
		if ln%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b := sc.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		var j jsonline
		if err := json.Unmarshal(b, &j); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, ln, err)
		}
		rr = append(rr, j.record(tags.Tag{Corpus: name, Line: ln}))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rr, nil
}
