//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package embed

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/e-gun/wego/pkg/embedding"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	MODELSUFFIX = ".vec.gz"
)

// ModelFile - where the embeddings for a model key live inside dir
func ModelFile(dir string, key string) string {
	r := strings.NewReplacer("|", "_", ",", "-", "/", "_", " ", "_")
	return filepath.Join(dir, r.Replace(key)+MODELSUFFIX)
}

// Store - write embeddings as gzipped "word v1 v2 ..." lines, the format embedding.Load() reads
func Store(fp string, embs embedding.Embeddings) error {
	const (
		MSG = "Store(): %d words written to %s"
	)

	if len(embs) == 0 {
		return ErrNoVocabulary
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	tmp := fp + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, vv.WRITEPERMS)
	if err != nil {
		return err
	}

	zw, _ := gzip.NewWriterLevel(f, gzip.BestSpeed)
	bw := bufio.NewWriter(zw)
	for _, e := range embs {
		bw.WriteString(e.Word)
		for _, x := range e.Vector {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
		}
		bw.WriteByte('\n')
	}

	err = errors.Join(bw.Flush(), zw.Close(), f.Close())
	if err != nil {
		os.Remove(tmp)
		return err
	}
	Msg.PEEK(fmt.Sprintf(MSG, len(embs), fp))
	return os.Rename(tmp, fp)
}

// Fetch - the embeddings stored at fp; found is false if nothing is there
func Fetch(fp string) (embs embedding.Embeddings, found bool, err error) {
	f, err := os.Open(fp)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, false, err
	}
	defer zr.Close()

	embs, err = embedding.Load(zr)
	if err != nil {
		return nil, false, err
	}
	return embs, true, nil
}
