//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultwait = time.Second
	defaulttick = 10 * time.Millisecond
)

func quietmaker(ll int) (*MessageMaker, *bytes.Buffer) {
	var buf bytes.Buffer
	m := NewMessageMaker()
	m.Out = &buf
	m.Configure(ll, true)
	return m, &buf
}

func TestEmitRespectsLogLevel(t *testing.T) {
	m, buf := quietmaker(MSGWARN)

	m.NOTE("too chatty")
	assert.Empty(t, buf.String())

	m.WARN("worth seeing")
	assert.Equal(t, "[SGS] worth seeing\n", buf.String())

	buf.Reset()
	m.MAND("always")
	assert.Contains(t, buf.String(), "always")
}

func TestECDoesNotExit(t *testing.T) {
	m, buf := quietmaker(MSGCRIT)
	m.EC(nil)
	assert.Empty(t, buf.String())

	m.EC(errors.New("no such corpus"))
	assert.Contains(t, buf.String(), "no such corpus")
}

func TestColorAndStyleInBlackAndWhite(t *testing.T) {
	m, _ := quietmaker(MSGCRIT)
	assert.Equal(t, "[git: abc]", m.Color("[git: C4abcC0]"))
	assert.Equal(t, "bold", m.Styled("S1boldS0"))
	assert.Equal(t, "x", m.ColStyle("S1C3xC0S0"))
}

func TestColorWhenEnabled(t *testing.T) {
	m, _ := quietmaker(MSGCRIT)
	m.Configure(MSGCRIT, false)
	m.Win = false
	out := m.Color("C5redC0")
	assert.Contains(t, out, "\x1b[31m")
	assert.Contains(t, out, "\x1b[0m")
}

func TestToFileMirrorsMessages(t *testing.T) {
	m, _ := quietmaker(MSGFYI)
	fp := filepath.Join(t.TempDir(), "sgs.log")
	m.ToFile(fp)

	m.CRIT("written to disk")
	m.TMI("filtered out")
	m.Sync()

	b, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written to disk")
	assert.Contains(t, string(b), `"level":"ERROR"`)
	assert.NotContains(t, string(b), "filtered out")
}

func TestCommas(t *testing.T) {
	assert.Equal(t, "1,234,567", Commas(1234567))
	assert.Equal(t, "12", Commas(12))
}

func TestPathSummary(t *testing.T) {
	s := PathSummary(map[string]int{"RtActiveSubmit()": 12, "RtActiveStart()": 3})
	assert.Equal(t, "ActiveStart: 3 * ActiveSubmit: 12", s)
}

func TestPathInfoHub(t *testing.T) {
	go PathInfoHub()
	m, _ := quietmaker(MSGCRIT)
	m.LogPaths("RtFrontpage()")

	assert.Eventually(t, func() bool {
		return PathStats()["RtFrontpage()"] == 1
	}, defaultwait, defaulttick)
}
