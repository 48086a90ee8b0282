//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

//
// TERMINAL OUTPUT/MESSAGES
//

const (
	MSGMAND              = -1
	MSGCRIT              = 0
	MSGWARN              = 1
	MSGNOTE              = 2
	MSGFYI               = 3
	MSGPEEK              = 4
	MSGTMI               = 5
	TIMETRACKERMSGTHRESH = MSGFYI
	PANIC                = "[%s v.%s] %s\n"
	PANIC2               = "[%s v.%s] (%s) %s\n"
)

// MessageMaker - the leveled console logger; optionally mirrors everything it prints into a rotating json log
type MessageMaker struct {
	Lnc  time.Time
	BW   bool
	LLvl int
	LNm  string
	SNm  string
	Ver  string
	Win  bool
	Out  io.Writer
	zl   *zap.Logger
	mtx  sync.RWMutex
}

// NewMessageMaker - a MessageMaker with the default settings; the config will update it after launch
func NewMessageMaker() *MessageMaker {
	w := false
	if runtime.GOOS == "windows" {
		w = true
	}
	return &MessageMaker{
		Lnc:  time.Now(),
		BW:   vv.BLACKANDWHITE,
		LLvl: vv.DEFAULTGOLOGLEVEL,
		LNm:  vv.MYNAME,
		SNm:  vv.SHORTNAME,
		Ver:  vv.VERSION,
		Win:  w,
		Out:  color.Output,
	}
}

// Configure - adopt the log level and color settings of the current configuration
func (m *MessageMaker) Configure(loglevel int, bw bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.LLvl = loglevel
	m.BW = bw
}

// ToFile - mirror every emitted message into a rotating json log at fp
func (m *MessageMaker) ToFile(fp string) {
	rotator := &lumberjack.Logger{
		Filename:   fp,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.MessageKey = "message"
	ec.LevelKey = "level"
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.AddSync(rotator), zap.DebugLevel)

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.zl = zap.New(core).With(zap.String("server", m.SNm), zap.String("version", m.Ver))
}

// Sync - flush the json log
func (m *MessageMaker) Sync() {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.zl != nil {
		_ = m.zl.Sync()
	}
}

func (m *MessageMaker) MAND(s string) {
	m.Emit(s, MSGMAND)
}

func (m *MessageMaker) CRIT(s string) {
	m.Emit(s, MSGCRIT)
}

func (m *MessageMaker) WARN(s string) {
	m.Emit(s, MSGWARN)
}

func (m *MessageMaker) NOTE(s string) {
	m.Emit(s, MSGNOTE)
}

func (m *MessageMaker) FYI(s string) {
	m.Emit(s, MSGFYI)
}

func (m *MessageMaker) PEEK(s string) {
	m.Emit(s, MSGPEEK)
}

func (m *MessageMaker) TMI(s string) {
	m.Emit(s, MSGTMI)
}

// Emit - send a message to the terminal, perhaps adding color and style to it
func (m *MessageMaker) Emit(message string, threshold int) {
	// sample output: "[SGS] RtActiveStart() seeded 10 candidates for 'e1b7...'"
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if m.LLvl < threshold {
		return
	}

	if m.zl != nil {
		m.tofile(message, threshold)
	}

	sn := color.New(color.FgYellow)
	c := levelcolor(threshold)
	if m.Win || m.BW {
		// terminal color codes not w's friend
		sn.DisableColor()
		c.DisableColor()
	}
	_, _ = fmt.Fprintf(m.Out, "[%s] %s\n", sn.Sprint(m.SNm), c.Sprint(message))
}

func (m *MessageMaker) tofile(message string, threshold int) {
	lvl := zap.Int("threshold", threshold)
	switch threshold {
	case MSGCRIT:
		m.zl.Error(message, lvl)
	case MSGWARN:
		m.zl.Warn(message, lvl)
	case MSGMAND, MSGNOTE:
		m.zl.Info(message, lvl)
	default:
		m.zl.Debug(message, lvl)
	}
}

func levelcolor(threshold int) *color.Color {
	switch threshold {
	case MSGMAND:
		return color.New(color.FgGreen)
	case MSGCRIT:
		return color.New(color.FgRed)
	case MSGWARN:
		return color.New(color.FgHiYellow)
	case MSGNOTE:
		return color.New(color.FgYellow)
	case MSGFYI:
		return color.New(color.FgCyan)
	case MSGPEEK:
		return color.New(color.FgBlue)
	case MSGTMI:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgWhite)
	}
}

// Color - color text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Color(tagged string) string {
	// "[git: C4%sC0]" ==> green text for the %s
	swap := strings.NewReplacer("C1", "", "C2", "", "C3", "", "C4", "", "C5", "", "C6", "", "C7", "", "C0", "")

	if !m.Win && !m.BW {
		sq := func(a color.Attribute) string { return fmt.Sprintf("\x1b[%dm", a) }
		swap = strings.NewReplacer("C1", sq(color.FgYellow), "C2", sq(color.FgHiCyan), "C3", sq(color.FgBlue),
			"C4", sq(color.FgGreen), "C5", sq(color.FgRed), "C6", sq(color.FgHiBlack), "C7", sq(color.BlinkSlow),
			"C0", sq(color.Reset))
	}
	return swap.Replace(tagged)
}

// Styled - style text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Styled(tagged string) string {
	swap := strings.NewReplacer("S1", "", "S2", "", "S3", "", "S4", "", "S5", "", "S0", "")

	if !m.Win && !m.BW {
		sq := func(a color.Attribute) string { return fmt.Sprintf("\x1b[%dm", a) }
		swap = strings.NewReplacer("S1", sq(color.Bold), "S2", sq(color.Italic), "S3", sq(color.Underline),
			"S4", sq(color.CrossedOut), "S5", sq(color.ReverseVideo), "S0", sq(color.Reset))
	}
	return swap.Replace(tagged)
}

func (m *MessageMaker) ColStyle(tagged string) string {
	return m.Styled(m.Color(tagged))
}

// EC - report a non-nil error; execution continues
func (m *MessageMaker) EC(err error) {
	if err != nil {
		m.Emit(err.Error(), MSGCRIT)
	}
}

// Error - report a non-nil error and exit
func (m *MessageMaker) Error(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(m.Out, PANIC, m.LNm, m.Ver, color.RedString("UNRECOVERABLE ERROR"))
		_, _ = fmt.Fprintln(m.Out, err)
		m.Sync()
		m.ExitOrHang(1)
	}
}

// EF - report error and function; then exit
func (m *MessageMaker) EF(err error, fn string) {
	if err != nil {
		_, _ = fmt.Fprintf(m.Out, PANIC2, m.LNm, m.Ver, fn, color.RedString("UNRECOVERABLE ERROR"))
		_, _ = fmt.Fprintln(m.Out, err)
		m.Sync()
		m.ExitOrHang(1)
	}
}

// ExitOrHang - Windows should hang to keep the error visible before the window closes and hides it
func (m *MessageMaker) ExitOrHang(e int) {
	const (
		HANG = `Execution suspended. %s is now frozen. Note any errors above. Execution will halt after %d seconds.`
		SUSP = 60
	)
	if !m.Win {
		os.Exit(e)
	} else {
		m.Emit(fmt.Sprintf(HANG, m.LNm, SUSP), MSGMAND)
		time.Sleep(SUSP * time.Second)
		os.Exit(e)
	}
}

// Timer - report how much time elapsed between A and B
func (m *MessageMaker) Timer(letter string, o string, start time.Time, previous time.Time) {
	// sample output: "[B2: 3.764s][Δ: 1.024s] word2vec model trained"
	d := fmt.Sprintf("[Δ: %.3fs] ", time.Since(previous).Seconds())
	o = fmt.Sprintf("[%s: %.3fs]", letter, time.Since(start).Seconds()) + d + o
	m.Emit(o, TIMETRACKERMSGTHRESH)
}

// Commas - 1234567 becomes "1,234,567"
func Commas(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
