//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"bytes"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/mm"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/labstack/echo/v4"
	"html/template"
	"net/http"
	"runtime"
	"strings"
	"time"
)

//
// ROUTING
//

// RtFrontpage - send the html for "/"
func RtFrontpage(c echo.Context) error {
	const (
		UPSTR   = "[%v] SGS uptime: %v [%s]"
		PADDING = " ----------------- "
		FAIL    = "RtFrontpage() could not build the page: %s"
	)
	c.Response().After(func() { Msg.LogPaths("RtFrontpage()") })

	// will set if missing
	user := ReadUUIDCookie(c)
	s := vlt.AllSessions.GetSess(user)

	gc := lnch.GitCommit
	if gc == "" {
		gc = "UNKNOWN"
	}
	ver := fmt.Sprintf("Version: %s [git: %s]", vv.VERSION+lnch.VersSuppl, gc)

	env := fmt.Sprintf("%s: %s - %s (%d workers)", runtime.Version(), runtime.GOOS, runtime.GOARCH, lnch.Config.WorkerCount)

	// t() will give the uptime
	var mem runtime.MemStats

	t := func(up time.Duration) string {
		runtime.ReadMemStats(&mem)
		heap := fmt.Sprintf("%dM", mem.HeapAlloc/1024/1024)
		tick := fmt.Sprintf(UPSTR, time.Now().Format(time.TimeOnly), up.Truncate(time.Minute), heap)
		return PADDING + tick + PADDING
	}

	// sample ticker output

	//      ----------------- [13:29:41] SGS uptime: 1m0s [41M] -----------------
	//
	//    ActiveStart: 2 * ActiveSubmit: 5 * Frontpage: 3

	subs := map[string]interface{}{
		"name":    vv.MYNAME,
		"version": vv.VERSION + lnch.VersSuppl,
		"longver": ver,
		"env":     env,
		"ticker":  t(time.Since(vv.LaunchTime)) + "\n\n" + mm.PathSummary(mm.PathStats()),
		"corpora": strings.Join(s.ActiveCorp, ", "),
		"model":   s.Model,
		"space":   s.Space,
		"batch":   s.BatchSize,
		"sample":  vv.TESTSTRING,
	}

	f, e := efs.ReadFile("emb/frontpage.html")
	if e != nil {
		return apierror(c, "RtFrontpage()", e)
	}

	tmpl, e := template.New("fp").Parse(string(f))
	if e != nil {
		Msg.WARN(fmt.Sprintf(FAIL, e.Error()))
		return c.String(http.StatusInternalServerError, "")
	}

	var b bytes.Buffer
	err := tmpl.Execute(&b, subs)
	Msg.EC(err)

	return c.HTML(http.StatusOK, b.String())
}
