//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"bytes"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"strings"
)

// formvalidator - lets c.Validate() run the validator/v10 struct tags of the forms
type formvalidator struct {
	v *validator.Validate
}

func (fv *formvalidator) Validate(i interface{}) error {
	return fv.v.Struct(i)
}

// StartEchoServer - start serving; this blocks and does not return while the program remains alive
func StartEchoServer() {
	e := NewEcho()
	e.Logger.Fatal(e.Start(fmt.Sprintf("%s:%d", lnch.Config.HostIP, lnch.Config.HostPort)))
}

// NewEcho - the middleware and every route, ready to serve
func NewEcho() *echo.Echo {
	const (
		LLOGFMT = "r: ${status}\tt: ${latency_human}\tu: ${uri}\n"
		RLOGFMT = "${remote_ip}\t${custom}\t${status}\t${bytes_out}\t${uri}\n"
	)

	// ctf - a CustomTagFunc return a short user agent
	ctf := func(c echo.Context, buf *bytes.Buffer) (int, error) {
		ua := strings.Split(c.Request().UserAgent(), " ")
		if len(ua) == 0 {
			return 0, nil
		}
		last := ua[len(ua)-1]
		buf.Write([]byte(last))
		return 1, nil
	}

	//
	// SETUP
	//

	e := echo.New()
	e.Validator = &formvalidator{v: validator.New()}

	if exposed() {
		// assume that anyone not on loopback is serving via the internet and so set timeouts
		e.Server.ReadTimeout = vv.TIMEOUTRD
		e.Server.WriteTimeout = vv.TIMEOUTWR

		// internet exposure yields scanning attempts that will spam 404s & 500s; block IPs that do this
		// see "policerequestandresponse.go"
		p := vlt.NewPolice(vv.POLICESTRIKES, vv.POLICESLOWDOWN)
		go p.Run()
		e.Use(p.Middleware)
	}

	switch lnch.Config.EchoLog {
	case 3:
		e.Use(middleware.Logger())
	case 2:
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Format: RLOGFMT, CustomTagFunc: ctf}))
	case 1:
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Format: LLOGFMT}))
	default:
		// do nothing
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(vv.MAXECHOREQPERSECONDPERIP)))

	e.Use(middleware.Recover())

	if lnch.Config.Gzip {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	}

	//
	// SCREENING ROUTES
	//

	//
	// [a] frontpage, options and resets ("rt-frontpage.go", "rt-setoption.go", "rt-session.go")
	//

	e.GET("/", RtFrontpage)
	e.GET("/setoption/:opt/:val", RtSetOption) // "u: /setoption/batchsize/6"
	e.GET("/reset/session", RtResetSession)

	//
	// [b] corpora ("rt-corpus.go")
	//

	e.GET("/corpus/list", RtCorpusList)
	e.GET("/corpus/doc/:tag", RtCorpusDoc) // "u: /corpus/doc/pmc+3+abstract"

	//
	// [c] models ("rt-model.go")
	//

	e.POST("/model/train", RtModelTrain)
	e.GET("/model/status", RtModelStatus)

	//
	// [d] using a model ("rt-use.go")
	//

	e.POST("/use/docsim", RtUseDocSim)
	e.POST("/use/topicsim", RtUseTopicSim)
	e.GET("/use/topics", RtUseTopics)
	e.GET("/use/neighbors/:word", RtUseNeighbors) // "u: /use/neighbors/asthma"

	//
	// [e] active learning ("rt-active.go")
	//

	e.POST("/active/start", RtActiveStart)
	e.POST("/active/submit", RtActiveSubmit) // "radio-pmc+3=relevant&radio-pmc+7=irrelevant"
	e.POST("/active/proceed", RtActiveProceed)
	e.GET("/active/status", RtActiveStatus)

	//
	// [f] terminology ("rt-terminology.go")
	//

	e.POST("/terminology/tag", RtTerminologyTag)

	//
	// [g] co-clustering ("rt-cluster.go")
	//

	e.POST("/cluster/start", RtClusterStart)
	e.GET("/cluster/result/:id", RtClusterResult)

	//
	// [h] websocket ("rt-websocket.go")
	//

	e.GET("/ws", RtWebsocket)

	//
	// [i] serve via the embedded FS ("rt-embedding.go")
	//

	e.GET("/emb/css/:file", RtEmbCSS)
	e.GET("/emb/js/:file", RtEmbJS)

	e.HideBanner = true
	e.HidePort = false
	e.Debug = false
	e.DisableHTTP2 = true
	return e
}

// exposed - true unless serving from loopback only
func exposed() bool {
	switch lnch.Config.HostIP {
	case "127.0.0.1", "localhost", "::1":
		return false
	default:
		return true
	}
}
