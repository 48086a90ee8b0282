//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"embed"
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

//go:embed emb
var efs embed.FS

//
// ROUTES
//

func RtEmbCSS(c echo.Context) error {
	d := "emb/css/"
	return pathembedder(c, d)
}

func RtEmbJS(c echo.Context) error {
	d := "emb/js/"
	return pathembedder(c, d)
}

//
// HELPERS
//

// pathembedder - read and send file at path
func pathembedder(c echo.Context, d string) error {
	f := c.Param("file")
	j, e := efs.ReadFile(d + f)
	if e != nil {
		Msg.FYI(fmt.Sprintf("can't find %s", d+f))
		return c.String(http.StatusNotFound, "")
	}

	add := addresponsehead(f)
	if len(add) != 0 {
		c.Response().Header().Add("Content-Type", add)
	}

	return c.String(http.StatusOK, string(j))
}

// addresponsehead - set the response header for various file types
func addresponsehead(f string) string {
	add := ""

	if strings.HasSuffix(f, ".css") {
		add = "text/css"
	}

	if strings.HasSuffix(f, ".js") {
		add = "text/javascript"
	}

	return add
}
