//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

const (
	IDCOOKIE = "ID"
)

// ReadUUIDCookie - find the ID of the client
func ReadUUIDCookie(c echo.Context) string {
	cookie, err := c.Cookie(IDCOOKIE)
	if err != nil || cookie.Value == "" {
		id := writeUUIDCookie(c)
		return id
	}
	id := cookie.Value

	if !vlt.AllSessions.IsInVault(id) {
		vlt.AllSessions.InsertSess(lnch.MakeDefaultSession(id))
	}

	return id
}

// writeUUIDCookie - set the ID of the client
func writeUUIDCookie(c echo.Context) string {
	cookie := new(http.Cookie)
	cookie.Name = IDCOOKIE
	cookie.Path = "/"
	cookie.Value = uuid.New().String()
	cookie.Expires = time.Now().Add(4800 * time.Hour)
	c.SetCookie(cookie)
	vlt.AllSessions.InsertSess(lnch.MakeDefaultSession(cookie.Value))
	Msg.TMI(fmt.Sprintf("writeUUIDCookie() - new ID set: %s", cookie.Value))
	return cookie.Value
}
