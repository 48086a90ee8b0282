//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/labstack/echo/v4"
	"net/http"
)

//
// ROUTING
//

// RtResetSession - abandon the session and everything running on its behalf; then start afresh
func RtResetSession(c echo.Context) error {
	c.Response().After(func() { Msg.LogPaths("RtResetSession()") })
	id := ReadUUIDCookie(c)

	// the active learning state goes with the session
	vlt.AllSessions.Delete(id)

	// cancel any training or clustering in progress: each job holds a .CancelFnc()
	// [a] wego cannot be interrupted: a cancelled training run finishes in the background and its result is dropped
	// [b] co-clustering checks its context between stages
	vlt.Jobs.CancelAll(id)

	// reset the user ID and session
	writeUUIDCookie(c)

	e := c.Redirect(http.StatusFound, "/")
	Msg.EC(e)
	return nil
}
