//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"github.com/e-gun/ScreeningGoServer/internal/lnch"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
)

var (
	Msg           = lnch.Msg
	AllSessions   = MakeSessionVault(vv.SESSIONTTL, vv.SESSIONJANITOR, lnch.MakeDefaultSession)
	Jobs          = BuildJobHub(vv.JOBKEEP)
	WebsocketPool = WSFillNewPool(Jobs)
)
