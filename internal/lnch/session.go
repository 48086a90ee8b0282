//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
)

// MakeDefaultSession - fill in the blanks when setting up a new session
func MakeDefaultSession(id string) str.ServerSession {
	// note that the session vault clears every time the server restarts
	var s str.ServerSession
	s.ID = id
	s.ActiveCorp = append([]string{}, Config.DefCorpora...)
	s.BatchSize = Config.BatchSize
	s.Categories = append([]string{}, vv.TagWhitelist...)
	s.Model = Config.VectorModel
	s.Space = Config.VectorSpace
	s.TopN = vv.DEFAULTTOPN
	s.Topics = Config.Topics
	return s
}
