//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"github.com/e-gun/ScreeningGoServer/internal/mm"
)

func NewMessageMakerConfigured() *mm.MessageMaker {
	m := mm.NewMessageMaker()
	m.Configure(Config.LogLevel, Config.BlackAndWhite)
	return m
}

// UpdateMessageMakerWithConfig - the messenger is built before the flags are parsed
func UpdateMessageMakerWithConfig(m *mm.MessageMaker) {
	m.Configure(Config.LogLevel, Config.BlackAndWhite)
	if Config.LogFile != "" {
		m.ToFile(Config.LogFile)
	}
}
