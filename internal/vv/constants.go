//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

import "time"

const (
	MYNAME    = "Screening Golang Server"
	SHORTNAME = "SGS"
	VERSION   = "0.3.1"

	BLACKANDWHITE            = false
	CONFIGALTAPTH            = "%s/.config/" // %s = os.UserHomeDir()
	CONFIGBASIC              = "sgs-conf.json"
	CONFIGENV                = ".env"
	DEFAULTBATCHSIZE         = 10
	DEFAULTCORPUSDIR         = "data/corpora"
	DEFAULTCORPUSSTORE       = "json"
	DEFAULTCORPORA           = "test1"
	DEFAULTECHOLOGLEVEL      = 0
	DEFAULTGOLOGLEVEL        = 0
	DEFAULTPSQLHOST          = "127.0.0.1"
	DEFAULTPSQLUSER          = "sgs_rd"
	DEFAULTPSQLPORT          = 5432
	DEFAULTPSQLDB            = "screeningDB"
	DEFAULTSQLITEFILE        = "sgs-corpora.db"
	DEFAULTTOPN              = 3
	ENVPREFIX                = "SGS_"
	JOBKEEP                  = 30 * time.Minute
	JSONINDENT               = "  "
	MAXBATCHSIZE             = 100
	MAXECHOREQPERSECONDPERIP = 60
	MAXTOPN                  = 50
	MODELSUBDIR              = "models" // trained embeddings are cached under Config.CorpusDir
	POLICESTRIKES            = 3
	POLICESLOWDOWN           = 2 * time.Second
	SERVEDFROMHOST           = "127.0.0.1"
	SERVEDFROMPORT           = 8000
	SESSIONTTL               = 2 * time.Hour
	SESSIONJANITOR           = 10 * time.Minute
	SIMULTANEOUSQUERIES      = 3 // cap on the number of db connections at (S * Config.WorkerCount)
	SNIPPETLEN               = 320
	TIMEOUTRD                = 15 * time.Second
	TIMEOUTWR                = 120 * time.Second
	USEGZIP                  = false
	WRITEPERMS               = 0644
	WSPOLLINGPAUSE           = 10000000 * 10 // 10000000 * 10 = every .1s
)
