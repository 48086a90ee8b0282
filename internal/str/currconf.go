//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package str

type CurrentConfiguration struct {
	BatchSize     int
	BlackAndWhite bool
	CorpusDir     string
	CorpusStore   string // "json", "sqlite", "pgsql"
	DefCorpora    []string
	EchoLog       int // 0: "none", 1: "terse", 2: "prolix", 3: "prolix+remoteip"
	Gazetteer     string
	Gzip          bool
	HostIP        string
	HostPort      int
	LogFile       string
	LogLevel      int
	PGLogin       PostgresLogin
	ProfileCPU    bool
	QuietStart    bool
	SessionTTL    int // minutes
	SQLiteFile    string
	Topics        int
	TrainAtLaunch bool
	VectorDim     int
	VectorModel   string
	VectorSpace   string
	WorkerCount   int
}
