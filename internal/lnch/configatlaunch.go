//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/joho/godotenv"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
)

var (
	Config = BuildDefaultConfig()
	Msg    = NewMessageMakerConfigured()
)

// BuildDefaultConfig - return a CurrentConfiguration filled out with various default values
func BuildDefaultConfig() *str.CurrentConfiguration {
	var c str.CurrentConfiguration
	c.BatchSize = vv.DEFAULTBATCHSIZE
	c.BlackAndWhite = vv.BLACKANDWHITE
	c.CorpusDir = vv.DEFAULTCORPUSDIR
	c.CorpusStore = vv.DEFAULTCORPUSSTORE
	c.DefCorpora = []string{vv.DEFAULTCORPORA}
	c.EchoLog = vv.DEFAULTECHOLOGLEVEL
	c.Gazetteer = ""
	c.Gzip = vv.USEGZIP
	c.HostIP = vv.SERVEDFROMHOST
	c.HostPort = vv.SERVEDFROMPORT
	c.LogFile = ""
	c.LogLevel = vv.DEFAULTGOLOGLEVEL
	c.ProfileCPU = false
	c.QuietStart = false
	c.SessionTTL = int(vv.SESSIONTTL.Minutes())
	c.SQLiteFile = vv.DEFAULTSQLITEFILE
	c.Topics = vv.TOPICCOUNT
	c.TrainAtLaunch = false
	c.VectorDim = vv.VECTORDIMDEFAULT
	c.VectorModel = vv.VECTORMODELDEFAULT
	c.VectorSpace = vv.VECTORSPACEDEFAULT
	c.WorkerCount = runtime.NumCPU()

	c.PGLogin = str.PostgresLogin{
		Host:   vv.DEFAULTPSQLHOST,
		Port:   vv.DEFAULTPSQLPORT,
		User:   vv.DEFAULTPSQLUSER,
		Pass:   "",
		DBName: vv.DEFAULTPSQLDB,
	}

	return &c
}

// ConfigFilePath - "~/.config/sgs-conf.json"
func ConfigFilePath() string {
	uh, e := os.UserHomeDir()
	if e != nil {
		// how likely is this...?
		uh = "."
	}
	return fmt.Sprintf(vv.CONFIGALTAPTH, uh) + vv.CONFIGBASIC
}

// LoadConfigFile - overlay the JSON found at fp onto cfg; keys absent from the file keep their current values
func LoadConfigFile(fp string, cfg *str.CurrentConfiguration) error {
	f, err := os.Open(fp)
	if err != nil {
		return err
	}
	defer f.Close()

	// a half-parsed file never leaks into cfg
	cp := *cfg
	cp.DefCorpora = nil
	if err = json.NewDecoder(f).Decode(&cp); err != nil {
		return fmt.Errorf("could not parse '%s': %w", fp, err)
	}
	if cp.DefCorpora == nil {
		cp.DefCorpora = cfg.DefCorpora
	}
	*cfg = cp
	return nil
}

// LoadEnvFile - overlay the SGS_* values found in a .env file onto cfg; returns the number of values applied
func LoadEnvFile(fp string, cfg *str.CurrentConfiguration) (int, error) {
	env, err := godotenv.Read(fp)
	if err != nil {
		return 0, err
	}
	return ApplyEnv(env, cfg)
}

// ApplyEnv - overlay a map of SGS_* variables onto cfg; the process environment wins over the map
func ApplyEnv(env map[string]string, cfg *str.CurrentConfiguration) (int, error) {
	const (
		FAIL = "%s: cannot use '%s': %w"
	)

	lookup := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(vv.ENVPREFIX + k); ok {
			return v, true
		}
		v, ok := env[vv.ENVPREFIX+k]
		return v, ok
	}

	setint := func(k string, target *int) error {
		if v, ok := lookup(k); ok {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf(FAIL, vv.ENVPREFIX+k, v, err)
			}
			*target = i
		}
		return nil
	}

	setbool := func(k string, target *bool) error {
		if v, ok := lookup(k); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf(FAIL, vv.ENVPREFIX+k, v, err)
			}
			*target = b
		}
		return nil
	}

	setstr := func(k string, target *string) {
		if v, ok := lookup(k); ok {
			*target = strings.TrimSpace(v)
		}
	}

	n := 0
	for k := range env {
		if strings.HasPrefix(k, vv.ENVPREFIX) {
			n++
		}
	}

	var errs []error
	errs = append(errs, setint("GL", &cfg.LogLevel))
	errs = append(errs, setint("EL", &cfg.EchoLog))
	errs = append(errs, setbool("BW", &cfg.BlackAndWhite))
	errs = append(errs, setbool("GZ", &cfg.Gzip))
	errs = append(errs, setint("SP", &cfg.HostPort))
	errs = append(errs, setint("WC", &cfg.WorkerCount))
	errs = append(errs, setint("TP", &cfg.Topics))
	errs = append(errs, setint("BS", &cfg.BatchSize))
	errs = append(errs, setint("ST", &cfg.SessionTTL))
	errs = append(errs, setint("DIM", &cfg.VectorDim))
	errs = append(errs, setint("PGPORT", &cfg.PGLogin.Port))
	errs = append(errs, setbool("TRAIN", &cfg.TrainAtLaunch))
	setstr("SA", &cfg.HostIP)
	setstr("MD", &cfg.VectorModel)
	setstr("VS", &cfg.VectorSpace)
	setstr("CD", &cfg.CorpusDir)
	setstr("CS", &cfg.CorpusStore)
	setstr("LF", &cfg.LogFile)
	setstr("GZT", &cfg.Gazetteer)
	setstr("SQLITE", &cfg.SQLiteFile)
	setstr("PGHOST", &cfg.PGLogin.Host)
	setstr("PGUSER", &cfg.PGLogin.User)
	setstr("PGPASS", &cfg.PGLogin.Pass)
	setstr("PGDB", &cfg.PGLogin.DBName)

	var corp string
	setstr("CORPORA", &corp)
	if corp != "" {
		cfg.DefCorpora = strings.Split(corp, ",")
	}

	return n, errors.Join(errs...)
}

// ConfigAtLaunch - defaults < json file < .env and environment; the cobra flags are applied afterwards
func ConfigAtLaunch(conffile string, envfile string) *str.CurrentConfiguration {
	const (
		FAIL1 = "Could not parse the information in '%s'. Skipping and attempting to use built-in defaults instead."
		FAIL2 = "Could not apply the environment: %s"
		OK1   = "'%s' loaded"
		OK2   = "%d value(s) loaded from '%s'"
	)

	cfg := BuildDefaultConfig()

	if err := LoadConfigFile(conffile, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			Msg.TMI(fmt.Sprintf("'%s' *not* loaded", conffile))
		} else {
			Msg.CRIT(fmt.Sprintf(FAIL1, conffile))
		}
	} else {
		Msg.TMI(fmt.Sprintf(OK1, conffile))
	}

	n, err := LoadEnvFile(envfile, cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		Msg.CRIT(fmt.Sprintf(FAIL2, err.Error()))
	}
	if errors.Is(err, os.ErrNotExist) {
		// no .env file: the process environment still counts
		if _, e := ApplyEnv(map[string]string{}, cfg); e != nil {
			Msg.CRIT(fmt.Sprintf(FAIL2, e.Error()))
		}
	}
	if n > 0 {
		Msg.TMI(fmt.Sprintf(OK2, n, envfile))
	}

	return cfg
}

// SanityCheck - repair values that would break the server
func SanityCheck(cfg *str.CurrentConfiguration) {
	const (
		FAIL1 = "Refusing to set a workercount greater than NumCPU: %d > %d ---> setting workercount value to NumCPU: %d"
		FAIL2 = "Unknown corpus store '%s'; using '%s'"
		FAIL3 = "Unknown model type '%s'; using '%s'"
		FAIL4 = "Batch size %d is out of bounds; using %d"
	)

	if cfg.WorkerCount > runtime.NumCPU() {
		Msg.CRIT(fmt.Sprintf(FAIL1, cfg.WorkerCount, runtime.NumCPU(), runtime.NumCPU()))
		cfg.WorkerCount = runtime.NumCPU()
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	if !slices.Contains(vv.CorpusStores, cfg.CorpusStore) {
		Msg.CRIT(fmt.Sprintf(FAIL2, cfg.CorpusStore, vv.DEFAULTCORPUSSTORE))
		cfg.CorpusStore = vv.DEFAULTCORPUSSTORE
	}

	if !slices.Contains(vv.ModelTypes, cfg.VectorModel) {
		Msg.CRIT(fmt.Sprintf(FAIL3, cfg.VectorModel, vv.VECTORMODELDEFAULT))
		cfg.VectorModel = vv.VECTORMODELDEFAULT
	}

	if cfg.BatchSize < 1 || cfg.BatchSize > vv.MAXBATCHSIZE {
		Msg.CRIT(fmt.Sprintf(FAIL4, cfg.BatchSize, vv.DEFAULTBATCHSIZE))
		cfg.BatchSize = vv.DEFAULTBATCHSIZE
	}

	if cfg.Topics < 1 {
		cfg.Topics = vv.TOPICCOUNT
	}

	if cfg.SessionTTL < 1 {
		cfg.SessionTTL = int(vv.SESSIONTTL.Minutes())
	}

	if cfg.VectorDim < 2 {
		cfg.VectorDim = vv.VECTORDIMDEFAULT
	}

	// corpora are always merged in sorted order
	slices.Sort(cfg.DefCorpora)
	cfg.DefCorpora = slices.Compact(cfg.DefCorpora)
}
