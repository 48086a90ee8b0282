//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"bytes"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/spf13/cobra"
	"os"
	"runtime"
	"text/template"
)

// Handlers - what the commands actually do; main supplies these so that lnch stays free of the domain packages
type Handlers struct {
	Serve  func(cmd *cobra.Command) error
	Ingest func(cmd *cobra.Command, corpus string, src string) error
	Tag    func(cmd *cobra.Command, fp string, cats []string) error
}

// flagvalues - the raw flags; only the ones the user actually set override the file and the environment
type flagvalues struct {
	gl, el, sp, wc, tp, bs, st, dim int
	bw, gz, pc, q, tr               bool
	sa, md, vs, cd, cs, lf, gzt     string
	corp                            []string
	conffile, envfile               string
}

// NewRootCommand - the cobra tree: "ScreeningGoServer [flags]", "version", "ingest", "tag"
func NewRootCommand(h Handlers) *cobra.Command {
	fv := &flagvalues{}

	root := &cobra.Command{
		Use:           "ScreeningGoServer",
		Short:         vv.MYNAME,
		Long:          "An active-learning screening server for biomedical corpora.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       vv.VERSION + VersSuppl,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Config = ConfigAtLaunch(fv.conffile, fv.envfile)
			applyflags(cmd, fv, Config)
			SanityCheck(Config)
			UpdateMessageMakerWithConfig(Msg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if h.Serve == nil {
				return fmt.Errorf("no server configured")
			}
			return h.Serve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.conffile, "cf", ConfigFilePath(), "JSON configuration file")
	pf.StringVar(&fv.envfile, "ef", vv.CONFIGENV, "dotenv file holding SGS_* overrides")
	pf.IntVar(&fv.gl, "gl", vv.DEFAULTGOLOGLEVEL, "golang log level (0-5)")
	pf.IntVar(&fv.el, "el", vv.DEFAULTECHOLOGLEVEL, "echo log level (0-3)")
	pf.BoolVar(&fv.bw, "bw", false, "black and white terminal output")
	pf.StringVar(&fv.lf, "lf", "", "also write a JSON log to this file")
	pf.StringVar(&fv.cd, "cd", vv.DEFAULTCORPUSDIR, "corpus directory")
	pf.StringVar(&fv.cs, "cs", vv.DEFAULTCORPUSSTORE, "corpus store: json, sqlite or pgsql")
	pf.StringSliceVar(&fv.corp, "co", []string{vv.DEFAULTCORPORA}, "default corpora")
	pf.StringVar(&fv.gzt, "gzt", "", "YAML gazetteer for the entity tagger")

	f := root.Flags()
	f.BoolVar(&fv.gz, "gz", vv.USEGZIP, "gzip the responses")
	f.StringVar(&fv.sa, "sa", vv.SERVEDFROMHOST, "serve from this address")
	f.IntVar(&fv.sp, "sp", vv.SERVEDFROMPORT, "serve from this port")
	f.IntVar(&fv.wc, "wc", runtime.NumCPU(), "number of workers")
	f.StringVar(&fv.md, "md", vv.VECTORMODELDEFAULT, "embedding model: w2v, glove or lexvec")
	f.StringVar(&fv.vs, "vs", vv.VECTORSPACEDEFAULT, "default vector space: topic or document")
	f.IntVar(&fv.dim, "dim", vv.VECTORDIMDEFAULT, "embedding dimensions")
	f.IntVar(&fv.tp, "tp", vv.TOPICCOUNT, "number of topics in topic space")
	f.IntVar(&fv.bs, "bs", vv.DEFAULTBATCHSIZE, "default active learning batch size")
	f.IntVar(&fv.st, "st", int(vv.SESSIONTTL.Minutes()), "session lifetime in minutes")
	f.BoolVar(&fv.pc, "pc", false, "profile the CPU")
	f.BoolVar(&fv.q, "q", false, "quiet start")
	f.BoolVar(&fv.tr, "tr", false, "train the default model at launch")

	root.SetHelpTemplate(root.HelpTemplate() + helpsuffix(fv))

	root.AddCommand(newVersionCommand())
	root.AddCommand(newIngestCommand(h))
	root.AddCommand(newTagCommand(h))
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			PrintVersion(cmd.OutOrStdout(), *Config)
			PrintBuildInfo(cmd.OutOrStdout(), *Config)
		},
	}
}

func newIngestCommand(h Handlers) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <corpus> <file.json>",
		Short: "Load a JSON-lines corpus into the SQLite store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if h.Ingest == nil {
				return fmt.Errorf("ingest is not available")
			}
			return h.Ingest(cmd, args[0], args[1])
		},
	}
}

func newTagCommand(h Handlers) *cobra.Command {
	var cats []string
	c := &cobra.Command{
		Use:   "tag <file.txt>",
		Short: "Tag the biomedical entities in a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if h.Tag == nil {
				return fmt.Errorf("tagging is not available")
			}
			return h.Tag(cmd, args[0], cats)
		},
	}
	c.Flags().StringSliceVar(&cats, "cat", vv.TagWhitelist, "categories to report")
	return c
}

// applyflags - the flags the user set override everything else
func applyflags(cmd *cobra.Command, fv *flagvalues, cfg *str.CurrentConfiguration) {
	set := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if set("gl") {
		cfg.LogLevel = fv.gl
	}
	if set("el") {
		cfg.EchoLog = fv.el
	}
	if set("bw") {
		cfg.BlackAndWhite = fv.bw
	}
	if set("lf") {
		cfg.LogFile = fv.lf
	}
	if set("cd") {
		cfg.CorpusDir = fv.cd
	}
	if set("cs") {
		cfg.CorpusStore = fv.cs
	}
	if set("co") {
		cfg.DefCorpora = append([]string{}, fv.corp...)
	}
	if set("gzt") {
		cfg.Gazetteer = fv.gzt
	}
	if set("gz") {
		cfg.Gzip = fv.gz
	}
	if set("sa") {
		cfg.HostIP = fv.sa
	}
	if set("sp") {
		cfg.HostPort = fv.sp
	}
	if set("wc") {
		cfg.WorkerCount = fv.wc
	}
	if set("md") {
		cfg.VectorModel = fv.md
	}
	if set("vs") {
		cfg.VectorSpace = fv.vs
	}
	if set("dim") {
		cfg.VectorDim = fv.dim
	}
	if set("tp") {
		cfg.Topics = fv.tp
	}
	if set("bs") {
		cfg.BatchSize = fv.bs
	}
	if set("st") {
		cfg.SessionTTL = fv.st
	}
	if set("pc") {
		cfg.ProfileCPU = fv.pc
	}
	if set("q") {
		cfg.QuietStart = fv.q
	}
	if set("tr") {
		cfg.TrainAtLaunch = fv.tr
	}
}

func helpsuffix(fv *flagvalues) string {
	const (
		FAIL = "helpsuffix() failed to execute help text template"
	)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "(unknown)"
	}
	uh, _ := os.UserHomeDir()

	m := map[string]interface{}{
		"conffile":  vv.CONFIGBASIC,
		"home":      fmt.Sprintf(vv.CONFIGALTAPTH, uh),
		"envprefix": vv.ENVPREFIX,
		"cwd":       cwd,
		"corpdir":   fv.cd,
		"store":     fv.cs,
		"workers":   fv.wc,
		"cpus":      runtime.NumCPU(),
	}

	t := template.Must(template.New("").Parse(vv.HELPSUFFIX))

	var b bytes.Buffer
	if ee := t.Execute(&b, m); ee != nil {
		Msg.CRIT(FAIL)
		return ""
	}
	return Msg.ColStyle(b.String())
}
