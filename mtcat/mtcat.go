/*

Mtcat analyzes microtubule time to catastrophe. It fits the gamma and
the two-rate ("story") models by maximum likelihood and compares them
with the Akaike information criterion over bootstrap samples.

Convert the source measurements into a tidy table:

	mtcat tidy gardner_mt_catastrophe_only_tubulin.csv --out tidy.csv

Fit both models to the 12 uM measurements and draw the figures:

	mtcat fit tidy.csv --conc 12 --png figures

Compare the models with bootstrap AIC, or the gamma parameters across
concentrations:

	mtcat aic tidy.csv --iter 10000 --workers 4 --db results.db
	mtcat compare tidy.csv --out gamma.csv

Defaults, including the initial guesses of the likelihood
optimization, can be read from a YAML file (--config). Guesses have
no command-line flag.

To see all the options run:

	mtcat --help

*/
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mtcat/bootstrap"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("mtcat")
var formatter = logging.MustStringFormatter(`%{message}`)

// packages with loggers.
var loggers = []string{"mtcat", "data", "optimize", "bootstrap", "archive", "report"}

const defaultConcentration = "12"

// command-line options
var (
	// application
	app = kingpin.New("mtcat", "microtubule time to catastrophe analysis").Version(version)

	// common
	configF    = app.Flag("config", "read defaults from a YAML file").ExistingFile()
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	workers    = app.Flag("workers", "number of concurrent fits (1 by default)").Int()
	iterations = app.Flag("iter", "number of bootstrap samples (10000 by default)").Int()
	method     = app.Flag("method", "optimization method "+
		"(simplex: downhill simplex, "+
		"nm: Nelder-Mead from gonum)").Enum("simplex", "nm")
	onFailure = app.Flag("failure", "what to do if a fit does not converge "+
		"(abort, skip the sample, retry from a perturbed start)").Enum("abort", "skip", "retry")
	retries  = app.Flag("retries", "maximum number of retries (3 by default)").Int()
	progress = app.Flag("progress", "report bootstrap progress").Bool()
	pngDir   = app.Flag("png", "write figures to a directory").String()
	dbF      = app.Flag("db", "store bootstrap ensembles in a database").String()
	fromDB   = app.Flag("from-db", "load bootstrap ensembles from the database instead of computing").Bool()

	// input/output
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()

	// tidy
	tidyCmd  = app.Command("tidy", "convert the source measurements into a tidy table")
	tidyIn   = tidyCmd.Arg("input", "source CSV, one column per concentration").Required().ExistingFile()
	tidySkip = tidyCmd.Flag("skip", "number of comment lines").Default("9").Int()
	tidyOut  = tidyCmd.Flag("out", "write the tidy table to a file").String()

	// ecdf
	ecdfCmd = app.Command("ecdf", "summarize the measurements and plot their ECDFs")
	ecdfIn  = ecdfCmd.Arg("data", "tidy CSV").Required().ExistingFile()

	// fit
	fitCmd   = app.Command("fit", "maximum likelihood fit of a single concentration")
	fitIn    = fitCmd.Arg("data", "tidy CSV").Required().ExistingFile()
	fitConc  = fitCmd.Flag("conc", "concentration label (12 by default)").String()
	fitModel = fitCmd.Flag("model", "model (gamma, story or both)").Default("both").Enum("gamma", "story", "both")

	// aic
	aicCmd  = app.Command("aic", "compare the models by bootstrap AIC")
	aicIn   = aicCmd.Arg("data", "tidy CSV").Required().ExistingFile()
	aicConc = aicCmd.Flag("conc", "concentration label (12 by default)").String()
	aicOut  = aicCmd.Flag("out", "write bootstrap records to a CSV file").String()

	// compare
	compareCmd   = app.Command("compare", "bootstrap the model parameters for every concentration")
	compareIn    = compareCmd.Arg("data", "tidy CSV").Required().ExistingFile()
	compareModel = compareCmd.Flag("model", "model (gamma or story)").Default("gamma").Enum("gamma", "story")
	compareOut   = compareCmd.Flag("out", "write bootstrap records to a CSV file").String()
)

// setupLogging sets the backend and the level of all the loggers.
func setupLogging() (closer func()) {
	logging.SetFormatter(formatter)

	closer = func() {}
	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		closer = func() { f.Close() }
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range loggers {
		logging.SetLevel(level, l)
	}
	return
}

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog := setupLogging()
	defer closeLog()

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	var conf *Config
	if *configF != "" {
		var err error
		conf, err = readConfig(*configF)
		if err != nil {
			log.Fatal("Error reading configuration:", err)
		}
	}

	conc := *fitConc
	if cmd == aicCmd.FullCommand() {
		conc = *aicConc
	}
	opts, err := merge(Options{
		Iterations:    *iterations,
		Seed:          *seed,
		Workers:       *workers,
		Method:        *method,
		OnFailure:     bootstrap.Policy(*onFailure),
		Retries:       *retries,
		Concentration: conc,
		Progress:      *progress,
	}, conf)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Seed < 0 {
		opts.Seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", opts.Seed)
	rng := rand.New(rand.NewSource(opts.Seed))

	startTime := time.Now()
	summary := &RunSummary{
		Version:     version,
		CommandLine: os.Args,
		Command:     cmd,
		Seed:        opts.Seed,
		Workers:     opts.Workers,
	}

	out := Output{PNG: *pngDir, DB: *dbF, FromDB: *fromDB}
	switch cmd {
	case tidyCmd.FullCommand():
		err = runTidy(*tidyIn, *tidySkip, *tidyOut)
	case ecdfCmd.FullCommand():
		err = runECDF(*ecdfIn, out)
	case fitCmd.FullCommand():
		err = runFit(*fitIn, *fitModel, opts, out, summary)
	case aicCmd.FullCommand():
		out.CSV = *aicOut
		err = runAIC(rng, *aicIn, opts, out, summary)
	case compareCmd.FullCommand():
		out.CSV = *compareOut
		err = runCompare(rng, *compareIn, *compareModel, opts, out, summary)
	}
	if err != nil {
		log.Fatal(err)
	}

	deltaT := time.Since(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
