package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	aeroplane "github.com/MauriceS03/CMM3-Aeroplane"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	scenario    string
	scheme      string
	outputdir   string
	prefix      string
	asCSV       bool
	asXLSX      bool
	withPlots   bool
	metricsFile string
	ultraDebug  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario file (TOML, YAML or JSON); the reference scenario is flown if unset")
	flag.StringVar(&scheme, "scheme", "", "override the integration scheme (reference or coupled-rk4)")
	flag.StringVar(&outputdir, "out", "./", "output directory")
	flag.StringVar(&prefix, "prefix", "pitch", "prefix of the exported files")
	flag.BoolVar(&asCSV, "csv", true, "export the history as CSV")
	flag.BoolVar(&asXLSX, "xlsx", false, "export the history as an Excel workbook")
	flag.BoolVar(&withPlots, "plot", false, "plot every series against time")
	flag.StringVar(&metricsFile, "metrics", "", "write the run metrics to this Prometheus textfile")
	flag.BoolVar(&ultraDebug, "debug", false, "debug everything (really verbose)")
}

func main() {
	flag.Parse()
	logger := newLogger(ultraDebug)
	if err := run(logger); err != nil {
		level.Error(logger).Log("subsys", "pitchsim", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	sc := aeroplane.ReferenceScenario()
	if scenario != "" {
		var err error
		if sc, err = aeroplane.LoadScenario(scenario); err != nil {
			return err
		}
	}
	if scheme != "" {
		s, err := aeroplane.ParseScheme(scheme)
		if err != nil {
			return err
		}
		sc.Scheme = s
	}
	level.Info(logger).Log("subsys", "pitchsim", "scenario", sc)

	reg := prometheus.NewRegistry()
	metrics, err := aeroplane.NewMetrics(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Starting the streamer
	conf := aeroplane.ExportConfig{Dir: outputdir, Filename: prefix, AsCSV: asCSV, AsXLSX: asXLSX, Plot: withPlots, Logger: logger}
	histChan := make(chan aeroplane.State, 100)
	exported := make(chan error, 1)
	go func() {
		_, err := aeroplane.StreamStates(conf, histChan)
		exported <- err
	}()

	res, runErr := aeroplane.RunScenario(ctx, sc, aeroplane.WithLogger(logger), aeroplane.WithRecorder(metrics), aeroplane.WithStateSink(histChan))
	close(histChan)
	exportErr := <-exported

	if res.Trim.Iterations > 0 {
		fmt.Printf("%s\n%s\n", res.Coefficients, res.Trim)
	}
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			level.Warn(logger).Log("subsys", "pitchsim", "metrics", metricsFile, "err", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if exportErr != nil {
		return exportErr
	}
	if n := len(res.History); n > 0 {
		last := res.History[n-1]
		fmt.Printf("%d samples, final state %s\n", n, last)
	}
	return nil
}

// newLogger returns a logfmt logger which only lets debug records through when debug is set.
func newLogger(debug bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	allow := level.AllowInfo()
	if debug {
		allow = level.AllowDebug()
	}
	return levelValues(level.NewFilter(logger, allow))
}

// levelValues converts the plain string levels of the library into level values, so that the
// filter applies to them.
func levelValues(next log.Logger) log.Logger {
	return log.LoggerFunc(func(keyvals ...interface{}) error {
		for i := 0; i+1 < len(keyvals); i += 2 {
			if k, ok := keyvals[i].(string); !ok || k != "level" {
				continue
			}
			if s, ok := keyvals[i+1].(string); ok {
				keyvals[i] = level.Key()
				keyvals[i+1] = parseLevel(s)
			}
		}
		return next.Log(keyvals...)
	})
}

func parseLevel(s string) level.Value {
	switch strings.ToLower(s) {
	case "debug":
		return level.DebugValue()
	case "warning", "warn":
		return level.WarnValue()
	case "critical", "error":
		return level.ErrorValue()
	default:
		return level.InfoValue()
	}
}
