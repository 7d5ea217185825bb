package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"gitlab.com/akita/fivegsim/mapper"
	"gitlab.com/akita/fivegsim/samples/runner"
)

var traceFile = flag.String("trace-file", "", "The LTE subframe trace to replay.")
var taskFile = flag.String("task-file", "",
	"CSV file with calibrated task times. The built-in model is used if empty.")
var antennas = flag.Int("antennas", 4, "Number of receive antennas.")
var platformName = flag.String("platform", "odroid",
	"The platform to simulate (odroid, odroid_acc).")
var mapperName = flag.String("mapper", "fiveg",
	fmt.Sprintf("The mapper used without a runtime and for Pareto fronts %v.",
		mapper.Names()))
var seed = flag.Int64("seed", 0, "Seed of the random mapper.")
var maxExclude = flag.Int("max-exclude", 0,
	"Bound on the processors of one type excluded while exploring Pareto fronts, 0 for none.")
var loadBalancer = flag.Bool("load-balancer", false,
	"Place applications with the work-stealing load balancer.")
var tetrisRuntime = flag.Bool("tetris-runtime", false,
	"Admit applications with the Pareto-front based runtime.")
var paretoSimulate = flag.Bool("pareto-metadata-simulate", false,
	"Measure every Pareto-optimal mapping by simulation.")
var paretoTimeScale = flag.Float64("pareto-time-scale", 1.0,
	"Scale applied to the estimated execution times.")
var paretoTimeOffset = flag.Float64("pareto-time-offset", 0.0,
	"Offset in ms added to the estimated execution times.")
var statsApplications = flag.String("stats-applications", "applications.csv",
	"Where to dump the application statistics.")
var statsActivations = flag.String("stats-activations", "activations.csv",
	"Where to dump the runtime manager activations.")
var summaryFile = flag.String("summary", "missrate.csv",
	"Where to dump the summary.")
var resultFile = flag.String("result", "result.json",
	"Where to write the result report.")
var logLevel = flag.String("log-level", "warning", "The log level.")

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetLevel(level)

	cfg := runner.DefaultConfig()
	cfg.TraceFile = *traceFile
	cfg.TaskFile = *taskFile
	cfg.Antennas = *antennas
	cfg.Platform = *platformName
	cfg.Mapper = *mapperName
	cfg.MapperOptions.Seed = *seed
	cfg.MapperOptions.MaxExcludePerType = *maxExclude
	cfg.LoadBalancer = *loadBalancer
	cfg.TetrisRuntime = *tetrisRuntime
	cfg.Pareto.MetadataSimulate = *paretoSimulate
	cfg.Pareto.TimeScale = *paretoTimeScale
	cfg.Pareto.TimeOffset = *paretoTimeOffset
	cfg.StatsApplications = *statsApplications
	cfg.StatsActivations = *statsActivations
	cfg.Summary = *summaryFile
	cfg.ResultFile = *resultFile

	simulation, err := runner.NewSimulation(cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	atexit.Register(func() {
		if err := simulation.WriteReports(); err != nil {
			logrus.Error(err)
		}
	})

	if _, err := simulation.Run(); err != nil {
		logrus.Error(err)
		atexit.Exit(1)
	}

	simulation.PrintSummary(os.Stdout)

	atexit.Exit(0)
}
