// Package runner drives a 5G PHY simulation: it replays a subframe trace,
// hands the resulting applications to a runtime manager or maps them
// statically, and reports the outcome.
package runner

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v3/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/stat"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/manager"
	"gitlab.com/akita/fivegsim/mapper"
	"gitlab.com/akita/fivegsim/pareto"
	"gitlab.com/akita/fivegsim/phybench"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
	"gitlab.com/akita/fivegsim/system"
)

// SubframePeriod is the time between two subframes.
const SubframePeriod sim.VTimeInSec = 1e-3

// A Simulation replays one trace file.
type Simulation struct {
	cfg Config
	log *logrus.Entry

	platform  *platform.Platform
	env       *simenv.Env
	system    *system.System
	stats     *profiler.ManagerStatistics
	metrics   *profiler.Metrics
	generator phybench.Generator
	mapper    mapper.Mapper
	runtime   manager.RuntimeManager

	traceFile io.Closer
	reader    *phybench.TraceFileReader
	sfCount   int

	finished []*simenv.Event
	endTime  sim.VTimeInSec
	load     map[string]float64
	meanLoad float64
	started  bool
	done     bool
	err      error
	wall     *profiler.WallTime
	result   *profiler.Result
}

// NewSimulation prepares a simulation. It opens the input files and builds
// the platform, the runtime and the mapper the configuration asks for.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:     cfg,
		log:     logrus.WithField("component", "simulation"),
		stats:   profiler.NewManagerStatistics(),
		metrics: profiler.NewMetrics(),
		wall:    profiler.NewWallTime(),
	}

	p, err := platform.New(cfg.Platform)
	if err != nil {
		return nil, err
	}
	s.platform = p

	times, err := loadTaskTimes(cfg.Fs, cfg.TaskFile)
	if err != nil {
		return nil, err
	}
	s.generator = phybench.Generator{Times: times, Antennas: cfg.Antennas}

	s.mapper, err = mapper.New(cfg.Mapper, p, cfg.MapperOptions)
	if err != nil {
		return nil, err
	}

	s.env = simenv.NewEnv(sim.NewSerialEngine())
	s.system = system.NewSystem(s.env, p, system.Options{
		LoadHistoryLen: cfg.LoadHistoryLen,
		Metrics:        s.metrics,
	})

	if err := s.buildRuntime(); err != nil {
		return nil, err
	}

	f, err := cfg.Fs.Open(cfg.TraceFile)
	if err != nil {
		return nil, errors.Wrap(err, "opening the trace file")
	}
	s.traceFile = f
	s.reader = phybench.NewTraceFileReader(f)

	return s, nil
}

func loadTaskTimes(fs afero.Fs, path string) (*phybench.TaskTimes, error) {
	if path == "" {
		return phybench.DefaultTaskTimes(), nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening the task file")
	}
	defer f.Close()

	return phybench.LoadTaskTimes(f)
}

func (s *Simulation) buildRuntime() error {
	switch {
	case s.cfg.LoadBalancer:
		s.runtime = manager.NewLoadBalancer(s.system, s.stats)
	case s.cfg.TetrisRuntime:
		generator, ok := s.mapper.(mapper.ParetoMapper)
		if !ok {
			return errors.Errorf(
				"mapper %s cannot generate Pareto fronts", s.cfg.Mapper)
		}

		validator := system.MappingSimulator{
			NewPlatform: func() (*platform.Platform, error) {
				return platform.New(s.cfg.Platform)
			},
			Options: system.Options{LoadHistoryLen: s.cfg.LoadHistoryLen},
		}

		cache, err := pareto.NewCache(s.cfg.Pareto, generator, validator, s.metrics)
		if err != nil {
			return err
		}

		s.runtime = manager.NewTetrisManager(s.system, s.stats, cache)
	}

	return nil
}

// Statistics returns the statistics collected so far.
func (s *Simulation) Statistics() *profiler.ManagerStatistics {
	return s.stats
}

// Metrics returns the counters of the simulation.
func (s *Simulation) Metrics() *profiler.Metrics {
	return s.metrics
}

// Run simulates the whole trace. A simulation can only run once.
func (s *Simulation) Run() (*profiler.Result, error) {
	if s.started {
		return nil, errors.New("a simulation may only run once")
	}
	s.started = true
	defer s.traceFile.Close()

	s.wall.Start("simulation")

	if s.runtime != nil {
		s.log.Infof("Using the %s runtime", s.runtime.Name())
		s.finished = append(s.finished, s.runtime.Run())
	}

	s.env.After(0, s.nextSubframe)

	if err := s.env.Run(); err != nil {
		return nil, err
	}

	wallTime := s.wall.Stop("simulation")

	if s.err != nil {
		return nil, s.err
	}
	if !s.done {
		return nil, errors.New("simulation stopped before all applications finished")
	}

	static, dynamic := s.energyAt(s.endTime)
	s.result = &profiler.Result{
		SimTime:       float64(s.endTime) * 1e3,
		WallTime:      wallTime,
		Applications:  s.stats.TotalApplications(),
		Rejected:      s.stats.TotalRejected(),
		Missed:        s.stats.TotalMissed(),
		Activations:   s.stats.TotalActivations(),
		StaticEnergy:  static,
		DynamicEnergy: dynamic,
		Load:          s.load,
	}

	return s.result, nil
}

func (s *Simulation) nextSubframe() {
	sf, err := s.reader.Next()
	if err == io.EOF {
		s.finish()
		return
	}
	if err != nil {
		s.fail(err)
		return
	}

	count := s.sfCount
	s.sfCount++

	graphs, traces, err := s.generator.Generate(count, sf)
	if err != nil {
		s.fail(err)
		return
	}

	if len(graphs) > 0 {
		s.log.Infof("Starting %d applications of subframe %d", len(graphs), sf.ID)

		if s.runtime != nil {
			err = s.runtime.StartApplications(graphs, traces)
		} else {
			err = s.startStatic(graphs, traces)
		}
		if err != nil {
			s.fail(err)
			return
		}
	}

	s.env.After(SubframePeriod, s.nextSubframe)
}

// startStatic maps every graph with the configured mapper and starts it
// right away.
func (s *Simulation) startStatic(
	graphs []*dataflow.Graph,
	traces []dataflow.Trace,
) error {
	for i, g := range graphs {
		m, err := s.mapper.GenerateMapping(g, traces[i], s.platform.Processors())
		if err != nil {
			return err
		}
		if m == nil {
			return errors.Errorf("mapper %s found no mapping for %s",
				s.cfg.Mapper, g.Name)
		}

		timeout, err := g.Timeout()
		if err != nil {
			return err
		}

		now := s.env.Now()
		deadline := now + timeout
		entry := s.stats.NewApplication(g, now, deadline)
		entry.Accepted = true

		app := system.NewApplication(g.Name, g, traces[i], s.system, deadline, entry)
		finished, err := app.Run(m)
		if err != nil {
			return err
		}
		s.finished = append(s.finished, finished)
	}

	return nil
}

func (s *Simulation) fail(err error) {
	s.log.Error(err)
	s.err = err
	if s.runtime != nil {
		s.runtime.Shutdown()
	}
}

func (s *Simulation) finish() {
	if s.runtime != nil {
		s.runtime.Shutdown()
	}

	s.env.AllOf(s.finished...).AddCallback(func(*simenv.Event) {
		s.endTime = s.env.Now()
		s.recordLoad()
		s.done = true
	})
}

// recordLoad keeps the share of the run every processor spent executing.
func (s *Simulation) recordLoad() {
	s.load = make(map[string]float64)
	loads := make([]float64, 0, len(s.system.Schedulers()))
	for _, sched := range s.system.Schedulers() {
		l := sched.Load(s.endTime)
		s.load[sched.Processor().Name] = l
		loads = append(loads, l)
	}
	s.meanLoad = stat.Mean(loads, nil)
}

// energyAt returns the energy in joules consumed until t. Dynamic energy
// only accrues from executions, which all ended by the time the simulation
// finished.
func (s *Simulation) energyAt(t sim.VTimeInSec) (static, dynamic float64) {
	_, dynamic = s.system.Energy()
	static = float64(t) * s.platform.StaticPower()
	return static, dynamic
}

// PrintSummary writes the headline numbers of a finished simulation.
func (s *Simulation) PrintSummary(w io.Writer) {
	stats := s.stats

	fmt.Fprintf(w, "Total applications: %d\n", stats.TotalApplications())
	fmt.Fprintf(w, "Total rejected: %d\n", stats.TotalRejected())

	missed := color.New(color.FgGreen)
	if stats.TotalMissed() > 0 {
		missed = color.New(color.FgRed, color.Bold)
	}
	missed.Fprintf(w, "Missed deadline: %d\n", stats.TotalMissed())

	fmt.Fprintf(w, "Total runtime manager activations: %d\n",
		stats.TotalActivations())

	mean, std := stats.SchedulingTimeStats()
	fmt.Fprintf(w, "Average scheduling time: %.6f ms (std=%.6f ms)\n",
		mean*1000, std*1000)

	fmt.Fprintf(w, "Average processor load: %.1f %%\n", s.meanLoad*100)
	fmt.Fprintf(w, "Total simulated time: %.1f ms\n", float64(s.endTime)*1e3)
}

// WriteReports dumps the statistics and the result to the files the
// configuration names.
func (s *Simulation) WriteReports() error {
	dumps := []struct {
		path string
		fn   func(io.Writer) error
	}{
		{s.cfg.StatsApplications, s.stats.DumpApplications},
		{s.cfg.StatsActivations, s.stats.DumpActivations},
		{s.cfg.Summary, s.stats.DumpSummary},
	}

	for _, d := range dumps {
		if d.path == "" {
			continue
		}
		if err := profiler.DumpFile(s.cfg.Fs, d.path, d.fn); err != nil {
			return err
		}
	}

	if s.cfg.ResultFile != "" && s.result != nil {
		return s.result.WriteFile(s.cfg.Fs, s.cfg.ResultFile)
	}

	return nil
}
