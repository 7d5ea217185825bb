// Package system models the runtime of a heterogeneous platform: one
// scheduler per processor, applications made of processes exchanging
// tokens, and the accounting of time and energy.
package system

import (
	"github.com/sarchlab/akita/v3/sim"
	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
)

// DefaultLoadHistoryLen is the number of executions a scheduler remembers.
const DefaultLoadHistoryLen = 5000

// Options configure a System.
type Options struct {
	// LoadHistoryLen bounds the executions each scheduler remembers for its
	// load estimate. Zero selects DefaultLoadHistoryLen.
	LoadHistoryLen int

	// Metrics receives the runtime counters. Nil creates a private set.
	Metrics *profiler.Metrics
}

// A System is a platform instance brought to life in a simulation.
type System struct {
	env      *simenv.Env
	platform *platform.Platform
	metrics  *profiler.Metrics
	log      *logrus.Entry

	schedulers []*Scheduler
	byPE       map[*platform.Processor]*Scheduler
}

// NewSystem creates one runtime scheduler per scheduler of the platform.
func NewSystem(
	env *simenv.Env,
	p *platform.Platform,
	opts Options,
) *System {
	if opts.LoadHistoryLen <= 0 {
		opts.LoadHistoryLen = DefaultLoadHistoryLen
	}
	if opts.Metrics == nil {
		opts.Metrics = profiler.NewMetrics()
	}

	s := &System{
		env:      env,
		platform: p,
		metrics:  opts.Metrics,
		log:      logrus.WithField("component", "system"),
		byPE:     make(map[*platform.Processor]*Scheduler),
	}

	for _, desc := range p.Schedulers() {
		if len(desc.Processors) != 1 {
			s.log.Panicf("scheduler %s must own exactly one processor", desc.Name)
		}

		sched := newScheduler(env, desc, opts.LoadHistoryLen)
		s.schedulers = append(s.schedulers, sched)
		s.byPE[desc.Processors[0]] = sched
	}

	return s
}

// Env returns the simulation environment.
func (s *System) Env() *simenv.Env {
	return s.env
}

// Platform returns the platform the system instantiates.
func (s *System) Platform() *platform.Platform {
	return s.platform
}

// Metrics returns the runtime counters.
func (s *System) Metrics() *profiler.Metrics {
	return s.metrics
}

// Schedulers returns the runtime schedulers in platform order.
func (s *System) Schedulers() []*Scheduler {
	return s.schedulers
}

// SchedulerFor returns the scheduler of a processor, or nil.
func (s *System) SchedulerFor(pe *platform.Processor) *Scheduler {
	return s.byPE[pe]
}

// MoveProcess migrates a ready process from one scheduler to another and
// records the new placement in its application.
func (s *System) MoveProcess(p *Process, from, to *Scheduler) {
	if p.state != Ready || p.scheduler != from {
		s.log.Panicf("cannot move %s: it is %s and not ready on %s",
			p.name, p.state, from.name)
	}

	from.Remove(p)
	p.app.SetProcessor(p.name, to.processor)
	to.Enqueue(p)

	s.log.Debugf("moved %s of %s from %s to %s",
		p.name, p.app.name, from.processor.Name, to.processor.Name)
}

// Energy returns the energy spent so far, in joules. Static energy is the
// platform static power over the simulated time. Dynamic energy is the busy
// time of every processor times its dynamic power.
func (s *System) Energy() (static, dynamic float64) {
	now := s.env.Now()
	static = float64(now) * s.platform.StaticPower()

	for _, sched := range s.schedulers {
		busy := sched.busyTime
		if sched.current != nil {
			busy += now - sched.runStart
		}
		dynamic += float64(busy) * sched.processor.DynamicPower
	}

	return static, dynamic
}

// BusyTime returns the summed busy time of all processors.
func (s *System) BusyTime() sim.VTimeInSec {
	total := sim.VTimeInSec(0)
	for _, sched := range s.schedulers {
		total += sched.busyTime
	}
	return total
}
