package system

import (
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v3/sim"
	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
)

// An Application is the runtime instance of a dataflow graph. It runs until
// all its processes finished or until its deadline, whichever comes first.
type Application struct {
	name     string
	graph    *dataflow.Graph
	trace    dataflow.Trace
	system   *System
	deadline sim.VTimeInSec
	stats    *profiler.ApplicationEntry
	log      *logrus.Entry

	processes   map[string]*Process
	processorOf map[string]*platform.Processor
	primitives  map[string]*platform.Primitive

	remaining int
	allDone   *simenv.Event
	finished  *simenv.Event

	started bool
	killed  bool
	missed  bool
	start   sim.VTimeInSec
	end     sim.VTimeInSec
}

// NewApplication creates an application. A deadline of zero or less is
// derived from the criticality of the graph when the application starts.
// The statistics entry may be nil.
func NewApplication(
	name string,
	g *dataflow.Graph,
	trace dataflow.Trace,
	system *System,
	deadline sim.VTimeInSec,
	stats *profiler.ApplicationEntry,
) *Application {
	uid := xid.New().String()
	return &Application{
		name:        name,
		graph:       g,
		trace:       trace,
		system:      system,
		deadline:    deadline,
		stats:       stats,
		log:         logrus.WithFields(logrus.Fields{"component": "app", "app": name, "uid": uid}),
		processes:   make(map[string]*Process),
		processorOf: make(map[string]*platform.Processor),
		primitives:  make(map[string]*platform.Primitive),
		finished:    system.env.NewEvent(),
	}
}

// Name returns the application name.
func (a *Application) Name() string {
	return a.name
}

// Graph returns the graph the application runs.
func (a *Application) Graph() *dataflow.Graph {
	return a.graph
}

// Deadline returns the absolute deadline.
func (a *Application) Deadline() sim.VTimeInSec {
	return a.deadline
}

// Finished returns the event that triggers when the application terminated,
// either because all processes finished or because it was killed.
func (a *Application) Finished() *simenv.Event {
	return a.finished
}

// IsFinished tells if the application terminated.
func (a *Application) IsFinished() bool {
	return a.finished.Triggered()
}

// Missed tells if the application was killed at its deadline.
func (a *Application) Missed() bool {
	return a.missed
}

// StartTime returns when the application started.
func (a *Application) StartTime() sim.VTimeInSec {
	return a.start
}

// EndTime returns when the application terminated.
func (a *Application) EndTime() sim.VTimeInSec {
	return a.end
}

// Process returns a runtime process by name, or nil.
func (a *Application) Process(name string) *Process {
	return a.processes[name]
}

// ProcessorOf returns the processor a process is currently placed on.
func (a *Application) ProcessorOf(process string) *platform.Processor {
	return a.processorOf[process]
}

// SetProcessor places a process on another processor. Tokens that make the
// process ready afterwards enqueue it there.
func (a *Application) SetProcessor(process string, pe *platform.Processor) {
	a.processorOf[process] = pe
}

// ChannelsTouching returns the channels the process reads or writes.
func (a *Application) ChannelsTouching(process string) ([]*dataflow.Channel, error) {
	return a.graph.ChannelsTouching(process)
}

// Primitive returns the primitive a channel currently uses.
func (a *Application) Primitive(channel string) *platform.Primitive {
	return a.primitives[channel]
}

// SetPrimitive changes the primitive of a channel. Tokens written afterwards
// use the new primitive.
func (a *Application) SetPrimitive(channel string, prim *platform.Primitive) {
	a.primitives[channel] = prim
}

// Run starts the application with the given mapping and returns the event
// that triggers when the application terminates.
func (a *Application) Run(m *mapping.Mapping) (*simenv.Event, error) {
	if a.started {
		return nil, errors.Errorf("application %s has already started", a.name)
	}

	env := a.system.env
	a.start = env.Now()

	if a.deadline <= 0 {
		timeout, err := a.graph.Timeout()
		if err != nil {
			return nil, err
		}
		a.deadline = a.start + timeout
	}

	timeout := a.deadline - a.start
	if timeout <= 0 {
		a.log.Panicf("deadline %.9f is not after the start %.9f", a.deadline, a.start)
	}

	if err := a.instantiate(m); err != nil {
		return nil, err
	}
	a.started = true

	a.log.Infof("starting at %.9f, deadline %.9f", a.start, a.deadline)

	a.allDone = env.NewEvent()
	if a.remaining == 0 {
		a.allDone.Succeed(nil)
	}

	for _, proc := range a.graph.Processes() {
		p := a.processes[proc.Name]
		if p.pendingInputs == 0 {
			a.processReady(p)
		}
	}

	race := env.AnyOf(a.allDone, env.Timeout(timeout))
	race.AddCallback(func(*simenv.Event) { a.terminate() })

	return a.finished, nil
}

func (a *Application) instantiate(m *mapping.Mapping) error {
	for _, proc := range a.graph.Processes() {
		info, err := m.ProcessInfo(proc.Name)
		if err != nil {
			return err
		}

		cycles, err := a.trace.AccumulateProcessorCycles(proc.Name)
		if err != nil {
			return errors.Wrapf(err, "application %s", a.name)
		}

		a.processorOf[proc.Name] = info.Processor
		a.processes[proc.Name] = &Process{
			name:          proc.Name,
			app:           a,
			priority:      info.Priority,
			cycles:        cycles,
			pendingInputs: len(proc.InputNames()),
			outputs:       proc.OutputNames(),
		}
	}

	for _, ch := range a.graph.Channels() {
		info, err := m.ChannelInfo(ch.Name)
		if err != nil {
			return err
		}
		a.primitives[ch.Name] = info.Primitive
	}

	a.remaining = len(a.processes)

	return nil
}

func (a *Application) processReady(p *Process) {
	s := a.system.SchedulerFor(a.processorOf[p.name])
	if s == nil {
		a.log.Panicf("processor %s of %s has no scheduler",
			a.processorOf[p.name].Name, p.name)
	}
	s.Enqueue(p)
}

func (a *Application) processFinished(p *Process) {
	env := a.system.env

	for _, name := range p.outputs {
		ch, err := a.graph.FindChannel(name)
		if err != nil {
			a.log.Panic(err)
		}

		delay := a.primitives[name].TransferTime(ch.TokenSize)
		for _, sink := range ch.Sinks() {
			sinkProcess := a.processes[sink]
			env.After(delay, func() {
				if !a.killed {
					sinkProcess.receive()
				}
			})
		}
	}

	a.remaining--
	if a.remaining == 0 {
		a.allDone.Succeed(nil)
	}
}

func (a *Application) terminate() {
	a.end = a.system.env.Now()

	if !a.allDone.Triggered() {
		a.Kill()
		a.missed = true
		a.system.metrics.DeadlineMisses.Inc()
		a.log.Infof("killed at the deadline")
	} else {
		a.log.Infof("finished at %.9f", a.end)
	}

	if a.stats != nil {
		a.stats.StartTime = a.start
		a.stats.EndTime = a.end
		a.stats.DeadlineMiss = a.missed
	}

	a.finished.Succeed(a)
}

// Kill stops all processes that did not finish yet.
func (a *Application) Kill() {
	a.killed = true

	for _, proc := range a.graph.Processes() {
		p := a.processes[proc.Name]
		switch p.state {
		case Ready:
			p.scheduler.Remove(p)
		case Running:
			p.scheduler.Abort(p)
		case Finished, Killed:
			continue
		}
		p.state = Killed
	}
}
