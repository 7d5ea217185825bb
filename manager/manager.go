// Package manager provides the runtime managers that admit applications to
// a running system and decide where their processes execute.
package manager

import (
	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
	"gitlab.com/akita/fivegsim/system"
)

// A RuntimeManager admits applications while the simulation runs.
type RuntimeManager interface {
	// Name returns a human readable name.
	Name() string

	// Run starts the manager. The returned event triggers after a shutdown
	// was requested and every admitted application terminated.
	Run() *simenv.Event

	// StartApplications hands over the graphs that arrived, together with
	// their traces.
	StartApplications(graphs []*dataflow.Graph, traces []dataflow.Trace) error

	// Shutdown asks the manager to stop admitting applications.
	Shutdown()
}

// base holds what all runtime managers share: the shutdown request and the
// finished events of the applications that still have to drain.
type base struct {
	system *system.System
	env    *simenv.Env
	stats  *profiler.ManagerStatistics
	log    *logrus.Entry

	shutdown *simenv.Event
	finished []*simenv.Event
	done     *simenv.Event
}

func newBase(
	sys *system.System,
	stats *profiler.ManagerStatistics,
	name string,
) base {
	return base{
		system:   sys,
		env:      sys.Env(),
		stats:    stats,
		log:      logrus.WithField("component", name),
		shutdown: sys.Env().NewEvent(),
	}
}

// Shutdown requests the manager to stop.
func (b *base) Shutdown() {
	if b.shutdown.Triggered() {
		return
	}

	b.log.Info("Shutdown requested")
	b.shutdown.Succeed(nil)
}

func (b *base) track(app *system.Application) {
	b.finished = append(b.finished, app.Finished())
}

// drain waits for all tracked applications and then triggers done.
func (b *base) drain(then func()) {
	b.env.AllOf(b.finished...).AddCallback(func(*simenv.Event) {
		if then != nil {
			then()
		}
		b.log.Info("Shutting down")
		b.done.Succeed(nil)
	})
}
