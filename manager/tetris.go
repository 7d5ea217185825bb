package manager

import (
	"sort"

	"github.com/sarchlab/akita/v3/sim"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/pareto"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
	"gitlab.com/akita/fivegsim/system"
)

// A TetrisManager admits an application only if one of its Pareto-optimal
// mappings fits before the deadline next to the applications admitted
// earlier. Among the mappings that fit it picks the one with the lowest
// energy.
type TetrisManager struct {
	base

	cache   *pareto.Cache
	metrics *profiler.Metrics

	// reservations holds the time each processor is booked until.
	reservations map[*platform.Processor]sim.VTimeInSec
}

// NewTetrisManager creates a manager that takes its candidate mappings from
// the cache.
func NewTetrisManager(
	sys *system.System,
	stats *profiler.ManagerStatistics,
	cache *pareto.Cache,
) *TetrisManager {
	return &TetrisManager{
		base:         newBase(sys, stats, "tetris"),
		cache:        cache,
		metrics:      sys.Metrics(),
		reservations: make(map[*platform.Processor]sim.VTimeInSec),
	}
}

// Name returns the manager name.
func (t *TetrisManager) Name() string {
	return "Tetris"
}

// Run starts the manager.
func (t *TetrisManager) Run() *simenv.Event {
	t.log.Info("Starting up")
	t.done = t.env.NewEvent()
	t.shutdown.AddCallback(func(*simenv.Event) {
		t.drain(nil)
	})
	return t.done
}

// StartApplications decides for every graph whether it is admitted and, if
// so, when and how it runs.
func (t *TetrisManager) StartApplications(
	graphs []*dataflow.Graph,
	traces []dataflow.Trace,
) error {
	now := t.env.Now()

	wall := profiler.NewWallTime()
	wall.Start("activation")

	activation := t.stats.NewActivation(now)
	activation.Applications = len(graphs)

	for i, g := range graphs {
		accepted, err := t.admit(g, traces[i], now)
		if err != nil {
			wall.Stop("activation")
			return err
		}
		if accepted {
			activation.Accepted++
		}
	}

	activation.SchedulingTime = wall.Stop("activation")

	return nil
}

func (t *TetrisManager) admit(
	g *dataflow.Graph,
	trace dataflow.Trace,
	now sim.VTimeInSec,
) (bool, error) {
	timeout, err := g.Timeout()
	if err != nil {
		return false, err
	}
	deadline := now + timeout
	entry := t.stats.NewApplication(g, now, deadline)

	front, err := t.cache.GetParetoFront(g, trace)
	if err != nil {
		return false, err
	}

	m, start, end := t.choose(front, now, deadline)
	if m == nil {
		entry.Accepted = false
		t.metrics.Rejections.Inc()
		t.log.Warnf("Rejecting %s, no mapping meets the deadline %.9f",
			g.Name, deadline)
		return false, nil
	}

	for _, pe := range m.Processors() {
		t.reservations[pe] = end
	}

	entry.Accepted = true
	entry.ExpectedEndTime = end

	app := system.NewApplication(g.Name, g, trace, t.system, deadline, entry)
	t.track(app)

	t.log.Debugf("Admitting %s, start %.9f, expected end %.9f, energy %.3f mJ",
		g.Name, start, end, m.Metadata.Energy)

	t.env.At(start, func() {
		if _, err := app.Run(m); err != nil {
			t.log.Panic(err)
		}
	})

	return true, nil
}

// choose returns the lowest energy mapping that finishes before the
// deadline, together with its start and expected end time.
func (t *TetrisManager) choose(
	front []*mapping.Mapping,
	now, deadline sim.VTimeInSec,
) (*mapping.Mapping, sim.VTimeInSec, sim.VTimeInSec) {
	candidates := append([]*mapping.Mapping(nil), front...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Metadata.Energy < candidates[j].Metadata.Energy
	})

	for _, m := range candidates {
		start := now
		for _, pe := range m.Processors() {
			if r := t.reservations[pe]; r > start {
				start = r
			}
		}

		end := start + sim.VTimeInSec(m.Metadata.ExecTime/1e3)
		if start < deadline && end <= deadline {
			return m, start, end
		}
	}

	return nil, 0, 0
}
