package system

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v3/sim"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/simenv"
)

// validationDeadline is long enough for any mapping of a single graph.
const validationDeadline sim.VTimeInSec = 1

// MappingSimulator measures a mapping by running its graph alone on a fresh
// instance of the platform.
type MappingSimulator struct {
	NewPlatform func() (*platform.Platform, error)
	Options     Options
}

// SimulateMapping runs the mapping and reports its execution time in
// milliseconds and its dynamic energy in millijoules.
func (v MappingSimulator) SimulateMapping(
	m *mapping.Mapping,
	trace dataflow.Trace,
) (mapping.Metadata, error) {
	p, err := v.NewPlatform()
	if err != nil {
		return mapping.Metadata{}, err
	}

	rebound, err := m.Rebind(p)
	if err != nil {
		return mapping.Metadata{}, err
	}

	opts := v.Options
	opts.Metrics = nil

	env := simenv.NewEnv(sim.NewSerialEngine())
	sys := NewSystem(env, p, opts)
	app := NewApplication(
		m.Graph.Name, m.Graph, trace, sys, validationDeadline, nil)

	if _, err = app.Run(rebound); err != nil {
		return mapping.Metadata{}, err
	}

	if err = env.Run(); err != nil {
		return mapping.Metadata{}, errors.Wrapf(err, "simulating %s", m.Graph.Name)
	}

	if app.Missed() {
		return mapping.Metadata{}, errors.Errorf(
			"mapping of %s did not finish within %.3f s",
			m.Graph.Name, float64(validationDeadline))
	}

	_, dynamic := sys.Energy()

	return mapping.Metadata{
		ExecTime: float64(app.EndTime()-app.StartTime()) * 1e3,
		Energy:   dynamic * 1e3,
	}, nil
}
