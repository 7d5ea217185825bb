// Package mapper generates static mappings of dataflow graphs.
package mapper

import (
	"sort"

	"github.com/pkg/errors"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
)

// A Mapper maps a graph onto a subset of the processors of its platform.
type Mapper interface {
	// GenerateMapping returns nil without an error if the processors
	// cannot run the graph.
	GenerateMapping(
		g *dataflow.Graph,
		trace dataflow.Trace,
		processors []*platform.Processor,
	) (*mapping.Mapping, error)
}

// A ParetoMapper can also explore the time/energy trade-off of a graph.
type ParetoMapper interface {
	Mapper

	GenerateParetoFront(
		g *dataflow.Graph,
		trace dataflow.Trace,
	) ([]*mapping.Mapping, error)
}

// Options configure the mappers created by the registry.
type Options struct {
	// Seed initializes the random mapper.
	Seed int64

	// MaxExcludePerType bounds how many processors of a type may be
	// excluded when exploring the Pareto front. Zero means no bound.
	MaxExcludePerType int

	// ChannelCapacity is the queue depth of mapped channels.
	ChannelCapacity int
}

// A Factory creates a mapper for a platform.
type Factory func(p *platform.Platform, opts Options) Mapper

var registry = map[string]Factory{
	"fiveg": func(p *platform.Platform, opts Options) Mapper {
		return NewPhaseMapper(p, opts)
	},
	"random": func(p *platform.Platform, opts Options) Mapper {
		return NewRandomMapper(p, opts)
	},
}

// New creates the mapper registered under name.
func New(name string, p *platform.Platform, opts Options) (Mapper, error) {
	f, found := registry[name]
	if !found {
		return nil, errors.Errorf("unknown mapper %q, available: %v",
			name, Names())
	}
	return f(p, opts), nil
}

// Names lists the registered mappers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func splitProcessors(
	processors []*platform.Processor,
) (regular, accelerators []*platform.Processor) {
	for _, pe := range processors {
		if pe.IsAccelerator() {
			accelerators = append(accelerators, pe)
		} else {
			regular = append(regular, pe)
		}
	}
	return regular, accelerators
}
