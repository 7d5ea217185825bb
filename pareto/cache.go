// Package pareto caches the Pareto fronts of graphs by workload shape.
package pareto

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/profiler"
)

// Config controls how fronts are produced.
type Config struct {
	// MetadataSimulate replaces the estimates of the generator with the
	// result of simulating every mapping.
	MetadataSimulate bool

	// Execution times are corrected to ExecTime*TimeScale + TimeOffset.
	TimeScale  float64
	TimeOffset float64
}

// A Generator explores the time/energy trade-off of a graph.
type Generator interface {
	GenerateParetoFront(
		g *dataflow.Graph,
		trace dataflow.Trace,
	) ([]*mapping.Mapping, error)
}

// A Validator measures a mapping by running it.
type Validator interface {
	SimulateMapping(
		m *mapping.Mapping,
		trace dataflow.Trace,
	) (mapping.Metadata, error)
}

// Signature identifies graphs that share their structure and cost.
func Signature(g *dataflow.Graph) string {
	return fmt.Sprintf("fiveg_prbs%d_mod%d_lay%d", g.PRBs, g.Mod, g.Layers)
}

// A Cache remembers the front of every signature it has seen.
type Cache struct {
	cfg       Config
	generator Generator
	validator Validator
	metrics   *profiler.Metrics
	log       *logrus.Entry

	entries map[string][]*mapping.Mapping
}

// NewCache creates a cache. The validator may be nil unless
// cfg.MetadataSimulate is set.
func NewCache(
	cfg Config,
	generator Generator,
	validator Validator,
	metrics *profiler.Metrics,
) (*Cache, error) {
	if cfg.MetadataSimulate && validator == nil {
		return nil, errors.New("simulating metadata requires a validator")
	}

	return &Cache{
		cfg:       cfg,
		generator: generator,
		validator: validator,
		metrics:   metrics,
		log:       logrus.WithField("component", "pareto_cache"),
		entries:   make(map[string][]*mapping.Mapping),
	}, nil
}

// GetParetoFront returns the front of g. The returned mappings belong to
// the caller and refer to g.
func (c *Cache) GetParetoFront(
	g *dataflow.Graph,
	trace dataflow.Trace,
) ([]*mapping.Mapping, error) {
	sig := Signature(g)

	if cached, found := c.entries[sig]; found {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()

		front := make([]*mapping.Mapping, 0, len(cached))
		for _, m := range cached {
			front = append(front, m.Clone(g))
		}
		return front, nil
	}

	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	front, err := c.generate(g, trace)
	if err != nil {
		return nil, errors.Wrapf(err, "generating the Pareto front of %s", sig)
	}

	stored := make([]*mapping.Mapping, 0, len(front))
	for _, m := range front {
		stored = append(stored, m.Clone(g))
	}
	c.entries[sig] = stored

	c.log.Debugf("cached %d mappings for %s", len(front), sig)

	return front, nil
}

func (c *Cache) generate(
	g *dataflow.Graph,
	trace dataflow.Trace,
) ([]*mapping.Mapping, error) {
	front, err := c.generator.GenerateParetoFront(g, trace)
	if err != nil {
		return nil, err
	}

	if c.cfg.MetadataSimulate {
		for _, m := range front {
			md, err := c.validator.SimulateMapping(m, trace)
			if err != nil {
				return nil, err
			}
			m.Metadata = md
		}
	}

	for _, m := range front {
		m.Metadata.ExecTime = m.Metadata.ExecTime*c.cfg.TimeScale + c.cfg.TimeOffset
	}

	return front, nil
}

// Len returns the number of cached signatures.
func (c *Cache) Len() int {
	return len(c.entries)
}
