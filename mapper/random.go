package mapper

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
)

// RandomMapper places every process on a random processor that can run it.
type RandomMapper struct {
	platform *platform.Platform
	rng      *rand.Rand
	com      mapping.ComMapper
	log      *logrus.Entry
}

// NewRandomMapper creates a random mapper seeded with opts.Seed.
func NewRandomMapper(p *platform.Platform, opts Options) *RandomMapper {
	return &RandomMapper{
		platform: p,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		com:      mapping.ComMapper{Capacity: opts.ChannelCapacity},
		log:      logrus.WithField("component", "random_mapper"),
	}
}

// GenerateMapping draws a placement for every process.
func (m *RandomMapper) GenerateMapping(
	g *dataflow.Graph,
	trace dataflow.Trace,
	processors []*platform.Processor,
) (*mapping.Mapping, error) {
	regular, accelerators := splitProcessors(processors)
	if len(regular) == 0 {
		return nil, nil
	}

	mp := mapping.New(g, m.platform)
	for _, proc := range g.Processes() {
		candidates := append([]*platform.Processor(nil), regular...)
		for _, acc := range accelerators {
			if acc.Supports(proc.Name) {
				candidates = append(candidates, acc)
			}
		}

		pe := candidates[m.rng.Intn(len(candidates))]
		mp.AddProcessInfo(proc.Name, mapping.ProcessInfo{
			Scheduler: m.platform.FindSchedulerForProcessor(pe),
			Processor: pe,
		})
	}

	if err := m.com.Complete(mp); err != nil {
		return nil, err
	}

	m.log.Debugf("randomly mapped %s", g.Name)

	return mp, nil
}
