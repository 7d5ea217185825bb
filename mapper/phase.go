package mapper

import (
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
)

// PhaseMapper balances the lanes of each phase over the regular cores and
// then offloads subkernels to accelerators as long as the accelerators do
// not become the bottleneck.
type PhaseMapper struct {
	platform   *platform.Platform
	com        mapping.ComMapper
	maxExclude int
	log        *logrus.Entry
}

// NewPhaseMapper creates a phase mapper.
func NewPhaseMapper(p *platform.Platform, opts Options) *PhaseMapper {
	return &PhaseMapper{
		platform:   p,
		com:        mapping.ComMapper{Capacity: opts.ChannelCapacity},
		maxExclude: opts.MaxExcludePerType,
		log:        logrus.WithField("component", "phase_mapper"),
	}
}

// processorTimes is the busy time of processors in seconds. The order
// slice fixes the iteration order for deterministic tie-breaking.
type processorTimes struct {
	order []*platform.Processor
	time  map[*platform.Processor]float64
}

func newProcessorTimes(pes []*platform.Processor) *processorTimes {
	t := &processorTimes{time: make(map[*platform.Processor]float64)}
	for _, pe := range pes {
		t.add(pe, 0)
	}
	return t
}

func (t *processorTimes) add(pe *platform.Processor, d float64) {
	if _, found := t.time[pe]; !found {
		t.order = append(t.order, pe)
	}
	t.time[pe] += d
}

func (t *processorTimes) clone() *processorTimes {
	c := &processorTimes{
		order: append([]*platform.Processor(nil), t.order...),
		time:  make(map[*platform.Processor]float64, len(t.time)),
	}
	for pe, v := range t.time {
		c.time[pe] = v
	}
	return c
}

// argMax returns the first processor among candidates with the largest time.
func (t *processorTimes) argMax(candidates []*platform.Processor) *platform.Processor {
	var best *platform.Processor
	for _, pe := range candidates {
		if best == nil || t.time[pe] > t.time[best] {
			best = pe
		}
	}
	return best
}

// argMin returns the first processor among candidates with the smallest time.
func (t *processorTimes) argMin(candidates []*platform.Processor) *platform.Processor {
	var best *platform.Processor
	for _, pe := range candidates {
		if best == nil || t.time[pe] < t.time[best] {
			best = pe
		}
	}
	return best
}

func (t *processorTimes) max() float64 {
	if len(t.order) == 0 {
		return 0
	}
	return t.time[t.argMax(t.order)]
}

// GenerateMapping maps the graph phase by phase.
func (m *PhaseMapper) GenerateMapping(
	g *dataflow.Graph,
	trace dataflow.Trace,
	processors []*platform.Processor,
) (*mapping.Mapping, error) {
	regular, _ := splitProcessors(processors)
	if len(regular) == 0 {
		return nil, nil
	}

	assignment := make(map[string]*platform.Processor)
	execTime := 0.0
	energy := 0.0

	for _, phase := range g.Structure {
		t, e, err := m.mapPhase(g, trace, assignment, phase, processors)
		if err != nil {
			return nil, err
		}
		execTime += t
		energy += e
	}

	mp := mapping.New(g, m.platform)
	for _, proc := range g.Processes() {
		pe, found := assignment[proc.Name]
		if !found {
			m.log.Panicf("process %s of %s is in no phase", proc.Name, g.Name)
		}

		mp.AddProcessInfo(proc.Name, mapping.ProcessInfo{
			Scheduler: m.platform.FindSchedulerForProcessor(pe),
			Processor: pe,
		})
	}

	if err := m.com.Complete(mp); err != nil {
		return nil, err
	}

	mp.Metadata.ExecTime = execTime * 1e3
	mp.Metadata.Energy = energy * 1e3

	m.log.Debugf("mapped %s on %d processors: %.6f ms, %.6f mJ",
		g.Name, len(processors), mp.Metadata.ExecTime, mp.Metadata.Energy)

	return mp, nil
}

// phaseCycles sums the cycles of one lane of the given subkernels.
func phaseCycles(trace dataflow.Trace, subkernels []string) (map[string]float64, error) {
	total := make(map[string]float64)
	for _, sk := range subkernels {
		cycles, err := trace.AccumulateProcessorCycles(dataflow.LaneProcessName(sk, 0))
		if err != nil {
			return nil, err
		}
		for t, c := range cycles {
			total[t] += c
		}
	}
	return total, nil
}

// mapPhase assigns the lanes of one phase and returns the execution time in
// seconds and the dynamic energy in joules of the phase.
func (m *PhaseMapper) mapPhase(
	g *dataflow.Graph,
	trace dataflow.Trace,
	assignment map[string]*platform.Processor,
	phase dataflow.Phase,
	processors []*platform.Processor,
) (float64, float64, error) {
	regular, accelerators := splitProcessors(processors)
	times := newProcessorTimes(regular)

	cycles, err := phaseCycles(trace, phase.Subkernels)
	if err != nil {
		return 0, 0, err
	}

	laneTime := make(map[*platform.Processor]float64, len(regular))
	for _, pe := range regular {
		c := cycles[pe.Type]
		if s := m.platform.FindSchedulerForProcessor(pe); s != nil {
			c += s.Policy.SchedulingCycles * float64(len(phase.Subkernels))
		}
		laneTime[pe] = float64(pe.Ticks(c))
	}

	lanes := make(map[*platform.Processor]int, len(regular))
	for i := 0; i < phase.NumInstances; i++ {
		var best *platform.Processor
		for _, pe := range regular {
			if best == nil ||
				times.time[pe]+laneTime[pe] < times.time[best]+laneTime[best] {
				best = pe
			}
		}
		lanes[best]++
		times.add(best, laneTime[best])
	}

	lane := 0
	for _, pe := range regular {
		for n := 0; n < lanes[pe]; n++ {
			for _, sk := range phase.Subkernels {
				assignment[dataflow.LaneProcessName(sk, lane)] = pe
			}
			lane++
		}
	}
	if lane != phase.NumInstances {
		m.log.Panicf("assigned %d of %d lanes of phase %s",
			lane, phase.NumInstances, phase.Name)
	}

	if len(accelerators) > 0 {
		accType := accelerators[0].Type
		for _, acc := range accelerators {
			if acc.Type != accType {
				m.log.Panicf("accelerators %s and %s have different types",
					accelerators[0].Name, acc.Name)
			}
		}

		kernels := sets.New[string](accelerators[0].AcceleratorKernels()...)
		if kernels.HasAny(phase.Subkernels...) {
			err := m.remapAccelerators(trace, assignment, phase,
				regular, accelerators, kernels, times)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	energy := 0.0
	for _, pe := range regular {
		energy += times.time[pe] * pe.DynamicPower
	}

	return times.max(), energy, nil
}

// remapAccelerators moves lanes of the offloadable subkernels from the most
// loaded regular core to the least loaded accelerator, one at a time, until
// a move would make an accelerator the most loaded processor.
func (m *PhaseMapper) remapAccelerators(
	trace dataflow.Trace,
	assignment map[string]*platform.Processor,
	phase dataflow.Phase,
	regular, accelerators []*platform.Processor,
	kernels sets.Set[string],
	times *processorTimes,
) error {
	// The accelerators idle while the subkernels before the first
	// offloadable one run.
	offset := 0.0
	for _, sk := range phase.Subkernels {
		if kernels.Has(sk) {
			break
		}

		cycles, err := trace.AccumulateProcessorCycles(dataflow.LaneProcessName(sk, 0))
		if err != nil {
			return err
		}

		fastest := -1.0
		for _, pe := range regular {
			t := float64(pe.Ticks(cycles[pe.Type]))
			if fastest < 0 || t < fastest {
				fastest = t
			}
		}
		offset += fastest
	}

	for _, acc := range accelerators {
		times.add(acc, 0)
		times.time[acc] = offset
	}

	all := append(append([]*platform.Processor(nil), regular...), accelerators...)

	for _, sk := range phase.Subkernels {
		if !kernels.Has(sk) {
			continue
		}

		cycles, err := trace.AccumulateProcessorCycles(dataflow.LaneProcessName(sk, 0))
		if err != nil {
			return err
		}

		instances := make(map[*platform.Processor][]string)
		for i := 0; i < phase.NumInstances; i++ {
			name := dataflow.LaneProcessName(sk, i)
			pe := assignment[name]
			instances[pe] = append(instances[pe], name)
		}

		skTime := make(map[*platform.Processor]float64, len(all))
		for _, pe := range all {
			skTime[pe] = float64(pe.Ticks(cycles[pe.Type]))
		}

		for {
			var holding []*platform.Processor
			for _, pe := range regular {
				if len(instances[pe]) > 0 {
					holding = append(holding, pe)
				}
			}
			if len(holding) == 0 {
				break
			}

			from := times.argMax(holding)
			to := times.argMin(accelerators)

			moved := times.clone()
			moved.time[from] -= skTime[from]
			moved.time[to] += skTime[to]
			if moved.argMax(moved.order).IsAccelerator() {
				break
			}

			times.time[from] -= skTime[from]
			times.time[to] += skTime[to]

			last := len(instances[from]) - 1
			name := instances[from][last]
			instances[from] = instances[from][:last]
			instances[to] = append(instances[to], name)
			assignment[name] = to
		}
	}

	return nil
}

// GenerateParetoFront maps the graph once per exclusion set and keeps the
// mappings no other mapping beats in both time and energy.
func (m *PhaseMapper) GenerateParetoFront(
	g *dataflow.Graph,
	trace dataflow.Trace,
) ([]*mapping.Mapping, error) {
	var candidates []*mapping.Mapping

	for _, excluded := range ExclusionSets(m.platform, m.maxExclude) {
		var processors []*platform.Processor
		for _, pe := range m.platform.Processors() {
			if !excluded.Has(pe.Name) {
				processors = append(processors, pe)
			}
		}

		mp, err := m.GenerateMapping(g, trace, processors)
		if err != nil {
			return nil, err
		}
		if mp == nil {
			continue
		}

		candidates = append(candidates, mp)
	}

	return ParetoFilter(candidates), nil
}
