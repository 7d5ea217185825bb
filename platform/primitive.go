package platform

import (
	"math"

	"github.com/sarchlab/akita/v3/sim"
	"k8s.io/apimachinery/pkg/util/sets"
)

// A Primitive is a way for two processors to exchange tokens, typically
// through a shared cache level or memory.
type Primitive struct {
	Name string

	members    sets.Set[string]
	latency    float64 // cycles for one write plus one read
	throughput float64 // bytes per cycle
	freq       sim.Freq
}

// NewPrimitive creates a primitive shared by the given processors.
func NewPrimitive(
	name string,
	processors []*Processor,
	readLatency, writeLatency float64,
	throughput float64,
	freq sim.Freq,
) *Primitive {
	members := sets.New[string]()
	for _, p := range processors {
		members.Insert(p.Name)
	}

	return &Primitive{
		Name:       name,
		members:    members,
		latency:    readLatency + writeLatency,
		throughput: throughput,
		freq:       freq,
	}
}

// IsSuitable tells if the primitive connects src with all sinks.
func (p *Primitive) IsSuitable(src *Processor, sinks []*Processor) bool {
	if !p.members.Has(src.Name) {
		return false
	}

	for _, s := range sinks {
		if !p.members.Has(s.Name) {
			return false
		}
	}

	return true
}

// StaticCost is the fixed time a token needs to get from src to sink,
// independent of its size.
func (p *Primitive) StaticCost(src, sink *Processor) sim.VTimeInSec {
	return sim.VTimeInSec(p.latency / float64(p.freq))
}

// TransferTime is the time a token of the given size spends on the
// primitive.
func (p *Primitive) TransferTime(bytes float64) sim.VTimeInSec {
	cycles := p.latency + math.Ceil(bytes/p.throughput)
	return sim.VTimeInSec(cycles / float64(p.freq))
}
