package platform

import (
	"github.com/pkg/errors"
)

// A SchedulingPolicy describes how a scheduler interleaves processes.
type SchedulingPolicy struct {
	Name string

	// SchedulingCycles is the cost of one context switch.
	SchedulingCycles float64
}

// A Scheduler is the platform-level description of a scheduler.
type Scheduler struct {
	Name       string
	Processors []*Processor
	Policy     SchedulingPolicy
}

// A Platform is a set of processors, schedulers and primitives.
type Platform struct {
	Name string

	processors            []*Processor
	schedulers            []*Scheduler
	primitives            []*Primitive
	peripheralStaticPower float64
}

// Processors returns all processors in platform order.
func (p *Platform) Processors() []*Processor {
	return p.processors
}

// Schedulers returns all schedulers in platform order.
func (p *Platform) Schedulers() []*Scheduler {
	return p.schedulers
}

// Primitives returns all communication primitives.
func (p *Platform) Primitives() []*Primitive {
	return p.primitives
}

// FindProcessor looks a processor up by name.
func (p *Platform) FindProcessor(name string) (*Processor, error) {
	for _, pe := range p.processors {
		if pe.Name == name {
			return pe, nil
		}
	}
	return nil, errors.Errorf("platform %s has no processor %s", p.Name, name)
}

// FindPrimitive looks a primitive up by name.
func (p *Platform) FindPrimitive(name string) (*Primitive, error) {
	for _, prim := range p.primitives {
		if prim.Name == name {
			return prim, nil
		}
	}
	return nil, errors.Errorf("platform %s has no primitive %s", p.Name, name)
}

// FindSchedulerForProcessor returns the scheduler owning pe, or nil.
func (p *Platform) FindSchedulerForProcessor(pe *Processor) *Scheduler {
	for _, s := range p.schedulers {
		for _, owned := range s.Processors {
			if owned == pe {
				return s
			}
		}
	}
	return nil
}

// ProcessorTypes returns the processor types in the order they first appear.
func (p *Platform) ProcessorTypes() []string {
	var types []string
	seen := make(map[string]bool)
	for _, pe := range p.processors {
		if !seen[pe.Type] {
			seen[pe.Type] = true
			types = append(types, pe.Type)
		}
	}
	return types
}

// ProcessorsOfType returns the processors of one type in platform order.
func (p *Platform) ProcessorsOfType(t string) []*Processor {
	var pes []*Processor
	for _, pe := range p.processors {
		if pe.Type == t {
			pes = append(pes, pe)
		}
	}
	return pes
}

// StaticPower is the power the platform draws regardless of load.
func (p *Platform) StaticPower() float64 {
	power := p.peripheralStaticPower
	for _, pe := range p.processors {
		power += pe.StaticPower
	}
	return power
}
