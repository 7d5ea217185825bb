package mapping

import (
	"github.com/pkg/errors"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/platform"
)

// DefaultChannelCapacity is the queue depth given to mapped channels.
const DefaultChannelCapacity = 16

// BestPrimitive returns the cheapest primitive that connects src with all
// sinks.
func BestPrimitive(
	p *platform.Platform,
	src *platform.Processor,
	sinks ...*platform.Processor,
) (*platform.Primitive, error) {
	var best *platform.Primitive
	var bestCost float64

	for _, prim := range p.Primitives() {
		if !prim.IsSuitable(src, sinks) {
			continue
		}

		cost := 0.0
		for _, sink := range sinks {
			if c := float64(prim.StaticCost(src, sink)); c > cost {
				cost = c
			}
		}

		if best == nil || cost < bestCost {
			best = prim
			bestCost = cost
		}
	}

	if best == nil {
		return nil, errors.Errorf("no primitive connects %s", src.Name)
	}

	return best, nil
}

// A ComMapper completes mappings that only place processes by choosing the
// best primitive for every channel.
type ComMapper struct {
	Capacity int
}

// Complete places all channels of m that are not placed yet.
func (c ComMapper) Complete(m *Mapping) error {
	capacity := c.Capacity
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}

	for _, ch := range m.Graph.Channels() {
		if m.HasChannelInfo(ch.Name) {
			continue
		}

		src, err := m.ProcessInfo(ch.Source())
		if err != nil {
			return err
		}

		sinks := make([]*platform.Processor, 0, len(ch.Sinks()))
		for _, s := range ch.Sinks() {
			info, err := m.ProcessInfo(s)
			if err != nil {
				return err
			}
			sinks = append(sinks, info.Processor)
		}

		prim, err := BestPrimitive(m.Platform, src.Processor, sinks...)
		if err != nil {
			return errors.Wrapf(err, "channel %s", ch.Name)
		}

		m.AddChannelInfo(ch.Name, ChannelInfo{Primitive: prim, Capacity: capacity})
	}

	return nil
}

// SingleCore maps every process of g to pe.
func SingleCore(
	g *dataflow.Graph,
	p *platform.Platform,
	pe *platform.Processor,
	capacity int,
) (*Mapping, error) {
	m := New(g, p)

	scheduler := p.FindSchedulerForProcessor(pe)
	if scheduler == nil {
		return nil, errors.Errorf("processor %s has no scheduler", pe.Name)
	}

	for _, proc := range g.Processes() {
		m.AddProcessInfo(proc.Name, ProcessInfo{Scheduler: scheduler, Processor: pe})
	}

	prim, err := BestPrimitive(p, pe, pe)
	if err != nil {
		return nil, err
	}

	for _, ch := range g.Channels() {
		m.AddChannelInfo(ch.Name, ChannelInfo{Primitive: prim, Capacity: capacity})
	}

	return m, nil
}
