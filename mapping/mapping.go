// Package mapping defines where the processes and channels of a dataflow
// graph are placed on a platform.
package mapping

import (
	"github.com/pkg/errors"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/platform"
)

// ProcessInfo places a process.
type ProcessInfo struct {
	Scheduler *platform.Scheduler
	Processor *platform.Processor
	Priority  int
}

// ChannelInfo places a channel.
type ChannelInfo struct {
	Primitive *platform.Primitive
	// Capacity is the queue depth in tokens. It is part of the mapping
	// output only, the runtime does not apply backpressure.
	Capacity int
}

// Metadata holds the estimated cost of a mapping. ExecTime is in
// milliseconds and Energy in millijoules.
type Metadata struct {
	ExecTime float64
	Energy   float64
}

// A Mapping places a graph on a platform.
type Mapping struct {
	Graph    *dataflow.Graph
	Platform *platform.Platform
	Metadata Metadata

	processInfo map[string]ProcessInfo
	channelInfo map[string]ChannelInfo
}

// New creates an empty mapping.
func New(g *dataflow.Graph, p *platform.Platform) *Mapping {
	return &Mapping{
		Graph:       g,
		Platform:    p,
		processInfo: make(map[string]ProcessInfo),
		channelInfo: make(map[string]ChannelInfo),
	}
}

// AddProcessInfo places a process, replacing any previous placement.
func (m *Mapping) AddProcessInfo(process string, info ProcessInfo) {
	m.processInfo[process] = info
}

// AddChannelInfo places a channel, replacing any previous placement.
func (m *Mapping) AddChannelInfo(channel string, info ChannelInfo) {
	m.channelInfo[channel] = info
}

// ProcessInfo returns the placement of a process.
func (m *Mapping) ProcessInfo(process string) (ProcessInfo, error) {
	info, found := m.processInfo[process]
	if !found {
		return ProcessInfo{}, errors.Errorf(
			"mapping of %s does not place process %s", m.Graph.Name, process)
	}
	return info, nil
}

// ChannelInfo returns the placement of a channel.
func (m *Mapping) ChannelInfo(channel string) (ChannelInfo, error) {
	info, found := m.channelInfo[channel]
	if !found {
		return ChannelInfo{}, errors.Errorf(
			"mapping of %s does not place channel %s", m.Graph.Name, channel)
	}
	return info, nil
}

// HasChannelInfo tells if the channel is already placed.
func (m *Mapping) HasChannelInfo(channel string) bool {
	_, found := m.channelInfo[channel]
	return found
}

// Processors returns the processors used by the mapping, in platform order.
func (m *Mapping) Processors() []*platform.Processor {
	used := make(map[*platform.Processor]bool)
	for _, info := range m.processInfo {
		used[info.Processor] = true
	}

	var pes []*platform.Processor
	for _, pe := range m.Platform.Processors() {
		if used[pe] {
			pes = append(pes, pe)
		}
	}
	return pes
}

// Clone copies the mapping and points the copy at g, which must have the
// same process and channel names as the mapped graph.
func (m *Mapping) Clone(g *dataflow.Graph) *Mapping {
	c := New(g, m.Platform)
	c.Metadata = m.Metadata

	for k, v := range m.processInfo {
		c.processInfo[k] = v
	}
	for k, v := range m.channelInfo {
		c.channelInfo[k] = v
	}

	return c
}

// Rebind copies the mapping onto another instance of the platform,
// resolving processors, schedulers and primitives by name.
func (m *Mapping) Rebind(p *platform.Platform) (*Mapping, error) {
	c := New(m.Graph, p)
	c.Metadata = m.Metadata

	for name, info := range m.processInfo {
		pe, err := p.FindProcessor(info.Processor.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "rebinding process %s", name)
		}

		c.processInfo[name] = ProcessInfo{
			Scheduler: p.FindSchedulerForProcessor(pe),
			Processor: pe,
			Priority:  info.Priority,
		}
	}

	for name, info := range m.channelInfo {
		prim, err := p.FindPrimitive(info.Primitive.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "rebinding channel %s", name)
		}

		c.channelInfo[name] = ChannelInfo{Primitive: prim, Capacity: info.Capacity}
	}

	return c, nil
}
