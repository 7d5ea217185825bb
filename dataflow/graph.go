// Package dataflow defines the dataflow graphs the simulated applications
// are built from.
package dataflow

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v3/sim"
)

// A Phase is a group of identical lanes. Each lane runs the subkernels as a
// linear chain of processes.
type Phase struct {
	Name         string
	NumInstances int
	Subkernels   []string
}

// Workload describes the shape of the data a graph processes.
type Workload struct {
	PRBs        int
	Mod         int
	Layers      int
	Criticality int
}

// A Process is a node of the graph. It only knows its channels by name.
type Process struct {
	Name string

	inputs  []string
	outputs []string
}

// InputNames returns the names of the channels the process reads from.
func (p *Process) InputNames() []string {
	return p.inputs
}

// OutputNames returns the names of the channels the process writes to.
func (p *Process) OutputNames() []string {
	return p.outputs
}

// A Channel carries tokens from one source process to its sinks.
type Channel struct {
	Name      string
	TokenSize float64

	source string
	sinks  []string
}

// Source returns the name of the writing process.
func (c *Channel) Source() string {
	return c.source
}

// Sinks returns the names of the reading processes.
func (c *Channel) Sinks() []string {
	return c.sinks
}

// A Graph is a dataflow application.
type Graph struct {
	Name      string
	Structure []Phase
	Workload

	processes    []*Process
	channels     []*Channel
	processIndex map[string]*Process
	channelIndex map[string]*Channel
}

// NewGraph creates an empty graph.
func NewGraph(name string, w Workload) *Graph {
	return &Graph{
		Name:         name,
		Workload:     w,
		processIndex: make(map[string]*Process),
		channelIndex: make(map[string]*Channel),
	}
}

// LaneProcessName names the process running subkernel in the given lane.
func LaneProcessName(subkernel string, lane int) string {
	return fmt.Sprintf("%s%d", subkernel, lane)
}

// AddPhase appends a phase and creates the processes of all its lanes.
func (g *Graph) AddPhase(phase Phase) error {
	for _, p := range g.Structure {
		if p.Name == phase.Name {
			return errors.Errorf("graph %s already has phase %s",
				g.Name, phase.Name)
		}
	}

	for _, sk := range phase.Subkernels {
		for i := 0; i < phase.NumInstances; i++ {
			if _, err := g.AddProcess(LaneProcessName(sk, i)); err != nil {
				return err
			}
		}
	}

	g.Structure = append(g.Structure, phase)

	return nil
}

// AddProcess adds a process without channels.
func (g *Graph) AddProcess(name string) (*Process, error) {
	if _, found := g.processIndex[name]; found {
		return nil, errors.Errorf("graph %s already has process %s", g.Name, name)
	}

	p := &Process{Name: name}
	g.processes = append(g.processes, p)
	g.processIndex[name] = p

	return p, nil
}

// Connect adds a channel from src to sinks.
func (g *Graph) Connect(
	name string,
	tokenSize float64,
	src string,
	sinks ...string,
) (*Channel, error) {
	if _, found := g.channelIndex[name]; found {
		return nil, errors.Errorf("graph %s already has channel %s", g.Name, name)
	}

	srcProcess, err := g.FindProcess(src)
	if err != nil {
		return nil, err
	}

	sinkProcesses := make([]*Process, 0, len(sinks))
	for _, s := range sinks {
		p, err := g.FindProcess(s)
		if err != nil {
			return nil, err
		}
		sinkProcesses = append(sinkProcesses, p)
	}

	c := &Channel{
		Name:      name,
		TokenSize: tokenSize,
		source:    src,
		sinks:     append([]string(nil), sinks...),
	}
	g.channels = append(g.channels, c)
	g.channelIndex[name] = c

	srcProcess.outputs = append(srcProcess.outputs, name)
	for _, p := range sinkProcesses {
		p.inputs = append(p.inputs, name)
	}

	return c, nil
}

// FindProcess looks a process up by name.
func (g *Graph) FindProcess(name string) (*Process, error) {
	p, found := g.processIndex[name]
	if !found {
		return nil, errors.Errorf("graph %s has no process %s", g.Name, name)
	}
	return p, nil
}

// FindChannel looks a channel up by name.
func (g *Graph) FindChannel(name string) (*Channel, error) {
	c, found := g.channelIndex[name]
	if !found {
		return nil, errors.Errorf("graph %s has no channel %s", g.Name, name)
	}
	return c, nil
}

// Processes returns all processes in creation order.
func (g *Graph) Processes() []*Process {
	return g.processes
}

// Channels returns all channels in creation order.
func (g *Graph) Channels() []*Channel {
	return g.channels
}

// Inputs returns the channels the process reads from.
func (g *Graph) Inputs(process string) ([]*Channel, error) {
	p, err := g.FindProcess(process)
	if err != nil {
		return nil, err
	}
	return g.lookupChannels(p.inputs), nil
}

// Outputs returns the channels the process writes to.
func (g *Graph) Outputs(process string) ([]*Channel, error) {
	p, err := g.FindProcess(process)
	if err != nil {
		return nil, err
	}
	return g.lookupChannels(p.outputs), nil
}

// ChannelsTouching returns the inputs followed by the outputs of a process.
func (g *Graph) ChannelsTouching(process string) ([]*Channel, error) {
	p, err := g.FindProcess(process)
	if err != nil {
		return nil, err
	}

	channels := g.lookupChannels(p.inputs)
	channels = append(channels, g.lookupChannels(p.outputs)...)

	return channels, nil
}

func (g *Graph) lookupChannels(names []string) []*Channel {
	channels := make([]*Channel, 0, len(names))
	for _, n := range names {
		channels = append(channels, g.channelIndex[n])
	}
	return channels
}

// Timeout returns the relative deadline of the graph, derived from its
// criticality.
func (g *Graph) Timeout() (sim.VTimeInSec, error) {
	switch g.Criticality {
	case 0, 2:
		return 2.5e-3, nil
	case 1:
		return 0.5e-3, nil
	}

	return 0, errors.Errorf("graph %s has unknown criticality %d",
		g.Name, g.Criticality)
}
