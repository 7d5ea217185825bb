package phybench

import (
	"fmt"

	"gitlab.com/akita/fivegsim/dataflow"
)

// A Generator turns subframes into graphs and traces.
type Generator struct {
	Times    *TaskTimes
	Antennas int
}

// Generate creates one graph and trace per UE of the subframe. Graphs are
// named after the subframe counter and the position of the UE.
func (g Generator) Generate(
	count int,
	sf *Subframe,
) ([]*dataflow.Graph, []dataflow.Trace, error) {
	graphs := make([]*dataflow.Graph, 0, len(sf.UEs))
	traces := make([]dataflow.Trace, 0, len(sf.UEs))

	for i, ue := range sf.UEs {
		graph, err := NewGraph(fmt.Sprintf("fiveg_sf%d_%d", count, i), ue, g.Antennas)
		if err != nil {
			return nil, nil, err
		}

		trace, err := NewTrace(ue, g.Times)
		if err != nil {
			return nil, nil, err
		}

		graphs = append(graphs, graph)
		traces = append(traces, trace)
	}

	return graphs, traces, nil
}
