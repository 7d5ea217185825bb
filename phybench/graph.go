// Package phybench generates the dataflow graphs and traces of the uplink
// PHY benchmark, one per user equipment scheduled in a subframe.
package phybench

import (
	"fmt"

	"gitlab.com/akita/fivegsim/dataflow"
)

// Dimensions of an LTE subframe.
const (
	NumSymbols     = 6
	NumSubcarriers = 12
	NumSlots       = 2

	dataSize = 4 // bytes per sample
)

// NumMICF is the number of matched filter lanes.
func NumMICF(layers, antennas int) int {
	return layers * antennas
}

// NumCombWC is the number of combiner weight lanes.
func NumCombWC() int {
	return NumSubcarriers
}

// NumAntComb is the number of antenna combining lanes.
func NumAntComb(layers int) int {
	return layers * NumSymbols
}

// NumDemap is the number of demapping lanes.
func NumDemap() int {
	return NumSubcarriers * NumSlots
}

// DemapKernel returns the name of the demapping subkernel for a modulation
// scheme.
func DemapKernel(mod int) string {
	return fmt.Sprintf("demap%d", mod)
}

// NewGraph builds the graph that processes the data of one UE.
func NewGraph(name string, ue UE, antennas int) (*dataflow.Graph, error) {
	g := dataflow.NewGraph(name, dataflow.Workload{
		PRBs:        ue.PRBs,
		Mod:         ue.Mod,
		Layers:      ue.Layers,
		Criticality: ue.Criticality,
	})

	phases := []dataflow.Phase{
		{Name: "input", NumInstances: 1,
			Subkernels: []string{"input"}},
		{Name: "phase1", NumInstances: NumMICF(ue.Layers, antennas),
			Subkernels: []string{"mf", "ifftm", "wind", "fft"}},
		{Name: "phase2", NumInstances: NumCombWC(),
			Subkernels: []string{"comb"}},
		{Name: "phase3", NumInstances: NumAntComb(ue.Layers),
			Subkernels: []string{"ant", "iffta"}},
		{Name: "phase4", NumInstances: NumDemap(),
			Subkernels: []string{DemapKernel(ue.Mod)}},
		{Name: "output", NumInstances: 1,
			Subkernels: []string{"output"}},
	}
	for _, p := range phases {
		if err := g.AddPhase(p); err != nil {
			return nil, err
		}
	}

	prbs := float64(ue.PRBs)
	numSC := prbs * NumSubcarriers
	ant := float64(antennas)

	phaseConnections := []struct {
		from, to  int
		tokenSize float64
	}{
		{0, 1, dataSize * numSC},
		{0, 3, dataSize * numSC * ant},
		{1, 2, dataSize * prbs},
		{2, 3, dataSize * prbs * ant},
		{3, 4, dataSize * prbs / 2},
		{4, 5, dataSize * prbs * float64(ue.Mod)},
	}
	for _, conn := range phaseConnections {
		err := connectPhases(g, phases[conn.from], phases[conn.to], conn.tokenSize)
		if err != nil {
			return nil, err
		}
	}

	laneConnections := []struct {
		phase     int
		from, to  string
		tokenSize float64
	}{
		{1, "mf", "ifftm", dataSize * numSC},
		{1, "ifftm", "wind", dataSize * numSC},
		{1, "wind", "fft", dataSize * numSC},
		{3, "ant", "iffta", dataSize * prbs},
	}
	for _, conn := range laneConnections {
		for i := 0; i < phases[conn.phase].NumInstances; i++ {
			src := dataflow.LaneProcessName(conn.from, i)
			dst := dataflow.LaneProcessName(conn.to, i)
			if _, err := g.Connect(src+"_"+dst, conn.tokenSize, src, dst); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// connectPhases connects the last subkernel of every lane of from with the
// first subkernel of every lane of to.
func connectPhases(g *dataflow.Graph, from, to dataflow.Phase, tokenSize float64) error {
	last := from.Subkernels[len(from.Subkernels)-1]
	first := to.Subkernels[0]

	for i := 0; i < from.NumInstances; i++ {
		for j := 0; j < to.NumInstances; j++ {
			src := dataflow.LaneProcessName(last, i)
			dst := dataflow.LaneProcessName(first, j)
			if _, err := g.Connect(src+"_"+dst, tokenSize, src, dst); err != nil {
				return err
			}
		}
	}

	return nil
}
