package mapper

import (
	"errors"
	"strings"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
)

func phaseGraph(phases ...dataflow.Phase) *dataflow.Graph {
	g := dataflow.NewGraph("g", dataflow.Workload{PRBs: 10, Mod: 2, Layers: 1})
	for _, p := range phases {
		Expect(g.AddPhase(p)).To(Succeed())
	}
	return g
}

// expectCycles makes the trace answer by subkernel name.
func expectCycles(trace *MockTrace, cycles map[string]map[string]float64) {
	trace.EXPECT().
		AccumulateProcessorCycles(gomock.Any()).
		DoAndReturn(func(process string) (map[string]float64, error) {
			name := strings.TrimRight(process, "0123456789")
			c, found := cycles[name]
			if !found {
				return nil, errors.New("unknown process " + process)
			}
			return c, nil
		}).
		AnyTimes()
}

func processorOf(m *mapping.Mapping, process string) string {
	info, err := m.ProcessInfo(process)
	Expect(err).NotTo(HaveOccurred())
	return info.Processor.Name
}

var _ = Describe("PhaseMapper", func() {
	var (
		mockCtrl *gomock.Controller
		trace    *MockTrace
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		trace = NewMockTrace(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should split lanes evenly over identical cores", func() {
		p := platform.MakeBuilder().WithNumLittle(4).WithNumBig(0).Build("little")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 8, Subkernels: []string{"a", "b"}})
		expectCycles(trace, map[string]map[string]float64{
			"a": {platform.TypeCortexA7: 1000},
			"b": {platform.TypeCortexA7: 500},
		})

		m, err := NewPhaseMapper(p, Options{}).GenerateMapping(g, trace, p.Processors())
		Expect(err).NotTo(HaveOccurred())

		lanes := make(map[string]int)
		for i := 0; i < 8; i++ {
			pe := processorOf(m, dataflow.LaneProcessName("a", i))
			Expect(processorOf(m, dataflow.LaneProcessName("b", i))).To(Equal(pe))
			lanes[pe]++
		}
		Expect(lanes).To(Equal(map[string]int{
			"PE00": 2, "PE01": 2, "PE02": 2, "PE03": 2}))

		Expect(processorOf(m, "a0")).To(Equal("PE00"))
		Expect(processorOf(m, "a1")).To(Equal("PE00"))
		Expect(processorOf(m, "a7")).To(Equal("PE03"))
	})

	It("should estimate time and energy", func() {
		p := platform.MakeBuilder().WithNumLittle(1).WithNumBig(0).Build("one")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 2, Subkernels: []string{"a"}})
		expectCycles(trace, map[string]map[string]float64{
			"a": {platform.TypeCortexA7: 1500},
		})

		m, err := NewPhaseMapper(p, Options{}).GenerateMapping(g, trace, p.Processors())
		Expect(err).NotTo(HaveOccurred())

		laneTime := 2500 / 1.5e9
		Expect(m.Metadata.ExecTime).To(BeNumerically("~", 2*laneTime*1e3, 1e-12))
		Expect(m.Metadata.Energy).To(
			BeNumerically("~", 2*laneTime*0.1046*1e3, 1e-12))
	})

	It("should sum up the phases", func() {
		p := platform.MakeBuilder().WithNumLittle(1).WithNumBig(0).Build("one")
		g := phaseGraph(
			dataflow.Phase{Name: "p1", NumInstances: 1, Subkernels: []string{"a"}},
			dataflow.Phase{Name: "p2", NumInstances: 3, Subkernels: []string{"b"}},
		)
		expectCycles(trace, map[string]map[string]float64{
			"a": {platform.TypeCortexA7: 500},
			"b": {platform.TypeCortexA7: 2000},
		})

		m, err := NewPhaseMapper(p, Options{}).GenerateMapping(g, trace, p.Processors())
		Expect(err).NotTo(HaveOccurred())

		expected := (1500 + 3*3000) / 1.5e9 * 1e3
		Expect(m.Metadata.ExecTime).To(BeNumerically("~", expected, 1e-12))
	})

	It("should return nil without regular cores", func() {
		p, _ := platform.New("odroid_acc")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 1, Subkernels: []string{"fft"}})

		m, err := NewPhaseMapper(p, Options{}).GenerateMapping(
			g, trace, p.ProcessorsOfType(platform.FFTAcceleratorType))
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeNil())
	})

	It("should pass trace errors on", func() {
		p, _ := platform.New("odroid")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 1, Subkernels: []string{"zz"}})
		expectCycles(trace, nil)

		_, err := NewPhaseMapper(p, Options{}).GenerateMapping(g, trace, p.Processors())
		Expect(err).To(HaveOccurred())
	})

	Context("with accelerators", func() {
		var (
			p *platform.Platform
			g *dataflow.Graph
		)

		BeforeEach(func() {
			p, _ = platform.New("odroid_acc")
			g = phaseGraph(dataflow.Phase{
				Name: "phase1", NumInstances: 8, Subkernels: []string{"mf", "fft"}})
			expectCycles(trace, map[string]map[string]float64{
				"mf": {
					platform.TypeCortexA7:  3000,
					platform.TypeCortexA15: 3000,
				},
				"fft": {
					platform.TypeCortexA7:       6000,
					platform.TypeCortexA15:      6000,
					platform.FFTAcceleratorType: 300,
				},
			})
		})

		It("should not get slower by offloading", func() {
			mapper := NewPhaseMapper(p, Options{})
			regular := append(
				p.ProcessorsOfType(platform.TypeCortexA7),
				p.ProcessorsOfType(platform.TypeCortexA15)...)

			without, err := mapper.GenerateMapping(g, trace, regular)
			Expect(err).NotTo(HaveOccurred())
			with, err := mapper.GenerateMapping(g, trace, p.Processors())
			Expect(err).NotTo(HaveOccurred())

			Expect(without.Metadata.ExecTime).To(
				BeNumerically("~", 11000/1.5e9*1e3, 1e-12))
			Expect(with.Metadata.ExecTime).To(
				BeNumerically("~", 11000/1.8e9*1e3, 1e-12))
			Expect(with.Metadata.Energy).To(
				BeNumerically("<", without.Metadata.Energy))
		})

		It("should move only offloadable subkernels", func() {
			m, err := NewPhaseMapper(p, Options{}).GenerateMapping(
				g, trace, p.Processors())
			Expect(err).NotTo(HaveOccurred())

			Expect(processorOf(m, "fft0")).To(Equal("FFT_ACC00"))
			Expect(processorOf(m, "mf0")).To(Equal("PE00"))

			onAcc := 0
			for i := 0; i < 8; i++ {
				Expect(processorOf(m, dataflow.LaneProcessName("mf", i))).
					To(HavePrefix("PE"))
				if strings.HasPrefix(
					processorOf(m, dataflow.LaneProcessName("fft", i)), "FFT_ACC") {
					onAcc++
				}
			}
			Expect(onAcc).To(Equal(6))
		})

		It("should panic on mixed accelerator types", func() {
			odd := &platform.Processor{
				Name: "MF_ACC00", Type: platform.AcceleratorType("mf"), Freq: 1e9}
			processors := append(
				append([]*platform.Processor{}, p.Processors()...), odd)

			Expect(func() {
				_, _ = NewPhaseMapper(p, Options{}).GenerateMapping(g, trace, processors)
			}).To(Panic())
		})
	})
})

var _ = Describe("ExclusionSets", func() {
	It("should combine prefixes of every type", func() {
		p := platform.MakeBuilder().WithNumLittle(2).WithNumBig(1).Build("small")

		excl := ExclusionSets(p, 0)

		Expect(excl).To(HaveLen(5))
		var sizes []int
		for _, e := range excl {
			Expect(e.Len()).To(BeNumerically("<", 3))
			sizes = append(sizes, e.Len())
		}
		Expect(sizes).To(Equal([]int{0, 1, 1, 2, 2}))
		Expect(excl[4].Has("PE00")).To(BeTrue())
		Expect(excl[4].Has("PE01")).To(BeTrue())
	})

	It("should bound the exclusion depth", func() {
		p, _ := platform.New("odroid")

		Expect(ExclusionSets(p, 1)).To(HaveLen(4))
		Expect(ExclusionSets(p, 0)).To(HaveLen(24))
	})
})

var _ = Describe("ParetoFilter", func() {
	It("should drop dominated and duplicated mappings", func() {
		var ms []*mapping.Mapping
		for _, md := range []mapping.Metadata{
			{ExecTime: 1, Energy: 5},
			{ExecTime: 2, Energy: 3},
			{ExecTime: 2, Energy: 4},
			{ExecTime: 3, Energy: 1},
			{ExecTime: 3, Energy: 1},
		} {
			ms = append(ms, &mapping.Mapping{Metadata: md})
		}

		front := ParetoFilter(ms)

		Expect(front).To(Equal([]*mapping.Mapping{ms[0], ms[1], ms[3]}))
	})
})

var _ = Describe("Pareto front generation", func() {
	It("should return non-dominated mappings", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		trace := NewMockTrace(mockCtrl)
		expectCycles(trace, map[string]map[string]float64{
			"a": {platform.TypeCortexA7: 3000, platform.TypeCortexA15: 3000},
		})

		p := platform.MakeBuilder().WithNumLittle(2).WithNumBig(1).Build("small")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 4, Subkernels: []string{"a"}})

		m, err := New("fiveg", p, Options{})
		Expect(err).NotTo(HaveOccurred())
		pm, ok := m.(ParetoMapper)
		Expect(ok).To(BeTrue())

		front, err := pm.GenerateParetoFront(g, trace)
		Expect(err).NotTo(HaveOccurred())
		Expect(front).NotTo(BeEmpty())
		Expect(len(front)).To(BeNumerically("<=", 5))

		for i, a := range front {
			for j, b := range front {
				if i != j {
					Expect(dominates(a.Metadata, b.Metadata)).To(BeFalse())
				}
			}
		}
	})
})

var _ = Describe("Registry", func() {
	It("should reject unknown mappers", func() {
		p, _ := platform.New("odroid")

		_, err := New("genetic", p, Options{})
		Expect(err).To(MatchError(ContainSubstring("fiveg")))
		Expect(Names()).To(Equal([]string{"fiveg", "random"}))
	})
})

var _ = Describe("RandomMapper", func() {
	It("should be reproducible and respect accelerator kernels", func() {
		p, _ := platform.New("odroid_acc")
		g := phaseGraph(dataflow.Phase{
			Name: "p", NumInstances: 20, Subkernels: []string{"mf", "fft"}})

		m1, err := New("random", p, Options{Seed: 7})
		Expect(err).NotTo(HaveOccurred())
		m2, _ := New("random", p, Options{Seed: 7})

		a, err := m1.GenerateMapping(g, nil, p.Processors())
		Expect(err).NotTo(HaveOccurred())
		b, err := m2.GenerateMapping(g, nil, p.Processors())
		Expect(err).NotTo(HaveOccurred())

		for _, proc := range g.Processes() {
			pe := processorOf(a, proc.Name)
			Expect(processorOf(b, proc.Name)).To(Equal(pe))
			if strings.HasPrefix(proc.Name, "mf") {
				Expect(pe).To(HavePrefix("PE"))
			}
		}
	})
})
