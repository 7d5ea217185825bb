package manager

import (
	"errors"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sarchlab/akita/v3/sim"

	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/pareto"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
	"gitlab.com/akita/fivegsim/system"
)

var errNoFront = errors.New("no front")

var _ = Describe("TetrisManager", func() {
	var (
		mockCtrl  *gomock.Controller
		env       *simenv.Env
		metrics   *profiler.Metrics
		stats     *profiler.ManagerStatistics
		p         *platform.Platform
		generator *MockGenerator
		tetris    *TetrisManager
	)

	singleCore := func(g *dataflow.Graph, pe string, execMs, energy float64) *mapping.Mapping {
		proc, err := p.FindProcessor(pe)
		Expect(err).NotTo(HaveOccurred())
		m, err := mapping.SingleCore(g, p, proc, mapping.DefaultChannelCapacity)
		Expect(err).NotTo(HaveOccurred())
		m.Metadata = mapping.Metadata{ExecTime: execMs, Energy: energy}
		return m
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		env = simenv.NewEnv(sim.NewSerialEngine())
		metrics = profiler.NewMetrics()
		stats = profiler.NewManagerStatistics()
		p = platform.MakeBuilder().WithNumLittle(2).WithNumBig(0).Build("test")
		generator = NewMockGenerator(mockCtrl)

		cache, err := pareto.NewCache(pareto.Config{TimeScale: 1}, generator, nil, metrics)
		Expect(err).NotTo(HaveOccurred())

		sys := system.NewSystem(env, p, system.Options{Metrics: metrics})
		tetris = NewTetrisManager(sys, stats, cache)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pick the cheapest mapping that meets the deadline", func() {
		generator.EXPECT().
			GenerateParetoFront(gomock.Any(), gomock.Any()).
			DoAndReturn(func(g *dataflow.Graph, _ dataflow.Trace) ([]*mapping.Mapping, error) {
				return []*mapping.Mapping{
					singleCore(g, "PE01", 0.5, 3),
					singleCore(g, "PE00", 1, 1),
				}, nil
			}).
			Times(1)

		trace := newTrace(mockCtrl, 2000)
		graphs := []*dataflow.Graph{
			newGraph("g0", []string{"a"}),
			newGraph("g1", []string{"a"}),
			newGraph("g2", []string{"a"}),
			newGraph("g3", []string{"a"}),
		}
		graphs[3].Criticality = 1
		traces := []dataflow.Trace{trace, trace, trace, trace}

		done := tetris.Run()
		Expect(tetris.StartApplications(graphs, traces)).To(Succeed())
		env.At(2e-3, tetris.Shutdown)
		Expect(env.Run()).To(Succeed())

		Expect(done.Triggered()).To(BeTrue())

		entries := stats.Applications()
		Expect(entries).To(HaveLen(4))

		Expect(entries[0].Accepted).To(BeTrue())
		Expect(float64(entries[0].ExpectedEndTime)).To(BeNumerically("~", 1e-3, 1e-12))
		Expect(float64(entries[0].StartTime)).To(BeNumerically("~", 0, 1e-12))

		// Delayed behind g0 on the cheap core.
		Expect(entries[1].Accepted).To(BeTrue())
		Expect(float64(entries[1].ExpectedEndTime)).To(BeNumerically("~", 2e-3, 1e-12))
		Expect(float64(entries[1].StartTime)).To(BeNumerically("~", 1e-3, 1e-12))

		// The cheap core is booked too long, the fast one fits.
		Expect(entries[2].Accepted).To(BeTrue())
		Expect(float64(entries[2].ExpectedEndTime)).To(BeNumerically("~", 0.5e-3, 1e-12))

		Expect(entries[3].Accepted).To(BeFalse())
		Expect(entries[3].StartTime).To(Equal(profiler.Unset))

		for _, e := range entries[:3] {
			Expect(e.DeadlineMiss).To(BeFalse())
			Expect(e.EndTime).To(BeNumerically("<=", e.Deadline))
		}

		Expect(stats.TotalActivations()).To(Equal(1))
		Expect(stats.TotalRejected()).To(Equal(1))
		Expect(testutil.ToFloat64(metrics.Rejections)).To(Equal(1.0))
		Expect(testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit"))).To(Equal(3.0))
		Expect(testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss"))).To(Equal(1.0))
	})

	It("should record the admitted applications of an activation", func() {
		generator.EXPECT().
			GenerateParetoFront(gomock.Any(), gomock.Any()).
			DoAndReturn(func(g *dataflow.Graph, _ dataflow.Trace) ([]*mapping.Mapping, error) {
				return []*mapping.Mapping{singleCore(g, "PE00", 0.1, 1)}, nil
			})

		tetris.Run()
		trace := newTrace(mockCtrl, 2000)
		Expect(tetris.StartApplications(
			[]*dataflow.Graph{newGraph("g0", []string{"a"}), newGraph("g1", []string{"a"})},
			[]dataflow.Trace{trace, trace},
		)).To(Succeed())
		tetris.Shutdown()
		Expect(env.Run()).To(Succeed())

		Expect(stats.TotalActivations()).To(Equal(1))
		Expect(stats.TotalRejected()).To(Equal(0))
		Expect(stats.TotalSchedulingTime()).To(BeNumerically(">=", 0))
	})

	It("should report generator errors", func() {
		generator.EXPECT().
			GenerateParetoFront(gomock.Any(), gomock.Any()).
			Return(nil, errNoFront)

		tetris.Run()
		err := tetris.StartApplications(
			[]*dataflow.Graph{newGraph("g0", []string{"a"})},
			[]dataflow.Trace{newTrace(mockCtrl, 2000)},
		)
		Expect(err).To(MatchError(ContainSubstring("no front")))
	})
})
