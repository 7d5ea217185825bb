package platform

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v3/sim"
)

var _ = Describe("Processor", func() {
	It("should convert cycles to time", func() {
		pe := &Processor{Name: "PE", Type: TypeCortexA7, Freq: 1 * sim.GHz}

		Expect(float64(pe.Ticks(2000))).To(BeNumerically("~", 2e-6, 1e-15))
	})

	It("should parse accelerator kernels", func() {
		pe := &Processor{Name: "ACC", Type: FFTAcceleratorType}

		Expect(pe.IsAccelerator()).To(BeTrue())
		Expect(pe.AcceleratorKernels()).To(
			Equal([]string{"fft", "ifftm", "iffta"}))
	})

	It("should match processes by kernel prefix", func() {
		pe := &Processor{Name: "ACC", Type: FFTAcceleratorType}

		Expect(pe.Supports("fft3")).To(BeTrue())
		Expect(pe.Supports("ifftm0")).To(BeTrue())
		Expect(pe.Supports("iffta11")).To(BeTrue())
		Expect(pe.Supports("mf0")).To(BeFalse())
		Expect(pe.Supports("demap2_0")).To(BeFalse())
	})

	It("should panic when asking a regular core for kernels", func() {
		pe := &Processor{Name: "PE", Type: TypeCortexA15}

		Expect(pe.IsAccelerator()).To(BeFalse())
		Expect(func() { pe.AcceleratorKernels() }).To(Panic())
	})

	It("should panic on a malformed accelerator type", func() {
		pe := &Processor{Name: "ACC", Type: "acc_fft,,iffta"}

		Expect(func() { pe.AcceleratorKernels() }).To(Panic())
	})
})

var _ = Describe("Platform", func() {
	var p *Platform

	BeforeEach(func() {
		var err error
		p, err = New("odroid_acc")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should build processors in cluster order", func() {
		Expect(p.Processors()).To(HaveLen(10))
		Expect(p.ProcessorTypes()).To(Equal([]string{
			TypeCortexA7, TypeCortexA15, FFTAcceleratorType,
		}))
		Expect(p.ProcessorsOfType(TypeCortexA15)).To(HaveLen(4))
		Expect(p.ProcessorsOfType(TypeCortexA15)[0].Name).To(Equal("PE04"))
	})

	It("should give each processor its own scheduler", func() {
		Expect(p.Schedulers()).To(HaveLen(10))
		for _, pe := range p.Processors() {
			s := p.FindSchedulerForProcessor(pe)
			Expect(s).NotTo(BeNil())
			Expect(s.Processors).To(ConsistOf(pe))

			if pe.IsAccelerator() {
				Expect(s.Policy.SchedulingCycles).To(Equal(50.0))
			} else {
				Expect(s.Policy.SchedulingCycles).To(Equal(1000.0))
			}
		}
	})

	It("should find processors by name", func() {
		pe, err := p.FindProcessor("PE03")
		Expect(err).NotTo(HaveOccurred())
		Expect(pe.Type).To(Equal(TypeCortexA7))

		_, err = p.FindProcessor("PE99")
		Expect(err).To(HaveOccurred())
	})

	It("should prefer the L1 for self loops", func() {
		pe, _ := p.FindProcessor("PE00")

		var best *Primitive
		for _, prim := range p.Primitives() {
			if !prim.IsSuitable(pe, []*Processor{pe}) {
				continue
			}
			if best == nil || prim.StaticCost(pe, pe) < best.StaticCost(pe, pe) {
				best = prim
			}
		}

		Expect(best.Name).To(Equal("L1_PE00"))
	})

	It("should only connect accelerators through DRAM", func() {
		acc, _ := p.FindProcessor("FFT_ACC00")
		pe, _ := p.FindProcessor("PE05")

		var names []string
		for _, prim := range p.Primitives() {
			if prim.IsSuitable(pe, []*Processor{acc}) {
				names = append(names, prim.Name)
			}
		}

		Expect(names).To(Equal([]string{"DRAM"}))
	})

	It("should grow the transfer time with the token size", func() {
		prim, err := p.FindPrimitive("DRAM")
		Expect(err).NotTo(HaveOccurred())

		Expect(prim.TransferTime(800)).To(BeNumerically(">", prim.TransferTime(8)))
	})

	It("should sum up the static power", func() {
		Expect(p.StaticPower()).To(BeNumerically("~",
			0.7633+4*0.0230+4*0.0700+2*0.0100, 1e-9))
	})

	It("should reject unknown presets", func() {
		_, err := New("exynos")
		Expect(err).To(HaveOccurred())
	})
})
