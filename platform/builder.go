package platform

import (
	"fmt"
	"strings"

	"github.com/sarchlab/akita/v3/sim"
)

// Processor types of the platforms this package can build.
const (
	TypeCortexA7  = "ARM_CORTEX_A7"
	TypeCortexA15 = "ARM_CORTEX_A15"
)

// FFTAcceleratorType is the type of the FFT accelerator, which can execute
// all FFT-based subkernels.
var FFTAcceleratorType = AcceleratorType("fft", "ifftm", "iffta")

// A Builder can build big.LITTLE platforms with optional FFT accelerators.
type Builder struct {
	name                  string
	numLittle             int
	numBig                int
	numFFTAcc             int
	littleFreq            sim.Freq
	bigFreq               sim.Freq
	accFreq               sim.Freq
	dramFreq              sim.Freq
	schedulingCycles      float64
	accSchedulingCycles   float64
	peripheralStaticPower float64
}

// MakeBuilder creates a builder with the parameters of an Odroid XU4 board.
func MakeBuilder() Builder {
	return Builder{
		name:                  "odroid",
		numLittle:             4,
		numBig:                4,
		littleFreq:            1500 * sim.MHz,
		bigFreq:               1800 * sim.MHz,
		accFreq:               250 * sim.MHz,
		dramFreq:              933 * sim.MHz,
		schedulingCycles:      1000,
		accSchedulingCycles:   50,
		peripheralStaticPower: 0.7633,
	}
}

// WithNumLittle sets the number of cores in the LITTLE cluster.
func (b Builder) WithNumLittle(n int) Builder {
	b.numLittle = n
	return b
}

// WithNumBig sets the number of cores in the big cluster.
func (b Builder) WithNumBig(n int) Builder {
	b.numBig = n
	return b
}

// WithNumFFTAcc sets the number of FFT accelerators.
func (b Builder) WithNumFFTAcc(n int) Builder {
	b.numFFTAcc = n
	return b
}

// WithSchedulingCycles sets the context switch cost of regular cores.
func (b Builder) WithSchedulingCycles(cycles float64) Builder {
	b.schedulingCycles = cycles
	return b
}

// WithAccSchedulingCycles sets the context switch cost of accelerators.
func (b Builder) WithAccSchedulingCycles(cycles float64) Builder {
	b.accSchedulingCycles = cycles
	return b
}

// WithPeripheralStaticPower sets the static power drawn outside the cores.
func (b Builder) WithPeripheralStaticPower(p float64) Builder {
	b.peripheralStaticPower = p
	return b
}

// Build creates the platform.
func (b Builder) Build(name string) *Platform {
	p := &Platform{
		Name:                  name,
		peripheralStaticPower: b.peripheralStaticPower,
	}

	little := b.buildCluster(p, "PE", 0, b.numLittle,
		TypeCortexA7, b.littleFreq, 0.0230, 0.1046)
	big := b.buildCluster(p, "PE", b.numLittle, b.numBig,
		TypeCortexA15, b.bigFreq, 0.0700, 0.7450)
	accs := b.buildCluster(p, "FFT_ACC", 0, b.numFFTAcc,
		FFTAcceleratorType, b.accFreq, 0.0100, 0.0500)

	b.buildCaches(p, "A7", little, b.littleFreq, 21)
	b.buildCaches(p, "A15", big, b.bigFreq, 22)

	all := append(append(append([]*Processor{}, little...), big...), accs...)
	if len(all) > 0 {
		p.primitives = append(p.primitives,
			NewPrimitive("DRAM", all, 142, 142, 8, b.dramFreq))
	}

	return p
}

func (b Builder) buildCluster(
	p *Platform,
	prefix string,
	firstID, n int,
	processorType string,
	freq sim.Freq,
	staticPower, dynamicPower float64,
) []*Processor {
	policy := SchedulingPolicy{Name: "FIFO", SchedulingCycles: b.schedulingCycles}
	if strings.HasPrefix(processorType, AcceleratorPrefix) {
		policy.SchedulingCycles = b.accSchedulingCycles
	}

	pes := make([]*Processor, 0, n)
	for i := 0; i < n; i++ {
		pe := &Processor{
			Name:         fmt.Sprintf("%s%02d", prefix, firstID+i),
			Type:         processorType,
			Freq:         freq,
			StaticPower:  staticPower,
			DynamicPower: dynamicPower,
		}
		pes = append(pes, pe)

		p.processors = append(p.processors, pe)
		p.schedulers = append(p.schedulers, &Scheduler{
			Name:       "SCHED_" + pe.Name,
			Processors: []*Processor{pe},
			Policy:     policy,
		})
	}

	return pes
}

func (b Builder) buildCaches(
	p *Platform,
	cluster string,
	pes []*Processor,
	freq sim.Freq,
	l2Latency float64,
) {
	if len(pes) == 0 {
		return
	}

	for _, pe := range pes {
		p.primitives = append(p.primitives, NewPrimitive(
			"L1_"+pe.Name, []*Processor{pe}, 1, 1, 8, freq))
	}

	p.primitives = append(p.primitives,
		NewPrimitive("L2_"+cluster, pes, l2Latency, l2Latency, 8, freq))
}
