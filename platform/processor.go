// Package platform describes the hardware the simulated workloads run on:
// processors, the schedulers that own them and the communication primitives
// connecting them.
package platform

import (
	"strings"

	"github.com/sarchlab/akita/v3/sim"
	log "github.com/sirupsen/logrus"
)

// AcceleratorPrefix marks the type of a fixed-function accelerator. The rest
// of the type is the comma-separated list of subkernels it can execute.
const AcceleratorPrefix = "acc_"

// A Processor is a processing element of the platform.
type Processor struct {
	Name         string
	Type         string
	Freq         sim.Freq
	StaticPower  float64 // W, drawn for the whole simulation
	DynamicPower float64 // W, drawn while executing
}

// Ticks converts a number of cycles into the time the processor needs to
// execute them.
func (p *Processor) Ticks(cycles float64) sim.VTimeInSec {
	return sim.VTimeInSec(cycles / float64(p.Freq))
}

// IsAccelerator tells if the processor is a fixed-function accelerator.
func (p *Processor) IsAccelerator() bool {
	return strings.HasPrefix(p.Type, AcceleratorPrefix)
}

// AcceleratorKernels returns the subkernels an accelerator supports, in the
// order the type lists them.
func (p *Processor) AcceleratorKernels() []string {
	if !p.IsAccelerator() {
		log.Panicf("processor %s of type %s is not an accelerator",
			p.Name, p.Type)
	}

	kernels := strings.Split(strings.TrimPrefix(p.Type, AcceleratorPrefix), ",")
	for _, k := range kernels {
		if k == "" {
			log.Panicf("malformed accelerator type %q", p.Type)
		}
	}

	return kernels
}

// Supports tells if an accelerator can run the named process, that is if
// the name starts with one of its kernels.
func (p *Processor) Supports(process string) bool {
	for _, k := range p.AcceleratorKernels() {
		if strings.HasPrefix(process, k) {
			return true
		}
	}
	return false
}

// AcceleratorType builds the type string of an accelerator supporting the
// given kernels.
func AcceleratorType(kernels ...string) string {
	return AcceleratorPrefix + strings.Join(kernels, ",")
}
