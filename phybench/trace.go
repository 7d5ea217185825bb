package phybench

import (
	"strings"

	"github.com/pkg/errors"

	"gitlab.com/akita/fivegsim/platform"
)

// Core frequencies the task times were measured at.
const (
	freqA7  = 1.5e9
	freqA15 = 1.8e9
	freqAcc = 250e6
)

type kernelTrace struct {
	name    string
	firings int
	cycles  map[string]float64 // per firing
}

// A Trace provides the cycle counts of the processes of one UE graph.
type Trace struct {
	kernels []kernelTrace
}

// NewTrace derives the cycle counts of all kernels from the task times.
func NewTrace(ue UE, times *TaskTimes) (*Trace, error) {
	modIdx, err := ModIndex(ue.Mod)
	if err != nil {
		return nil, err
	}

	layerScale := float64(ue.Layers) / 4

	lookup := func(kernel, proc string, mod int, freq, scale float64) (float64, error) {
		t, err := times.Time(kernel, proc, mod, ue.PRBs)
		if err != nil {
			return 0, err
		}
		return t * freq * scale, nil
	}

	regular := func(kernel string, mod int, scale float64) (map[string]float64, error) {
		a7, err := lookup(kernel, ProcA7, mod, freqA7, scale)
		if err != nil {
			return nil, err
		}
		a15, err := lookup(kernel, ProcA15, mod, freqA15, scale)
		if err != nil {
			return nil, err
		}
		return map[string]float64{
			platform.TypeCortexA7:  a7,
			platform.TypeCortexA15: a15,
		}, nil
	}

	fftBased := func() (map[string]float64, error) {
		cycles, err := regular("fft", noMod, 1)
		if err != nil {
			return nil, err
		}
		acc, err := lookup("fft", ProcFFTAcc, noMod, freqAcc, 1)
		if err != nil {
			return nil, err
		}
		cycles[platform.FFTAcceleratorType] = acc
		return cycles, nil
	}

	idle := map[string]float64{
		platform.TypeCortexA7:  0,
		platform.TypeCortexA15: 0,
	}

	tr := &Trace{}
	add := func(name string, firings int, cycles map[string]float64, err error) error {
		if err != nil {
			return errors.Wrapf(err, "kernel %s", name)
		}
		tr.kernels = append(tr.kernels, kernelTrace{name, firings, cycles})
		return nil
	}

	mf, err := regular("mf", noMod, 1)
	if err = add("mf", 2, mf, err); err != nil {
		return nil, err
	}
	for _, k := range []string{"ifftm", "fft", "iffta"} {
		cycles, err := fftBased()
		if err = add(k, 2, cycles, err); err != nil {
			return nil, err
		}
	}
	wind, err := regular("wind", noMod, 1)
	if err = add("wind", 2, wind, err); err != nil {
		return nil, err
	}
	comb, err := regular("comb", noMod, layerScale)
	if err = add("comb", 2, comb, err); err != nil {
		return nil, err
	}
	ant, err := regular("ant", noMod, 1)
	if err = add("ant", 2, ant, err); err != nil {
		return nil, err
	}
	demap, err := regular("demap", modIdx, layerScale)
	if err = add(DemapKernel(ue.Mod), 1, demap, err); err != nil {
		return nil, err
	}
	_ = add("input", 2, idle, nil)
	_ = add("output", 1, idle, nil)

	return tr, nil
}

// AccumulateProcessorCycles returns the cycles a process needs over all its
// firings, per processor type.
func (t *Trace) AccumulateProcessorCycles(process string) (map[string]float64, error) {
	k, err := t.kernelOf(process)
	if err != nil {
		return nil, err
	}

	cycles := make(map[string]float64, len(k.cycles))
	for procType, c := range k.cycles {
		cycles[procType] = c * float64(k.firings)
	}

	return cycles, nil
}

func (t *Trace) kernelOf(process string) (*kernelTrace, error) {
	for i := range t.kernels {
		k := &t.kernels[i]
		if !strings.HasPrefix(process, k.name) {
			continue
		}

		lane := process[len(k.name):]
		if lane != "" && strings.Trim(lane, "0123456789") == "" {
			return k, nil
		}
	}

	return nil, errors.Errorf("unknown process %s", process)
}
