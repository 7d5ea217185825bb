package phybench

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"gitlab.com/akita/fivegsim/platform"
)

// Calibration keys of the processors the kernels were measured on.
const (
	ProcA7     = platform.TypeCortexA7
	ProcA15    = platform.TypeCortexA15
	ProcFFTAcc = "acc_fft"
)

// noMod marks measurements that do not depend on the modulation scheme.
const noMod = -1

// MaxPRBs is the largest number of PRBs the built-in model covers.
const MaxPRBs = 100

// TaskTimes holds measured kernel execution times in seconds, per kernel,
// processor, modulation index and number of PRBs.
type TaskTimes struct {
	times map[string]map[string]map[int]map[int]float64
}

// NewTaskTimes creates an empty table.
func NewTaskTimes() *TaskTimes {
	return &TaskTimes{
		times: make(map[string]map[string]map[int]map[int]float64),
	}
}

// Set records a measurement. Use a negative mod for kernels that do not
// depend on the modulation.
func (t *TaskTimes) Set(kernel, processor string, mod, prbs int, time float64) {
	if mod < 0 {
		mod = noMod
	}

	byProc, found := t.times[kernel]
	if !found {
		byProc = make(map[string]map[int]map[int]float64)
		t.times[kernel] = byProc
	}

	byMod, found := byProc[processor]
	if !found {
		byMod = make(map[int]map[int]float64)
		byProc[processor] = byMod
	}

	byPRBs, found := byMod[mod]
	if !found {
		byPRBs = make(map[int]float64)
		byMod[mod] = byPRBs
	}

	byPRBs[prbs] = time
}

// Time returns a measurement.
func (t *TaskTimes) Time(kernel, processor string, mod, prbs int) (float64, error) {
	if mod < 0 {
		mod = noMod
	}

	time, found := t.times[kernel][processor][mod][prbs]
	if !found {
		return 0, errors.Errorf(
			"no execution time for kernel %s on %s (mod index %d, %d PRBs)",
			kernel, processor, mod, prbs)
	}

	return time, nil
}

// LoadTaskTimes reads a task file. The first row is a header, each other row
// holds kernel, processor, PRBs, time and modulation index, where the
// modulation index is NA for kernels that do not depend on it.
func LoadTaskTimes(r io.Reader) (*TaskTimes, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading task file")
	}

	t := NewTaskTimes()
	for i, row := range records {
		if i == 0 {
			continue
		}

		prbs, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, errors.Wrapf(err, "task file row %d: PRBs", i+1)
		}

		time, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "task file row %d: time", i+1)
		}

		mod := noMod
		if row[4] != "NA" {
			mod, err = strconv.Atoi(row[4])
			if err != nil {
				return nil, errors.Wrapf(err, "task file row %d: mod", i+1)
			}
		}

		t.Set(row[0], row[1], mod, prbs, time)
	}

	return t, nil
}

type linearModel struct {
	perPRB, base float64 // seconds
}

func (m linearModel) at(prbs int) float64 {
	return m.perPRB*float64(prbs) + m.base
}

// DefaultTaskTimes returns a linear model of the kernels measured on an
// Odroid XU4 board, for 1 to MaxPRBs PRBs.
func DefaultTaskTimes() *TaskTimes {
	models := map[string]map[string]linearModel{
		"mf": {
			ProcA7:  {0.10e-6, 1.0e-6},
			ProcA15: {0.045e-6, 0.45e-6},
		},
		"fft": {
			ProcA7:     {0.15e-6, 2.0e-6},
			ProcA15:    {0.07e-6, 0.9e-6},
			ProcFFTAcc: {0.02e-6, 0.5e-6},
		},
		"wind": {
			ProcA7:  {0.05e-6, 0.5e-6},
			ProcA15: {0.022e-6, 0.22e-6},
		},
		"comb": {
			ProcA7:  {0.30e-6, 2.0e-6},
			ProcA15: {0.135e-6, 0.9e-6},
		},
		"ant": {
			ProcA7:  {0.10e-6, 1.0e-6},
			ProcA15: {0.045e-6, 0.45e-6},
		},
	}

	t := NewTaskTimes()
	for prbs := 1; prbs <= MaxPRBs; prbs++ {
		for kernel, byProc := range models {
			for proc, m := range byProc {
				t.Set(kernel, proc, noMod, prbs, m.at(prbs))
			}
		}

		for _, idx := range modIndices {
			perPRB := 0.05e-6 * float64(idx+1)
			t.Set("demap", ProcA7, idx, prbs, linearModel{perPRB, 1.0e-6}.at(prbs))
			t.Set("demap", ProcA15, idx, prbs,
				linearModel{0.45 * perPRB, 0.45e-6}.at(prbs))
		}
	}

	return t
}

// modIndices lists the calibration index of each modulation scheme.
var modIndices = map[int]int{1: 0, 2: 1, 4: 2, 6: 3, 8: 4}

// ModIndex maps a modulation scheme to its calibration index.
func ModIndex(mod int) (int, error) {
	idx, found := modIndices[mod]
	if !found {
		return 0, errors.Errorf("unknown modulation scheme %d", mod)
	}
	return idx, nil
}
