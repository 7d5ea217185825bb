package profiler

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// A Result summarizes one simulation run.
type Result struct {
	SimTime       float64 `json:"simtime"` // ms
	WallTime      float64 `json:"walltime"`
	Applications  int     `json:"applications"`
	Rejected      int     `json:"rejected"`
	Missed        int     `json:"missed"`
	Activations   int     `json:"activations"`
	StaticEnergy  float64 `json:"static_energy"`
	DynamicEnergy float64 `json:"dynamic_energy"`

	// Load is the share of the simulated time each processor was busy.
	Load map[string]float64 `json:"load"`
}

// WriteFile stores the result on fs as indented JSON.
func (r Result) WriteFile(fs afero.Fs, path string) error {
	jsonStr, err := json.MarshalIndent(r, "", " ")
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}

	if err := afero.WriteFile(fs, path, jsonStr, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}
