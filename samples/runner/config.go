package runner

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"gitlab.com/akita/fivegsim/mapper"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/pareto"
)

// Config describes one simulation.
type Config struct {
	// Fs resolves the input and output files.
	Fs afero.Fs

	TraceFile string
	// TaskFile holds the calibrated task times. Empty selects the built-in
	// model.
	TaskFile string
	Antennas int
	Platform string
	Mapper   string

	LoadBalancer  bool
	TetrisRuntime bool

	Pareto        pareto.Config
	MapperOptions mapper.Options

	LoadHistoryLen int

	// Output files. Empty names are skipped.
	StatsApplications string
	StatsActivations  string
	Summary           string
	ResultFile        string
}

// DefaultConfig returns the configuration of the baseline experiment.
func DefaultConfig() Config {
	return Config{
		Fs:       afero.NewOsFs(),
		Antennas: 4,
		Platform: "odroid",
		Mapper:   "fiveg",
		Pareto:   pareto.Config{TimeScale: 1},
		MapperOptions: mapper.Options{
			ChannelCapacity: mapping.DefaultChannelCapacity,
		},
	}
}

// Validate checks that the configuration can be simulated.
func (c Config) Validate() error {
	if c.Fs == nil {
		return errors.New("no file system given")
	}

	if c.TraceFile == "" {
		return errors.New("no trace file given")
	}

	if c.LoadBalancer && c.TetrisRuntime {
		return errors.New(
			"the load balancer and the tetris runtime cannot be used together")
	}

	if c.Antennas <= 0 {
		return errors.Errorf("invalid number of antennas %d", c.Antennas)
	}

	return nil
}
