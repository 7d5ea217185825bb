package profiler

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v3/sim"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/stat"

	"gitlab.com/akita/fivegsim/dataflow"
)

// Unset marks times that were never recorded.
const Unset sim.VTimeInSec = -1

// An ApplicationEntry records what happened to one application.
type ApplicationEntry struct {
	Name            string
	PRBs            int
	Mod             int
	Criticality     int
	Arrival         sim.VTimeInSec
	Deadline        sim.VTimeInSec
	Accepted        bool
	ExpectedEndTime sim.VTimeInSec
	StartTime       sim.VTimeInSec
	EndTime         sim.VTimeInSec
	DeadlineMiss    bool
}

// An ActivationEntry records one invocation of a resource manager.
type ActivationEntry struct {
	ID             string
	Time           sim.VTimeInSec
	Applications   int
	Accepted       int
	SchedulingTime float64 // wall seconds
}

// ManagerStatistics collects the entries of a simulation.
type ManagerStatistics struct {
	applications []*ApplicationEntry
	activations  []*ActivationEntry
}

// NewManagerStatistics creates an empty collection.
func NewManagerStatistics() *ManagerStatistics {
	return &ManagerStatistics{}
}

// NewApplication creates the entry of an application that arrived.
func (s *ManagerStatistics) NewApplication(
	g *dataflow.Graph,
	arrival, deadline sim.VTimeInSec,
) *ApplicationEntry {
	e := &ApplicationEntry{
		Name:            g.Name,
		PRBs:            g.PRBs,
		Mod:             g.Mod,
		Criticality:     g.Criticality,
		Arrival:         arrival,
		Deadline:        deadline,
		ExpectedEndTime: Unset,
		StartTime:       Unset,
		EndTime:         Unset,
	}
	s.applications = append(s.applications, e)
	return e
}

// FindApplication returns the entry with the given name, or nil.
func (s *ManagerStatistics) FindApplication(name string) *ApplicationEntry {
	for _, e := range s.applications {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Applications returns all application entries in arrival order.
func (s *ManagerStatistics) Applications() []*ApplicationEntry {
	return s.applications
}

// NewActivation creates the entry of a resource manager invocation.
func (s *ManagerStatistics) NewActivation(t sim.VTimeInSec) *ActivationEntry {
	e := &ActivationEntry{ID: xid.New().String(), Time: t}
	s.activations = append(s.activations, e)
	return e
}

// TotalApplications is the number of applications that arrived.
func (s *ManagerStatistics) TotalApplications() int {
	return len(s.applications)
}

// TotalRejected is the number of applications that were not admitted.
func (s *ManagerStatistics) TotalRejected() int {
	n := 0
	for _, e := range s.applications {
		if !e.Accepted {
			n++
		}
	}
	return n
}

// TotalMissed is the number of applications killed at their deadline.
func (s *ManagerStatistics) TotalMissed() int {
	n := 0
	for _, e := range s.applications {
		if e.DeadlineMiss {
			n++
		}
	}
	return n
}

// TotalActivations is the number of resource manager invocations.
func (s *ManagerStatistics) TotalActivations() int {
	return len(s.activations)
}

// TotalSchedulingTime is the wall time spent in the resource manager.
func (s *ManagerStatistics) TotalSchedulingTime() float64 {
	total := 0.0
	for _, e := range s.activations {
		total += e.SchedulingTime
	}
	return total
}

// SchedulingTimeStats returns the mean and the standard deviation of the
// scheduling time per activation.
func (s *ManagerStatistics) SchedulingTimeStats() (mean, std float64) {
	switch len(s.activations) {
	case 0:
		return 0, 0
	case 1:
		return s.activations[0].SchedulingTime, 0
	}

	times := make([]float64, 0, len(s.activations))
	for _, e := range s.activations {
		times = append(times, e.SchedulingTime)
	}

	return stat.MeanStdDev(times, nil)
}

func formatTime(t sim.VTimeInSec) string {
	if t < 0 {
		return ""
	}
	return strconv.FormatFloat(float64(t), 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// DumpApplications writes the application entries as CSV. Times are in
// seconds.
func (s *ManagerStatistics) DumpApplications(w io.Writer) error {
	writer := csv.NewWriter(w)

	rows := [][]string{{
		"name", "prbs", "mod", "criticality", "arrival", "deadline",
		"accepted", "expected_end_time", "start_time", "end_time",
		"deadline_miss",
	}}
	for _, e := range s.applications {
		rows = append(rows, []string{
			e.Name,
			strconv.Itoa(e.PRBs),
			strconv.Itoa(e.Mod),
			strconv.Itoa(e.Criticality),
			formatTime(e.Arrival),
			formatTime(e.Deadline),
			formatBool(e.Accepted),
			formatTime(e.ExpectedEndTime),
			formatTime(e.StartTime),
			formatTime(e.EndTime),
			formatBool(e.DeadlineMiss),
		})
	}

	return errors.Wrap(writer.WriteAll(rows), "writing applications")
}

// DumpActivations writes the activation entries as CSV.
func (s *ManagerStatistics) DumpActivations(w io.Writer) error {
	writer := csv.NewWriter(w)

	rows := [][]string{{
		"id", "time", "applications", "accepted", "scheduling_time",
	}}
	for _, e := range s.activations {
		rows = append(rows, []string{
			e.ID,
			formatTime(e.Time),
			strconv.Itoa(e.Applications),
			strconv.Itoa(e.Accepted),
			strconv.FormatFloat(e.SchedulingTime, 'g', -1, 64),
		})
	}

	return errors.Wrap(writer.WriteAll(rows), "writing activations")
}

// DumpSummary writes the totals as a two-row CSV.
func (s *ManagerStatistics) DumpSummary(w io.Writer) error {
	writer := csv.NewWriter(w)
	mean, std := s.SchedulingTimeStats()

	rows := [][]string{
		{
			"Total_apps", "Total_rejected", "Missed_deadline",
			"Total_activations", "Total_scheduling_time",
			"Average_scheduling_time", "Std_scheduling_time",
		},
		{
			strconv.Itoa(s.TotalApplications()),
			strconv.Itoa(s.TotalRejected()),
			strconv.Itoa(s.TotalMissed()),
			strconv.Itoa(s.TotalActivations()),
			strconv.FormatFloat(s.TotalSchedulingTime(), 'g', -1, 64),
			strconv.FormatFloat(mean, 'g', -1, 64),
			strconv.FormatFloat(std, 'g', -1, 64),
		},
	}

	return errors.Wrap(writer.WriteAll(rows), "writing summary")
}

// DumpFile creates path on fs and lets dump fill it.
func DumpFile(fs afero.Fs, path string, dump func(io.Writer) error) error {
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := dump(f); err != nil {
		f.Close()
		return err
	}

	return errors.Wrapf(f.Close(), "closing %s", path)
}
