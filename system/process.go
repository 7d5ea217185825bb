package system

// ProcessState is the life cycle stage of a runtime process.
type ProcessState int

// The states a process goes through. Finished and Killed are terminal.
const (
	Waiting ProcessState = iota
	Ready
	Running
	Finished
	Killed
)

func (s ProcessState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Killed:
		return "killed"
	}
	return "unknown"
}

// A Process is the runtime instance of a dataflow process. It becomes ready
// once a token arrived on every input channel.
type Process struct {
	name     string
	app      *Application
	state    ProcessState
	priority int
	cycles   map[string]float64

	pendingInputs int
	outputs       []string

	scheduler *Scheduler
	item      *readyItem
}

// Name returns the name of the dataflow process.
func (p *Process) Name() string {
	return p.name
}

// App returns the application the process belongs to.
func (p *Process) App() *Application {
	return p.app
}

// State returns the current state.
func (p *Process) State() ProcessState {
	return p.state
}

// Priority returns the priority the process was mapped with.
func (p *Process) Priority() int {
	return p.priority
}

// Scheduler returns the scheduler holding the process while it is ready or
// running, otherwise nil.
func (p *Process) Scheduler() *Scheduler {
	return p.scheduler
}

func (p *Process) complete() {
	p.state = Finished
	p.app.processFinished(p)
}

// receive accounts for a token arriving at the process.
func (p *Process) receive() {
	if p.state != Waiting {
		return
	}

	p.pendingInputs--
	if p.pendingInputs == 0 {
		p.app.processReady(p)
	}
}
