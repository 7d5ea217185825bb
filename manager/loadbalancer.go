package manager

import (
	"gitlab.com/akita/fivegsim/dataflow"
	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/profiler"
	"gitlab.com/akita/fivegsim/simenv"
	"gitlab.com/akita/fivegsim/system"
)

// A LoadBalancer places every application on a single core, chosen round
// robin, and lets idle schedulers steal ready processes from busy ones.
type LoadBalancer struct {
	base

	metrics *profiler.Metrics

	running    map[string]*system.Application
	wakeUp     *simenv.Event
	nextPE     int
	unsubIdle  []func()
	schedulers []*system.Scheduler
}

// NewLoadBalancer creates a load balancer for the system.
func NewLoadBalancer(
	sys *system.System,
	stats *profiler.ManagerStatistics,
) *LoadBalancer {
	lb := &LoadBalancer{
		base:       newBase(sys, stats, "load_balancer"),
		metrics:    sys.Metrics(),
		running:    make(map[string]*system.Application),
		wakeUp:     sys.Env().NewEvent(),
		schedulers: sys.Schedulers(),
	}

	for _, s := range lb.schedulers {
		lb.unsubIdle = append(lb.unsubIdle, s.SubscribeIdle(lb.schedulerIdle))
	}

	return lb
}

// Name returns the manager name.
func (lb *LoadBalancer) Name() string {
	return "Load Balancer"
}

// Run starts the main loop.
func (lb *LoadBalancer) Run() *simenv.Event {
	lb.log.Info("Starting up")
	lb.done = lb.env.NewEvent()
	lb.wait()
	return lb.done
}

func (lb *LoadBalancer) wait() {
	lb.env.AnyOf(lb.wakeUp, lb.shutdown).AddCallback(func(*simenv.Event) {
		if lb.shutdown.Triggered() {
			lb.drain(lb.unsubscribe)
			return
		}

		// Let the schedulers see the new work before scanning them.
		lb.env.Timeout(0).AddCallback(func(*simenv.Event) {
			lb.log.Debug("Looking for idle schedulers")
			for _, s := range lb.schedulers {
				if s.IsIdle() {
					lb.stealTask(s)
				}
			}
			lb.wait()
		})
	})
}

func (lb *LoadBalancer) unsubscribe() {
	for _, cancel := range lb.unsubIdle {
		cancel()
	}
	lb.unsubIdle = nil
}

func (lb *LoadBalancer) wake() {
	lb.wakeUp.Succeed(nil)
	lb.wakeUp = lb.env.NewEvent()
}

// StartApplications maps every graph to the next regular core and starts it.
func (lb *LoadBalancer) StartApplications(
	graphs []*dataflow.Graph,
	traces []dataflow.Trace,
) error {
	for name, app := range lb.running {
		if app.IsFinished() {
			delete(lb.running, name)
		}
	}

	for i, g := range graphs {
		timeout, err := g.Timeout()
		if err != nil {
			return err
		}

		now := lb.env.Now()
		deadline := now + timeout
		entry := lb.stats.NewApplication(g, now, deadline)
		entry.Accepted = true

		pe := lb.nextProcessor()
		lb.log.Debugf("Mapping %s to processor %s", g.Name, pe.Name)

		m, err := mapping.SingleCore(g, lb.system.Platform(), pe,
			mapping.DefaultChannelCapacity)
		if err != nil {
			return err
		}

		app := system.NewApplication(g.Name, g, traces[i], lb.system, deadline, entry)
		if _, err := app.Run(m); err != nil {
			return err
		}

		lb.log.Debugf("Launching the application %s", g.Name)
		lb.running[g.Name] = app
		lb.track(app)
	}

	lb.wake()

	return nil
}

// nextProcessor cycles through the processors, skipping accelerators.
func (lb *LoadBalancer) nextProcessor() *platform.Processor {
	pes := lb.system.Platform().Processors()
	for range pes {
		pe := pes[lb.nextPE]
		lb.nextPE = (lb.nextPE + 1) % len(pes)
		if !pe.IsAccelerator() {
			return pe
		}
	}

	lb.log.Panicf("platform %s has no regular processor", lb.system.Platform().Name)
	return nil
}

func (lb *LoadBalancer) schedulerIdle(s *system.Scheduler) {
	lb.log.Debugf("Scheduler %s became idle", s.Name())
	lb.stealTask(s)
}

// stealTask moves one ready process from a busy scheduler to s.
func (lb *LoadBalancer) stealTask(s *system.Scheduler) {
	var busy []*system.Scheduler
	for _, other := range lb.schedulers {
		if !other.IsIdle() {
			busy = append(busy, other)
		}
	}
	if len(busy) == 0 {
		return
	}

	var waitFor []*system.Scheduler
	for _, victim := range busy {
		queue := victim.ReadyQueue()
		if len(queue) == 0 {
			waitFor = append(waitFor, victim)
			continue
		}

		p := lb.pickProcess(queue, s.Processor())
		if p == nil {
			continue
		}

		lb.log.Debugf("%s steals %s from %s", s.Name(), p.Name(), victim.Name())
		lb.move(p, victim, s)
		lb.metrics.Steals.Inc()
		return
	}

	lb.log.Debugf("Did not find a task to steal for %s", s.Name())
	lb.metrics.FailedSteals.Inc()

	if len(waitFor) > 0 {
		lb.wakeOnReady(waitFor)
	}
}

func (lb *LoadBalancer) pickProcess(
	queue []*system.Process,
	thief *platform.Processor,
) *system.Process {
	if !thief.IsAccelerator() {
		return queue[0]
	}

	for _, p := range queue {
		if thief.Supports(p.Name()) {
			return p
		}
	}

	return nil
}

func (lb *LoadBalancer) move(p *system.Process, from, to *system.Scheduler) {
	app := p.App()
	lb.system.MoveProcess(p, from, to)

	channels, err := app.ChannelsTouching(p.Name())
	if err != nil {
		lb.log.Panic(err)
	}

	for _, ch := range channels {
		if len(ch.Sinks()) != 1 {
			lb.log.Panicf("channel %s has %d sinks, can only rebalance one",
				ch.Name, len(ch.Sinks()))
		}

		src := app.ProcessorOf(ch.Source())
		sink := app.ProcessorOf(ch.Sinks()[0])

		prim, err := mapping.BestPrimitive(lb.system.Platform(), src, sink)
		if err != nil {
			lb.log.Panic(err)
		}
		app.SetPrimitive(ch.Name, prim)
	}
}

// wakeOnReady wakes the main loop once any of the schedulers gets new ready
// work.
func (lb *LoadBalancer) wakeOnReady(schedulers []*system.Scheduler) {
	var cancels []func()
	fired := false

	onReady := func(*system.Scheduler) {
		if fired {
			return
		}
		fired = true
		for _, cancel := range cancels {
			cancel()
		}

		lb.log.Debug("A scheduler has new ready processes")
		lb.wake()
	}

	for _, s := range schedulers {
		cancels = append(cancels, s.SubscribeReady(onReady))
	}
}
