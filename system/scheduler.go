package system

import (
	"github.com/google/btree"
	"github.com/sarchlab/akita/v3/sim"
	"github.com/sirupsen/logrus"

	"gitlab.com/akita/fivegsim/platform"
	"gitlab.com/akita/fivegsim/simenv"
)

// readyItem orders the ready queue by priority, then by arrival.
type readyItem struct {
	process  *Process
	priority int
	seq      uint64
}

func (i *readyItem) Less(than btree.Item) bool {
	o := than.(*readyItem)
	if i.priority != o.priority {
		return i.priority > o.priority
	}
	return i.seq < o.seq
}

type busyInterval struct {
	start, end sim.VTimeInSec
}

type subscription struct {
	id int
	fn func(*Scheduler)
}

// A Scheduler runs the processes placed on its processor one at a time.
type Scheduler struct {
	name      string
	env       *simenv.Env
	processor *platform.Processor
	policy    platform.SchedulingPolicy
	log       *logrus.Entry

	ready           *btree.BTree
	seq             uint64
	dispatchPending bool

	current    *Process
	runStart   sim.VTimeInSec
	completion *simenv.Timer

	nextSubID int
	idleSubs  []subscription
	readySubs []subscription

	busyTime   sim.VTimeInSec
	history    []busyInterval
	historyLen int
}

func newScheduler(
	env *simenv.Env,
	desc *platform.Scheduler,
	historyLen int,
) *Scheduler {
	return &Scheduler{
		name:       desc.Name,
		env:        env,
		processor:  desc.Processors[0],
		policy:     desc.Policy,
		log:        logrus.WithField("component", desc.Name),
		ready:      btree.New(2),
		historyLen: historyLen,
	}
}

// Name returns the scheduler name.
func (s *Scheduler) Name() string {
	return s.name
}

// Processor returns the processor the scheduler owns.
func (s *Scheduler) Processor() *platform.Processor {
	return s.processor
}

// IsIdle tells if no process is executing.
func (s *Scheduler) IsIdle() bool {
	return s.current == nil
}

// ReadyQueue returns the processes waiting to execute, head first.
func (s *Scheduler) ReadyQueue() []*Process {
	processes := make([]*Process, 0, s.ready.Len())
	s.ready.Ascend(func(i btree.Item) bool {
		processes = append(processes, i.(*readyItem).process)
		return true
	})
	return processes
}

// BusyTime returns the total time the processor has been executing.
func (s *Scheduler) BusyTime() sim.VTimeInSec {
	return s.busyTime
}

// SubscribeIdle registers fn to be called every time the scheduler becomes
// idle. Calling the returned function ends the subscription.
func (s *Scheduler) SubscribeIdle(fn func(*Scheduler)) (cancel func()) {
	return s.subscribe(&s.idleSubs, fn)
}

// SubscribeReady registers fn to be called every time a process is added to
// the ready queue. Calling the returned function ends the subscription.
func (s *Scheduler) SubscribeReady(fn func(*Scheduler)) (cancel func()) {
	return s.subscribe(&s.readySubs, fn)
}

func (s *Scheduler) subscribe(subs *[]subscription, fn func(*Scheduler)) func() {
	id := s.nextSubID
	s.nextSubID++
	*subs = append(*subs, subscription{id: id, fn: fn})

	return func() {
		for i, sub := range *subs {
			if sub.id == id {
				*subs = append((*subs)[:i:i], (*subs)[i+1:]...)
				return
			}
		}
	}
}

// notify calls the subscribers in a zero-delay step. Subscriptions
// cancelled before the step are skipped.
func (s *Scheduler) notify(subs *[]subscription) {
	s.env.After(0, func() {
		pending := append([]subscription(nil), (*subs)...)
		for _, sub := range pending {
			if s.isSubscribed(*subs, sub.id) {
				sub.fn(s)
			}
		}
	})
}

func (s *Scheduler) isSubscribed(subs []subscription, id int) bool {
	for _, sub := range subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Enqueue makes a process ready on this scheduler.
func (s *Scheduler) Enqueue(p *Process) {
	if p.state != Waiting && p.state != Ready {
		s.log.Panicf("cannot enqueue %s in state %s", p.Name(), p.state)
	}

	p.state = Ready
	p.scheduler = s
	p.item = &readyItem{process: p, priority: p.priority, seq: s.seq}
	s.seq++
	s.ready.ReplaceOrInsert(p.item)

	s.notify(&s.readySubs)

	if s.IsIdle() && !s.dispatchPending {
		s.dispatchPending = true
		s.env.After(0, s.dispatch)
	}
}

// Remove takes a ready process out of the queue.
func (s *Scheduler) Remove(p *Process) {
	if p.state != Ready || p.scheduler != s {
		s.log.Panicf("%s is not ready on %s", p.Name(), s.name)
	}

	s.ready.Delete(p.item)
	p.item = nil
	p.scheduler = nil
}

func (s *Scheduler) dispatch() {
	s.dispatchPending = false

	if !s.IsIdle() {
		return
	}

	if s.ready.Len() == 0 {
		s.notify(&s.idleSubs)
		return
	}

	item := s.ready.DeleteMin().(*readyItem)
	p := item.process
	p.item = nil

	cycles, found := p.cycles[s.processor.Type]
	if !found {
		s.log.Panicf("%s cannot run on %s of type %s",
			p.Name(), s.processor.Name, s.processor.Type)
	}

	p.state = Running
	s.current = p
	s.runStart = s.env.Now()

	d := s.processor.Ticks(s.policy.SchedulingCycles + cycles)
	s.completion = s.env.After(d, s.complete)
}

func (s *Scheduler) complete() {
	p := s.current
	s.stopRunning()

	p.complete()

	s.dispatch()
}

// Abort stops the executing process without completing it.
func (s *Scheduler) Abort(p *Process) {
	if s.current != p {
		s.log.Panicf("%s is not running on %s", p.Name(), s.name)
	}

	s.completion.Cancel()
	s.stopRunning()

	if !s.dispatchPending {
		s.dispatchPending = true
		s.env.After(0, s.dispatch)
	}
}

func (s *Scheduler) stopRunning() {
	now := s.env.Now()
	s.busyTime += now - s.runStart

	s.history = append(s.history, busyInterval{s.runStart, now})
	if len(s.history) > s.historyLen {
		s.history = s.history[len(s.history)-s.historyLen:]
	}

	s.current.scheduler = nil
	s.current = nil
	s.completion = nil
}

// Load returns the fraction of the last window the processor was busy,
// based on the recent executions the scheduler remembers.
func (s *Scheduler) Load(window sim.VTimeInSec) float64 {
	now := s.env.Now()
	if window <= 0 {
		return 0
	}
	from := now - window

	busy := sim.VTimeInSec(0)
	for _, iv := range s.history {
		start, end := iv.start, iv.end
		if end <= from {
			continue
		}
		if start < from {
			start = from
		}
		busy += end - start
	}
	if s.current != nil {
		start := s.runStart
		if start < from {
			start = from
		}
		busy += now - start
	}

	return float64(busy / window)
}
