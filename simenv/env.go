// Package simenv provides the cooperative discrete-event environment that the
// runtime model is written against. It sits on top of an akita engine and
// adds timers, one-shot events and event combinators.
package simenv

import (
	"reflect"

	"github.com/sarchlab/akita/v3/sim"
	log "github.com/sirupsen/logrus"
)

// A Timer is a callback scheduled for a fixed point in simulated time.
type Timer struct {
	time      sim.VTimeInSec
	fn        func()
	cancelled bool
}

// GetTime returns the time the timer fires.
func (t *Timer) GetTime() sim.VTimeInSec {
	return t.time
}

// Cancel prevents the callback from running. Cancelling a timer that already
// fired has no effect.
func (t *Timer) Cancel() {
	t.cancelled = true
}

// A wakeEvent asks the environment to run the earliest pending timer.
type wakeEvent struct {
	*sim.EventBase
}

// Env is the simulation environment. Every timer owns exactly one engine
// event; when an engine event fires, the environment runs the earliest timer
// from its own queue, so callbacks scheduled for the same time run in the
// order they were scheduled.
type Env struct {
	engine sim.Engine
	timers TimeQueue
}

// NewEnv creates an environment driven by the given engine.
func NewEnv(engine sim.Engine) *Env {
	return &Env{
		engine: engine,
		timers: NewTimeQueue(),
	}
}

// Engine returns the underlying akita engine.
func (e *Env) Engine() sim.Engine {
	return e.engine
}

// Now returns the current simulated time.
func (e *Env) Now() sim.VTimeInSec {
	return e.engine.CurrentTime()
}

// At runs fn at time t.
func (e *Env) At(t sim.VTimeInSec, fn func()) *Timer {
	if t < e.Now() {
		log.Panicf("cannot schedule a timer at %.12f, now is %.12f", t, e.Now())
	}

	timer := &Timer{time: t, fn: fn}
	e.timers.Push(timer)

	evt := &wakeEvent{EventBase: sim.NewEventBase(t, e)}
	e.engine.Schedule(evt)

	return timer
}

// After runs fn once d has elapsed.
func (e *Env) After(d sim.VTimeInSec, fn func()) *Timer {
	return e.At(e.Now()+d, fn)
}

// Handle processes engine events addressed to the environment.
func (e *Env) Handle(evt sim.Event) error {
	switch evt := evt.(type) {
	case *wakeEvent:
		e.handleWakeEvent(evt)
	default:
		log.Panicf("cannot handle event of %s", reflect.TypeOf(evt))
	}
	return nil
}

func (e *Env) handleWakeEvent(evt *wakeEvent) {
	timer := e.timers.Pop().(*Timer)
	if timer.time != evt.Time() {
		log.Panicf("timer at %.12f woken at %.12f", timer.time, evt.Time())
	}

	if timer.cancelled {
		return
	}

	timer.fn()
}

// Run drives the engine until no event is left.
func (e *Env) Run() error {
	return e.engine.Run()
}
