package simenv

import (
	"github.com/sarchlab/akita/v3/sim"
	log "github.com/sirupsen/logrus"
)

// An Event is a one-shot occurrence. Callbacks attached to an event run, in
// the order they were added, as a zero-delay step after the event triggers.
type Event struct {
	env       *Env
	triggered bool
	processed bool
	value     interface{}
	callbacks []func(*Event)
}

// NewEvent creates an event that has not triggered yet.
func (e *Env) NewEvent() *Event {
	return &Event{env: e}
}

// Triggered tells if the event has succeeded.
func (ev *Event) Triggered() bool {
	return ev.triggered
}

// Processed tells if the callbacks of the event have already run.
func (ev *Event) Processed() bool {
	return ev.processed
}

// Value returns the value the event succeeded with.
func (ev *Event) Value() interface{} {
	return ev.value
}

// Succeed triggers the event.
func (ev *Event) Succeed(value interface{}) {
	if ev.triggered {
		log.Panicf("event has already been triggered")
	}

	ev.triggered = true
	ev.value = value
	ev.env.After(0, ev.process)
}

// AddCallback registers cb. If the event has already been processed, cb is
// scheduled as a zero-delay step.
func (ev *Event) AddCallback(cb func(*Event)) {
	if ev.processed {
		ev.env.After(0, func() { cb(ev) })
		return
	}

	ev.callbacks = append(ev.callbacks, cb)
}

func (ev *Event) process() {
	ev.processed = true

	callbacks := ev.callbacks
	ev.callbacks = nil
	for _, cb := range callbacks {
		cb(ev)
	}
}

// Timeout returns an event that triggers after d.
func (e *Env) Timeout(d sim.VTimeInSec) *Event {
	ev := e.NewEvent()
	e.After(d, func() {
		ev.triggered = true
		ev.process()
	})
	return ev
}

// AnyOf returns an event that triggers as soon as one of events has been
// processed. Its value is the first event.
func (e *Env) AnyOf(events ...*Event) *Event {
	cond := e.NewEvent()
	if len(events) == 0 {
		cond.Succeed(nil)
		return cond
	}

	for _, ev := range events {
		ev.AddCallback(func(ev *Event) {
			if !cond.triggered {
				cond.Succeed(ev)
			}
		})
	}

	return cond
}

// AllOf returns an event that triggers once all events have been processed.
func (e *Env) AllOf(events ...*Event) *Event {
	cond := e.NewEvent()
	remaining := len(events)
	if remaining == 0 {
		cond.Succeed(nil)
		return cond
	}

	for _, ev := range events {
		ev.AddCallback(func(*Event) {
			remaining--
			if remaining == 0 {
				cond.Succeed(events)
			}
		})
	}

	return cond
}
