package simenv

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v3/sim"
)

var _ = Describe("TimeQueue", func() {
	It("should keep insertion order for equal times", func() {
		q := NewTimeQueue()
		a := &Timer{time: 2}
		b := &Timer{time: 1}
		c := &Timer{time: 2}
		d := &Timer{time: 0}

		q.Push(a)
		q.Push(b)
		q.Push(c)
		q.Push(d)

		Expect(q.Len()).To(Equal(4))
		Expect(q.Pop()).To(BeIdenticalTo(d))
		Expect(q.Pop()).To(BeIdenticalTo(b))
		Expect(q.Peek()).To(BeIdenticalTo(a))
		Expect(q.Pop()).To(BeIdenticalTo(a))
		Expect(q.Pop()).To(BeIdenticalTo(c))
	})
})

var _ = Describe("Env", func() {
	var (
		env *Env
	)

	BeforeEach(func() {
		env = NewEnv(sim.NewSerialEngine())
	})

	It("should run timers in time order", func() {
		var order []string
		env.At(2, func() { order = append(order, "late") })
		env.At(1, func() { order = append(order, "early") })
		env.At(1, func() { order = append(order, "early-second") })

		Expect(env.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"early", "early-second", "late"}))
		Expect(env.Now()).To(Equal(sim.VTimeInSec(2)))
	})

	It("should skip cancelled timers", func() {
		fired := false
		t := env.After(1, func() { fired = true })
		t.Cancel()

		Expect(env.Run()).To(Succeed())
		Expect(fired).To(BeFalse())
	})

	It("should run a zero timeout after already pending work", func() {
		var order []string
		env.At(1, func() {
			env.After(0, func() { order = append(order, "pending") })
			env.Timeout(0).AddCallback(func(*Event) {
				order = append(order, "yield")
			})
		})

		Expect(env.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"pending", "yield"}))
	})

	It("should panic when scheduling in the past", func() {
		env.At(1, func() {
			Expect(func() { env.At(0.5, func() {}) }).To(Panic())
		})
		Expect(env.Run()).To(Succeed())
	})
})

var _ = Describe("Event", func() {
	var (
		env *Env
	)

	BeforeEach(func() {
		env = NewEnv(sim.NewSerialEngine())
	})

	It("should run callbacks after succeed", func() {
		ev := env.NewEvent()
		var got interface{}
		ev.AddCallback(func(e *Event) { got = e.Value() })

		ev.Succeed(42)
		Expect(ev.Triggered()).To(BeTrue())
		Expect(ev.Processed()).To(BeFalse())

		Expect(env.Run()).To(Succeed())
		Expect(got).To(Equal(42))
		Expect(ev.Processed()).To(BeTrue())
	})

	It("should run late callbacks of processed events", func() {
		ev := env.NewEvent()
		ev.Succeed(nil)
		Expect(env.Run()).To(Succeed())

		called := false
		ev.AddCallback(func(*Event) { called = true })
		Expect(env.Run()).To(Succeed())
		Expect(called).To(BeTrue())
	})

	It("should panic on double succeed", func() {
		ev := env.NewEvent()
		ev.Succeed(nil)
		Expect(func() { ev.Succeed(nil) }).To(Panic())
	})

	It("should trigger any-of with the first event", func() {
		slow := env.Timeout(2)
		fast := env.Timeout(1)
		var at sim.VTimeInSec
		var first interface{}

		env.AnyOf(slow, fast).AddCallback(func(e *Event) {
			at = env.Now()
			first = e.Value()
		})

		Expect(env.Run()).To(Succeed())
		Expect(at).To(Equal(sim.VTimeInSec(1)))
		Expect(first).To(BeIdenticalTo(fast))
	})

	It("should trigger all-of after the last event", func() {
		var at sim.VTimeInSec
		env.AllOf(env.Timeout(1), env.Timeout(3), env.Timeout(2)).
			AddCallback(func(*Event) { at = env.Now() })

		Expect(env.Run()).To(Succeed())
		Expect(at).To(Equal(sim.VTimeInSec(3)))
	})

	It("should trigger an empty all-of immediately", func() {
		called := false
		env.AllOf().AddCallback(func(*Event) { called = true })

		Expect(env.Run()).To(Succeed())
		Expect(called).To(BeTrue())
		Expect(env.Now()).To(Equal(sim.VTimeInSec(0)))
	})
})
