package simenv

import (
	"container/list"

	"github.com/sarchlab/akita/v3/sim"
)

// Elem is an element that can be stored in a TimeQueue.
type Elem interface {
	GetTime() sim.VTimeInSec
}

// A TimeQueue keeps elements ordered by time. Elements with the same time
// leave the queue in the order they were pushed.
type TimeQueue interface {
	Push(e Elem)
	Pop() Elem
	Peek() Elem
	Len() int
}

// TimeQueueImpl is a TimeQueue backed by a doubly linked list.
type TimeQueueImpl struct {
	l *list.List
}

// NewTimeQueue creates an empty TimeQueue.
func NewTimeQueue() *TimeQueueImpl {
	return &TimeQueueImpl{
		l: list.New(),
	}
}

// Len returns the number of queued elements.
func (q *TimeQueueImpl) Len() int {
	return q.l.Len()
}

// Push inserts e behind every element that is not later than e.
func (q *TimeQueueImpl) Push(e Elem) {
	var ele *list.Element

	// Most pushes are for "now" or later, so search from the back.
	for ele = q.l.Back(); ele != nil; ele = ele.Prev() {
		if ele.Value.(Elem).GetTime() <= e.GetTime() {
			break
		}
	}

	if ele != nil {
		q.l.InsertAfter(e, ele)
	} else {
		q.l.PushFront(e)
	}
}

// Pop removes and returns the earliest element.
func (q *TimeQueueImpl) Pop() Elem {
	return q.l.Remove(q.l.Front()).(Elem)
}

// Peek returns the earliest element without removing it.
func (q *TimeQueueImpl) Peek() Elem {
	return q.l.Front().Value.(Elem)
}
