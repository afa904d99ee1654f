package core

import (
	"sync"
	"time"
)

type ObserveActionType = byte

const (
	ObserveActionCreate ObserveActionType = iota
	ObserveActionAcquire
	ObserveActionRelease
	ObserveActionEvict
	ObserveActionDestroy
)

// Event records one slot lifecycle transition for Watch consumers.
type Event struct {
	Action   ObserveActionType
	SlotID   string
	UseCount uint64
	At       time.Time
}

// Observer buffers events in a fixed ring. When the ring fills the
// oldest event is dropped; observation never backpressures the pool.
type Observer struct {
	queue allocQueue
	mu    sync.Mutex
}

func NewObserver(capacity uint64) *Observer {
	// one ring slot stays open to tell full from empty, so the buffer
	// is sized capacity+1 to hold capacity events
	return &Observer{
		queue: allocQueue{
			Events:   make([]*Event, capacity+1),
			Capacity: capacity + 1,
		},
	}
}

func (o *Observer) putEvent(e *Event) {
	o.mu.Lock()
	if o.queue.isFull() {
		o.queue.frontTakeAStep()
	}
	o.queue.push(e)
	o.mu.Unlock()
}

func (o *Observer) getEvent() *Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.queue.isEmpty() {
		return nil
	}
	return o.queue.pop()
}

func (o *Observer) sendEvent(c chan *Event, stop chan struct{}) {
	for {
		e := o.getEvent()
		if e == nil {
			select {
			case <-stop:
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		select {
		case c <- e:
		case <-stop:
			return
		}
	}
}

type allocQueue struct {
	Events   []*Event
	Capacity uint64
	Front    uint64
	Back     uint64
}

func (aq *allocQueue) push(e *Event) {
	aq.Events[aq.Back] = e
	aq.Back = (aq.Back + 1) % aq.Capacity
}

func (aq *allocQueue) pop() *Event {
	aqe := aq.Events[aq.Front]
	aq.frontTakeAStep()
	return aqe
}

func (aq *allocQueue) isFull() bool {
	return (aq.Back+1)%aq.Capacity == aq.Front
}

func (aq *allocQueue) isEmpty() bool {
	return aq.Back == aq.Front
}

func (aq *allocQueue) frontTakeAStep() {
	aq.Front = (aq.Front + 1) % aq.Capacity
}
