package models

import (
	"container/heap"
	"sync"
)

// Arrival is one customer entering the market.
type Arrival struct {
	Time       Timestamp
	CustomerID int

	seq int
}

// ArrivalQueue is a priority queue of arrivals ordered by time. Arrivals with
// equal times come out in the order they were enqueued.
type ArrivalQueue struct {
	arrivals []*Arrival
	nextSeq  int
	mutex    sync.Mutex
}

// arrivalHeap implements heap.Interface and holds Arrivals
type arrivalHeap []*Arrival

func (h arrivalHeap) Len() int { return len(h) }
func (h arrivalHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time.Before(h[j].Time)
	}
	return h[i].seq < h[j].seq
}
func (h arrivalHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *arrivalHeap) Push(x interface{}) {
	*h = append(*h, x.(*Arrival))
}

func (h *arrivalHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func NewArrivalQueue() *ArrivalQueue {
	return &ArrivalQueue{arrivals: make([]*Arrival, 0)}
}

// Enqueue adds an arrival to the queue
func (aq *ArrivalQueue) Enqueue(arrival *Arrival) {
	aq.mutex.Lock()
	defer aq.mutex.Unlock()
	arrival.seq = aq.nextSeq
	aq.nextSeq++
	heap.Push((*arrivalHeap)(&aq.arrivals), arrival)
}

// Dequeue removes and returns the earliest arrival, or nil when empty.
func (aq *ArrivalQueue) Dequeue() *Arrival {
	aq.mutex.Lock()
	defer aq.mutex.Unlock()
	if len(aq.arrivals) == 0 {
		return nil
	}
	return heap.Pop((*arrivalHeap)(&aq.arrivals)).(*Arrival)
}

func (aq *ArrivalQueue) Peek() *Arrival {
	aq.mutex.Lock()
	defer aq.mutex.Unlock()
	if len(aq.arrivals) == 0 {
		return nil
	}
	return aq.arrivals[0]
}

func (aq *ArrivalQueue) IsEmpty() bool {
	aq.mutex.Lock()
	defer aq.mutex.Unlock()
	return len(aq.arrivals) == 0
}

func (aq *ArrivalQueue) Len() int {
	aq.mutex.Lock()
	defer aq.mutex.Unlock()
	return len(aq.arrivals)
}
