// Package queue holds runs waiting to be handed to an evaluation engine.
package queue

import (
	"container/list"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// EvaluationQueue defines a FIFO of pending runs. A run is queued at most once.
type EvaluationQueue interface {
	// Enqueue adds a run. It returns false when the queue is full; queueing a run that is
	// already pending is a no-op that returns true.
	Enqueue(run PendingRun) (bool, error)
	// Dequeue removes the oldest run. ok is false when the queue is empty.
	Dequeue() (run PendingRun, ok bool, err error)
	Clear() error
	Close() error
	Size() int
	GetAll() ([]PendingRun, error)
}

// PendingRun is a run waiting for evaluation.
type PendingRun struct {
	RunID    int
	TaskID   int
	Enqueued time.Time
}

// ListFIFOQueue is an in-memory queue based on a doubly linked list. Its contents do
// not survive a restart.
type ListFIFOQueue struct {
	queue   *list.List
	pending map[int]bool
	size    int
	closed  bool
	mutex   *sync.RWMutex
}

// NewListFIFOQueue creates an empty queue holding at most size runs.
func NewListFIFOQueue(size int) EvaluationQueue {
	return &ListFIFOQueue{
		queue:   list.New(),
		pending: map[int]bool{},
		size:    size,
		mutex:   &sync.RWMutex{},
	}
}

// Enqueue adds run unless it is already pending.
func (r *ListFIFOQueue) Enqueue(run PendingRun) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return false, errors.New("no enqueue after close")
	}
	if r.pending[run.RunID] {
		return true, nil
	}
	if r.queue.Len() >= r.size {
		return false, nil
	}
	r.queue.PushBack(run)
	r.pending[run.RunID] = true
	return true, nil
}

// Dequeue removes the oldest run without blocking.
func (r *ListFIFOQueue) Dequeue() (PendingRun, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return PendingRun{}, false, errors.New("no dequeue after close")
	}
	front := r.queue.Front()
	if front == nil {
		return PendingRun{}, false, nil
	}
	run := r.queue.Remove(front).(PendingRun)
	delete(r.pending, run.RunID)
	return run, true, nil
}

// Size returns the number of pending runs.
func (r *ListFIFOQueue) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.queue.Len()
}

// Clear drops all pending runs.
func (r *ListFIFOQueue) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return errors.New("no queue clear after close")
	}
	r.queue.Init()
	r.pending = map[int]bool{}
	return nil
}

// Close forbids further operations.
func (r *ListFIFOQueue) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return errors.New("no close of previously closed queue")
	}
	r.closed = true
	return nil
}

// GetAll returns the pending runs, oldest first.
func (r *ListFIFOQueue) GetAll() ([]PendingRun, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	runs := make([]PendingRun, 0, r.queue.Len())
	for e := r.queue.Front(); e != nil; e = e.Next() {
		run, ok := e.Value.(PendingRun)
		if !ok {
			return nil, errors.Errorf("unexpected queue entry %T", e.Value)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
