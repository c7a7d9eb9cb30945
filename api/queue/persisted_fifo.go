package queue

import (
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"
	"github.com/uncharted-causemos/dque"
)

const queueSegmentSize = 50

// PersistedFIFOQueue is a queue stored on disk through dque so pending runs survive a
// restart.
type PersistedFIFOQueue struct {
	queue   *dque.DQue
	size    int
	pending map[int]bool
	mutex   *sync.RWMutex
}

func pendingRunBuilder() interface{} {
	return &PendingRun{}
}

// pendingCollector gathers the queue contents when a persisted queue is loaded or listed.
type pendingCollector struct {
	runs []PendingRun
}

func (c *pendingCollector) Apply(entry interface{}) error {
	run, ok := entry.(*PendingRun)
	if !ok {
		return errors.Errorf("unexpected queue entry %T", entry)
	}
	c.runs = append(c.runs, *run)
	return nil
}

// NewPersistedFIFOQueue opens the queue stored under queueDir/queueName, creating it
// when it does not exist. The queue holds at most size runs.
func NewPersistedFIFOQueue(size int, queueDir string, queueName string) (EvaluationQueue, error) {
	queuePath := path.Join(queueDir, queueName)

	var queue *dque.DQue
	if _, err := os.Stat(queuePath); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat evaluation queue %s", queuePath)
		}
		if err := os.MkdirAll(queueDir, os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "failed to create evaluation queue dir %s", queueDir)
		}
		queue, err = dque.New(queueName, queueDir, queueSegmentSize, pendingRunBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to initialize evaluation queue %s", queuePath)
		}
	} else {
		queue, err = dque.Open(queueName, queueDir, queueSegmentSize, pendingRunBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load evaluation queue %s", queuePath)
		}
	}

	collector := &pendingCollector{}
	if err := queue.ApplyToQueue(collector); err != nil {
		return nil, errors.Wrapf(err, "failed to rebuild pending set for %s", queuePath)
	}
	pending := make(map[int]bool, len(collector.runs))
	for _, run := range collector.runs {
		pending[run.RunID] = true
	}

	return &PersistedFIFOQueue{
		queue:   queue,
		size:    size,
		pending: pending,
		mutex:   &sync.RWMutex{},
	}, nil
}

// Enqueue adds run unless it is already pending.
func (r *PersistedFIFOQueue) Enqueue(run PendingRun) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pending[run.RunID] {
		return true, nil
	}
	if r.queue.Size() >= r.size {
		return false, nil
	}
	if err := r.queue.Enqueue(&run); err != nil {
		return false, errors.Wrap(err, "failed to enqueue")
	}
	r.pending[run.RunID] = true
	return true, nil
}

// Dequeue removes the oldest run without blocking.
func (r *PersistedFIFOQueue) Dequeue() (PendingRun, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, err := r.queue.Dequeue()
	if err == dque.ErrEmpty {
		return PendingRun{}, false, nil
	}
	if err != nil {
		return PendingRun{}, false, errors.Wrap(err, "failed to dequeue")
	}
	run, ok := entry.(*PendingRun)
	if !ok {
		return PendingRun{}, false, errors.Errorf("unexpected queue entry %T", entry)
	}
	delete(r.pending, run.RunID)
	return *run, true, nil
}

// Size returns the number of pending runs.
func (r *PersistedFIFOQueue) Size() int {
	return r.queue.Size()
}

// Clear drops all pending runs.
func (r *PersistedFIFOQueue) Clear() error {
	// dque has no clear, drain it instead
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.pending = map[int]bool{}
	count := r.queue.Size()
	for i := 0; i < count; i++ {
		if _, err := r.queue.Dequeue(); err != nil {
			return errors.Wrap(err, "failed to clear queue")
		}
	}
	return nil
}

// Close flushes the queue to disk and forbids further operations.
func (r *PersistedFIFOQueue) Close() error {
	return errors.Wrap(r.queue.Close(), "failed to close queue")
}

// GetAll returns the pending runs, oldest first.
func (r *PersistedFIFOQueue) GetAll() ([]PendingRun, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	collector := &pendingCollector{}
	if err := r.queue.ApplyToQueue(collector); err != nil {
		return nil, errors.Wrap(err, "failed to read queue")
	}
	return collector.runs, nil
}
