package pipeline

import (
	"sync"
	"time"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// EvaluationRunner services the evaluation queue by scoring the predictions of queued
// runs on the server.
type EvaluationRunner struct {
	config.Config
	store *store.Store
	// done is closed to stop the current polling loop; nil when stopped
	done  chan struct{}
	mutex *sync.RWMutex
	// serializes Submit so a forced dispatch never races the polling loop
	submitMutex *sync.Mutex
}

// NewEvaluationRunner creates a new instance of an evaluation runner.
func NewEvaluationRunner(cfg *config.Config, st *store.Store) *EvaluationRunner {
	return &EvaluationRunner{
		Config: config.Config{
			Logger:      cfg.Log(),
			Environment: cfg.Environment,
		},
		store:       st,
		mutex:       &sync.RWMutex{},
		submitMutex: &sync.Mutex{},
	}
}

// Start initiates evaluation queue servicing.
func (e *EvaluationRunner) Start() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.done != nil {
		return
	}
	done := make(chan struct{})
	e.done = done

	// Read from the queue until we get shut down.
	go func() {
		for {
			if _, err := e.Submit(); err != nil {
				e.Logger.Error(err)
			}
			select {
			case <-done:
				return
			case <-time.After(e.Environment.PollInterval()):
			}
		}
	}()
}

// Submit evaluates the next queued run. It reports the id of the evaluated run, or 0
// when the queue is empty.
func (e *EvaluationRunner) Submit() (int, error) {
	e.submitMutex.Lock()
	defer e.submitMutex.Unlock()

	pending, ok, err := e.store.NextPendingRun()
	if err != nil || !ok {
		return 0, err
	}
	files, err := e.store.Predictions(pending.RunID)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		e.Logger.Warnw("run has no predictions to evaluate", "run", pending.RunID)
		return pending.RunID, nil
	}
	evaluations, err := Score(files)
	if err != nil {
		e.Logger.Warnw("failed to score run", "run", pending.RunID, "err", err)
		return pending.RunID, nil
	}
	if err := e.store.AddEvaluations(pending.RunID, evaluations); err != nil {
		return 0, err
	}
	e.Logger.Infow("run evaluated", "run", pending.RunID, "task", pending.TaskID,
		"engine", e.Environment.EvaluatorEngineID, "waited", time.Since(pending.Enqueued).String(),
		"value", *evaluations[0].Value)
	return pending.RunID, nil
}

// Stop ends queue servicing. Runs can still be uploaded, but they stay queued.
func (e *EvaluationRunner) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.done == nil {
		return
	}
	close(e.done)
	e.done = nil
}

// Running indicates whether or not the runner routine has been stopped, or is currently
// running.
func (e *EvaluationRunner) Running() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.done != nil
}
