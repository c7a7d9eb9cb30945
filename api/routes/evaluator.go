package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/pipeline"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// EvaluatorState reports whether the evaluation runner is servicing the queue.
type EvaluatorState struct {
	Running bool `json:"running"`
	Waiting int  `json:"waiting"`
}

// DispatchResponse names the run evaluated by a forced dispatch, 0 when none was queued.
type DispatchResponse struct {
	RunID int `json:"run_id"`
}

// EvaluatorStatusRequest returns the runner state.
func EvaluatorStatusRequest(cfg *config.Config, st *store.Store, runner *pipeline.EvaluationRunner) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handleJSON(w, r, EvaluatorState{Running: runner.Running(), Waiting: st.QueueSize()})
	}
}

// StartRequest will start the evaluation runner.  If its already running then the request does nothing.
func StartRequest(cfg *config.Config, runner *pipeline.EvaluationRunner) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		runner.Start()
		cfg.Log().Info("evaluation runner started")
	}
}

// StopRequest stops the evaluation runner.  Runs can still be uploaded, but the queue will not be serviced.
func StopRequest(cfg *config.Config, runner *pipeline.EvaluationRunner) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		runner.Stop()
		cfg.Log().Info("evaluation runner stopped")
	}
}

// ForceDispatchRequest evaluates the next queued run whether or not the runner is running.
func ForceDispatchRequest(cfg *config.Config, runner *pipeline.EvaluationRunner) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := runner.Submit()
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleJSON(w, r, DispatchResponse{RunID: id})
	}
}
