package routes

import (
	"net/http"
	"time"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// JobData describes a run waiting for evaluation.
type JobData struct {
	RunID    int       `json:"run_id"`
	TaskID   int       `json:"task_id"`
	Enqueued time.Time `json:"enqueued"`
}

// JobsRequest returns the runs in the evaluation queue, oldest first.
func JobsRequest(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := st.PendingRuns()
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		jobData := make([]JobData, len(pending))
		for i, p := range pending {
			jobData[i] = JobData{RunID: p.RunID, TaskID: p.TaskID, Enqueued: p.Enqueued}
		}
		handleJSON(w, r, jobData)
	}
}
