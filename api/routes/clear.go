package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// ClearRequest clears the evaluation queue.
func ClearRequest(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.ClearQueue(); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleJSON(w, r, WaitingResponse{st.QueueSize()})
	}
}
