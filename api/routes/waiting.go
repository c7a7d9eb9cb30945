package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// WaitingResponse provides the number of runs waiting for evaluation
type WaitingResponse struct {
	Count int `json:"count"`
}

// Waiting creates a get request handler that will return the number of runs currently waiting in the evaluation queue
func Waiting(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handleJSON(w, r, WaitingResponse{st.QueueSize()})
	}
}
