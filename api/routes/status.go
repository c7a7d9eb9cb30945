package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// StatusRequest creates a get request handler that will return the number of stored
// entities and waiting runs.
func StatusRequest(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handleJSON(w, r, st.Stats())
	}
}
