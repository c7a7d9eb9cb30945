package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/api/xsd"
	"github.com/openml/openml-go/config"
)

// Schema serves an XML schema document by name.
func Schema(cfg *config.Config) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		doc, ok := xsd.Get(name)
		if !ok {
			writeError(w, r, &store.Error{Status: http.StatusNotFound, Code: codeBadParameter, Message: "Unknown schema", Additional: name})
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		if _, err := w.Write(doc); err != nil {
			cfg.Log().Warnw("failed to write schema", "name", name, "err", err)
		}
	}
}
