package routes

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/openml/openml-go/api/helpers"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// Download serves a stored file.
func Download(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "file")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		f, err := st.File(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		if _, err := w.Write(f.Data); err != nil {
			cfg.Log().Warnw("failed to write file", "id", id, "err", err)
		}
	}
}

// DownloadCSV serves an ARFF data file converted to CSV.
func DownloadCSV(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "file")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		records, err := st.DatasetRecords(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			cfg.Log().Warnw("failed to write csv", "id", id, "err", err)
		}
	}
}
