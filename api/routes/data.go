package routes

import (
	"math/rand"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/openml/openml-go/api/helpers"
	"github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/pkg/errors"
)

// DataGet returns a dataset description.
func DataGet(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		dsd, err := st.Dataset(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DatasetDescriptionTable, dsd)
	}
}

// DataFeatures returns the features of a dataset.
func DataFeatures(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		features, err := st.Features(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataFeatureTable, features)
	}
}

// DataQualities returns the qualities of a dataset.
func DataQualities(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		qualities, err := st.Qualities(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataQualityTable, qualities)
	}
}

// DataQualitiesList returns the names of the computed qualities.
func DataQualitiesList(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handleXML(w, r, model.DataQualityListTable, st.QualityList())
	}
}

// DataList lists the datasets matching the query filters.
func DataList(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListDatasets(helpers.Filters(r))
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataListTable, list)
	}
}

// DataUpload registers a dataset from a description and an optional dataset file.
func DataUpload(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := helpers.ReadUpload(r)
		if err != nil {
			handleBadRequest(w, r, codeBadUpload, err)
			return
		}
		desc, ok := upload.File("description")
		if !ok {
			handleBadRequest(w, r, codeBadUpload, errors.New("description missing"))
			return
		}
		data, _ := upload.File("dataset")
		id, err := st.UploadDataset(r.Context(), middleware.UserFrom(r.Context()), store.DataUpload{
			Description: desc,
			Data:        data,
			BaseURL:     helpers.BaseURL(r),
		})
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.UploadDataSetTable, &model.IDAck{ID: id})
	}
}

// DataDelete removes a dataset.
func DataDelete(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		if err := st.DeleteDataset(middleware.UserFrom(r.Context()), id); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataDeleteTable, &model.IDAck{ID: id})
	}
}

// DataTag adds a tag to a dataset.
func DataTag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "data_id", st.TagDataset, model.DataTagTable)
}

// DataUntag removes a tag from a dataset.
func DataUntag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "data_id", st.UntagDataset, model.DataUntagTable)
}

// DataReset clears the processing state of a dataset.
func DataReset(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		if err := st.ResetDataset(middleware.UserFrom(r.Context()), id); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataResetTable, &model.IDAck{ID: id})
	}
}

// DataStatusUpdate activates or deactivates a dataset.
func DataStatusUpdate(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := helpers.ReadUpload(r)
		if err != nil {
			handleBadRequest(w, r, codeBadUpload, err)
			return
		}
		id, err := upload.Int("data_id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		status := upload.Values["status"]
		if err := st.UpdateStatus(middleware.UserFrom(r.Context()), id, status); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataStatusUpdateTable, &model.StatusAck{ID: id, Status: status})
	}
}

// DataUnprocessed hands a dataset to an evaluation engine for processing.
func DataUnprocessed(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := helpers.IntParam(r, "engine")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		mode := chi.URLParam(r, "mode")
		if mode != "normal" && mode != "random" {
			handleBadRequest(w, r, codeBadParameter, errors.Errorf("unknown mode %s", mode))
			return
		}
		d, err := st.Unprocessed(middleware.UserFrom(r.Context()), engine, mode, rand.Intn)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.DataUnprocessedTable, d)
	}
}
