package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/openml/openml-go/api/helpers"
	"github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/pkg/errors"
)

// RunGet returns a run.
func RunGet(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		run, err := st.Run(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.RunTable, run)
	}
}

// RunList lists the runs matching the query filters.
func RunList(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListRuns(helpers.Filters(r))
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.RunListTable, list)
	}
}

// RunUpload stores a run. Every file besides the description is an output of the run,
// named by its form field.
func RunUpload(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
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
		outputs := map[string][]byte{}
		for field, data := range upload.Files {
			if field != "description" {
				outputs[field] = data
			}
		}
		id, err := st.UploadRun(middleware.UserFrom(r.Context()), store.RunUpload{
			Description: desc,
			Outputs:     outputs,
			BaseURL:     helpers.BaseURL(r),
		})
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.UploadRunTable, &model.RunAck{RunID: id})
	}
}

// RunAttach attaches the predictions of one part of an evaluation to a run.
func RunAttach(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := helpers.ReadUpload(r)
		if err != nil {
			handleBadRequest(w, r, codeBadUpload, err)
			return
		}
		id, err := upload.Int("run_id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		index, err := upload.Int("index")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		predictions, ok := upload.File("predictions")
		if !ok {
			handleBadRequest(w, r, codeBadUpload, errors.New("predictions missing"))
			return
		}
		files, err := st.AttachPredictions(middleware.UserFrom(r.Context()), id, index, predictions)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.UploadRunAttachTable, &model.RunAttachAck{RunID: id, PredictionFiles: files})
	}
}

// RunDelete removes a run.
func RunDelete(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		if err := st.DeleteRun(middleware.UserFrom(r.Context()), id); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.RunDeleteTable, &model.IDAck{ID: id})
	}
}

// RunTag adds a tag to a run.
func RunTag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "run_id", st.TagRun, model.RunTagTable)
}

// RunUntag removes a tag from a run.
func RunUntag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "run_id", st.UntagRun, model.RunUntagTable)
}

// EvaluationRequest hands queued runs to an evaluation engine.
func EvaluationRequest(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := helpers.IntParam(r, "engine")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		if mode := chi.URLParam(r, "mode"); mode != "normal" && mode != "random" {
			handleBadRequest(w, r, codeBadParameter, errors.Errorf("unknown mode %s", mode))
			return
		}
		num, err := helpers.IntParam(r, "num")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		req, err := st.EvaluationRequest(middleware.UserFrom(r.Context()), engine, num)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.EvaluationRequestTable, req)
	}
}
