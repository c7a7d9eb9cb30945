package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/helpers"
	"github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/pkg/errors"
)

// TaskGet returns a task.
func TaskGet(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		task, err := st.Task(id)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.TaskTable, task)
	}
}

// TaskUpload creates a task from a task_inputs description.
func TaskUpload(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
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
		id, err := st.UploadTask(middleware.UserFrom(r.Context()), desc)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.UploadTaskTable, &model.IDAck{ID: id})
	}
}

// TaskDelete removes a task.
func TaskDelete(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := helpers.IntParam(r, "id")
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		if err := st.DeleteTask(middleware.UserFrom(r.Context()), id); err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, model.TaskDeleteTable, &model.IDAck{ID: id})
	}
}

// TaskTag adds a tag to a task.
func TaskTag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "task_id", st.TagTask, model.TaskTagTable)
}

// TaskUntag removes a tag from a task.
func TaskUntag(cfg *config.Config, st *store.Store) func(http.ResponseWriter, *http.Request) {
	return tagHandler(cfg, "task_id", st.UntagTask, model.TaskUntagTable)
}
