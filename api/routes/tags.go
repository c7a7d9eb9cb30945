package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/helpers"
	"github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

type tagFunc func(u *store.User, id int, tag string) ([]string, error)

// tagHandler serves a tag or untag call whose form names the entity in idField.
func tagHandler(cfg *config.Config, idField string, apply tagFunc, table *xmlmap.Table[model.TagAck]) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := helpers.ReadUpload(r)
		if err != nil {
			handleBadRequest(w, r, codeBadUpload, err)
			return
		}
		id, err := upload.Int(idField)
		if err != nil {
			handleBadRequest(w, r, codeBadParameter, err)
			return
		}
		tag := upload.Values["tag"]
		if tag == "" {
			handleBadRequest(w, r, codeBadParameter, errors.New("tag missing"))
			return
		}
		tags, err := apply(middleware.UserFrom(r.Context()), id, tag)
		if err != nil {
			handleErrorType(w, r, err, cfg.Log())
			return
		}
		handleXML(w, r, table, &model.TagAck{ID: id, Tags: tags})
	}
}
