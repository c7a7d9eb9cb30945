package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// codes for malformed requests that never reach the store
const (
	codeBadParameter = 100
	codeBadUpload    = 101
	codeInternal     = 500
)

func handleJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, data)
}

func handleXML[T any](w http.ResponseWriter, r *http.Request, table *xmlmap.Table[T], v *T) {
	render.XML(w, r, xmlmap.Document(table.Encode(v)))
}

// handleErrorType answers with an OpenML error document. Store errors carry their own
// status and code; anything else is logged and reported as an internal error.
func handleErrorType(w http.ResponseWriter, r *http.Request, err error, logger *zap.SugaredLogger) {
	var sErr *store.Error
	if !errors.As(err, &sErr) {
		logger.Errorf("%+v", err)
		sErr = &store.Error{
			Status:  http.StatusInternalServerError,
			Code:    codeInternal,
			Message: "An error occured on the server while processing the request",
		}
	}
	writeError(w, r, sErr)
}

func handleBadRequest(w http.ResponseWriter, r *http.Request, code int, err error) {
	writeError(w, r, &store.Error{
		Status:     http.StatusPreconditionFailed,
		Code:       code,
		Message:    "Problem with the request",
		Additional: err.Error(),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, sErr *store.Error) {
	envelope := &connector.ErrorEnvelope{
		Code:                  sErr.Code,
		Message:               sErr.Message,
		AdditionalInformation: xmlmap.String(sErr.Additional),
	}
	render.Status(r, sErr.Status)
	handleXML(w, r, connector.ErrorEnvelopeTable, envelope)
}
