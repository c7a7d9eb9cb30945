package helpers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

const maxUploadMemory = 32 << 20

// Upload is a parsed multipart upload: its form values and attached files by field.
type Upload struct {
	Values map[string]string
	Files  map[string][]byte
}

// File returns the attachment with the given field name.
func (u *Upload) File(field string) ([]byte, bool) {
	data, ok := u.Files[field]
	return data, ok
}

// Int returns form value name as a number.
func (u *Upload) Int(name string) (int, error) {
	v, ok := u.Values[name]
	if !ok || v == "" {
		return 0, errors.Errorf("%s missing", name)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("%s is not a number: %s", name, v)
	}
	return i, nil
}

// ReadUpload parses a multipart/form-data request body.
func ReadUpload(r *http.Request) (*Upload, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, errors.Wrap(err, "failed to parse multipart body")
	}
	upload := &Upload{Values: map[string]string{}, Files: map[string][]byte{}}
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			upload.Values[k] = v[0]
		}
	}
	for field, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		data, err := readPart(headers[0])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read file %s", field)
		}
		upload.Files[field] = data
	}
	return upload, nil
}

func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// IntParam returns URL parameter name as a positive number.
func IntParam(r *http.Request, name string) (int, error) {
	v := chi.URLParam(r, name)
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return 0, errors.Errorf("%s must be a positive number, got %q", name, v)
	}
	return i, nil
}

// Filters returns the query parameters of r except the api key.
func Filters(r *http.Request) map[string]string {
	filters := map[string]string{}
	for k, v := range r.URL.Query() {
		if k == "api_key" || len(v) == 0 {
			continue
		}
		filters[k] = v[0]
	}
	return filters
}

// BaseURL returns the root URL the request was addressed to.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.ToLower(fwd)
	}
	return scheme + "://" + r.Host + "/"
}
