package connector

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

// APIError is an error reported by the server, either through an error document or a
// non-2xx status.
type APIError struct {
	Method                string
	URL                   string
	StatusCode            int
	Code                  int
	Message               string
	AdditionalInformation string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("openml error %d on %s %s: %s", e.Code, e.Method, e.URL, e.Message)
	if e.AdditionalInformation != "" {
		msg += " (" + e.AdditionalInformation + ")"
	}
	return msg
}

// IOError is a transport or file system failure.
type IOError struct {
	Op     string
	Target string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AsAPIError returns the APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AsIOError returns the IOError in err's chain.
func AsIOError(err error) (*IOError, bool) {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr, true
	}
	return nil, false
}

// ErrorEnvelope is the document the server answers with when a call fails.
type ErrorEnvelope struct {
	Code                  int
	Message               string
	AdditionalInformation *string
}

// ErrorEnvelopeTable binds ErrorEnvelope to oml:error.
var ErrorEnvelopeTable = xmlmap.NewTable("error",
	xmlmap.Int("code", func(e *ErrorEnvelope) *int { return &e.Code }),
	xmlmap.Required("message", func(e *ErrorEnvelope) *string { return &e.Message }),
	xmlmap.OptText("additional_information", func(e *ErrorEnvelope) **string { return &e.AdditionalInformation }),
)

func newAPIError(method, target string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		URL:        Redact(target),
		StatusCode: status,
	}
	if env, err := ErrorEnvelopeTable.Unmarshal(body); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
		apiErr.AdditionalInformation = xmlmap.StringValue(env.AdditionalInformation)
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(truncate(body, 512)))
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("unexpected status %d", status)
	}
	return apiErr
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// Redact hides the api_key parameter of a URL.
func Redact(target string) string {
	if !strings.Contains(target, apiKeyParam) {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Get(apiKeyParam) != "" {
		q.Set(apiKeyParam, "redacted")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
