package openml

import (
	"fmt"

	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/schema"
	"github.com/pkg/errors"
)

// UsageError reports a call made with missing or contradictory arguments. No request
// is sent when it is returned.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid %s call: %s", e.Op, e.Reason)
}

func usage(op string, format string, args ...interface{}) error {
	return &UsageError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsAPIError reports whether err was returned by the server.
func IsAPIError(err error) bool {
	_, ok := connector.AsAPIError(err)
	return ok
}

// APIErrorCode returns the OpenML error code carried by err.
func APIErrorCode(err error) (int, bool) {
	apiErr, ok := connector.AsAPIError(err)
	if !ok {
		return 0, false
	}
	return apiErr.Code, true
}

// IsIOError reports whether err is a transport or file system failure.
func IsIOError(err error) bool {
	_, ok := connector.AsIOError(err)
	return ok
}

// IsUsageError reports whether err is a UsageError.
func IsUsageError(err error) bool {
	var uErr *UsageError
	return errors.As(err, &uErr)
}

// IsValidationError reports whether err is a schema violation.
func IsValidationError(err error) bool {
	return schema.IsValidationError(err)
}
