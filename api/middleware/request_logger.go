package middleware

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/vova616/xxhash"
)

type requestLogger struct {
	buf *bytes.Buffer
}

func newRequestLogger() *requestLogger {
	return &requestLogger{
		buf: &bytes.Buffer{},
	}
}

func (r *requestLogger) write(format string, args ...interface{}) {
	fmt.Fprintf(r.buf, format, args...)
}

func (r *requestLogger) requestType(reqType string) *requestLogger {
	r.write("%s ", reqType)
	return r
}

// request writes path with empty segments collapsed.
func (r *requestLogger) request(path string) *requestLogger {
	written := false
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			r.write("/%s", c)
			written = true
		}
	}
	if !written {
		r.write("/")
	}
	return r
}

func (r *requestLogger) params(query string) *requestLogger {
	if query == "" {
		r.buf.WriteString(" ")
		return r
	}
	r.write("?%#x ", xxhash.Checksum32([]byte(query)))
	return r
}

func (r *requestLogger) status(status int) *requestLogger {
	r.write("%03d", status)
	return r
}

func (r *requestLogger) duration(duration time.Duration) *requestLogger {
	r.write(" in %.2fms", duration.Seconds()*1000)
	return r
}

func (r *requestLogger) render() *bytes.Buffer {
	return r.buf
}
