package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Logger creates a middleware wrapper around a zap Sugared logger that logs
// HTTP requests. Query strings are logged as a checksum since they carry api keys.
func Logger(l *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			lw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			h.ServeHTTP(lw, r)
			if lw.Status() == 0 {
				lw.WriteHeader(http.StatusOK)
			}
			entry := newRequestLogger().
				requestType(r.Method).
				request(r.URL.Path).
				params(r.URL.RawQuery).
				status(lw.Status()).
				duration(time.Since(t1))
			keysAndValues := []interface{}{
				"request_id", middleware.GetReqID(r.Context()),
				"bytes", lw.BytesWritten(),
			}
			if u := UserFrom(r.Context()); u != nil {
				keysAndValues = append(keysAndValues, "user", u.ID)
			}
			if lw.Status() < 500 {
				l.Infow(entry.render().String(), keysAndValues...)
			} else {
				l.Warnw(entry.render().String(), keysAndValues...)
			}
		}
		return http.HandlerFunc(fn)
	}
}
