package routes

import (
	"net/http"

	"github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/store"
)

// RequireAdmin rejects requests that are not made with an admin key.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := middleware.UserFrom(r.Context()); u == nil || !u.Admin {
			writeError(w, r, &store.Error{Status: http.StatusForbidden, Code: store.CodeAdminRequired, Message: "Admin rights are required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
