package middleware

import (
	"context"
	"net/http"

	"github.com/openml/openml-go/api/store"
)

type contextKey struct{ name string }

var userKey = &contextKey{"user"}

// Authenticator resolves api keys to users.
type Authenticator interface {
	Authenticate(key string) *store.User
}

// Authenticate resolves the api_key query parameter and stores the user in the request
// context. Requests without a key proceed anonymously.
func Authenticate(a Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if u := a.Authenticate(r.URL.Query().Get("api_key")); u != nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, u))
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// UserFrom returns the authenticated user, or nil.
func UserFrom(ctx context.Context) *store.User {
	u, _ := ctx.Value(userKey).(*store.User)
	return u
}
