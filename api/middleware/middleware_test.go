package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openml/openml-go/api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type keys map[string]*store.User

func (k keys) Authenticate(key string) *store.User {
	return k[key]
}

func TestRequestLogger(t *testing.T) {
	line := newRequestLogger().
		requestType("GET").
		request("/api/v1//data/61").
		params("api_key=secret").
		status(200).
		duration(1500 * time.Microsecond).
		render().String()

	assert.Contains(t, line, "GET /api/v1/data/61?0x")
	assert.Contains(t, line, " 200 in 1.50ms")
	assert.NotContains(t, line, "secret")

	assert.Equal(t, "GET / 404 in 0.00ms", newRequestLogger().requestType("GET").request("/").params("").status(404).duration(0).render().String())
}

func TestAuthenticateAndLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	user := &store.User{ID: 7, Name: "user7"}

	var seen *store.User
	handler := Authenticate(keys{"k": user})(Logger(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/data/1?api_key=k", nil))
	assert.Same(t, user, seen)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.NotContains(t, entry.Message, "api_key")
	assert.Equal(t, int64(7), entry.ContextMap()["user"])

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/data/1?api_key=unknown", nil))
	assert.Nil(t, seen)
}
