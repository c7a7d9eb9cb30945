package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openml/openml-go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cpu.arff" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("@relation cpu\n"))
	}))
	defer server.Close()

	fetch := HTTPFetcher(&config.Config{Environment: config.Defaults()})

	data, err := fetch(context.Background(), server.URL+"/cpu.arff")
	require.NoError(t, err)
	assert.Equal(t, "@relation cpu\n", string(data))

	_, err = fetch(context.Background(), server.URL+"/missing.arff")
	assert.Error(t, err)
}
