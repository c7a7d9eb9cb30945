package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/openml/openml-go/api"
	"github.com/openml/openml-go/api/pipeline"
	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/openml/openml-go/xmlmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) string {
	env := config.Defaults()
	env.AdminKey = "admin-key"
	cfg := config.Config{Environment: env}
	st, err := store.New(&cfg, queue.NewListFIFOQueue(10), nil)
	require.NoError(t, err)
	r, err := api.NewRouter(cfg, st, pipeline.NewEvaluationRunner(&cfg, st))
	require.NoError(t, err)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server.URL + "/"
}

func execute(t *testing.T, server string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)
	RootCmd.SetArgs(append([]string{"--server", server, "--api-key", "user-key"}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func writeDocument[T any](t *testing.T, table *xmlmap.Table[T], v *T) string {
	data, err := table.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "description.xml")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func uploadIris(t *testing.T, server string) int {
	desc := writeDocument(t, model.DatasetDescriptionTable, model.NewDatasetDescription("iris", "CLI test", "arff", "class"))
	out, err := execute(t, server, "data", "upload", desc, "testdata/iris.arff")
	require.NoError(t, err)
	ack, err := model.UploadDataSetTable.Unmarshal([]byte(out))
	require.NoError(t, err)
	return ack.ID
}

func TestDataCommands(t *testing.T) {
	server := newServer(t)
	id := uploadIris(t, server)

	out, err := execute(t, server, "data", "get", strconv.Itoa(id))
	require.NoError(t, err)
	dsd, err := model.DatasetDescriptionTable.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "iris", dsd.Name)

	out, err = execute(t, server, "data", "tag", strconv.Itoa(id), "cli_test")
	require.NoError(t, err)
	ack, err := model.DataTagTable.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Contains(t, ack.Tags, "cli_test")

	out, err = execute(t, server, "data", "features", strconv.Itoa(id))
	require.NoError(t, err)
	features, err := model.DataFeatureTable.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Len(t, features.Features, 5)

	path := filepath.Join(t.TempDir(), "iris.arff")
	_, err = execute(t, server, "data", "download", strconv.Itoa(id), "--out", path)
	require.NoError(t, err)
	downloaded, err := os.ReadFile(path)
	require.NoError(t, err)
	original, err := os.ReadFile("testdata/iris.arff")
	require.NoError(t, err)
	assert.Equal(t, original, downloaded)

	csvPath := filepath.Join(t.TempDir(), "iris.csv")
	_, err = execute(t, server, "data", "csv", strconv.Itoa(id), "--out", csvPath)
	require.NoError(t, err)
	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "sepallength,sepalwidth,petallength,petalwidth,class")
}

func TestValidateCommand(t *testing.T) {
	server := newServer(t)
	desc := writeDocument(t, model.DatasetDescriptionTable, model.NewDatasetDescription("iris", "CLI test", "arff", "class"))

	out, err := execute(t, server, "validate", "openml.data.upload", desc)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	bad := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte(`<oml:data_set_description xmlns:oml="http://openml.org/openml"/>`), 0600))
	_, err = execute(t, server, "validate", "openml.data.upload", bad)
	assert.True(t, openml.IsValidationError(err))
}

func TestCommandErrors(t *testing.T) {
	server := newServer(t)

	_, err := execute(t, server, "data", "get", "abc")
	assert.Error(t, err)

	_, err = execute(t, server, "data", "get", "999")
	code, ok := openml.APIErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, store.CodeUnknownDataset, code)

	_, err = execute(t, server, "run", "upload", "missing.xml", "predictions")
	assert.Error(t, err)

	// tag without an id never reaches the server
	_, err = execute(t, server, "task", "tag", "1")
	assert.Error(t, err)
}
