package store

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminKey = "admin-key"
	baseURL  = "http://openml.test/"
)

func newStore(t *testing.T, fetch Fetcher) *Store {
	cfg := &config.Config{Environment: &config.Environment{AdminKey: adminKey}}
	s, err := New(cfg, queue.NewListFIFOQueue(10), fetch)
	require.NoError(t, err)
	return s
}

func readFile(t *testing.T, name string) []byte {
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	var sErr *Error
	require.True(t, errors.As(err, &sErr), "expected a store error, got %v", err)
	assert.Equal(t, code, sErr.Code)
}

func uploadIris(t *testing.T, s *Store, u *User) int {
	desc, err := model.DatasetDescriptionTable.Marshal(model.NewDatasetDescription("iris", "Unit test", "arff", "class"))
	require.NoError(t, err)
	id, err := s.UploadDataset(context.Background(), u, DataUpload{Description: desc, Data: readFile(t, "iris.arff"), BaseURL: baseURL})
	require.NoError(t, err)
	return id
}

func uploadTask(t *testing.T, s *Store, u *User, did int) int {
	inputs := model.NewTaskInputs(5, []model.Input{
		{Name: model.InputEstimationProcedure, Value: "17"},
		{Name: model.InputSourceData, Value: strconv.Itoa(did)},
		{Name: model.InputEvaluationMeasures, Value: "predictive_accuracy"},
	}, nil)
	doc, err := model.TaskInputsTable.Marshal(inputs)
	require.NoError(t, err)
	id, err := s.UploadTask(u, doc)
	require.NoError(t, err)
	return id
}

const predictionsARFF = "@relation predictions\n@attribute prediction {a,b}\n@attribute correct {a,b}\n@data\na,a\n"

func uploadRun(t *testing.T, s *Store, u *User, taskID int, tags ...string) int {
	doc, err := model.RunTable.Marshal(model.NewRun(taskID, "", 10, "", nil, tags))
	require.NoError(t, err)
	id, err := s.UploadRun(u, RunUpload{
		Description: doc,
		Outputs:     map[string][]byte{"predictions": []byte(predictionsARFF)},
		BaseURL:     baseURL,
	})
	require.NoError(t, err)
	return id
}

func TestAuthenticate(t *testing.T) {
	s := newStore(t, nil)

	assert.Nil(t, s.Authenticate(""))
	admin := s.Authenticate(adminKey)
	require.NotNil(t, admin)
	assert.True(t, admin.Admin)

	u := s.Authenticate("user-key")
	require.NotNil(t, u)
	assert.False(t, u.Admin)
	assert.Same(t, u, s.Authenticate("user-key"))
	assert.NotEqual(t, admin.ID, u.ID)
}

func TestUploadDataset(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	id := uploadIris(t, s, u)

	dsd, err := s.Dataset(id)
	require.NoError(t, err)
	assert.Equal(t, id, *dsd.ID)
	assert.Equal(t, "1", xmlmap.StringValue(dsd.Version))
	assert.Equal(t, config.StatusInPreparation, xmlmap.StringValue(dsd.Status))
	assert.Equal(t, "http://openml.test/data/v1/download/1/iris.arff", xmlmap.StringValue(dsd.URL))
	assert.Len(t, xmlmap.StringValue(dsd.MD5Checksum), 32)

	f, err := s.File(*dsd.FileID)
	require.NoError(t, err)
	assert.Equal(t, readFile(t, "iris.arff"), f.Data)

	features, err := s.Features(id)
	require.NoError(t, err)
	require.Len(t, features.Features, 5)
	assert.True(t, features.Features[4].IsTarget)
	assert.Equal(t, 1, features.Features[1].NumberOfMissingValues)

	// a second upload of the same name is a new version
	second := uploadIris(t, s, u)
	dsd, err = s.Dataset(second)
	require.NoError(t, err)
	assert.Equal(t, "2", xmlmap.StringValue(dsd.Version))
}

func TestUploadDatasetErrors(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	desc, err := model.DatasetDescriptionTable.Marshal(model.NewDatasetDescription("iris", "Unit test", "arff", "class"))
	require.NoError(t, err)

	_, err = s.UploadDataset(context.Background(), nil, DataUpload{Description: desc, Data: []byte("x")})
	requireCode(t, err, CodeAuthenticationFailed)

	_, err = s.UploadDataset(context.Background(), u, DataUpload{Description: desc})
	requireCode(t, err, CodeDataFileMissing)

	_, err = s.UploadDataset(context.Background(), u, DataUpload{Description: []byte("<oml:nonsense xmlns:oml=\"http://openml.org/openml\"/>"), Data: []byte("x")})
	requireCode(t, err, CodeDataDescription)

	_, err = s.UploadDataset(context.Background(), u, DataUpload{Description: desc, Data: []byte("@relation broken\n")})
	requireCode(t, err, CodeDataFileUnreadable)
}

func TestUploadDatasetFromURL(t *testing.T) {
	cpu := readFile(t, "cpu.arff")
	var fetched string
	s := newStore(t, func(ctx context.Context, url string) ([]byte, error) {
		fetched = url
		return cpu, nil
	})
	u := s.Authenticate("user-key")

	dsdIn := model.NewDatasetDescriptionFromURL("cpu", "Unit test", "arff", "http://data.test/cpu.arff", "class")
	desc, err := model.DatasetDescriptionTable.Marshal(dsdIn)
	require.NoError(t, err)
	id, err := s.UploadDataset(context.Background(), u, DataUpload{Description: desc, BaseURL: baseURL})
	require.NoError(t, err)
	assert.Equal(t, "http://data.test/cpu.arff", fetched)

	dsd, err := s.Dataset(id)
	require.NoError(t, err)
	assert.Equal(t, "http://data.test/cpu.arff", xmlmap.StringValue(dsd.OriginalDataURL))
	f, err := s.File(*dsd.FileID)
	require.NoError(t, err)
	assert.Equal(t, cpu, f.Data)

	// a numeric target has no class qualities
	dq, err := s.Qualities(id)
	require.NoError(t, err)
	q, ok := dq.Get(QualityNumberOfClasses)
	require.True(t, ok)
	assert.Nil(t, q.Value)
}

func TestStatusUpdate(t *testing.T) {
	s := newStore(t, nil)
	owner := s.Authenticate("owner")
	other := s.Authenticate("other")
	admin := s.Authenticate(adminKey)
	id := uploadIris(t, s, owner)

	requireCode(t, s.UpdateStatus(owner, id, config.StatusActive), CodeStatusForbidden)
	requireCode(t, s.UpdateStatus(admin, id, "gone"), CodeStatusInvalid)
	requireCode(t, s.UpdateStatus(admin, 99, config.StatusActive), CodeStatusUnknownData)

	require.NoError(t, s.UpdateStatus(admin, id, config.StatusActive))
	requireCode(t, s.UpdateStatus(other, id, config.StatusDeactivated), CodeStatusForbidden)
	require.NoError(t, s.UpdateStatus(owner, id, config.StatusDeactivated))

	dsd, err := s.Dataset(id)
	require.NoError(t, err)
	assert.Equal(t, config.StatusDeactivated, xmlmap.StringValue(dsd.Status))
}

func TestDatasetTags(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	id := uploadIris(t, s, u)

	tags, err := s.TagDataset(u, id, "junittest")
	require.NoError(t, err)
	assert.Equal(t, []string{"junittest"}, tags)

	_, err = s.TagDataset(u, id, "junittest")
	requireCode(t, err, CodeTagAlreadyPresent)
	_, err = s.TagDataset(u, 99, "junittest")
	requireCode(t, err, CodeTagEntityUnknown)

	tags, err = s.UntagDataset(u, id, "junittest")
	require.NoError(t, err)
	assert.Nil(t, tags)

	_, err = s.UntagDataset(u, id, "junittest")
	requireCode(t, err, CodeTagNotFound)
}

func TestDeleteDatasetInUse(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	other := s.Authenticate("other")
	did := uploadIris(t, s, u)
	taskID := uploadTask(t, s, u, did)

	requireCode(t, s.DeleteDataset(other, did), CodeDataDeleteForbidden)
	requireCode(t, s.DeleteDataset(u, did), CodeDataDeleteInUse)

	require.NoError(t, s.DeleteTask(u, taskID))
	require.NoError(t, s.DeleteDataset(u, did))

	_, err := s.Dataset(did)
	requireCode(t, err, CodeUnknownDataset)
	requireCode(t, s.DeleteDataset(u, did), CodeDataDeleteUnknown)
}

func TestListDatasets(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	admin := s.Authenticate(adminKey)
	ids := []int{uploadIris(t, s, u), uploadIris(t, s, u), uploadIris(t, s, u)}

	// fresh uploads are in preparation
	_, err := s.ListDatasets(nil)
	requireCode(t, err, CodeDataNoResults)

	for _, id := range ids {
		require.NoError(t, s.UpdateStatus(admin, id, config.StatusActive))
	}

	list, err := s.ListDatasets(map[string]string{"limit": "2", "offset": "1"})
	require.NoError(t, err)
	require.Len(t, list.Datasets, 2)
	assert.Equal(t, ids[1], list.Datasets[0].DID)
	assert.Equal(t, "10", list.Datasets[0].QualityMap()[QualityNumberOfInstances])

	list, err = s.ListDatasets(map[string]string{"number_instances": "5..20", "data_id": strconv.Itoa(ids[2])})
	require.NoError(t, err)
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, ids[2], list.Datasets[0].DID)

	_, err = s.ListDatasets(map[string]string{"number_instances": "100..200"})
	requireCode(t, err, CodeDataNoResults)

	_, err = s.ListDatasets(map[string]string{"bogus": "1"})
	requireCode(t, err, CodeIllegalFilter)
}

func TestUnprocessed(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	admin := s.Authenticate(adminKey)
	first := uploadIris(t, s, u)
	uploadIris(t, s, u)

	_, err := s.Unprocessed(u, 1, "normal", nil)
	requireCode(t, err, CodeAdminRequired)

	d, err := s.Unprocessed(admin, 1, "normal", nil)
	require.NoError(t, err)
	require.Len(t, d.Datasets, 1)
	assert.Equal(t, first, d.Datasets[0].DID)

	_, err = s.Unprocessed(admin, 1, "random", func(n int) int { return n - 1 })
	require.NoError(t, err)
	_, err = s.Unprocessed(admin, 1, "normal", nil)
	requireCode(t, err, CodeNoUnprocessed)

	// other engines and reset datasets start over
	_, err = s.Unprocessed(admin, 2, "normal", nil)
	require.NoError(t, err)
	require.NoError(t, s.ResetDataset(u, first))
	d, err = s.Unprocessed(admin, 1, "normal", nil)
	require.NoError(t, err)
	assert.Equal(t, first, d.Datasets[0].DID)
}

func TestUploadTask(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	did := uploadIris(t, s, u)
	id := uploadTask(t, s, u, did)

	task, err := s.Task(id)
	require.NoError(t, err)
	assert.Equal(t, "Task 1: iris (Clustering)", task.TaskName)
	v, ok := task.Input(model.InputSourceData)
	assert.True(t, ok)
	assert.Equal(t, strconv.Itoa(did), v)

	// the same inputs again are a duplicate
	doc, err := model.TaskInputsTable.Marshal(model.NewTaskInputs(5, task.Inputs, nil))
	require.NoError(t, err)
	_, err = s.UploadTask(u, doc)
	requireCode(t, err, CodeTaskDuplicate)

	doc, err = model.TaskInputsTable.Marshal(model.NewTaskInputs(5, []model.Input{{Name: model.InputSourceData, Value: "99"}}, nil))
	require.NoError(t, err)
	_, err = s.UploadTask(u, doc)
	requireCode(t, err, CodeTaskSourceData)

	tags, err := s.TagTask(u, id, "junittest")
	require.NoError(t, err)
	assert.Equal(t, []string{"junittest"}, tags)
	tags, err = s.UntagTask(u, id, "junittest")
	require.NoError(t, err)
	assert.Nil(t, tags)
}

func TestRuns(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	admin := s.Authenticate(adminKey)
	did := uploadIris(t, s, u)
	taskID := uploadTask(t, s, u, did)

	first := uploadRun(t, s, u, taskID, "first_tag", "another_tag")
	second := uploadRun(t, s, u, taskID)

	r, err := s.Run(first)
	require.NoError(t, err)
	assert.True(t, model.SameTags([]string{"first_tag", "another_tag"}, r.Tags))
	assert.Equal(t, "predictive_accuracy", xmlmap.StringValue(r.TaskEvaluationMeasure))
	require.NotNil(t, r.OutputData)
	require.Len(t, r.OutputData.Files, 1)
	assert.Equal(t, "predictions", r.OutputData.Files[0].Name)
	require.NotNil(t, r.InputData)
	assert.Equal(t, did, r.InputData.Datasets[0].DID)

	// identical flow and parameters share a setup
	r2, err := s.Run(second)
	require.NoError(t, err)
	assert.Equal(t, *r.SetupID, *r2.SetupID)

	list, err := s.ListRuns(map[string]string{"uploader": strconv.Itoa(u.ID)})
	require.NoError(t, err)
	assert.Len(t, list.Runs, 2)
	list, err = s.ListRuns(map[string]string{"tag": "first_tag"})
	require.NoError(t, err)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, first, list.Runs[0].RunID)
	_, err = s.ListRuns(nil)
	requireCode(t, err, CodeRunListFilter)
	_, err = s.ListRuns(map[string]string{"uploader": "999"})
	requireCode(t, err, CodeRunNoResults)

	requireCode(t, s.DeleteTask(u, taskID), CodeTaskDeleteInUse)

	for i := 0; i < 3; i++ {
		files, err := s.AttachPredictions(u, second, i, []byte(predictionsARFF))
		require.NoError(t, err)
		assert.Len(t, files, i+1)
	}

	// deleted runs are skipped by evaluation requests
	require.NoError(t, s.DeleteRun(u, first))
	_, err = s.EvaluationRequest(u, 1, 1)
	requireCode(t, err, CodeAdminRequired)
	req, err := s.EvaluationRequest(admin, 1, 5)
	require.NoError(t, err)
	require.Len(t, req.Runs, 1)
	assert.Equal(t, second, req.Runs[0].RunID)
	_, err = s.EvaluationRequest(admin, 1, 1)
	requireCode(t, err, CodeNoPendingRuns)

	requireCode(t, s.DeleteRun(u, first), CodeRunDeleteUnknown)
	require.NoError(t, s.DeleteRun(admin, second))
	require.NoError(t, s.DeleteTask(u, taskID))
}

func TestUnreadablePredictions(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	did := uploadIris(t, s, u)
	taskID := uploadTask(t, s, u, did)
	doc, err := model.RunTable.Marshal(model.NewRun(taskID, "", 10, "", nil, nil))
	require.NoError(t, err)

	short := []byte("@relation predictions\n@attribute repeat numeric\n@attribute fold numeric\n@attribute prediction {a}\n@attribute correct {a}\n@data\n0,0,a,a\n1,0\n")
	_, err = s.UploadRun(u, RunUpload{Description: doc, Outputs: map[string][]byte{"predictions": short}})
	requireCode(t, err, CodeRunOutputUnreadable)
	assert.Equal(t, 0, s.QueueSize())

	id := uploadRun(t, s, u, taskID)
	_, err = s.AttachPredictions(u, id, 0, short)
	requireCode(t, err, CodeRunAttachUnreadable)
	_, err = s.AttachPredictions(u, id, 0, []byte("p"))
	requireCode(t, err, CodeRunAttachUnreadable)
}

func TestUploadRunUnknownTask(t *testing.T) {
	s := newStore(t, nil)
	u := s.Authenticate("user-key")
	doc, err := model.RunTable.Marshal(model.NewRun(42, "", 10, "", nil, nil))
	require.NoError(t, err)
	_, err = s.UploadRun(u, RunUpload{Description: doc})
	requireCode(t, err, CodeRunUnknownTask)
}
