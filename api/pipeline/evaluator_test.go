package pipeline

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) (*EvaluationRunner, *store.Store) {
	env := config.Defaults()
	env.EvaluatorPollIntervalSec = 0
	cfg := &config.Config{Environment: env}
	st, err := store.New(cfg, queue.NewListFIFOQueue(10), nil)
	require.NoError(t, err)
	return NewEvaluationRunner(cfg, st), st
}

// uploadRun stores iris, a task on it and a run with the given predictions.
func uploadRun(t *testing.T, st *store.Store, predictions []byte) int {
	u := st.Authenticate("user-key")

	desc, err := model.DatasetDescriptionTable.Marshal(model.NewDatasetDescription("iris", "Unit test", "arff", "class"))
	require.NoError(t, err)
	did, err := st.UploadDataset(context.Background(), u, store.DataUpload{Description: desc, Data: readFile(t, "iris.arff")})
	require.NoError(t, err)

	inputs, err := model.TaskInputsTable.Marshal(model.NewTaskInputs(1, []model.Input{
		{Name: model.InputSourceData, Value: strconv.Itoa(did)},
		{Name: model.InputEstimationProcedure, Value: "1"},
	}, nil))
	require.NoError(t, err)
	taskID, err := st.UploadTask(u, inputs)
	require.NoError(t, err)

	doc, err := model.RunTable.Marshal(model.NewRun(taskID, "", 1, "", nil, nil))
	require.NoError(t, err)
	id, err := st.UploadRun(u, store.RunUpload{Description: doc, Outputs: map[string][]byte{"predictions": predictions}})
	require.NoError(t, err)
	return id
}

func TestSubmit(t *testing.T) {
	runner, st := newRunner(t)
	id := uploadRun(t, st, readFile(t, "predictions.arff"))
	require.Equal(t, 1, st.QueueSize())

	evaluated, err := runner.Submit()
	require.NoError(t, err)
	assert.Equal(t, id, evaluated)
	assert.Equal(t, 0, st.QueueSize())

	r, err := st.Run(id)
	require.NoError(t, err)
	require.NotNil(t, r.OutputData)
	require.Len(t, r.OutputData.Evaluations, 3)
	assert.Equal(t, "0.75", *r.OutputData.Evaluations[0].Value)

	// nothing left to evaluate
	evaluated, err = runner.Submit()
	require.NoError(t, err)
	assert.Equal(t, 0, evaluated)
}

func TestSubmitUnscorable(t *testing.T) {
	runner, st := newRunner(t)
	id := uploadRun(t, st, []byte("@relation predictions\n@attribute prediction {a,b}\n@data\na\n"))

	evaluated, err := runner.Submit()
	require.NoError(t, err)
	assert.Equal(t, id, evaluated)

	r, err := st.Run(id)
	require.NoError(t, err)
	assert.Empty(t, r.OutputData.Evaluations)
}

func TestStartStop(t *testing.T) {
	runner, st := newRunner(t)
	id := uploadRun(t, st, readFile(t, "predictions.arff"))

	runner.Start()
	assert.Eventually(t, func() bool {
		r, err := st.Run(id)
		return err == nil && len(r.OutputData.Evaluations) > 0
	}, time.Second, 10*time.Millisecond)
	assert.True(t, runner.Running())

	runner.Stop()
	assert.Eventually(t, func() bool { return !runner.Running() }, time.Second, 10*time.Millisecond)
}

func TestRestartAfterStop(t *testing.T) {
	runner, st := newRunner(t)

	runner.Start()
	runner.Stop()
	runner.Start()
	t.Cleanup(runner.Stop)
	assert.True(t, runner.Running())

	id := uploadRun(t, st, readFile(t, "predictions.arff"))
	assert.Eventually(t, func() bool {
		r, err := st.Run(id)
		return err == nil && len(r.OutputData.Evaluations) > 0
	}, time.Second, 10*time.Millisecond)
	assert.True(t, runner.Running())
}
