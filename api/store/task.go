package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openml/openml-go/model"
)

var taskTypes = map[int]string{
	1: "Supervised Classification",
	2: "Supervised Regression",
	3: "Learning Curve",
	4: "Supervised Data Stream Classification",
	5: "Clustering",
	6: "Machine Learning Challenge",
	7: "Survival Analysis",
	8: "Subgroup Discovery",
}

type task struct {
	task  model.Task
	owner int
}

// UploadTask creates a task from a task_inputs document and returns its id.
func (s *Store) UploadTask(u *User, description []byte) (int, error) {
	if u == nil {
		return 0, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	if err := s.validate("openml.task.upload", description, CodeTaskDescription); err != nil {
		return 0, err
	}
	inputs, err := model.TaskInputsTable.Unmarshal(description)
	if err != nil {
		return 0, fail(CodeTaskDescription, "Problem validating uploaded description file", err.Error())
	}
	typeName, ok := taskTypes[inputs.TaskTypeID]
	if !ok {
		return 0, fail(CodeTaskDescription, "Unknown task type", strconv.Itoa(inputs.TaskTypeID))
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	did, ok := inputs.SourceData()
	if !ok {
		return 0, fail(CodeTaskSourceData, "Task has no valid source_data input")
	}
	if _, ok := s.datasets[did]; !ok {
		return 0, fail(CodeTaskSourceData, "Source data does not exist", strconv.Itoa(did))
	}
	var matches []string
	for _, id := range sortedKeys(s.tasks) {
		t := s.tasks[id]
		if t.task.TaskTypeID == inputs.TaskTypeID && sameInputs(t.task.Inputs, inputs.Inputs) {
			matches = append(matches, strconv.Itoa(id))
		}
	}
	if len(matches) > 0 {
		return 0, fail(CodeTaskDuplicate, "Task already exists", "matched id(s): ["+strings.Join(matches, ",")+"]")
	}

	id := s.next("task")
	s.tasks[id] = &task{
		task: model.Task{
			TaskID:     id,
			TaskName:   fmt.Sprintf("Task %d: %s (%s)", id, s.datasetName(did), typeName),
			TaskTypeID: inputs.TaskTypeID,
			TaskType:   typeName,
			Inputs:     append([]model.Input(nil), inputs.Inputs...),
			Tags:       model.NormalizeTags(inputs.Tags),
		},
		owner: u.ID,
	}
	s.logger.Infow("task uploaded", "id", id, "type", inputs.TaskTypeID, "data", did, "user", u.ID)
	return id, nil
}

// Task returns task id.
func (s *Store) Task(id int) (*model.Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fail(CodeUnknownTask, "Unknown task")
	}
	out := t.task
	out.Inputs = append([]model.Input(nil), t.task.Inputs...)
	out.Tags = copyTags(t.task.Tags)
	return &out, nil
}

// DeleteTask removes task id. Tasks with runs cannot be deleted.
func (s *Store) DeleteTask(u *User, id int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fail(CodeTaskDeleteUnknown, "Task does not exist")
	}
	if !canModify(u, t.owner) {
		return fail(CodeTaskDeleteForbidden, "Task is not owned by you")
	}
	for _, runID := range sortedKeys(s.runs) {
		if s.runs[runID].run.TaskID == id {
			return fail(CodeTaskDeleteInUse, "Task is executed in some runs. Can not be deleted",
				"run "+strconv.Itoa(runID))
		}
	}
	delete(s.tasks, id)
	s.logger.Infow("task deleted", "id", id, "user", u.ID)
	return nil
}

// TagTask adds tag to task id and returns the resulting tags.
func (s *Store) TagTask(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, added := addTag(t.task.Tags, tag)
	if !added {
		return nil, fail(CodeTagAlreadyPresent, "Entity already tagged by this tag")
	}
	t.task.Tags = tags
	return copyTags(tags), nil
}

// UntagTask removes tag from task id and returns the remaining tags.
func (s *Store) UntagTask(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, removed := removeTag(t.task.Tags, tag)
	if !removed {
		return nil, fail(CodeTagNotFound, "Tag not found")
	}
	t.task.Tags = tags
	return copyTags(tags), nil
}

// taskInputs returns the inputs of task id. Callers hold the lock.
func (s *Store) taskInputs(id int) *model.TaskInputs {
	t := s.tasks[id].task
	return &model.TaskInputs{TaskID: intPtr(id), TaskTypeID: t.TaskTypeID, Inputs: t.Inputs}
}

func sameInputs(a, b []model.Input) bool {
	if len(a) != len(b) {
		return false
	}
	values := make(map[string]string, len(a))
	for _, in := range a {
		values[in.Name] = in.Value
	}
	for _, in := range b {
		if v, ok := values[in.Name]; !ok || v != in.Value {
			return false
		}
	}
	return true
}

func copyTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return append([]string(nil), tags...)
}
