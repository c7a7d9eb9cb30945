package model

import (
	"strconv"

	"github.com/openml/openml-go/xmlmap"
)

// Well-known task input names.
const (
	InputSourceData          = "source_data"
	InputEstimationProcedure = "estimation_procedure"
	InputEvaluationMeasures  = "evaluation_measures"
	InputTargetFeature       = "target_feature"
)

// Input is one (name, value) pair of a task definition.
type Input struct {
	Name  string
	Value string
}

// Task is a task as served by OpenML.
type Task struct {
	TaskID     int
	TaskName   string
	TaskTypeID int
	TaskType   string
	Inputs     []Input
	Tags       []string
}

// Input returns the value of the named input.
func (t *Task) Input(name string) (string, bool) {
	return lookupInput(t.Inputs, name)
}

// TaskInputs is a task creation request. Inputs keep their order.
type TaskInputs struct {
	TaskID     *int
	TaskTypeID int
	Inputs     []Input
	Tags       []string
}

// NewTaskInputs builds a task creation request.
func NewTaskInputs(taskTypeID int, inputs []Input, tags []string) *TaskInputs {
	return &TaskInputs{
		TaskTypeID: taskTypeID,
		Inputs:     inputs,
		Tags:       NormalizeTags(tags),
	}
}

// Input returns the value of the named input.
func (t *TaskInputs) Input(name string) (string, bool) {
	return lookupInput(t.Inputs, name)
}

// SourceData returns the dataset id referenced by the source_data input.
func (t *TaskInputs) SourceData() (int, bool) {
	v, ok := t.Input(InputSourceData)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

func lookupInput(inputs []Input, name string) (string, bool) {
	for _, in := range inputs {
		if in.Name == name {
			return in.Value, true
		}
	}
	return "", false
}

// InputTable binds Input to oml:input.
var InputTable = xmlmap.NewTable("input",
	xmlmap.Attribute("name", func(in *Input) *string { return &in.Name }),
	xmlmap.Content(func(in *Input) *string { return &in.Value }),
)

// TaskTable binds Task to oml:task.
var TaskTable = xmlmap.NewTable("task",
	xmlmap.Int("task_id", func(t *Task) *int { return &t.TaskID }),
	xmlmap.Required("task_name", func(t *Task) *string { return &t.TaskName }),
	xmlmap.Int("task_type_id", func(t *Task) *int { return &t.TaskTypeID }),
	xmlmap.Required("task_type", func(t *Task) *string { return &t.TaskType }),
	xmlmap.Nested(func(t *Task) *[]Input { return &t.Inputs }, InputTable),
	xmlmap.Texts("tag", func(t *Task) *[]string { return &t.Tags }),
)

// TaskInputsTable binds TaskInputs to oml:task_inputs.
var TaskInputsTable = xmlmap.NewTable("task_inputs",
	xmlmap.OptInt("task_id", func(t *TaskInputs) **int { return &t.TaskID }),
	xmlmap.Int("task_type_id", func(t *TaskInputs) *int { return &t.TaskTypeID }),
	xmlmap.Nested(func(t *TaskInputs) *[]Input { return &t.Inputs }, InputTable),
	xmlmap.Texts("tag", func(t *TaskInputs) *[]string { return &t.Tags }),
)
