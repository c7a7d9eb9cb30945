package openml

import (
	"context"

	"github.com/openml/openml-go/model"
)

// TaskGet returns task id.
func (c *Client) TaskGet(ctx context.Context, id int) (*model.Task, error) {
	if err := checkID("task get", "task id", id); err != nil {
		return nil, err
	}
	return get(ctx, c, model.TaskTable, "task/"+itoa(id), nil)
}

// TaskUpload creates a task from inputs.
func (c *Client) TaskUpload(ctx context.Context, inputs *model.TaskInputs) (*model.IDAck, error) {
	const op = "task upload"
	if inputs == nil {
		return nil, usage(op, "task inputs are required")
	}
	if err := checkID(op, "task type id", inputs.TaskTypeID); err != nil {
		return nil, err
	}
	if len(inputs.Inputs) == 0 {
		return nil, usage(op, "at least one input is required")
	}
	seen := map[string]bool{}
	for _, in := range inputs.Inputs {
		if in.Name == "" {
			return nil, usage(op, "input without name")
		}
		if seen[in.Name] {
			return nil, usage(op, "duplicate input %s", in.Name)
		}
		seen[in.Name] = true
	}

	desc, err := description(op, model.TaskInputsTable, inputs)
	if err != nil {
		return nil, err
	}
	return post(ctx, c, model.UploadTaskTable, "task", nil, desc)
}

// TaskDelete removes task id. The server refuses while runs use the task.
func (c *Client) TaskDelete(ctx context.Context, id int) (*model.IDAck, error) {
	if err := checkID("task delete", "task id", id); err != nil {
		return nil, err
	}
	return del(ctx, c, model.TaskDeleteTable, "task/"+itoa(id))
}

// TaskTag adds tag to task id.
func (c *Client) TaskTag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("task tag", "task id", id); err != nil {
		return nil, err
	}
	if err := checkTag("task tag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.TaskTagTable, "task/tag", tagForm("task_id", id, tag))
}

// TaskUntag removes tag from task id.
func (c *Client) TaskUntag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("task untag", "task id", id); err != nil {
		return nil, err
	}
	if err := checkTag("task untag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.TaskUntagTable, "task/untag", tagForm("task_id", id, tag))
}
