package openml

import (
	"context"
	"net/url"

	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/model"
)

// RunGet returns run id.
func (c *Client) RunGet(ctx context.Context, id int) (*model.Run, error) {
	if err := checkID("run get", "run id", id); err != nil {
		return nil, err
	}
	return get(ctx, c, model.RunTable, "run/"+itoa(id), nil)
}

// RunList lists the runs matching filter.
func (c *Client) RunList(ctx context.Context, filter RunFilter) (*model.RunList, error) {
	q, err := filter.values("run list")
	if err != nil {
		return nil, err
	}
	return get(ctx, c, model.RunListTable, "run/list", q)
}

// RunUpload uploads run together with its output files. Each file's Field names the
// output, such as predictions.
func (c *Client) RunUpload(ctx context.Context, run *model.Run, outputs ...connector.File) (*model.RunAck, error) {
	const op = "run upload"
	if run == nil {
		return nil, usage(op, "a run is required")
	}
	if err := checkID(op, "task id", run.TaskID); err != nil {
		return nil, err
	}
	if err := checkID(op, "flow id", run.FlowID); err != nil {
		return nil, err
	}
	seen := map[string]bool{"description": true}
	for _, f := range outputs {
		if f.Field == "" {
			return nil, usage(op, "output file without name")
		}
		if seen[f.Field] {
			return nil, usage(op, "duplicate output %s", f.Field)
		}
		seen[f.Field] = true
	}

	desc, err := description(op, model.RunTable, run)
	if err != nil {
		return nil, err
	}
	ack, err := post(ctx, c, model.UploadRunTable, "run", nil, append([]connector.File{desc}, outputs...)...)
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("uploaded run", "id", ack.RunID, "task", run.TaskID, "outputs", len(outputs))
	return ack, nil
}

// RunUploadAttach attaches the predictions of one part of an evaluation to run id.
func (c *Client) RunUploadAttach(ctx context.Context, id int, index int, predictions connector.File) (*model.RunAttachAck, error) {
	const op = "run upload attach"
	if err := checkID(op, "run id", id); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, usage(op, "index must not be negative, got %d", index)
	}
	if len(predictions.Data) == 0 {
		return nil, usage(op, "predictions are empty")
	}
	predictions.Field = "predictions"
	form := url.Values{"run_id": {itoa(id)}, "index": {itoa(index)}}
	return post(ctx, c, model.UploadRunAttachTable, "run/attach", form, predictions)
}

// RunDelete removes run id.
func (c *Client) RunDelete(ctx context.Context, id int) (*model.IDAck, error) {
	if err := checkID("run delete", "run id", id); err != nil {
		return nil, err
	}
	return del(ctx, c, model.RunDeleteTable, "run/"+itoa(id))
}

// RunTag adds tag to run id.
func (c *Client) RunTag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("run tag", "run id", id); err != nil {
		return nil, err
	}
	if err := checkTag("run tag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.RunTagTable, "run/tag", tagForm("run_id", id, tag))
}

// RunUntag removes tag from run id.
func (c *Client) RunUntag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("run untag", "run id", id); err != nil {
		return nil, err
	}
	if err := checkTag("run untag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.RunUntagTable, "run/untag", tagForm("run_id", id, tag))
}

// EvaluationRequest hands up to numRequests runs awaiting evaluation to evaluation
// engine engineID.
func (c *Client) EvaluationRequest(ctx context.Context, engineID int, mode string, numRequests int) (*model.EvaluationRequest, error) {
	const op = "evaluation request"
	if err := checkID(op, "evaluation engine id", engineID); err != nil {
		return nil, err
	}
	if err := checkMode(op, mode); err != nil {
		return nil, err
	}
	if err := checkID(op, "number of requests", numRequests); err != nil {
		return nil, err
	}
	path := "evaluation/request/" + itoa(engineID) + "/" + mode + "/" + itoa(numRequests)
	return get(ctx, c, model.EvaluationRequestTable, path, nil)
}
