package openml

import (
	"context"
	"net/url"
	"strings"

	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
)

// DataGet returns the description of dataset id.
func (c *Client) DataGet(ctx context.Context, id int) (*model.DatasetDescription, error) {
	if err := checkID("data get", "dataset id", id); err != nil {
		return nil, err
	}
	return get(ctx, c, model.DatasetDescriptionTable, "data/"+itoa(id), nil)
}

// DataFeatures returns the features of dataset id.
func (c *Client) DataFeatures(ctx context.Context, id int) (*model.DataFeature, error) {
	if err := checkID("data features", "dataset id", id); err != nil {
		return nil, err
	}
	return get(ctx, c, model.DataFeatureTable, "data/features/"+itoa(id), nil)
}

// DataQualities returns the qualities of dataset id.
func (c *Client) DataQualities(ctx context.Context, id int) (*model.DataQuality, error) {
	if err := checkID("data qualities", "dataset id", id); err != nil {
		return nil, err
	}
	dq, err := get(ctx, c, model.DataQualityTable, "data/qualities/"+itoa(id), nil)
	if err != nil {
		return nil, err
	}
	dq.DID = id
	return dq, nil
}

// DataQualitiesList returns the names of all qualities the server computes.
func (c *Client) DataQualitiesList(ctx context.Context) (*model.DataQualityList, error) {
	return get(ctx, c, model.DataQualityListTable, "data/qualities/list", nil)
}

// DataList lists the datasets matching filters.
func (c *Client) DataList(ctx context.Context, filters Filters) (*model.DataList, error) {
	q, err := filters.values("data list")
	if err != nil {
		return nil, err
	}
	return get(ctx, c, model.DataListTable, "data/list", q)
}

// DataUpload registers a dataset. The data either comes with the call as dataset or
// is fetched by the server from the description's URL; exactly one must be given.
func (c *Client) DataUpload(ctx context.Context, dsd *model.DatasetDescription, dataset *connector.File) (*model.IDAck, error) {
	const op = "data upload"
	if dsd == nil {
		return nil, usage(op, "a dataset description is required")
	}
	hasURL := strings.TrimSpace(xmlmap.StringValue(dsd.URL)) != ""
	switch {
	case dataset == nil && !hasURL:
		return nil, usage(op, "either a dataset file or a description url is required")
	case dataset != nil && hasURL:
		return nil, usage(op, "a dataset file and a description url are mutually exclusive")
	}
	if dsd.Name == "" {
		return nil, usage(op, "the description has no name")
	}

	desc, err := description(op, model.DatasetDescriptionTable, dsd)
	if err != nil {
		return nil, err
	}
	files := []connector.File{desc}
	if dataset != nil {
		d := *dataset
		d.Field = "dataset"
		files = append(files, d)
	}
	ack, err := post(ctx, c, model.UploadDataSetTable, "data", nil, files...)
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("uploaded dataset", "id", ack.ID, "name", dsd.Name)
	return ack, nil
}

// DataDelete removes dataset id. The server refuses while tasks use the dataset.
func (c *Client) DataDelete(ctx context.Context, id int) (*model.IDAck, error) {
	if err := checkID("data delete", "dataset id", id); err != nil {
		return nil, err
	}
	return del(ctx, c, model.DataDeleteTable, "data/"+itoa(id))
}

// DataTag adds tag to dataset id.
func (c *Client) DataTag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("data tag", "dataset id", id); err != nil {
		return nil, err
	}
	if err := checkTag("data tag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.DataTagTable, "data/tag", tagForm("data_id", id, tag))
}

// DataUntag removes tag from dataset id.
func (c *Client) DataUntag(ctx context.Context, id int, tag string) (*model.TagAck, error) {
	if err := checkID("data untag", "dataset id", id); err != nil {
		return nil, err
	}
	if err := checkTag("data untag", tag); err != nil {
		return nil, err
	}
	return post(ctx, c, model.DataUntagTable, "data/untag", tagForm("data_id", id, tag))
}

// DataReset drops the processing results of dataset id so it is processed again.
func (c *Client) DataReset(ctx context.Context, id int) (*model.IDAck, error) {
	if err := checkID("data reset", "dataset id", id); err != nil {
		return nil, err
	}
	return post(ctx, c, model.DataResetTable, "data/reset/"+itoa(id), nil)
}

// DataStatusUpdate activates or deactivates dataset id.
func (c *Client) DataStatusUpdate(ctx context.Context, id int, status string) (*model.StatusAck, error) {
	const op = "data status update"
	if err := checkID(op, "dataset id", id); err != nil {
		return nil, err
	}
	if !config.ValidStatus(status) {
		return nil, usage(op, "status must be %s or %s, got %q", config.StatusActive, config.StatusDeactivated, status)
	}
	form := url.Values{"data_id": {itoa(id)}, "status": {status}}
	return post(ctx, c, model.DataStatusUpdateTable, "data/status/update", form)
}

// DataUnprocessed lists datasets that evaluation engine engineID has not processed.
func (c *Client) DataUnprocessed(ctx context.Context, engineID int, mode string) (*model.DataUnprocessed, error) {
	const op = "data unprocessed"
	if err := checkID(op, "evaluation engine id", engineID); err != nil {
		return nil, err
	}
	if err := checkMode(op, mode); err != nil {
		return nil, err
	}
	return get(ctx, c, model.DataUnprocessedTable, "data/unprocessed/"+itoa(engineID)+"/"+mode, nil)
}
