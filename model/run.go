package model

import (
	"github.com/openml/openml-go/xmlmap"
)

// ParameterSetting is the value a flow parameter had in a run.
type ParameterSetting struct {
	Name      string
	Value     string
	Component *string
}

// InputDataset is a dataset a run read.
type InputDataset struct {
	DID  int
	Name string
	URL  string
}

// InputData groups the datasets a run read.
type InputData struct {
	Datasets []InputDataset
}

// OutputFile is a file a run produced.
type OutputFile struct {
	DID    *int
	FileID int
	Name   string
	URL    string
}

// Evaluation is a measure computed for a run.
type Evaluation struct {
	Name      string
	FlowID    *int
	Repeat    *int
	Fold      *int
	Value     *string
	Stdev     *string
	ArrayData *string
}

// OutputData groups a run's files and evaluations.
type OutputData struct {
	Files       []OutputFile
	Evaluations []Evaluation
}

// Run is an execution of a flow on a task.
type Run struct {
	RunID                 *int
	Uploader              *int
	UploaderName          *string
	TaskID                int
	TaskType              *string
	TaskEvaluationMeasure *string
	FlowID                int
	FlowName              *string
	SetupID               *int
	SetupString           *string
	ErrorMessage          *string
	Tags                  []string
	ParameterSettings     []ParameterSetting
	InputData             *InputData
	OutputData            *OutputData
}

// NewRun builds a run for upload.
func NewRun(taskID int, errorMessage string, flowID int, setupString string, params []ParameterSetting, tags []string) *Run {
	return &Run{
		TaskID:            taskID,
		ErrorMessage:      xmlmap.String(errorMessage),
		FlowID:            flowID,
		SetupString:       xmlmap.String(setupString),
		ParameterSettings: params,
		Tags:              NormalizeTags(tags),
	}
}

// RunSummary is one entry of a run listing or evaluation request.
type RunSummary struct {
	RunID        int
	TaskID       int
	SetupID      *int
	FlowID       int
	Uploader     *int
	UploadTime   string
	ErrorMessage *string
}

// RunList is the result of a run listing.
type RunList struct {
	Runs []RunSummary
}

// EvaluationRequest hands out runs that still need evaluating.
type EvaluationRequest struct {
	Runs []RunSummary
}

// ParameterSettingTable binds ParameterSetting to oml:parameter_setting.
var ParameterSettingTable = xmlmap.NewTable("parameter_setting",
	xmlmap.Required("name", func(p *ParameterSetting) *string { return &p.Name }),
	xmlmap.Required("value", func(p *ParameterSetting) *string { return &p.Value }),
	xmlmap.OptText("component", func(p *ParameterSetting) **string { return &p.Component }),
)

var inputDatasetTable = xmlmap.NewTable("dataset",
	xmlmap.Int("did", func(d *InputDataset) *int { return &d.DID }),
	xmlmap.Required("name", func(d *InputDataset) *string { return &d.Name }),
	xmlmap.Required("url", func(d *InputDataset) *string { return &d.URL }),
)

var inputDataTable = xmlmap.NewTable("input_data",
	xmlmap.Nested(func(d *InputData) *[]InputDataset { return &d.Datasets }, inputDatasetTable),
)

var outputFileTable = xmlmap.NewTable("file",
	xmlmap.OptInt("did", func(f *OutputFile) **int { return &f.DID }),
	xmlmap.Int("file_id", func(f *OutputFile) *int { return &f.FileID }),
	xmlmap.Required("name", func(f *OutputFile) *string { return &f.Name }),
	xmlmap.Required("url", func(f *OutputFile) *string { return &f.URL }),
)

var evaluationTable = xmlmap.NewTable("evaluation",
	xmlmap.Required("name", func(e *Evaluation) *string { return &e.Name }),
	xmlmap.OptInt("flow_id", func(e *Evaluation) **int { return &e.FlowID }),
	xmlmap.OptInt("repeat", func(e *Evaluation) **int { return &e.Repeat }),
	xmlmap.OptInt("fold", func(e *Evaluation) **int { return &e.Fold }),
	xmlmap.OptText("value", func(e *Evaluation) **string { return &e.Value }),
	xmlmap.OptText("stdev", func(e *Evaluation) **string { return &e.Stdev }),
	xmlmap.OptText("array_data", func(e *Evaluation) **string { return &e.ArrayData }),
)

var outputDataTable = xmlmap.NewTable("output_data",
	xmlmap.Nested(func(d *OutputData) *[]OutputFile { return &d.Files }, outputFileTable),
	xmlmap.Nested(func(d *OutputData) *[]Evaluation { return &d.Evaluations }, evaluationTable),
)

// RunTable binds Run to oml:run.
var RunTable = xmlmap.NewTable("run",
	xmlmap.OptInt("run_id", func(r *Run) **int { return &r.RunID }),
	xmlmap.OptInt("uploader", func(r *Run) **int { return &r.Uploader }),
	xmlmap.OptText("uploader_name", func(r *Run) **string { return &r.UploaderName }),
	xmlmap.Int("task_id", func(r *Run) *int { return &r.TaskID }),
	xmlmap.OptText("task_type", func(r *Run) **string { return &r.TaskType }),
	xmlmap.OptText("task_evaluation_measure", func(r *Run) **string { return &r.TaskEvaluationMeasure }),
	xmlmap.Int("flow_id", func(r *Run) *int { return &r.FlowID }),
	xmlmap.OptText("flow_name", func(r *Run) **string { return &r.FlowName }),
	xmlmap.OptInt("setup_id", func(r *Run) **int { return &r.SetupID }),
	xmlmap.OptText("setup_string", func(r *Run) **string { return &r.SetupString }),
	xmlmap.OptText("error_message", func(r *Run) **string { return &r.ErrorMessage }),
	xmlmap.Texts("tag", func(r *Run) *[]string { return &r.Tags }),
	xmlmap.Nested(func(r *Run) *[]ParameterSetting { return &r.ParameterSettings }, ParameterSettingTable),
	xmlmap.Optional(func(r *Run) **InputData { return &r.InputData }, inputDataTable),
	xmlmap.Optional(func(r *Run) **OutputData { return &r.OutputData }, outputDataTable),
)

// RunSummaryTable binds RunSummary to oml:run inside listings.
var RunSummaryTable = xmlmap.NewTable("run",
	xmlmap.Int("run_id", func(r *RunSummary) *int { return &r.RunID }),
	xmlmap.Int("task_id", func(r *RunSummary) *int { return &r.TaskID }),
	xmlmap.OptInt("setup_id", func(r *RunSummary) **int { return &r.SetupID }),
	xmlmap.Int("flow_id", func(r *RunSummary) *int { return &r.FlowID }),
	xmlmap.OptInt("uploader", func(r *RunSummary) **int { return &r.Uploader }),
	xmlmap.Required("upload_time", func(r *RunSummary) *string { return &r.UploadTime }),
	xmlmap.OptText("error_message", func(r *RunSummary) **string { return &r.ErrorMessage }),
)

// RunListTable binds RunList to oml:runs.
var RunListTable = xmlmap.NewTable("runs",
	xmlmap.Nested(func(l *RunList) *[]RunSummary { return &l.Runs }, RunSummaryTable),
)

// EvaluationRequestTable binds EvaluationRequest to oml:evaluation_request.
var EvaluationRequestTable = xmlmap.NewTable("evaluation_request",
	xmlmap.Nested(func(e *EvaluationRequest) *[]RunSummary { return &e.Runs }, RunSummaryTable),
)
