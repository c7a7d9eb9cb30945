package model

import (
	"strings"

	"github.com/openml/openml-go/xmlmap"
)

// TagAck acknowledges a tag or untag call with the resulting tag set. Tags is nil when
// no tags remain.
type TagAck struct {
	ID   int
	Tags []string
}

// Has reports whether tag is in the acknowledged tag set.
func (a *TagAck) Has(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IDAck acknowledges a call that affects a single resource.
type IDAck struct {
	ID int
}

// StatusAck acknowledges a dataset status update.
type StatusAck struct {
	ID     int
	Status string
}

// RunAck acknowledges a run upload.
type RunAck struct {
	RunID int
}

// RunAttachAck acknowledges an attached prediction file with the run's prediction
// files so far.
type RunAttachAck struct {
	RunID           int
	PredictionFiles []string
}

func tagAckTable(root string) *xmlmap.Table[TagAck] {
	return xmlmap.NewTable(root,
		xmlmap.Int("id", func(a *TagAck) *int { return &a.ID }),
		xmlmap.Texts("tag", func(a *TagAck) *[]string { return &a.Tags }),
	)
}

func idAckTable(root string) *xmlmap.Table[IDAck] {
	return xmlmap.NewTable(root,
		xmlmap.Int("id", func(a *IDAck) *int { return &a.ID }),
	)
}

// Acknowledgement documents, one table per call.
var (
	UploadDataSetTable = idAckTable("upload_data_set")
	DataDeleteTable    = idAckTable("data_delete")
	DataResetTable     = idAckTable("data_reset")
	DataTagTable       = tagAckTable("data_tag")
	DataUntagTable     = tagAckTable("data_untag")

	UploadTaskTable = idAckTable("upload_task")
	TaskDeleteTable = idAckTable("task_delete")
	TaskTagTable    = tagAckTable("task_tag")
	TaskUntagTable  = tagAckTable("task_untag")

	RunDeleteTable = idAckTable("run_delete")
	RunTagTable    = tagAckTable("run_tag")
	RunUntagTable  = tagAckTable("run_untag")

	DataStatusUpdateTable = xmlmap.NewTable("data_status_update",
		xmlmap.Int("id", func(a *StatusAck) *int { return &a.ID }),
		xmlmap.Required("status", func(a *StatusAck) *string { return &a.Status }),
	)

	UploadRunTable = xmlmap.NewTable("upload_run",
		xmlmap.Int("run_id", func(a *RunAck) *int { return &a.RunID }),
	)

	UploadRunAttachTable = xmlmap.NewTable("upload_run_attach",
		xmlmap.Int("run_id", func(a *RunAttachAck) *int { return &a.RunID }),
		xmlmap.Texts("prediction_file", func(a *RunAttachAck) *[]string { return &a.PredictionFiles }),
	)
)

// NormalizeTags trims tags, drops empty ones and removes duplicates, keeping the
// first occurrence. It returns nil for an empty set.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SameTags reports whether a and b hold the same tag set regardless of order.
func SameTags(a, b []string) bool {
	a, b = NormalizeTags(a), NormalizeTags(b)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if !set[t] {
			return false
		}
	}
	return true
}
