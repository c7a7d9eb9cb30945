// Package model defines the OpenML resource documents and their binding tables.
package model

import (
	"github.com/openml/openml-go/xmlmap"
)

// DatasetDescription describes a dataset as uploaded to and served by OpenML.
type DatasetDescription struct {
	ID                     *int
	Name                   string
	Version                *string
	Description            string
	Format                 string
	Creators               []string
	Contributors           []string
	CollectionDate         *string
	UploadDate             *string
	Language               *string
	Licence                *string
	URL                    *string
	FileID                 *int
	DefaultTargetAttribute *string
	RowIDAttribute         *string
	IgnoreAttributes       []string
	VersionLabel           *string
	Citation               *string
	Tags                   []string
	Visibility             *string
	OriginalDataURL        *string
	PaperURL               *string
	UpdateComment          *string
	Status                 *string
	ProcessingDate         *string
	MD5Checksum            *string
}

// NewDatasetDescription describes a dataset whose file is uploaded alongside the description.
func NewDatasetDescription(name, description, format, target string) *DatasetDescription {
	return &DatasetDescription{
		Name:                   name,
		Description:            description,
		Format:                 format,
		DefaultTargetAttribute: xmlmap.String(target),
	}
}

// NewDatasetDescriptionFromURL describes a dataset the server fetches from url.
func NewDatasetDescriptionFromURL(name, description, format, url, target string) *DatasetDescription {
	d := NewDatasetDescription(name, description, format, target)
	d.URL = xmlmap.String(url)
	return d
}

// DatasetDescriptionTable binds DatasetDescription to oml:data_set_description.
var DatasetDescriptionTable = xmlmap.NewTable("data_set_description",
	xmlmap.OptInt("id", func(d *DatasetDescription) **int { return &d.ID }),
	xmlmap.Required("name", func(d *DatasetDescription) *string { return &d.Name }),
	xmlmap.OptText("version", func(d *DatasetDescription) **string { return &d.Version }),
	xmlmap.Required("description", func(d *DatasetDescription) *string { return &d.Description }),
	xmlmap.Required("format", func(d *DatasetDescription) *string { return &d.Format }),
	xmlmap.Texts("creator", func(d *DatasetDescription) *[]string { return &d.Creators }),
	xmlmap.Texts("contributor", func(d *DatasetDescription) *[]string { return &d.Contributors }),
	xmlmap.OptText("collection_date", func(d *DatasetDescription) **string { return &d.CollectionDate }),
	xmlmap.OptText("upload_date", func(d *DatasetDescription) **string { return &d.UploadDate }),
	xmlmap.OptText("language", func(d *DatasetDescription) **string { return &d.Language }),
	xmlmap.OptText("licence", func(d *DatasetDescription) **string { return &d.Licence }),
	xmlmap.OptText("url", func(d *DatasetDescription) **string { return &d.URL }),
	xmlmap.OptInt("file_id", func(d *DatasetDescription) **int { return &d.FileID }),
	xmlmap.OptText("default_target_attribute", func(d *DatasetDescription) **string { return &d.DefaultTargetAttribute }),
	xmlmap.OptText("row_id_attribute", func(d *DatasetDescription) **string { return &d.RowIDAttribute }),
	xmlmap.Texts("ignore_attribute", func(d *DatasetDescription) *[]string { return &d.IgnoreAttributes }),
	xmlmap.OptText("version_label", func(d *DatasetDescription) **string { return &d.VersionLabel }),
	xmlmap.OptText("citation", func(d *DatasetDescription) **string { return &d.Citation }),
	xmlmap.Texts("tag", func(d *DatasetDescription) *[]string { return &d.Tags }),
	xmlmap.OptText("visibility", func(d *DatasetDescription) **string { return &d.Visibility }),
	xmlmap.OptText("original_data_url", func(d *DatasetDescription) **string { return &d.OriginalDataURL }),
	xmlmap.OptText("paper_url", func(d *DatasetDescription) **string { return &d.PaperURL }),
	xmlmap.OptText("update_comment", func(d *DatasetDescription) **string { return &d.UpdateComment }),
	xmlmap.OptText("status", func(d *DatasetDescription) **string { return &d.Status }),
	xmlmap.OptText("processing_date", func(d *DatasetDescription) **string { return &d.ProcessingDate }),
	xmlmap.OptText("md5_checksum", func(d *DatasetDescription) **string { return &d.MD5Checksum }),
)

// Feature is one column of a dataset.
type Feature struct {
	Index                 int
	Name                  string
	DataType              string
	NominalValues         []string
	IsTarget              bool
	IsIgnore              bool
	IsRowIdentifier       bool
	NumberOfMissingValues int
}

// DataFeature lists the features of a dataset.
type DataFeature struct {
	Features []Feature
}

// FeatureTable binds Feature to oml:feature.
var FeatureTable = xmlmap.NewTable("feature",
	xmlmap.Int("index", func(f *Feature) *int { return &f.Index }),
	xmlmap.Required("name", func(f *Feature) *string { return &f.Name }),
	xmlmap.Required("data_type", func(f *Feature) *string { return &f.DataType }),
	xmlmap.Texts("nominal_value", func(f *Feature) *[]string { return &f.NominalValues }),
	xmlmap.Bool("is_target", func(f *Feature) *bool { return &f.IsTarget }),
	xmlmap.Bool("is_ignore", func(f *Feature) *bool { return &f.IsIgnore }),
	xmlmap.Bool("is_row_identifier", func(f *Feature) *bool { return &f.IsRowIdentifier }),
	xmlmap.Int("number_of_missing_values", func(f *Feature) *int { return &f.NumberOfMissingValues }),
)

// DataFeatureTable binds DataFeature to oml:data_features.
var DataFeatureTable = xmlmap.NewTable("data_features",
	xmlmap.Nested(func(d *DataFeature) *[]Feature { return &d.Features }, FeatureTable),
)

// DatasetSummary is one entry of a dataset listing.
type DatasetSummary struct {
	DID       int
	Name      string
	Version   string
	Status    string
	Format    string
	FileID    *int
	Qualities []NamedValue
}

// NamedValue is a quality as it appears in listings: the name is an attribute, the
// value is the element text.
type NamedValue struct {
	Name  string
	Value string
}

// QualityMap returns the listed qualities by name.
func (d *DatasetSummary) QualityMap() map[string]string {
	m := make(map[string]string, len(d.Qualities))
	for _, q := range d.Qualities {
		m[q.Name] = q.Value
	}
	return m
}

// DataList is the result of a dataset listing.
type DataList struct {
	Datasets []DatasetSummary
}

// DataUnprocessed lists datasets waiting for processing by an evaluation engine.
type DataUnprocessed struct {
	Datasets []DatasetSummary
}

var namedValueTable = xmlmap.NewTable("quality",
	xmlmap.Attribute("name", func(q *NamedValue) *string { return &q.Name }),
	xmlmap.Content(func(q *NamedValue) *string { return &q.Value }),
)

// DatasetSummaryTable binds DatasetSummary to oml:dataset.
var DatasetSummaryTable = xmlmap.NewTable("dataset",
	xmlmap.Int("did", func(d *DatasetSummary) *int { return &d.DID }),
	xmlmap.Required("name", func(d *DatasetSummary) *string { return &d.Name }),
	xmlmap.Required("version", func(d *DatasetSummary) *string { return &d.Version }),
	xmlmap.Required("status", func(d *DatasetSummary) *string { return &d.Status }),
	xmlmap.Required("format", func(d *DatasetSummary) *string { return &d.Format }),
	xmlmap.OptInt("file_id", func(d *DatasetSummary) **int { return &d.FileID }),
	xmlmap.Nested(func(d *DatasetSummary) *[]NamedValue { return &d.Qualities }, namedValueTable),
)

// DataListTable binds DataList to oml:data.
var DataListTable = xmlmap.NewTable("data",
	xmlmap.Nested(func(d *DataList) *[]DatasetSummary { return &d.Datasets }, DatasetSummaryTable),
)

// DataUnprocessedTable binds DataUnprocessed to oml:data_unprocessed.
var DataUnprocessedTable = xmlmap.NewTable("data_unprocessed",
	xmlmap.Nested(func(d *DataUnprocessed) *[]DatasetSummary { return &d.Datasets }, DatasetSummaryTable),
)
